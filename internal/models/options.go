package models

// Options for the CLI.
type Options struct {
	Debug            bool    `doc:"Enable debug logging" short:"d" default:"false"`
	Host             string  `doc:"Hostname to listen on" default:"localhost"`
	Port             int     `doc:"Port to listen on" short:"p" default:"8888"`
	DBHost           string  `doc:"Database hostname" default:"localhost"`
	DBPort           int     `doc:"Database port" default:"5432"`
	DBUser           string  `doc:"Database username" default:"postgres"`
	DBPassword       string  `doc:"Database password" default:"password"`
	DBName           string  `doc:"Database name" default:"postgres"`
	AdminKey         string  `doc:"Admin API key"`
	EncryptionKey    string  `doc:"Key used to encrypt stored source and context text (stored as plaintext if empty)"`
	InferenceURL     string  `doc:"Endpoint of the kogito inference service" default:"http://localhost:8080/inference"`
	InferenceKey     string  `doc:"Bearer token sent to the inference service"`
	InferenceTimeout float64 `doc:"Timeout for inference requests in seconds (0 disables the timeout)" default:"0"`
	ContextKeyMode   string  `doc:"How the filtering context is keyed in inference requests: 'legacy' uses the context text as key, 'field' uses a fixed 'context' key" enum:"legacy,field" default:"legacy"`
}
