package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mpilhlt/kogito-playground/internal/auth"
	"github.com/mpilhlt/kogito-playground/internal/crypto"
	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/handlers"
	"github.com/mpilhlt/kogito-playground/internal/inference"
	"github.com/mpilhlt/kogito-playground/internal/logging"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/danielgtaylor/huma/v2/autopatch"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	huma "github.com/danielgtaylor/huma/v2"
)

// newInferenceClient builds the inference client from the CLI options.
func newInferenceClient(options *models.Options, logger *zap.Logger) (*inference.Client, error) {
	opts := []inference.Option{inference.WithLogger(logger)}
	if options.InferenceTimeout > 0 {
		opts = append(opts, inference.WithTimeout(time.Duration(options.InferenceTimeout*float64(time.Second))))
	}
	return inference.NewClient(options.InferenceURL, options.InferenceKey, opts...)
}

func main() {
	// Values from a .env file are only used where the environment has none.
	_ = godotenv.Load()

	// Create a CLI app
	cli := humacli.New(func(hooks humacli.Hooks, options *models.Options) {
		logger, err := logging.New(options.Debug)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		logger.Info("Starting kogito playground",
			zap.Bool("debug", options.Debug),
			zap.String("host", options.Host),
			zap.Int("port", options.Port),
			zap.String("dbhost", options.DBHost),
			zap.String("dbname", options.DBName),
			zap.String("inference", options.InferenceURL))

		contextKeyMode, err := models.ParseContextKeyMode(options.ContextKeyMode)
		if err != nil {
			logger.Fatal("Invalid option", zap.Error(err))
		}
		cipher, err := crypto.NewTextCipher(options.EncryptionKey)
		if err != nil {
			logger.Fatal("Unable to set up encryption", zap.Error(err))
		}
		if !cipher.Enabled() {
			logger.Warn("No encryption key set, source text is stored as plaintext")
		}
		client, err := newInferenceClient(options, logger)
		if err != nil {
			logger.Fatal("Unable to set up inference client", zap.Error(err))
		}

		// Initialize the database
		pool, err := database.InitDB(context.Background(), options, logger)
		if err != nil {
			logger.Fatal("Unable to connect to database", zap.Error(err))
		}

		// Define standard key generator (for session keys)
		keyGen := handlers.StandardKeyGen{}
		services := &handlers.Services{
			Generator:      client,
			Cipher:         cipher,
			Logger:         logger,
			Guard:          handlers.NewRequestGuard(),
			ContextKeyMode: contextKeyMode,
		}

		// Create a new router & API
		config := huma.DefaultConfig("Kogito Playground API", "0.1.0")
		config.Components.SecuritySchemes = auth.Config
		router := http.NewServeMux()
		api := humago.New(router, config)
		api.UseMiddleware(auth.AdminAuth(api, options, logger))
		api.UseMiddleware(auth.SessionAuth(api, pool, logger))
		api.UseMiddleware(auth.AuthTermination(api, logger))

		// Add routes to the API
		err = handlers.AddRoutes(pool, keyGen, services, api)
		if err != nil {
			logger.Fatal("Unable to add routes", zap.Error(err))
		}
		// PATCH for every resource with GET and PUT
		autopatch.AutoPatch(api)

		// Create the HTTP server
		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", options.Host, options.Port),
			Handler:           auth.CORSHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Start server
		hooks.OnStart(func() {
			logger.Info("Starting API server", zap.Int("port", options.Port))
			err := server.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				logger.Error("Listen error", zap.Error(err))
			} else {
				logger.Info("API server stopped", zap.Int("port", options.Port))
			}
		})

		// Gracefully shutdown server
		hooks.OnStop(func() {
			logger.Info("Shutting down API server", zap.Int("port", options.Port))

			// Create a context with a timeout for the shutdown process
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Attempt to gracefully shut down the server
			if err := server.Shutdown(ctx); err != nil {
				logger.Error("Shutdown error", zap.Error(err))
			}

			// Close the database pool
			logger.Info("Closing database pool", zap.Int32("active_connections", pool.Stat().TotalConns()))
			pool.Close()
			_ = logger.Sync()
		})
	})

	cli.Root().Use = "kogito-playground"
	cli.Root().AddCommand(generateCommand())
	cli.Root().AddCommand(migrateCommand())

	// Run the CLI. When passed no commands, it starts the server.
	cli.Run()
}
