package models

import "net/http"

// PlaygroundOptions lists everything a client needs to build the form.
type PlaygroundOptions struct {
	Models             []Choice      `json:"models" doc:"Knowledge models"`
	Relations          []string      `json:"relations" doc:"Relation vocabulary"`
	HeadProcessors     []Choice      `json:"head_processors" doc:"Head extraction strategies"`
	RelationProcessors []Choice      `json:"relation_processors" doc:"Relation matching strategies"`
	Defaults           RequestConfig `json:"defaults" doc:"Initial form configuration"`
	Warning            string        `json:"warning" doc:"Dismissible disclaimer to show above the results"`
}

// Get playground options
// GET Path: "/v1/options"

type GetOptionsRequest struct{}

type GetOptionsResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   PlaygroundOptions
}
