package models

import (
	"net/http"
	"time"
)

// SessionInfo describes the state of a playground session.
type SessionInfo struct {
	SessionID   string        `json:"session_id" format:"uuid" doc:"Session identifier"`
	Config      RequestConfig `json:"config" doc:"Current form configuration"`
	ResultCount int           `json:"result_count" doc:"Number of records in the current result set"`
	Copied      bool          `json:"copied" doc:"Whether the results were copied within the last few seconds"`
	Error       string        `json:"error,omitempty" doc:"Last error returned by the inference service, until dismissed"`
	GeneratedAt *time.Time    `json:"generated_at,omitempty" doc:"Time of the last successful generation"`
	CreatedAt   time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time     `json:"updated_at" doc:"Time of the last change"`
}

// Results is the result set of a session in both views: the raw records
// (JSON view) and the grouping by head (table view).
type Results struct {
	Graph   InferenceRecords `json:"graph" doc:"Inference results as returned by the inference service"`
	Text    []string         `json:"text" doc:"Lower-cased tokens of the source text"`
	Grouped GroupedResult    `json:"grouped" doc:"Results grouped by head, in source text order"`
	Note    string           `json:"note,omitempty" doc:"Informational note about the generation"`
}

// Request and Response structs for the session API
// The request structs must be structs with fields for the request path/query/header/cookie parameters and/or body.
// The response structs must be structs with fields for the output headers and body of the operation, if any.

// Create session
// POST Path: "/v1/sessions"

type PostSessionRequest struct{}

type PostSessionResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   struct {
		SessionID  string `json:"session_id" doc:"Identifier of the created session"`
		SessionKey string `json:"session_key" doc:"Key for the session. It is only shown once."`
	}
}

// Get/delete session
// Path: "/v1/sessions/{session_id}"

type SessionRequest struct {
	SessionID string `json:"session_id" path:"session_id" format:"uuid" example:"0b9e7c5e-3f0a-4c52-9d2e-7a4f1d6c8b21" doc:"Session identifier"`
}

type GetSessionResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   SessionInfo
}

type DeleteSessionResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
}

// Get/put session config
// Path: "/v1/sessions/{session_id}/config"

type PutConfigRequest struct {
	SessionID string `json:"session_id" path:"session_id" format:"uuid" example:"0b9e7c5e-3f0a-4c52-9d2e-7a4f1d6c8b21" doc:"Session identifier"`
	Body      RequestConfig
}

type ConfigResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   RequestConfig
}

// Generate
// POST Path: "/v1/sessions/{session_id}/generate"

type GenerateRequest struct {
	SessionID string         `json:"session_id" path:"session_id" format:"uuid" example:"0b9e7c5e-3f0a-4c52-9d2e-7a4f1d6c8b21" doc:"Session identifier"`
	Body      *RequestConfig `required:"false" doc:"Configuration to generate with. The stored session configuration is used if omitted."`
}

type ResultsResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   Results
}

// Clear results
// DELETE Path: "/v1/sessions/{session_id}/results"

type ClearResultsResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
}

// Export results
// GET Path: "/v1/sessions/{session_id}/results/export"

type ExportResultsResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// Copy results
// POST Path: "/v1/sessions/{session_id}/results/copy"

type CopyResultsResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   struct {
		Text        string    `json:"text" doc:"Results as pretty-printed JSON"`
		CopiedUntil time.Time `json:"copied_until" doc:"Time until which the session reports the results as copied"`
	}
}

// Import results
// POST Path: "/v1/sessions/{session_id}/results/import"

type ImportResultsRequest struct {
	SessionID string `json:"session_id" path:"session_id" format:"uuid" example:"0b9e7c5e-3f0a-4c52-9d2e-7a4f1d6c8b21" doc:"Session identifier"`
	RawBody   []byte `contentType:"application/json" doc:"A results file as produced by the export operation"`
}

// Dismiss error
// DELETE Path: "/v1/sessions/{session_id}/error"

type DismissErrorResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
}
