package models

import "net/http"

// Request and Response structs for the admin API
// The request structs must be structs with fields for the request path/query/header/cookie parameters and/or body.
// The response structs must be structs with fields for the output headers and body of the operation, if any.

// Reset Database
// GET Path: "/v1/admin/footgun"

type ResetDbRequest struct{}

type ResetDbResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
}

// Status
// GET Path: "/v1/admin/status"

type StatusRequest struct{}

type StatusResponse struct {
	Header []http.Header `json:"header,omitempty" doc:"Response headers"`
	Body   struct {
		Sessions       int64  `json:"sessions" doc:"Number of stored sessions"`
		ActiveRequests int    `json:"active_requests" doc:"Number of generations currently in flight"`
		Encryption     bool   `json:"encryption" doc:"Whether stored text is encrypted"`
		ContextKeyMode string `json:"context_key_mode" doc:"How the filtering context is keyed in inference requests"`
	}
}
