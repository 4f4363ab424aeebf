package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/mpilhlt/kogito-playground/internal/export"
	"github.com/mpilhlt/kogito-playground/internal/handlers"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsFunc(t *testing.T) {
	service := &recordingService{fixture: fixturePath("inference", "personx_response.json")}
	_, err, shutDownServer := startTestServer(t, connPool, handlers.StandardKeyGen{}, startInferenceService(t, service.ServeHTTP))
	require.NoError(t, err)
	t.Cleanup(shutDownServer)

	sessionID, sessionKey := createSession(t)
	resultsPath := "/v1/sessions/" + sessionID + "/results"

	// The records the fake inference service answers with
	expected := struct {
		Graph models.InferenceRecords `json:"graph"`
	}{}
	require.NoError(t, json.Unmarshal(readFixture(t, fixturePath("inference", "personx_response.json")), &expected))

	t.Run("Nothing to export before generating", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, resultsPath+"/export", sessionKey, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
		resp, body = doRequest(t, http.MethodPost, resultsPath+"/copy", sessionKey, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
	})

	t.Run("Empty results", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, resultsPath, sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		results := decodeResults(t, body)
		assert.Empty(t, results.Graph)
		assert.Empty(t, results.Grouped)
	})

	resp, body := doRequest(t, http.MethodPost, "/v1/sessions/"+sessionID+"/generate", sessionKey, []byte(`{"text": "PersonX becomes a great basketball player"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	t.Run("Export", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, resultsPath+"/export", sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="kogito-results.json"`, resp.Header.Get("Content-Disposition"))

		// The file holds the records as received, indented by four spaces
		exported := models.InferenceRecords{}
		require.NoError(t, json.Unmarshal(body, &exported))
		assert.Equal(t, expected.Graph, exported)
		assert.Contains(t, string(body), "\n    {\n        \"head\": \"basketball player\",")
	})

	t.Run("Copy", func(t *testing.T) {
		before := time.Now()
		resp, body := doRequest(t, http.MethodPost, resultsPath+"/copy", sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		copied := struct {
			Text        string    `json:"text"`
			CopiedUntil time.Time `json:"copied_until"`
		}{}
		require.NoError(t, json.Unmarshal(body, &copied))
		expectedText, err := export.MarshalResults(expected.Graph)
		require.NoError(t, err)
		assert.Equal(t, string(expectedText), copied.Text)
		assert.WithinDuration(t, before.Add(export.CopyConfirmation*time.Second), copied.CopiedUntil, 2*time.Second)

		resp, body = doRequest(t, http.MethodGet, "/v1/sessions/"+sessionID, sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		info := models.SessionInfo{}
		require.NoError(t, json.Unmarshal(body, &info))
		assert.True(t, info.Copied)
	})

	t.Run("Clear", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodDelete, resultsPath, sessionKey, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode, string(body))

		resp, body = doRequest(t, http.MethodGet, resultsPath, sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		results := decodeResults(t, body)
		assert.Empty(t, results.Graph)
		assert.Empty(t, results.Text)
		assert.Empty(t, results.Grouped)

		resp, body = doRequest(t, http.MethodGet, resultsPath+"/export", sessionKey, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

		resp, body = doRequest(t, http.MethodGet, "/v1/sessions/"+sessionID, sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		info := models.SessionInfo{}
		require.NoError(t, json.Unmarshal(body, &info))
		assert.False(t, info.Copied)
		assert.Equal(t, 0, info.ResultCount)
	})

	t.Run("Import valid file", func(t *testing.T) {
		file := readFixture(t, fixturePath("results", "valid_results.json"))
		resp, body := doRequest(t, http.MethodPost, resultsPath+"/import", sessionKey, file)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		results := decodeResults(t, body)
		assert.Len(t, results.Graph, 2)
		assert.Empty(t, results.Text)
		// Without tokens the heads are ordered by length, then alphabetically
		assert.Equal(t, []string{"great", "personx"}, results.Grouped.Heads())

		resp, body = doRequest(t, http.MethodGet, resultsPath+"/export", sessionKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.JSONEq(t, string(file), string(body))
	})

	t.Run("Import invalid file", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodPost, resultsPath+"/import", sessionKey, readFixture(t, fixturePath("results", "invalid_results.json")))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))
		assert.Contains(t, errorDetail(t, body), "tails")
	})

	t.Run("Unauthorized", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, resultsPath, "wrong-key", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
		resp, body = doRequest(t, http.MethodDelete, resultsPath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
	})
}
