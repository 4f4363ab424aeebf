package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/export"
	"github.com/mpilhlt/kogito-playground/internal/grouping"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// loadResults reads the current result set of a session.
func loadResults(ctx context.Context, pool *pgxpool.Pool, sessionID string) (models.InferenceRecords, []string, error) {
	s, err := database.New(pool).RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, nil, sessionError(sessionID, err)
	}
	graph, tokens, err := decodeResults(s)
	if err != nil {
		return nil, nil, huma.Error500InternalServerError("unable to read session results", err)
	}
	return graph, tokens, nil
}

// marshalExport renders the export file, mapping an empty result set to 404.
func marshalExport(graph models.InferenceRecords) ([]byte, error) {
	data, err := export.MarshalResults(graph)
	if errors.Is(err, export.ErrNoResults) {
		return nil, huma.Error404NotFound(err.Error())
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode results", err)
	}
	return data, nil
}

// Get the current results in the JSON and the table view
func getResultsFunc(ctx context.Context, input *models.SessionRequest) (*models.ResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}

	graph, tokens, err := loadResults(ctx, pool, input.SessionID)
	if err != nil {
		return nil, err
	}

	response := &models.ResultsResponse{}
	response.Body = models.Results{
		Graph:   graph,
		Text:    tokens,
		Grouped: grouping.Group(graph, tokens),
	}
	return response, nil
}

// Clear the current results
func clearResultsFunc(ctx context.Context, input *models.SessionRequest) (*models.ClearResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}

	err = database.New(pool).ClearResults(ctx, input.SessionID)
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	return &models.ClearResultsResponse{}, nil
}

// Download the current results as a file
func exportResultsFunc(ctx context.Context, input *models.SessionRequest) (*models.ExportResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}

	graph, _, err := loadResults(ctx, pool, input.SessionID)
	if err != nil {
		return nil, err
	}
	data, err := marshalExport(graph)
	if err != nil {
		return nil, err
	}

	return &models.ExportResultsResponse{
		ContentType:        export.ContentType,
		ContentDisposition: export.ContentDisposition(),
		Body:               data,
	}, nil
}

// Return the current results as text to be copied and mark them as copied
func copyResultsFunc(ctx context.Context, input *models.SessionRequest) (*models.CopyResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	graph, _, err := loadResults(ctx, pool, input.SessionID)
	if err != nil {
		return nil, err
	}
	data, err := marshalExport(graph)
	if err != nil {
		return nil, err
	}

	copiedUntil := services.now().Add(export.CopyConfirmation * time.Second)
	err = database.New(pool).SetCopiedUntil(ctx, database.SetCopiedUntilParams{
		SessionID:   input.SessionID,
		CopiedUntil: copiedUntil,
	})
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}

	response := &models.CopyResultsResponse{}
	response.Body.Text = string(data)
	response.Body.CopiedUntil = copiedUntil
	return response, nil
}

// Replace the current results with an uploaded results file
func importResultsFunc(ctx context.Context, input *models.ImportResultsRequest) (*models.ResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	records, err := export.ValidateResults(input.RawBody)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	graph, err := json.Marshal(records)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode results", err)
	}
	_, err = database.New(pool).ImportResults(ctx, database.ImportResultsParams{
		SessionID: input.SessionID,
		Graph:     graph,
	})
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	services.Logger.Info("Imported results",
		zap.String("session_id", input.SessionID),
		zap.Int("records", len(records)),
	)

	response := &models.ResultsResponse{}
	response.Body = models.Results{
		Graph:   records,
		Text:    []string{},
		Grouped: grouping.Group(records, nil),
	}
	return response, nil
}

// RegisterResultsRoutes registers all the result routes with the API
func RegisterResultsRoutes(pool *pgxpool.Pool, services *Services, api huma.API) error {
	getResultsOp := huma.Operation{
		OperationID: "getResults",
		Method:      http.MethodGet,
		Path:        "/v1/sessions/{session_id}/results",
		Summary:     "Get the current results, flat and grouped by head",
		Security:    sessionSecurity,
		Tags:        []string{"results"},
	}
	clearResultsOp := huma.Operation{
		OperationID:   "clearResults",
		Method:        http.MethodDelete,
		Path:          "/v1/sessions/{session_id}/results",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Clear the current results",
		Security:      sessionSecurity,
		Tags:          []string{"results"},
	}
	exportResultsOp := huma.Operation{
		OperationID: "exportResults",
		Method:      http.MethodGet,
		Path:        "/v1/sessions/{session_id}/results/export",
		Summary:     "Download the current results as " + export.FileName,
		Security:    sessionSecurity,
		Tags:        []string{"results"},
	}
	copyResultsOp := huma.Operation{
		OperationID: "copyResults",
		Method:      http.MethodPost,
		Path:        "/v1/sessions/{session_id}/results/copy",
		Summary:     "Get the current results as text for the clipboard",
		Security:    sessionSecurity,
		Tags:        []string{"results"},
	}
	importResultsOp := huma.Operation{
		OperationID: "importResults",
		Method:      http.MethodPost,
		Path:        "/v1/sessions/{session_id}/results/import",
		Summary:     "Load a previously exported results file",
		Security:    sessionSecurity,
		Tags:        []string{"results"},
	}

	huma.Register(api, getResultsOp, addPoolToContext(pool, getResultsFunc))
	huma.Register(api, clearResultsOp, addPoolToContext(pool, clearResultsFunc))
	huma.Register(api, exportResultsOp, addPoolToContext(pool, exportResultsFunc))
	huma.Register(api, copyResultsOp, addPoolToContext(pool, addServicesToContext(services, copyResultsFunc)))
	huma.Register(api, importResultsOp, addPoolToContext(pool, addServicesToContext(services, importResultsFunc)))
	return nil
}
