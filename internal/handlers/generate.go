package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/grouping"
	"github.com/mpilhlt/kogito-playground/internal/inference"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrSessionBusy = errors.New("a generation is already running for this session")

// Run the inference service with the given or stored configuration
func generateFunc(ctx context.Context, input *models.GenerateRequest) (*models.ResultsResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}
	queries := database.New(pool)

	s, err := queries.RetrieveSession(ctx, input.SessionID)
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}

	var cfg models.RequestConfig
	if input.Body != nil {
		cfg = input.Body.WithDefaults()
	} else {
		cfg, err = decodeConfig(services.Cipher, s.Config)
		if err != nil {
			return nil, huma.Error500InternalServerError("unable to read session config", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	config, err := encodeConfig(services.Cipher, cfg)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode session config", err)
	}

	if !services.Guard.TryAcquire(input.SessionID) {
		return nil, huma.Error409Conflict(ErrSessionBusy.Error())
	}
	defer services.Guard.Release(input.SessionID)

	logger := services.Logger.With(zap.String("session_id", input.SessionID), zap.String("model", cfg.Model))
	start := time.Now()
	result, err := services.Generator.Generate(ctx, cfg.Payload(services.ContextKeyMode))
	if err != nil {
		// The request context may be gone already, the error is still recorded.
		storeCtx := context.WithoutCancel(ctx)
		if _, uerr := queries.UpdateConfig(storeCtx, database.UpdateConfigParams{SessionID: input.SessionID, Config: config}); uerr != nil {
			logger.Warn("Unable to store config after failed generation", zap.Error(uerr))
		}

		var serviceErr *inference.ServiceError
		message := err.Error()
		if !errors.As(err, &serviceErr) {
			message = fmt.Sprintf("inference service unavailable: %v", err)
		}
		if serr := queries.SetError(storeCtx, database.SetErrorParams{
			SessionID: input.SessionID,
			LastError: pgtype.Text{String: message, Valid: true},
		}); serr != nil {
			logger.Warn("Unable to store inference error", zap.Error(serr))
		}
		logger.Error("Generation failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, huma.NewError(http.StatusBadGateway, message)
	}

	graph, err := json.Marshal(result.Graph)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode results", err)
	}
	tokens, err := json.Marshal(result.Text)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode tokens", err)
	}
	_, err = queries.SaveResults(ctx, database.SaveResultsParams{
		SessionID: input.SessionID,
		Config:    config,
		Graph:     graph,
		Tokens:    tokens,
	})
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	logger.Info("Generation finished",
		zap.Int("records", len(result.Graph)),
		zap.Duration("duration", time.Since(start)),
	)

	response := &models.ResultsResponse{}
	response.Body = models.Results{
		Graph:   result.Graph,
		Text:    result.Text,
		Grouped: grouping.Group(result.Graph, result.Text),
	}
	if models.IsSlowModel(cfg.Model) {
		response.Body.Note = models.SlowModelNote
	}
	return response, nil
}

// RegisterGenerateRoutes registers the generation route with the API
func RegisterGenerateRoutes(pool *pgxpool.Pool, services *Services, api huma.API) error {
	generateOp := huma.Operation{
		OperationID: "generate",
		Method:      http.MethodPost,
		Path:        "/v1/sessions/{session_id}/generate",
		Summary:     "Generate commonsense knowledge for the session configuration",
		Description: "Only one generation per session may run at a time. The results replace the current result set of the session.",
		Security:    sessionSecurity,
		Tags:        []string{"results"},
	}

	huma.Register(api, generateOp, addPoolToContext(pool, addServicesToContext(services, generateFunc)))
	return nil
}
