package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mpilhlt/kogito-playground/internal/auth"
	"github.com/mpilhlt/kogito-playground/internal/crypto"
	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const sessionKeyBytes = 32

// sessionSecurity is the security requirement of all session-scoped routes.
var sessionSecurity = []map[string][]string{
	{"sessionAuth": {"session"}},
}

// sessionError translates storage errors for a single session.
func sessionError(sessionID string, err error) error {
	if errors.Is(err, database.ErrSessionNotFound) {
		return huma.Error404NotFound(fmt.Sprintf("session %s not found", sessionID))
	}
	return huma.Error500InternalServerError(fmt.Sprintf("unable to access session %s", sessionID), err)
}

// encodeConfig serializes a config for storage. Text, context and explicit
// heads are sealed when the cipher is enabled.
func encodeConfig(cipher *crypto.TextCipher, cfg models.RequestConfig) ([]byte, error) {
	var err error
	if cfg.Text, err = cipher.Seal(cfg.Text); err != nil {
		return nil, err
	}
	if cfg.Context, err = cipher.Seal(cfg.Context); err != nil {
		return nil, err
	}
	heads := make([]string, len(cfg.Heads))
	for i, h := range cfg.Heads {
		if heads[i], err = cipher.Seal(h); err != nil {
			return nil, err
		}
	}
	cfg.Heads = heads
	return json.Marshal(cfg)
}

func decodeConfig(cipher *crypto.TextCipher, data []byte) (models.RequestConfig, error) {
	cfg := models.DefaultRequestConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode stored config: %w", err)
	}
	var err error
	if cfg.Text, err = cipher.Open(cfg.Text); err != nil {
		return cfg, err
	}
	if cfg.Context, err = cipher.Open(cfg.Context); err != nil {
		return cfg, err
	}
	heads := make([]string, len(cfg.Heads))
	for i, h := range cfg.Heads {
		if heads[i], err = cipher.Open(h); err != nil {
			return cfg, err
		}
	}
	cfg.Heads = heads
	if cfg.Relations == nil {
		cfg.Relations = []string{}
	}
	if cfg.HeadProcs == nil {
		cfg.HeadProcs = []string{}
	}
	if cfg.RelProcs == nil {
		cfg.RelProcs = []string{}
	}
	return cfg, nil
}

// decodeResults reads the stored result set of a session.
func decodeResults(s database.Session) (models.InferenceRecords, []string, error) {
	var graph models.InferenceRecords
	var tokens []string
	if len(s.Graph) > 0 {
		if err := json.Unmarshal(s.Graph, &graph); err != nil {
			return nil, nil, fmt.Errorf("unable to decode stored results: %w", err)
		}
	}
	if len(s.Tokens) > 0 {
		if err := json.Unmarshal(s.Tokens, &tokens); err != nil {
			return nil, nil, fmt.Errorf("unable to decode stored tokens: %w", err)
		}
	}
	if tokens == nil {
		tokens = []string{}
	}
	return graph.Normalize(), tokens, nil
}

func sessionInfo(services *Services, s database.Session) (models.SessionInfo, error) {
	cfg, err := decodeConfig(services.Cipher, s.Config)
	if err != nil {
		return models.SessionInfo{}, err
	}
	graph, _, err := decodeResults(s)
	if err != nil {
		return models.SessionInfo{}, err
	}
	info := models.SessionInfo{
		SessionID:   s.SessionID,
		Config:      cfg,
		ResultCount: len(graph),
		Copied:      s.CopiedUntil.Valid && services.now().Before(s.CopiedUntil.Time),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.LastError.Valid {
		info.Error = s.LastError.String
	}
	if s.GeneratedAt.Valid {
		t := s.GeneratedAt.Time
		info.GeneratedAt = &t
	}
	return info, nil
}

// Create a new session
func postSessionFunc(ctx context.Context, input *models.PostSessionRequest) (*models.PostSessionResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	keyGen, err := GetKeyGen(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	sessionKey, err := keyGen.RandomKey(sessionKeyBytes)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to generate session key", err)
	}
	config, err := encodeConfig(services.Cipher, models.DefaultRequestConfig())
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode session config", err)
	}

	queries := database.New(pool)
	s, err := queries.CreateSession(ctx, database.CreateSessionParams{
		SessionID: uuid.NewString(),
		KeyHash:   auth.HashKey(sessionKey),
		Config:    config,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to create session", err)
	}
	services.Logger.Info("Created session", zap.String("session_id", s.SessionID))

	response := &models.PostSessionResponse{}
	response.Body.SessionID = s.SessionID
	response.Body.SessionKey = sessionKey
	return response, nil
}

// Get the state of a session
func getSessionFunc(ctx context.Context, input *models.SessionRequest) (*models.GetSessionResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	s, err := database.New(pool).RetrieveSession(ctx, input.SessionID)
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	info, err := sessionInfo(services, s)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to read session", err)
	}

	response := &models.GetSessionResponse{}
	response.Body = info
	return response, nil
}

// Delete a session
func deleteSessionFunc(ctx context.Context, input *models.SessionRequest) (*models.DeleteSessionResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	err = database.New(pool).DeleteSession(ctx, input.SessionID)
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	services.Logger.Info("Deleted session", zap.String("session_id", input.SessionID))
	return &models.DeleteSessionResponse{}, nil
}

// Get the stored form configuration
func getConfigFunc(ctx context.Context, input *models.SessionRequest) (*models.ConfigResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	s, err := database.New(pool).RetrieveSession(ctx, input.SessionID)
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	cfg, err := decodeConfig(services.Cipher, s.Config)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to read session config", err)
	}

	response := &models.ConfigResponse{}
	response.Body = cfg
	return response, nil
}

// Replace the stored form configuration
func putConfigFunc(ctx context.Context, input *models.PutConfigRequest) (*models.ConfigResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range input.Body.Relations {
		if !models.IsRelation(r) {
			return nil, huma.Error422UnprocessableEntity(fmt.Sprintf("%v: %s", models.ErrUnknownRelation, r))
		}
	}
	config, err := encodeConfig(services.Cipher, input.Body.WithDefaults())
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to encode session config", err)
	}
	s, err := database.New(pool).UpdateConfig(ctx, database.UpdateConfigParams{
		SessionID: input.SessionID,
		Config:    config,
	})
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	cfg, err := decodeConfig(services.Cipher, s.Config)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to read session config", err)
	}

	response := &models.ConfigResponse{}
	response.Body = cfg
	return response, nil
}

// Dismiss the pending inference error of a session
func dismissErrorFunc(ctx context.Context, input *models.SessionRequest) (*models.DismissErrorResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}

	err = database.New(pool).SetError(ctx, database.SetErrorParams{
		SessionID: input.SessionID,
		LastError: pgtype.Text{},
	})
	if err != nil {
		return nil, sessionError(input.SessionID, err)
	}
	return &models.DismissErrorResponse{}, nil
}

// RegisterSessionsRoutes registers all the session routes with the API
func RegisterSessionsRoutes(pool *pgxpool.Pool, keyGen RandomKeyGenerator, services *Services, api huma.API) error {
	postSessionOp := huma.Operation{
		OperationID:   "postSession",
		Method:        http.MethodPost,
		Path:          "/v1/sessions",
		DefaultStatus: http.StatusCreated,
		Summary:       "Create a playground session",
		Tags:          []string{"sessions"},
	}
	getSessionOp := huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/v1/sessions/{session_id}",
		Summary:     "Get the state of a session",
		Security:    sessionSecurity,
		Tags:        []string{"sessions"},
	}
	deleteSessionOp := huma.Operation{
		OperationID:   "deleteSession",
		Method:        http.MethodDelete,
		Path:          "/v1/sessions/{session_id}",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Delete a session and its results",
		Security:      sessionSecurity,
		Tags:          []string{"sessions"},
	}
	getConfigOp := huma.Operation{
		OperationID: "getConfig",
		Method:      http.MethodGet,
		Path:        "/v1/sessions/{session_id}/config",
		Summary:     "Get the form configuration of a session",
		Security:    sessionSecurity,
		Tags:        []string{"sessions"},
	}
	putConfigOp := huma.Operation{
		OperationID: "putConfig",
		Method:      http.MethodPut,
		Path:        "/v1/sessions/{session_id}/config",
		Summary:     "Replace the form configuration of a session",
		Security:    sessionSecurity,
		Tags:        []string{"sessions"},
	}
	dismissErrorOp := huma.Operation{
		OperationID:   "dismissError",
		Method:        http.MethodDelete,
		Path:          "/v1/sessions/{session_id}/error",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Dismiss the last inference error of a session",
		Security:      sessionSecurity,
		Tags:          []string{"sessions"},
	}

	huma.Register(api, postSessionOp, addPoolToContext(pool, addKeyGenToContext(keyGen, addServicesToContext(services, postSessionFunc))))
	huma.Register(api, getSessionOp, addPoolToContext(pool, addServicesToContext(services, getSessionFunc)))
	huma.Register(api, deleteSessionOp, addPoolToContext(pool, addServicesToContext(services, deleteSessionFunc)))
	huma.Register(api, getConfigOp, addPoolToContext(pool, addServicesToContext(services, getConfigFunc)))
	huma.Register(api, putConfigOp, addPoolToContext(pool, addServicesToContext(services, putConfigFunc)))
	huma.Register(api, dismissErrorOp, addPoolToContext(pool, dismissErrorFunc))
	return nil
}
