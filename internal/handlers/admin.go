package handlers

import (
	"context"
	"net/http"

	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func resetDbFunc(ctx context.Context, input *models.ResetDbRequest) (*models.ResetDbResponse, error) {
	// Get the database connection pool from the context
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	// delete all records
	services.Logger.Warn("Resetting database: deleting all sessions")
	err = database.New(pool).DeleteAllRecords(ctx)
	if err != nil {
		services.Logger.Error("Resetting database failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("unable to delete all records", err)
	}

	// Build response
	response := &models.ResetDbResponse{}
	return response, nil
}

func getStatusFunc(ctx context.Context, input *models.StatusRequest) (*models.StatusResponse, error) {
	pool, err := GetDBPool(ctx)
	if err != nil {
		return nil, err
	}
	services, err := GetServices(ctx)
	if err != nil {
		return nil, err
	}

	count, err := database.New(pool).CountSessions(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("unable to count sessions", err)
	}

	response := &models.StatusResponse{}
	response.Body.Sessions = count
	response.Body.ActiveRequests = services.Guard.Active()
	response.Body.Encryption = services.Cipher.Enabled()
	response.Body.ContextKeyMode = string(services.ContextKeyMode)
	return response, nil
}

// RegisterAdminRoutes registers all the admin routes with the API
func RegisterAdminRoutes(pool *pgxpool.Pool, services *Services, api huma.API) error {
	adminSecurity := []map[string][]string{
		{"adminAuth": []string{"admin"}},
	}

	// Define huma.Operations for each route
	footgunOp := huma.Operation{
		OperationID:   "footgun",
		Method:        http.MethodGet,
		Path:          "/v1/admin/footgun",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Remove all sessions from the database",
		Security:      adminSecurity,
		Tags:          []string{"admin"},
	}
	statusOp := huma.Operation{
		OperationID: "getStatus",
		Method:      http.MethodGet,
		Path:        "/v1/admin/status",
		Summary:     "Get session counts and server settings",
		Security:    adminSecurity,
		Tags:        []string{"admin"},
	}

	// Register the routes with middleware
	huma.Register(api, footgunOp, addPoolToContext(pool, addServicesToContext(services, resetDbFunc)))
	huma.Register(api, statusOp, addPoolToContext(pool, addServicesToContext(services, getStatusFunc)))
	return nil
}
