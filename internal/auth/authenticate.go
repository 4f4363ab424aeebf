package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/mpilhlt/kogito-playground/internal/database"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	AuthUserKey = "authUser"
	IsAdminKey  = "isAdmin"
)

// Config is the security scheme configuration for the API.
var Config = map[string]*huma.SecurityScheme{
	"adminAuth": {
		Type:   "http",
		In:     "header",
		Scheme: "bearer",
		Name:   "Authorization",
	},
	"sessionAuth": {
		Type:   "http",
		In:     "header",
		Scheme: "bearer",
		Name:   "Authorization",
	},
}

// requiresScheme reports whether the current operation lists scheme among
// its security requirements.
func requiresScheme(ctx huma.Context, scheme string) bool {
	for _, opScheme := range ctx.Operation().Security {
		if _, ok := opScheme[scheme]; ok {
			return true
		}
	}
	return false
}

func bearerToken(ctx huma.Context) string {
	return strings.TrimPrefix(ctx.Header("Authorization"), "Bearer ")
}

// AuthTermination returns a middleware function that evaluates if any of the
// preceding authentication middleware functions were successful. If not, it
// rejects the request, otherwise it calls the next middleware (or the final
// handler) function. It is supposed to be the last auth middleware in the
// chain.
func AuthTermination(api huma.API, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		// Check if the current operation requires authentication
		isAuthRequired := false
		for _, securityScheme := range ctx.Operation().Security {
			if len(securityScheme) > 0 {
				isAuthRequired = true
				break
			}
		}

		if !isAuthRequired {
			next(ctx)
			return
		}

		// Check if any authentication middleware has set AuthUserKey
		if _, ok := ctx.Context().Value(AuthUserKey).(string); ok {
			next(ctx)
			return
		}
		logger.Debug("Authentication failed", zap.String("operation", ctx.Operation().OperationID))
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Authentication failed. Perhaps a missing or incorrect API key?")
	}
}

// AdminAuth checks for the admin key in the Authorization header. The admin
// key also opens every session.
func AdminAuth(api huma.API, options *models.Options, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresScheme(ctx, "adminAuth") && !requiresScheme(ctx, "sessionAuth") {
			next(ctx)
			return
		}

		token := bearerToken(ctx)
		if options.AdminKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(options.AdminKey)) == 1 {
			ctx = huma.WithValue(ctx, IsAdminKey, true)
			ctx = huma.WithValue(ctx, AuthUserKey, "admin")
			logger.Debug("Admin authentication successful")
		}

		next(ctx)
	}
}

// SessionAuth checks for the key of the session named in the session_id path
// parameter.
func SessionAuth(api huma.API, pool *pgxpool.Pool, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresScheme(ctx, "sessionAuth") {
			next(ctx)
			return
		}

		// Check if adminAuth has already authenticated the request
		if isAdmin, ok := ctx.Context().Value(IsAdminKey).(bool); ok && isAdmin {
			next(ctx)
			return
		}

		sessionID := ctx.Param("session_id")
		token := bearerToken(ctx)
		if sessionID == "" || token == "" {
			next(ctx)
			return
		}

		queries := database.New(pool)
		storedHash, err := queries.GetKeyBySession(ctx.Context(), sessionID)
		if errors.Is(err, database.ErrSessionNotFound) {
			// The handler reports unknown sessions; without a key we can
			// only fail authentication here.
			next(ctx)
			return
		}
		if err != nil {
			logger.Debug("Session key lookup failed", zap.String("session", sessionID), zap.Error(err))
			next(ctx)
			return
		}

		if KeyIsValid(token, storedHash) {
			ctx = huma.WithValue(ctx, AuthUserKey, sessionID)
			next(ctx)
			return
		}

		next(ctx)
	}
}

// HashKey returns the hex encoded sha256 hash under which a session key is
// stored.
func HashKey(rawKey string) string {
	hash := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(hash[:])
}

// KeyIsValid checks if the given session key matches the stored hash.
func KeyIsValid(rawKey string, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashKey(rawKey))) == 1
}

// corsHeaders are set on every response. The playground client is served
// from a different origin than the API.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":   "*",
	"Access-Control-Allow-Methods":  "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	"Access-Control-Allow-Headers":  "Accept, Authorization, Content-Type, Content-Disposition, Origin, X-Requested-With",
	"Access-Control-Expose-Headers": "Content-Disposition",
	"Access-Control-Max-Age":        "600",
}

// CORSHandler wraps the router. Preflight requests are answered here because
// huma registers no OPTIONS operations.
func CORSHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, value := range corsHeaders {
			w.Header().Set(key, value)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
