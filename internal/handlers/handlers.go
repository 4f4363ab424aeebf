package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mpilhlt/kogito-playground/internal/crypto"
	"github.com/mpilhlt/kogito-playground/internal/inference"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	huma "github.com/danielgtaylor/huma/v2"
)

type contextKey string

// Context keys
const (
	PoolKey     = contextKey("dbPool")
	KeyGenKey   = contextKey("keyGen")
	ServicesKey = contextKey("services")
)

// Error responses
var (
	ErrPoolNotFound     = errors.New("database connection pool not found in context")
	ErrKeyGenNotFound   = errors.New("key generator not found in context")
	ErrServicesNotFound = errors.New("services not found in context")
)

// The type definitions and functions that follow are used to
// mock the crypto/rand.Read function for testing purposes.
type RandomKeyGenerator interface {
	RandomKey(len int) (key string, err error)
}

type StandardKeyGen struct{}

func (s StandardKeyGen) RandomKey(len int) (string, error) {
	b := make([]byte, len)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Services bundles the collaborators of the session handlers.
type Services struct {
	Generator      inference.Generator
	Cipher         *crypto.TextCipher
	Logger         *zap.Logger
	Guard          *RequestGuard
	ContextKeyMode models.ContextKeyMode
	Now            func() time.Time
}

func (s *Services) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// AddRoutes adds all the routes to the API
func AddRoutes(pool *pgxpool.Pool, keyGen RandomKeyGenerator, services *Services, api huma.API) error {
	if services == nil || services.Generator == nil || services.Guard == nil {
		return fmt.Errorf("incomplete services")
	}
	if services.Logger == nil {
		services.Logger = zap.NewNop()
	}

	err := RegisterPlaygroundRoutes(api)
	if err != nil {
		services.Logger.Error("Unable to register playground routes", zap.Error(err))
		return err
	}
	err = RegisterSessionsRoutes(pool, keyGen, services, api)
	if err != nil {
		services.Logger.Error("Unable to register sessions routes", zap.Error(err))
		return err
	}
	err = RegisterGenerateRoutes(pool, services, api)
	if err != nil {
		services.Logger.Error("Unable to register generate routes", zap.Error(err))
		return err
	}
	err = RegisterResultsRoutes(pool, services, api)
	if err != nil {
		services.Logger.Error("Unable to register results routes", zap.Error(err))
		return err
	}
	err = RegisterAdminRoutes(pool, services, api)
	if err != nil {
		services.Logger.Error("Unable to register admin routes", zap.Error(err))
		return err
	}
	return nil
}

// Middleware to add the connection pool to the context
func addPoolToContext[I any, O any](pool *pgxpool.Pool, next func(context.Context, *I) (*O, error)) func(context.Context, *I) (*O, error) {
	return func(ctx context.Context, input *I) (*O, error) {
		if pool == nil {
			return nil, fmt.Errorf("provided pool is nil")
		}
		ctx = context.WithValue(ctx, PoolKey, pool)
		return next(ctx, input)
	}
}

// Middleware to add the key generator to the context
func addKeyGenToContext[I any, O any](keyGen RandomKeyGenerator, next func(context.Context, *I) (*O, error)) func(context.Context, *I) (*O, error) {
	return func(ctx context.Context, input *I) (*O, error) {
		if keyGen == nil {
			return nil, fmt.Errorf("provided keyGen is nil")
		}
		ctx = context.WithValue(ctx, KeyGenKey, keyGen)
		return next(ctx, input)
	}
}

// Middleware to add the services to the context
func addServicesToContext[I any, O any](services *Services, next func(context.Context, *I) (*O, error)) func(context.Context, *I) (*O, error) {
	return func(ctx context.Context, input *I) (*O, error) {
		if services == nil {
			return nil, fmt.Errorf("provided services are nil")
		}
		ctx = context.WithValue(ctx, ServicesKey, services)
		return next(ctx, input)
	}
}

// Get the database connection pool from the context
// (exported helper function so that blackbox testing can access it)
func GetDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(PoolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, huma.NewError(http.StatusInternalServerError, ErrPoolNotFound.Error())
	}
	return pool, nil
}

// Get the key generator from the context
// (exported helper function so that blackbox testing can access it)
func GetKeyGen(ctx context.Context) (RandomKeyGenerator, error) {
	keyGen, ok := ctx.Value(KeyGenKey).(RandomKeyGenerator)
	if !ok {
		return nil, huma.NewError(http.StatusInternalServerError, ErrKeyGenNotFound.Error())
	}
	return keyGen, nil
}

// Get the services from the context
func GetServices(ctx context.Context) (*Services, error) {
	services, ok := ctx.Value(ServicesKey).(*Services)
	if !ok {
		return nil, huma.NewError(http.StatusInternalServerError, ErrServicesNotFound.Error())
	}
	return services, nil
}
