package handlers

import (
	"context"
	"net/http"

	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/danielgtaylor/huma/v2"
)

func getOptionsFunc(ctx context.Context, input *models.GetOptionsRequest) (*models.GetOptionsResponse, error) {
	response := &models.GetOptionsResponse{}
	response.Body = models.PlaygroundOptions{
		Models:             models.ModelChoices,
		Relations:          models.Relations,
		HeadProcessors:     models.HeadProcessorChoices,
		RelationProcessors: models.RelationProcessorChoices,
		Defaults:           models.DefaultRequestConfig(),
		Warning:            models.ResultWarning,
	}
	return response, nil
}

// RegisterPlaygroundRoutes registers the routes describing the playground form
func RegisterPlaygroundRoutes(api huma.API) error {
	getOptionsOp := huma.Operation{
		OperationID: "getOptions",
		Method:      http.MethodGet,
		Path:        "/v1/options",
		Summary:     "Get models, relations, processors and form defaults",
		Tags:        []string{"playground"},
	}

	huma.Register(api, getOptionsOp, getOptionsFunc)
	return nil
}
