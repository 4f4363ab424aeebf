package export

import (
	"encoding/json"
	"fmt"

	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// resultsSchema describes a results file as produced by MarshalResults.
const resultsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["head", "relation", "tails"],
    "additionalProperties": false,
    "properties": {
      "head": {"type": "string"},
      "relation": {"type": "string"},
      "tails": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(resultsSchema)

// ValidateResults checks data against the results file schema and decodes it.
func ValidateResults(data []byte) (models.InferenceRecords, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate results: %v", err)
	}

	if !result.Valid() {
		// Build a helpful error message with all validation errors
		errMsg := "results validation failed:\n"
		for i, desc := range result.Errors() {
			if i > 0 {
				errMsg += "\n"
			}
			errMsg += fmt.Sprintf("  - %s", desc.String())
		}
		return nil, fmt.Errorf("%s", errMsg)
	}

	var records models.InferenceRecords
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return records.Normalize(), nil
}
