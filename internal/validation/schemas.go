package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// productsSchema describes the catalog file: a non-empty array of products
// with a stable id and display name, optional snippets, contextual phrases
// and shop links.
const productsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string", "minLength": 1},
      "short": {"type": "string"},
      "usage": {"type": "string"},
      "description": {"type": "string"},
      "contra": {"type": "string"},
      "buy_url": {"type": "string"},
      "image": {"type": "string"},
      "category": {"type": "string"},
      "tags": {"type": "array", "items": {"type": "string"}},
      "contexts": {
        "type": "object",
        "additionalProperties": {"type": "string"}
      }
    }
  }
}`

// ValidateProducts checks a raw catalog file against the products schema and
// returns every violation in one error.
func ValidateProducts(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(productsSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate products file: %w", err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("products file invalid: %s", strings.Join(messages, "; "))
	}
	return nil
}
