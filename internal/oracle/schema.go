package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// boundarySchema constrains the oracle's boundary answer before it is
// trusted: an array of {page, section} objects and nothing else.
const boundarySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "page": {"type": "integer", "minimum": 1},
      "section": {"type": "string", "minLength": 2}
    },
    "required": ["page", "section"],
    "additionalProperties": false
  }
}`

var compiledBoundarySchema = mustCompileSchema("boundaries.json", boundarySchema)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return c.MustCompile(name)
}

func validateBoundaryJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := compiledBoundarySchema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
