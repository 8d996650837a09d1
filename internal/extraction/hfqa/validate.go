package hfqa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema constrains the QA inference response envelope before we
// trust its fields. Score is required and bounded; a missing answer is a
// collaborator failure, not a silent empty extraction.
const responseSchema = `{
  "type": "object",
  "properties": {
    "answer": {"type": "string"},
    "score": {"type": "number", "minimum": 0.0, "maximum": 1.0},
    "start": {"type": "integer", "minimum": 0},
    "end": {"type": "integer", "minimum": 0}
  },
  "required": ["answer", "score"]
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("qa_response.json", bytes.NewReader([]byte(responseSchema))); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("qa_response.json")
	})
	return schema, schemaErr
}

// validateResponse validates raw against the QA response schema.
func validateResponse(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
