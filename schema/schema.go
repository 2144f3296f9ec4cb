// Package schema provides JSON Schema compilation and validation for
// guided-mode backend responses.
//
// The engine's guided mode constrains the backend to an array of strings;
// [ItemsArray] is that schema, compiled once at init. Adapters validate the
// decoded response before handing items to the engine:
//
//	if err := schema.ItemsArray.Validate(decoded); err != nil {
//	    // treat as a decode failure, let the retry policy handle it
//	}
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema wraps a raw schema map together with its compiled validator. The
// raw map is what gets serialized into prompts; the compiled form does the
// runtime validation.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates decoded JSON data against the schema. Returns nil if
// valid, or a ValidationError describing the failure.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner
// message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error. Use for schemas defined
// at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// StringArray builds an array-of-strings schema. maxItems <= 0 means
// unbounded.
func StringArray(maxItems int) map[string]any {
	raw := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
	}
	if maxItems > 0 {
		raw["maxItems"] = maxItems
	}
	return raw
}

// ItemsArray is the guided-mode response schema: a flat array of non-empty
// strings.
var ItemsArray = MustCompile(StringArray(0))
