package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// metaSchema constrains caller-supplied custom schema JSON: a non-empty object
// mapping field names to {type, required?} with type drawn from the
// recognized set.
func metaSchema() map[string]any {
	types := make([]any, 0, len(FieldTypes))
	for _, ft := range FieldTypes {
		types = append(types, string(ft))
	}
	return map[string]any{
		"type":          "object",
		"minProperties": 1,
		"additionalProperties": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":     map[string]any{"type": "string", "enum": types},
				"required": map[string]any{"type": "boolean"},
			},
			"required":             []any{"type"},
			"additionalProperties": false,
		},
	}
}

// ParseDefinition parses caller-supplied custom schema JSON of the shape
//
//	{"field_name": {"type": "date", "required": true}, ...}
//
// Anything outside the recognized semantic-type set is rejected with
// ErrInvalidSchema.
func ParseDefinition(raw []byte) (*Definition, error) {
	if err := ValidateJSON(metaSchema(), raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSchema, err)
	}
	var fields map[string]FieldSpec
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", common.ErrInvalidSchema, err)
	}
	def := &Definition{Name: "custom", Fields: fields}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// ValidateJSON validates "data" against "schemaMap".
func ValidateJSON(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
