package schema

import (
	"fmt"
	"sort"

	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// FieldType is the semantic type of a schema field. The validator dispatches
// on it; the extractor embeds it in the prompt.
type FieldType string

const (
	TypeDate     FieldType = "date"
	TypeNumeric  FieldType = "numeric"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypeCurrency FieldType = "currency"
	TypeString   FieldType = "string"
	TypeList     FieldType = "list" // ordered list of strings
)

// FieldTypes lists every recognized semantic type.
var FieldTypes = []FieldType{TypeDate, TypeNumeric, TypeEmail, TypePhone, TypeCurrency, TypeString, TypeList}

var validTypes = func() map[FieldType]struct{} {
	m := make(map[FieldType]struct{}, len(FieldTypes))
	for _, ft := range FieldTypes {
		m[ft] = struct{}{}
	}
	return m
}()

// FieldSpec declares one field of a document schema.
type FieldSpec struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}

// Definition is the schema for one document type: a mapping from field name
// to its spec. Immutable once loaded.
type Definition struct {
	Name   string
	Fields map[string]FieldSpec
}

// FieldNames returns the declared field names, sorted for deterministic
// prompts and output.
func (d Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiredCount returns how many fields are marked required.
func (d Definition) RequiredCount() int {
	var n int
	for _, spec := range d.Fields {
		if spec.Required {
			n++
		}
	}
	return n
}

// Validate checks that the definition is well-formed: a non-empty field
// mapping with every semantic type drawn from the recognized set.
func (d Definition) Validate() error {
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: no fields declared", common.ErrInvalidSchema)
	}
	for name, spec := range d.Fields {
		if name == "" {
			return fmt.Errorf("%w: empty field name", common.ErrInvalidSchema)
		}
		if _, ok := validTypes[spec.Type]; !ok {
			return fmt.Errorf("%w: field %q has unrecognized type %q", common.ErrInvalidSchema, name, spec.Type)
		}
	}
	return nil
}
