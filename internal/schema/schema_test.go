package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/common"
)

func TestRegistryResolveBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, dt := range constants.DocumentTypes {
		def, err := r.Resolve(dt, nil)
		require.NoError(t, err, "type %s", dt)
		assert.Equal(t, string(dt), def.Name)
		assert.NotEmpty(t, def.Fields)
		require.NoError(t, def.Validate())
	}
}

func TestRegistryResolveCustomOverrides(t *testing.T) {
	r := NewRegistry()
	custom := &Definition{Name: "custom", Fields: map[string]FieldSpec{
		"case_number": {Type: TypeString, Required: true},
	}}
	def, err := r.Resolve(constants.Invoice, custom)
	require.NoError(t, err)
	assert.Equal(t, "custom", def.Name)
	assert.Len(t, def.Fields, 1)
}

func TestRegistryResolveMalformedCustomFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve(constants.Invoice, &Definition{Name: "custom"})
	assert.ErrorIs(t, err, common.ErrInvalidSchema)

	_, err = r.Resolve(constants.Invoice, &Definition{
		Name:   "custom",
		Fields: map[string]FieldSpec{"x": {Type: "integer"}},
	})
	assert.ErrorIs(t, err, common.ErrInvalidSchema)
}

func TestParseDefinition(t *testing.T) {
	raw := []byte(`{
		"claim_id":   {"type": "string", "required": true},
		"filed_on":   {"type": "date", "required": true},
		"amount":     {"type": "numeric"},
		"claimant":   {"type": "string"},
		"attachments": {"type": "list"}
	}`)
	def, err := ParseDefinition(raw)
	require.NoError(t, err)
	assert.Equal(t, "custom", def.Name)
	assert.Len(t, def.Fields, 5)
	assert.True(t, def.Fields["claim_id"].Required)
	assert.Equal(t, TypeDate, def.Fields["filed_on"].Type)
	assert.Equal(t, 2, def.RequiredCount())
}

func TestParseDefinitionRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"a": `},
		{"empty object", `{}`},
		{"unknown type", `{"a": {"type": "float"}}`},
		{"missing type", `{"a": {"required": true}}`},
		{"extra keys", `{"a": {"type": "string", "format": "email"}}`},
		{"not an object", `["a", "b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.raw))
			assert.ErrorIs(t, err, common.ErrInvalidSchema)
		})
	}
}

func TestFieldNamesSorted(t *testing.T) {
	def := Definition{Fields: map[string]FieldSpec{
		"zulu": {Type: TypeString}, "alpha": {Type: TypeString}, "mike": {Type: TypeString},
	}}
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, def.FieldNames())
}
