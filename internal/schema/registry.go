package schema

import (
	"fmt"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// Registry holds one built-in Definition per supported document type.
// Never mutated after construction; safe for concurrent reads.
type Registry struct {
	builtins map[constants.DocumentType]Definition
}

// NewRegistry loads the built-in schema definitions.
func NewRegistry() *Registry {
	return &Registry{builtins: map[constants.DocumentType]Definition{
		constants.Invoice: {
			Name: string(constants.Invoice),
			Fields: map[string]FieldSpec{
				"invoice_number": {Type: TypeString, Required: true},
				"date":           {Type: TypeDate, Required: true},
				"total_amount":   {Type: TypeNumeric, Required: true},
				"currency":       {Type: TypeCurrency},
				"vendor_name":    {Type: TypeString, Required: true},
			},
		},
		constants.Receipt: {
			Name: string(constants.Receipt),
			Fields: map[string]FieldSpec{
				"store_name":   {Type: TypeString, Required: true},
				"date":         {Type: TypeDate, Required: true},
				"items":        {Type: TypeList},
				"total_amount": {Type: TypeNumeric, Required: true},
			},
		},
		constants.Prescription: {
			Name: string(constants.Prescription),
			Fields: map[string]FieldSpec{
				"patient_name": {Type: TypeString, Required: true},
				"doctor_name":  {Type: TypeString, Required: true},
				"date":         {Type: TypeDate, Required: true},
				"medications":  {Type: TypeList, Required: true},
			},
		},
		constants.Resume: {
			Name: string(constants.Resume),
			Fields: map[string]FieldSpec{
				"name":       {Type: TypeString, Required: true},
				"email":      {Type: TypeEmail, Required: true},
				"phone":      {Type: TypePhone},
				"education":  {Type: TypeList},
				"experience": {Type: TypeList},
				"projects":   {Type: TypeList},
				"skills":     {Type: TypeList},
			},
		},
		constants.General: {
			Name: string(constants.General),
			Fields: map[string]FieldSpec{
				"document_title": {Type: TypeString, Required: true},
				"key_points":     {Type: TypeList},
			},
		},
	}}
}

// Resolve returns the schema for a detected document type. A well-formed
// custom definition overrides detection entirely; a malformed one fails with
// ErrInvalidSchema rather than silently falling back.
func (r *Registry) Resolve(detected constants.DocumentType, custom *Definition) (Definition, error) {
	if custom != nil {
		if err := custom.Validate(); err != nil {
			return Definition{}, err
		}
		return *custom, nil
	}
	def, ok := r.builtins[detected]
	if !ok {
		return Definition{}, fmt.Errorf("%w: no built-in schema for type %q", common.ErrInvalidSchema, detected)
	}
	return def, nil
}
