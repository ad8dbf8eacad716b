package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeDocType(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   DocumentType
		ok     bool
	}{
		{"exact label", "invoice", Invoice, true},
		{"uppercase with noise", "  This is a RECEIPT.  ", Receipt, true},
		{"sentence form", "The document is a resume/CV.", Resume, true},
		{"prescription", "prescription", Prescription, true},
		{"general", "general", General, true},
		{"multi-label is ambiguous", "invoice; receipt", General, false},
		{"unrecognized", "shopping list", General, false},
		{"empty", "", General, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalizeDocType(tt.answer)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestMapExtToKind(t *testing.T) {
	assert.Equal(t, PDF, MapExtToKind(".pdf"))
	assert.Equal(t, IMAGE, MapExtToKind("PNG"))
	assert.Equal(t, IMAGE, MapExtToKind(".jpeg"))
	assert.Equal(t, MediaKind(""), MapExtToKind(".docx"))
}
