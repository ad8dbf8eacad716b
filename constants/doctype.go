package constants

import "strings"

// DocumentType is the canonical label for a classified document.
type DocumentType string

// Stable values (these exact strings appear in prompts and stored records).
const (
	Invoice      DocumentType = "invoice"
	Receipt      DocumentType = "receipt"
	Prescription DocumentType = "prescription"
	Resume       DocumentType = "resume"
	General      DocumentType = "general"
)

// DocumentTypes lists every supported label, in prompt order.
var DocumentTypes = []DocumentType{Invoice, Receipt, Prescription, Resume, General}

// DocTypeStrings returns the labels as plain strings.
func DocTypeStrings() []string {
	out := make([]string, 0, len(DocumentTypes))
	for _, dt := range DocumentTypes {
		out = append(out, string(dt))
	}
	return out
}

// CanonicalizeDocType maps a free-form classifier answer onto a supported label.
// Matching is by case-insensitive substring. An answer naming more than one
// specific type, or none at all, reports ok=false and resolves to General.
func CanonicalizeDocType(answer string) (DocumentType, bool) {
	s := strings.ToLower(strings.TrimSpace(answer))
	var matched []DocumentType
	for _, dt := range DocumentTypes {
		if dt == General {
			continue
		}
		if strings.Contains(s, string(dt)) {
			matched = append(matched, dt)
		}
	}
	if len(matched) == 1 {
		return matched[0], true
	}
	if len(matched) == 0 && strings.Contains(s, string(General)) {
		return General, true
	}
	return General, false
}
