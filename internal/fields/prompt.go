package fields

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// maxDocChars caps how much document text goes into the user message.
const maxDocChars = 3000

// BuildSystemPrompt composes the extraction instructions: the field list with
// semantic types, the {value, confidence} envelope, and formatting rules.
func BuildSystemPrompt(def schema.Definition) string {
	var fieldLines []string
	for _, name := range def.FieldNames() {
		spec := def.Fields[name]
		req := "optional"
		if spec.Required {
			req = "required"
		}
		fieldLines = append(fieldLines, fmt.Sprintf("- %s (%s, %s)", name, spec.Type, req))
	}

	parts := []string{
		"You are an AI that extracts structured data from documents.",
		"Extract the following fields:",
		strings.Join(fieldLines, "\n"),
		"For every field, return a JSON object with 'value' and 'confidence' (0.0-1.0) keys.",
		"If a field cannot be found in the text, use a null value with low confidence.",
		"Fields typed 'list' must be arrays of strings.",
		"Use ISO-8601 dates (YYYY-MM-DD) where you can.",
		"Output ONLY valid JSON in this format, no prose and no markdown:",
		`{"field_name": {"value": "...", "confidence": 0.92}, "field_name2": {"value": "...", "confidence": 0.75}}`,
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the document text, truncated to keep token use
// bounded.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Document text (first ~3k chars):\n")
	if len(text) > maxDocChars {
		cut := maxDocChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		b.WriteString(text[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
