package fields

import (
	"regexp"
	"strings"
)

var (
	reFence         = regexp.MustCompile("(?m)^```(?:json)?|```$")
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Repair applies the single permitted cleanup pass to a model response that
// failed strict JSON parsing: strip markdown code fences and trailing commas.
func Repair(raw string) string {
	s := reFence.ReplaceAllString(strings.TrimSpace(raw), "")
	s = reTrailingComma.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
