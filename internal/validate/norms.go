package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateFormats is the ordered list of accepted date layouts: ISO 8601 first,
// then common locale variants. Ambiguous slash dates resolve US-style
// (month first) because the earlier layout wins.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var (
	reEmail     = regexp.MustCompile(`^[\w.\-+]+@[\w.\-]+\.\w+$`)
	rePhoneJunk = regexp.MustCompile(`[\s\-().]`)
	reDigits    = regexp.MustCompile(`\d`)
	reNumJunk   = regexp.MustCompile(`[$€£₹¥,\s]`)
	reISO4217   = regexp.MustCompile(`^[A-Z]{3}$`)
)

// symbolToISO maps unambiguous currency symbols to ISO 4217 codes. "¥" is
// deliberately absent (JPY vs CNY).
var symbolToISO = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"₹": "INR",
}

func normalizeDate(value any) (any, result) {
	s, okStr := value.(string)
	if !okStr {
		return value, invalid("has unexpected type for date: %v", value)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), ok()
		}
	}
	return s, invalid("has invalid date: %s", s)
}

func normalizeNumeric(value any) (any, result) {
	switch t := value.(type) {
	case float64:
		return t, ok()
	case string:
		s := reNumJunk.ReplaceAllString(strings.TrimSpace(t), "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return t, invalid("is not numeric: %s", t)
		}
		return d.InexactFloat64(), ok()
	default:
		return value, invalid("is not numeric: %v", value)
	}
}

func normalizeEmail(value any) (any, result) {
	s, okStr := value.(string)
	if !okStr {
		return value, invalid("has unexpected type for email: %v", value)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !reEmail.MatchString(s) {
		return s, invalid("is not a valid email: %s", s)
	}
	return s, ok()
}

func normalizePhone(value any) (any, result) {
	s, okStr := value.(string)
	if !okStr {
		return value, invalid("has unexpected type for phone: %v", value)
	}
	stripped := rePhoneJunk.ReplaceAllString(strings.TrimSpace(s), "")
	digits := len(reDigits.FindAllString(stripped, -1))
	if digits < 7 {
		return s, invalid("is not a valid phone number: %s", s)
	}
	return stripped, ok()
}

func normalizeCurrency(value any) (any, result) {
	s, okStr := value.(string)
	if !okStr {
		return value, invalid("has unexpected type for currency: %v", value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return s, invalid("is empty")
	}
	if iso, found := symbolToISO[s]; found {
		return iso, ok()
	}
	upper := strings.ToUpper(s)
	if reISO4217.MatchString(upper) {
		return upper, ok()
	}
	// unmapped symbol stays untouched; a warning, not a hard failure
	return s, warn("has unresolved currency symbol: %s", s)
}

func normalizeString(value any, required bool) (any, result) {
	s, okStr := value.(string)
	if !okStr {
		if f, isNum := value.(float64); isNum {
			return fmt.Sprintf("%v", f), ok()
		}
		return value, invalid("has unexpected type: %v", value)
	}
	s = strings.TrimSpace(s)
	if s == "" && required {
		return s, invalid("is empty")
	}
	return s, ok()
}

func normalizeList(value any, required bool) (any, result) {
	var items []string
	switch t := value.(type) {
	case []string:
		items = t
	case string:
		// a lone string becomes a single-element list
		items = []string{t}
	default:
		return value, invalid("has unexpected type for list: %v", value)
	}
	out := make([]string, 0, len(items))
	for _, el := range items {
		el = strings.TrimSpace(el)
		if el == "" {
			continue
		}
		out = append(out, el)
	}
	if len(out) == 0 && required {
		return out, invalid("is empty")
	}
	return out, ok()
}
