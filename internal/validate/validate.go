package validate

import (
	"fmt"

	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// PenaltyFactor demotes the confidence of a value that failed validation.
// A failed value is still potentially useful, so it is halved, never zeroed.
const PenaltyFactor = 0.5

// Apply walks the record fields against the schema and normalizes values in
// place. Pure transformation, no external calls, and it never fails: every
// outcome is a warning plus a confidence adjustment.
//
// After Apply the record's field keys are exactly the schema's declared
// names.
func Apply(rec *record.Record, def schema.Definition) {
	for _, name := range def.FieldNames() {
		spec := def.Fields[name]
		fv, ok := rec.Fields[name]
		if !ok {
			fv = record.FieldValue{Value: nil, Confidence: 0, Valid: true}
		}

		if fv.Value == nil {
			if spec.Required {
				fv.Confidence = 0
				fv.Valid = false
				rec.AddWarning(fmt.Sprintf("%s required but not found", name))
			}
			rec.SetField(name, fv)
			continue
		}

		normalized, res := normalizeField(fv.Value, spec)
		fv.Value = normalized
		switch res.outcome {
		case outcomeOK:
		case outcomeWarn:
			// soft problem: recorded, value kept, confidence untouched
			rec.AddWarning(fmt.Sprintf("%s %s", name, res.message))
		case outcomeInvalid:
			fv.Confidence = record.ClampConfidence(fv.Confidence * PenaltyFactor)
			fv.Valid = false
			rec.AddWarning(fmt.Sprintf("%s %s", name, res.message))
		}
		rec.SetField(name, fv)
	}

	// drop anything the extractor let through that the schema does not declare
	for name := range rec.Fields {
		if _, ok := def.Fields[name]; !ok {
			delete(rec.Fields, name)
		}
	}
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeWarn
	outcomeInvalid
)

type result struct {
	outcome outcome
	message string
}

func ok() result { return result{outcome: outcomeOK} }

func warn(format string, args ...any) result { return result{outcomeWarn, fmt.Sprintf(format, args...)} }

func invalid(format string, args ...any) result { return result{outcomeInvalid, fmt.Sprintf(format, args...)} }

// normalizeField dispatches on the declared semantic type.
func normalizeField(value any, spec schema.FieldSpec) (any, result) {
	switch spec.Type {
	case schema.TypeDate:
		return normalizeDate(value)
	case schema.TypeNumeric:
		return normalizeNumeric(value)
	case schema.TypeEmail:
		return normalizeEmail(value)
	case schema.TypePhone:
		return normalizePhone(value)
	case schema.TypeCurrency:
		return normalizeCurrency(value)
	case schema.TypeList:
		return normalizeList(value, spec.Required)
	default:
		return normalizeString(value, spec.Required)
	}
}
