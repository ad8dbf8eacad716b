package record

import "encoding/json"

// Serialized shape: every field name maps to {value, confidence}, with
// document-level metadata alongside:
//
//	{
//	  "store_name": {"value": "Bright Caterers", "confidence": 0.92},
//	  "detected_type": "receipt",
//	  "overall_confidence": 0.81,
//	  "validation_warnings": [],
//	  "needs_review": false
//	}
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+4)
	for name, fv := range r.Fields {
		out[name] = map[string]any{
			"value":      fv.Value,
			"confidence": fv.Confidence,
		}
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	out["detected_type"] = string(r.DetectedType)
	out["overall_confidence"] = r.OverallConfidence
	out["validation_warnings"] = warnings
	out["needs_review"] = r.NeedsReview
	return json.Marshal(out)
}
