package confidence

import (
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// requiredWeight doubles the contribution of required fields relative to
// optional ones in the confidence mean.
const requiredWeight = 2.0

// Aggregate computes the overall document confidence: the weighted mean of
// field confidences multiplied by a completeness factor, the share of
// required fields that are present and valid. A record missing several
// required fields scores low even when the present fields are individually
// confident. Deterministic and pure.
func Aggregate(rec *record.Record, def schema.Definition) float32 {
	var weighted, weightSum float64
	var reqTotal, reqOK int

	for name, spec := range def.Fields {
		fv := rec.Fields[name]
		w := 1.0
		if spec.Required {
			w = requiredWeight
			reqTotal++
			if fv.Value != nil && fv.Valid {
				reqOK++
			}
		}
		weighted += w * float64(fv.Confidence)
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}

	mean := weighted / weightSum
	completeness := 1.0
	if reqTotal > 0 {
		completeness = float64(reqOK) / float64(reqTotal)
	}
	return record.ClampConfidence(float32(mean * completeness))
}
