package fields

import (
	"context"
	"fmt"

	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// ExtractConsistent runs the extraction `runs` times and merges the results:
// the first non-null value per field wins, confidences are averaged across
// runs. A single failed run is tolerated as long as at least one run
// succeeds; if every run fails the last error is returned.
func (e *Extractor) ExtractConsistent(ctx context.Context, text document.ExtractedText, def schema.Definition, runs int) (map[string]record.FieldValue, error) {
	if runs <= 1 {
		return e.Extract(ctx, text, def)
	}

	var results []map[string]record.FieldValue
	var lastErr error
	for i := 0; i < runs; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m, err := e.Extract(ctx, text, def)
		if err != nil {
			lastErr = err
			e.logger.Warn("extract.consistency_run_failed", "run", i+1, "error", err)
			continue
		}
		results = append(results, m)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d extraction runs failed: %w", runs, lastErr)
	}
	e.logger.Info("extract.consistency_merge", "runs", runs, "valid_runs", len(results))
	return mergeRuns(results, def), nil
}

func mergeRuns(results []map[string]record.FieldValue, def schema.Definition) map[string]record.FieldValue {
	out := make(map[string]record.FieldValue, len(def.Fields))
	for _, name := range def.FieldNames() {
		var value any
		var confSum float64
		var n int
		for _, run := range results {
			fv, ok := run[name]
			if !ok {
				continue
			}
			if value == nil && fv.Value != nil {
				value = fv.Value
			}
			confSum += float64(fv.Confidence)
			n++
		}
		var conf float32
		if n > 0 {
			conf = record.ClampConfidence(float32(confSum / float64(n)))
		}
		out[name] = record.FieldValue{Value: value, Confidence: conf, Valid: true}
	}
	return out
}
