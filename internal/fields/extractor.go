package fields

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/llm"
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// envelopeSchema is the structural contract on the model response: an object
// whose members are objects carrying at least a 'value' key.
var envelopeSchema = map[string]any{
	"type": "object",
	"additionalProperties": map[string]any{
		"type":     "object",
		"required": []any{"value"},
		"properties": map[string]any{
			"confidence": map[string]any{"type": "number"},
		},
	},
}

// Config holds retry behavior for the extraction call.
type Config struct {
	MaxRetries   int           // transport-level retries, default 2
	RetryBackoff time.Duration // default 250ms
}

// Extractor runs schema-guided structured extraction against the completion
// service and shapes the response into per-field values with confidences.
// Only the transport is retried; a response that stays unparseable after one
// repair pass fails the whole extraction, since a corrupted structured
// response cannot be partially trusted.
type Extractor struct {
	completer llm.Completer
	cfg       Config
	logger    *slog.Logger
}

func New(completer llm.Completer, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	return &Extractor{completer: completer, cfg: cfg, logger: logger}
}

// Extract returns one FieldValue per schema field. Fields absent from the
// response are synthesized as null with zero confidence; response keys not in
// the schema are dropped.
func (e *Extractor) Extract(ctx context.Context, text document.ExtractedText, def schema.Definition) (map[string]record.FieldValue, error) {
	sys := BuildSystemPrompt(def)
	user := BuildUserPrompt(text.Text())

	start := time.Now()
	e.logger.Info("extract.start", "schema", def.Name, "fields", len(def.Fields), "text_len", len(text.Text()))

	raw, err := llm.WithRetry(ctx, e.logger, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) (string, error) {
		return e.completer.Complete(ctx, sys, user)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", common.ErrExtractionParse, err)
	}

	envelope, err := parseEnvelope(raw)
	if err != nil {
		e.logger.Error("extract.parse_failed", "schema", def.Name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	out := shapeFields(envelope, def, e.logger)
	e.logger.Info("extract.ok", "schema", def.Name, "fields", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

type rawField struct {
	Value      json.RawMessage `json:"value"`
	Confidence *float64        `json:"confidence"`
}

// parseEnvelope parses the model response strictly, applying at most one
// repair pass before giving up.
func parseEnvelope(raw string) (map[string]rawField, error) {
	env, err := decodeEnvelope([]byte(raw))
	if err == nil {
		return env, nil
	}
	repaired := Repair(raw)
	env, err = decodeEnvelope([]byte(repaired))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtractionParse, err)
	}
	return env, nil
}

func decodeEnvelope(data []byte) (map[string]rawField, error) {
	if err := schema.ValidateJSON(envelopeSchema, data); err != nil {
		return nil, err
	}
	var env map[string]rawField
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env, nil
}

// shapeFields builds the field map: schema keys only, confidence clamped,
// values coerced to string / float64 / []string / nil. Deeper type coercion
// (numeric strings, date formats) is the validator's job.
func shapeFields(envelope map[string]rawField, def schema.Definition, logger *slog.Logger) map[string]record.FieldValue {
	out := make(map[string]record.FieldValue, len(def.Fields))

	var dropped []string
	for key := range envelope {
		if _, ok := def.Fields[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	if len(dropped) > 0 {
		logger.Warn("extract.dropped_unknown_keys", "keys", dropped)
	}

	for _, name := range def.FieldNames() {
		rf, ok := envelope[name]
		if !ok {
			out[name] = record.FieldValue{Value: nil, Confidence: 0, Valid: true}
			continue
		}
		conf := float32(0)
		if rf.Confidence != nil {
			conf = record.ClampConfidence(float32(*rf.Confidence))
		}
		out[name] = record.FieldValue{
			Value:      coerceValue(rf.Value),
			Confidence: conf,
			Valid:      true,
		}
	}
	return out
}

// coerceValue maps raw JSON onto the record value domain: string, float64,
// []string, or nil. List elements that are not strings are re-encoded as
// compact JSON so nothing is silently lost.
func coerceValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case nil, string, float64, bool:
		if b, ok := t.(bool); ok {
			return fmt.Sprintf("%t", b)
		}
		return t
	case []any:
		items := make([]string, 0, len(t))
		for _, el := range t {
			switch ev := el.(type) {
			case string:
				items = append(items, ev)
			case nil:
				continue
			default:
				if b, err := json.Marshal(ev); err == nil {
					items = append(items, string(b))
				}
			}
		}
		return items
	default:
		// object value: keep as compact JSON string
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return nil
	}
}
