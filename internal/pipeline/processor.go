// Package pipeline wires the extraction stages together: text extraction,
// classification, schema resolution, field extraction, validation and
// confidence aggregation. Each stage is injected so callers (and tests) can
// swap the OCR and LLM backends.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MohammedZaid-AI/docextract/internal/classify"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/confidence"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/fields"
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
	"github.com/MohammedZaid-AI/docextract/internal/validate"
)

// Config tunes pipeline behavior that is not owned by an individual stage.
type Config struct {
	// MinConfidence is the review threshold: records aggregating below it
	// are flagged NeedsReview.
	MinConfidence float32
	// SelfConsistencyRuns > 1 runs the field extractor that many times and
	// merges the results. 0 or 1 means a single pass.
	SelfConsistencyRuns int
}

// Processor runs a document through every stage and produces a frozen
// record.
type Processor struct {
	cfg        Config
	text       document.TextExtractor
	classifier *classify.Classifier
	registry   *schema.Registry
	extractor  *fields.Extractor
	logger     *slog.Logger
}

func New(text document.TextExtractor, classifier *classify.Classifier, registry *schema.Registry, extractor *fields.Extractor, cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		text:       text,
		classifier: classifier,
		registry:   registry,
		extractor:  extractor,
		logger:     logger,
	}
}

// Process runs one document end to end. A non-nil custom definition
// overrides the registry schema for whatever type the classifier detects;
// it is validated up front so a malformed schema fails before any OCR or
// model call is spent.
func (p *Processor) Process(ctx context.Context, doc document.RawDocument, custom *schema.Definition) (*record.Record, error) {
	if custom != nil {
		if err := custom.Validate(); err != nil {
			return nil, err
		}
	}

	text, err := p.text.ExtractText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if text.Empty() {
		return nil, fmt.Errorf("%w: document %q produced no text", common.ErrEmptyInput, doc.Name)
	}

	detected, clsWarnings, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	def, err := p.registry.Resolve(detected, custom)
	if err != nil {
		return nil, err
	}
	p.logger.Info("pipeline.classified",
		"name", doc.Name,
		"type", detected,
		"schema_fields", len(def.Fields),
	)

	extracted, err := p.extractFields(ctx, text, def)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	rec := record.New(detected)
	for _, w := range clsWarnings {
		rec.AddWarning(w)
	}
	for name, fv := range extracted {
		rec.SetField(name, fv)
	}

	validate.Apply(rec, def)
	rec.OverallConfidence = confidence.Aggregate(rec, def)
	rec.NeedsReview = rec.OverallConfidence < p.cfg.MinConfidence
	rec.Freeze()

	p.logger.Info("pipeline.done",
		"name", doc.Name,
		"type", rec.DetectedType,
		"overall_confidence", rec.OverallConfidence,
		"warnings", len(rec.Warnings),
		"needs_review", rec.NeedsReview,
	)
	return rec, nil
}

func (p *Processor) extractFields(ctx context.Context, text document.ExtractedText, def schema.Definition) (map[string]record.FieldValue, error) {
	if p.cfg.SelfConsistencyRuns > 1 {
		return p.extractor.ExtractConsistent(ctx, text, def, p.cfg.SelfConsistencyRuns)
	}
	return p.extractor.Extract(ctx, text, def)
}
