package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/classify"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/fields"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// fakeText returns a fixed document text without touching any OCR binary.
type fakeText struct {
	text string
	err  error
}

func (f fakeText) ExtractText(ctx context.Context, doc document.RawDocument) (document.ExtractedText, error) {
	if f.err != nil {
		return document.ExtractedText{}, f.err
	}
	return document.ExtractedText{
		Pages:  []document.Page{{Text: f.text, Confidence: 0.9}},
		Method: "fake",
	}, nil
}

// routingCompleter answers the classification prompt with a label and every
// other prompt with a canned extraction payload.
type routingCompleter struct {
	label        string
	extraction   string
	extractCalls int
}

func (r *routingCompleter) Complete(ctx context.Context, prompt, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.Contains(prompt, "document classifier") {
		return r.label, nil
	}
	r.extractCalls++
	return r.extraction, nil
}

func newProcessor(completer *routingCompleter, cfg Config) *Processor {
	return New(
		fakeText{text: "Bright Caterers\nDate: 07/01/2016\nTotal: 5500.00"},
		classify.New(completer, classify.Config{RetryBackoff: 1}, nil),
		schema.NewRegistry(),
		fields.New(completer, fields.Config{RetryBackoff: 1}, nil),
		cfg,
		nil,
	)
}

func TestProcessReceiptEndToEnd(t *testing.T) {
	completer := &routingCompleter{
		label: "receipt",
		extraction: `{
			"store_name":   {"value": "Bright Caterers", "confidence": 0.95},
			"date":         {"value": "2016-07-01", "confidence": 0.9},
			"total_amount": {"value": 5500.0, "confidence": 0.9}
		}`,
	}
	p := newProcessor(completer, Config{MinConfidence: 0.5})

	rec, err := p.Process(context.Background(), document.RawDocument{Name: "r.pdf", Kind: constants.PDF}, nil)
	require.NoError(t, err)

	assert.True(t, rec.Frozen())
	assert.Equal(t, constants.Receipt, rec.DetectedType)
	assert.Equal(t, "Bright Caterers", rec.Fields["store_name"].Value)
	assert.Equal(t, "2016-07-01", rec.Fields["date"].Value)
	assert.Equal(t, 5500.0, rec.Fields["total_amount"].Value)
	// optional items field was synthesized and survives validation
	assert.Contains(t, rec.Fields, "items")
	assert.Greater(t, rec.OverallConfidence, float32(0.5))
	assert.False(t, rec.NeedsReview)
}

func TestProcessLowConfidenceFlagsReview(t *testing.T) {
	completer := &routingCompleter{
		label: "receipt",
		extraction: `{
			"store_name":   {"value": "Bright Caterers", "confidence": 0.2},
			"date":         {"value": null, "confidence": 0.0},
			"total_amount": {"value": null, "confidence": 0.0}
		}`,
	}
	p := newProcessor(completer, Config{MinConfidence: 0.6})

	rec, err := p.Process(context.Background(), document.RawDocument{Name: "r.pdf", Kind: constants.PDF}, nil)
	require.NoError(t, err)
	assert.True(t, rec.NeedsReview)
	assert.NotEmpty(t, rec.Warnings, "missing required fields should produce warnings")
}

func TestProcessEmptyTextIsFatal(t *testing.T) {
	completer := &routingCompleter{label: "receipt", extraction: "{}"}
	p := New(
		fakeText{text: "   \n  "},
		classify.New(completer, classify.Config{RetryBackoff: 1}, nil),
		schema.NewRegistry(),
		fields.New(completer, fields.Config{RetryBackoff: 1}, nil),
		Config{MinConfidence: 0.5},
		nil,
	)

	_, err := p.Process(context.Background(), document.RawDocument{Name: "blank.png", Kind: constants.IMAGE}, nil)
	assert.ErrorIs(t, err, common.ErrEmptyInput)
	assert.Zero(t, completer.extractCalls, "extractor must not run on empty input")
}

func TestProcessUnreadableDocument(t *testing.T) {
	completer := &routingCompleter{label: "receipt", extraction: "{}"}
	p := New(
		fakeText{err: fmt.Errorf("%w: garbage bytes", common.ErrUnreadableDocument)},
		classify.New(completer, classify.Config{RetryBackoff: 1}, nil),
		schema.NewRegistry(),
		fields.New(completer, fields.Config{RetryBackoff: 1}, nil),
		Config{MinConfidence: 0.5},
		nil,
	)

	_, err := p.Process(context.Background(), document.RawDocument{Name: "junk.bin"}, nil)
	assert.ErrorIs(t, err, common.ErrUnreadableDocument)
}

func TestProcessInvalidCustomSchemaFailsBeforeAnyCall(t *testing.T) {
	completer := &routingCompleter{label: "receipt", extraction: "{}"}
	p := newProcessor(completer, Config{MinConfidence: 0.5})

	bad := &schema.Definition{Name: "custom", Fields: map[string]schema.FieldSpec{
		"amount": {Type: "money", Required: true}, // not a recognized semantic type
	}}
	_, err := p.Process(context.Background(), document.RawDocument{Name: "r.pdf", Kind: constants.PDF}, bad)
	assert.ErrorIs(t, err, common.ErrInvalidSchema)
	assert.Zero(t, completer.extractCalls)
}

func TestProcessCustomSchemaOverridesBuiltin(t *testing.T) {
	completer := &routingCompleter{
		label: "receipt",
		extraction: `{
			"vendor": {"value": "Bright Caterers", "confidence": 0.9},
			"contact_email": {"value": "SALES@bright.example ", "confidence": 0.8}
		}`,
	}
	p := newProcessor(completer, Config{MinConfidence: 0.5})

	custom := &schema.Definition{Name: "vendor_card", Fields: map[string]schema.FieldSpec{
		"vendor":        {Type: schema.TypeString, Required: true},
		"contact_email": {Type: schema.TypeEmail, Required: false},
	}}
	rec, err := p.Process(context.Background(), document.RawDocument{Name: "r.pdf", Kind: constants.PDF}, custom)
	require.NoError(t, err)

	// record keys follow the custom schema, not the built-in receipt one
	assert.Len(t, rec.Fields, 2)
	assert.NotContains(t, rec.Fields, "store_name")
	assert.Equal(t, "sales@bright.example", rec.Fields["contact_email"].Value)
}

func TestProcessCancelledContext(t *testing.T) {
	completer := &routingCompleter{label: "receipt", extraction: "{}"}
	p := newProcessor(completer, Config{MinConfidence: 0.5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx, document.RawDocument{Name: "r.pdf", Kind: constants.PDF}, nil)
	assert.Error(t, err)
}
