package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// RawDocument is the caller-supplied input: opaque bytes plus a declared media
// kind. When Kind is empty it is sniffed from the content. A RawDocument is
// consumed exactly once per pipeline invocation and never mutated.
type RawDocument struct {
	Bytes []byte
	Kind  constants.MediaKind
	Name  string // optional display name, used only in logs
}

// Page is one page of extracted text. Confidence is the OCR-reported score in
// 0..1, or 0 when the extraction method does not report one.
type Page struct {
	Text       string
	Confidence float32
}

// ExtractedText is the ordered page texts produced by a TextExtractor.
// Read-only after production.
type ExtractedText struct {
	Pages    []Page
	Method   string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// TextExtractor is stage 1: document bytes -> text.
type TextExtractor interface {
	ExtractText(ctx context.Context, doc RawDocument) (ExtractedText, error)
}

// Text returns the concatenation of all page texts.
func (t ExtractedText) Text() string {
	parts := make([]string, 0, len(t.Pages))
	for _, p := range t.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Empty reports whether the extraction produced no usable text.
func (t ExtractedText) Empty() bool {
	return strings.TrimSpace(t.Text()) == ""
}

// Confidence returns the mean of reported page confidences, ignoring pages
// with no reported score. Returns 0 when nothing was reported.
func (t ExtractedText) Confidence() float32 {
	var sum float64
	var n int
	for _, p := range t.Pages {
		if p.Confidence > 0 {
			sum += float64(p.Confidence)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / float64(n))
}

// DetectKind sniffs the media kind from content bytes.
func DetectKind(b []byte) (constants.MediaKind, error) {
	mt := mimetype.Detect(b)
	switch {
	case mt.Is("application/pdf"):
		return constants.PDF, nil
	case strings.HasPrefix(mt.String(), "image/"):
		return constants.IMAGE, nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %s", common.ErrUnreadableDocument, mt.String())
	}
}

// ResolveKind returns the declared kind, sniffing it when absent.
func (d RawDocument) ResolveKind() (constants.MediaKind, error) {
	if d.Kind != "" {
		return d.Kind, nil
	}
	if len(d.Bytes) == 0 {
		return "", fmt.Errorf("%w: empty document", common.ErrUnreadableDocument)
	}
	return DetectKind(d.Bytes)
}
