package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
)

// Config for the exec-based text extractor.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Extractor implements document.TextExtractor on top of poppler + tesseract.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// ExtractText picks a strategy based on the document's media kind and returns
// the page texts. Corrupt or unsupported input fails with
// common.ErrUnreadableDocument.
func (e *Extractor) ExtractText(ctx context.Context, doc document.RawDocument) (document.ExtractedText, error) {
	start := time.Now()

	kind, err := doc.ResolveKind()
	if err != nil {
		return document.ExtractedText{}, err
	}
	e.logger.Debug("ocr.start", "name", doc.Name, "kind", kind, "bytes", len(doc.Bytes))

	path, cleanup, err := e.spool(doc.Bytes, kind)
	if err != nil {
		return document.ExtractedText{}, err
	}
	defer cleanup()

	var res document.ExtractedText
	switch kind {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	default:
		return document.ExtractedText{}, fmt.Errorf("%w: unsupported media kind %q", common.ErrUnreadableDocument, kind)
	}
	if err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrUnreadableDocument, err)
	}
	res.Language = e.cfg.TesseractLang
	res.Duration = time.Since(start)
	e.logger.Info("ocr.ok",
		"name", doc.Name,
		"method", res.Method,
		"pages", len(res.Pages),
		"confidence", res.Confidence(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// spool writes document bytes to a temp file so the external tools can read
// them.
func (e *Extractor) spool(b []byte, kind constants.MediaKind) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "docextract-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmp_cleanup_failed", "dir", tmpDir, "error", err)
		}
	}
	name := "input.png"
	if kind == constants.PDF {
		name = "input.pdf"
	}
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
