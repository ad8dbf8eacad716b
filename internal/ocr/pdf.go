package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MohammedZaid-AI/docextract/internal/document"
)

// minCharsPerPage decides when native pdf text is too sparse and the pages
// should be rasterized and OCR'd instead (scanned PDFs).
const minCharsPerPage = 32

func (e *Extractor) extractPDF(ctx context.Context, path string) (document.ExtractedText, error) {
	res, err := e.pdfNativeText(ctx, path)
	if err == nil && !tooSparse(res.Pages) {
		return res, nil
	}
	if err != nil {
		e.logger.Warn("ocr.pdf_text_failed", "error", err)
	} else {
		e.logger.Debug("ocr.pdf_text_sparse", "pages", len(res.Pages))
	}
	return e.pdfRasterOCR(ctx, path)
}

// pdfNativeText pulls the embedded text layer.
func (e *Extractor) pdfNativeText(ctx context.Context, path string) (document.ExtractedText, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return document.ExtractedText{}, fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	// a form-feed \f is the page separator
	raw := strings.Split(string(out), "\f")
	pages := make([]document.Page, 0, len(raw))
	for _, p := range raw {
		p = Normalize(p)
		if p == "" && len(raw) > 1 {
			continue
		}
		pages = append(pages, document.Page{Text: p, Confidence: 1.0})
	}
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	return document.ExtractedText{Pages: pages, Method: "pdf-text"}, nil
}

// pdfRasterOCR renders each page to PNG and runs tesseract over it.
func (e *Extractor) pdfRasterOCR(ctx context.Context, path string) (document.ExtractedText, error) {
	tmpDir, err := os.MkdirTemp("", "docextract-pp-*")
	if err != nil {
		return document.ExtractedText{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tmp_cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return document.ExtractedText{}, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return document.ExtractedText{}, fmt.Errorf("pdftoppm produced no images")
	}

	var pages []document.Page
	var warns []string
	for _, img := range matches {
		page, err := e.ocrImagePage(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		pages = append(pages, page)
	}
	if len(pages) == 0 {
		return document.ExtractedText{}, fmt.Errorf("ocr produced no pages: %s", strings.Join(warns, "; "))
	}
	return document.ExtractedText{Pages: pages, Method: "pdf-ocr", Warnings: warns}, nil
}

func tooSparse(pages []document.Page) bool {
	var chars int
	for _, p := range pages {
		chars += len(strings.TrimSpace(p.Text))
	}
	if len(pages) == 0 {
		return true
	}
	return chars/len(pages) < minCharsPerPage
}
