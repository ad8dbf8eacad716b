package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MohammedZaid-AI/docextract/internal/document"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (document.ExtractedText, error) {
	page, err := e.ocrImagePage(ctx, path)
	if err != nil {
		return document.ExtractedText{}, err
	}
	return document.ExtractedText{Pages: []document.Page{page}, Method: "image-ocr"}, nil
}

// ocrImagePage runs tesseract over one image and blends the TSV word
// confidence (when enabled) with a content heuristic.
func (e *Extractor) ocrImagePage(ctx context.Context, path string) (document.Page, error) {
	txt, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return document.Page{}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if e.cfg.EnableTSVConfidence {
		if c, err2 := e.tesseractTSVConfidence(ctx, path); err2 == nil {
			ocrConf = c
		} else {
			e.logger.Warn("ocr.tsv_confidence_failed", "error", err2)
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight measured OCR confidence higher when present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return document.Page{Text: txt, Confidence: conf}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean word
// confidence in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w (%s)", err, truncate(string(errb), 512))
	}
	lines := strings.Split(string(out), "\n")
	// TSV columns: level..height conf text; conf is the 11th
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil
}
