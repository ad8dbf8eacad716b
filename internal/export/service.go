// Package export renders archived extraction results as XLSX workbooks.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MohammedZaid-AI/docextract/internal/archive"
	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// Service is a tiny façade over the archive that produces XLSX bytes for
// exports.
type Service struct {
	store  *archive.Store
	logger *slog.Logger
}

func NewService(store *archive.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given document type
// and date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all archived records of that type.
// An empty docType exports everything.
func (s *Service) ExportXLSX(ctx context.Context, docType string, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	filter := archive.Filter{DetectedType: docType}
	if from != nil {
		filter.From = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	}
	if to != nil {
		filter.To = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
	}
	if !filter.From.IsZero() && filter.To.IsZero() {
		today := time.Now().UTC()
		filter.To = time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
	}

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, common.WrapError(err, "query archive")
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Processed At",
		"Source",
		"Detected Type",
		"Overall Confidence",
		"Needs Review",
		"Warnings",
		"Fields",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		warnings, fieldsSummary := summarizePayload(e.Payload)

		write(1, e.CreatedAt.Format("2006-01-02 15:04"))
		write(2, e.SourceName)
		write(3, e.DetectedType)
		write(4, fmt.Sprintf("%.2f", e.OverallConfidence))
		review := ""
		if e.NeedsReview {
			review = "yes"
		}
		write(5, review)
		write(6, truncate(warnings, 140))
		write(7, truncate(fieldsSummary, 200))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 32) // source
	_ = f.SetColWidth(sheet, "C", "C", 14) // type
	_ = f.SetColWidth(sheet, "D", "E", 14) // confidence / review
	_ = f.SetColWidth(sheet, "F", "F", 48) // warnings
	_ = f.SetColWidth(sheet, "G", "G", 64) // fields

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "xlsx write")
	}

	s.logger.Info("export.xlsx.ok",
		"doc_type", docType,
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// summarizePayload flattens the archived record JSON into human-readable
// warning and field columns.
func summarizePayload(payload json.RawMessage) (warnings string, fields string) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", ""
	}

	if raw, ok := doc["validation_warnings"]; ok {
		var ws []string
		if json.Unmarshal(raw, &ws) == nil {
			warnings = strings.Join(ws, "; ")
		}
	}

	var parts []string
	for key, raw := range doc {
		switch key {
		case "detected_type", "overall_confidence", "validation_warnings", "needs_review":
			continue
		}
		var fv struct {
			Value any `json:"value"`
		}
		if json.Unmarshal(raw, &fv) != nil || fv.Value == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", key, fv.Value))
	}
	return warnings, strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
