// docbatch processes every supported document in a directory, archives the
// results in the local SQLite store, and writes an XLSX summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/archive"
	"github.com/MohammedZaid-AI/docextract/internal/classify"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/export"
	"github.com/MohammedZaid-AI/docextract/internal/fields"
	"github.com/MohammedZaid-AI/docextract/internal/ingest"
	"github.com/MohammedZaid-AI/docextract/internal/llm/openai"
	"github.com/MohammedZaid-AI/docextract/internal/ocr"
	"github.com/MohammedZaid-AI/docextract/internal/pipeline"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to process documents from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite archive")
		workers    = flag.Int("workers", 4, "number of documents processed in parallel")
		watch      = flag.Bool("watch", false, "keep running and process documents as they appear")
		schemaPath = flag.String("schema", "", "custom schema JSON file applied to every document (optional)")
		fromStr    = flag.String("from", "", "export from date YYYY-MM-DD")
		toStr      = flag.String("to", "", "export to date YYYY-MM-DD")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extractions.xlsx")
	}
	if *workers < 1 {
		*workers = 1
	}

	var from, to *time.Time
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		from = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		to = &parsed
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var custom *schema.Definition
	if *schemaPath != "" {
		raw, err := os.ReadFile(*schemaPath)
		if err != nil {
			logger.Error("cannot read schema file", "path", *schemaPath, "error", err)
			os.Exit(1)
		}
		custom, err = schema.ParseDefinition(raw)
		if err != nil {
			logger.Error("invalid schema", "path", *schemaPath, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	dbPath := cfg.Archive.Path
	if *inmem {
		dbPath = ":memory:"
	}
	store, err := archive.Open(dbPath, logger)
	if err != nil {
		logger.Error("failed to open archive", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close archive", "error", err)
		}
	}()

	proc := buildProcessor(cfg, logger)

	var processed, failures, review atomic.Int64
	handle := func(ctx context.Context, path string) {
		bytes, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			failures.Add(1)
			return
		}
		rec, err := proc.Process(ctx, document.RawDocument{
			Bytes: bytes,
			Name:  filepath.Base(path),
			Kind:  constants.MapExtToKind(filepath.Ext(path)),
		}, custom)
		if err != nil {
			logger.Error("failed to process file", "path", path, "error", err)
			failures.Add(1)
			return
		}
		if _, err := store.Save(ctx, filepath.Base(path), rec); err != nil {
			logger.Error("failed to archive record", "path", path, "error", err)
			failures.Add(1)
			return
		}
		processed.Add(1)
		if rec.NeedsReview {
			review.Add(1)
		}
	}

	if *watch {
		runWatch(ctx, *dir, *workers, handle, logger)
		return
	}

	paths, err := ingest.Scan(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(paths), "workers", *workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for _, path := range paths {
		g.Go(func() error {
			handle(gctx, path)
			return nil
		})
	}
	// workers never return errors, but waiting also surfaces ctx cancellation
	if err := g.Wait(); err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(store, logger)
	xlsxBytes, err := exportService.ExportXLSX(ctx, "", from, to)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_scanned", len(paths),
		"files_processed", processed.Load(),
		"failures", failures.Load(),
		"needs_review", review.Load(),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", len(paths))
	fmt.Printf("- Files processed: %d\n", processed.Load())
	fmt.Printf("- Failures: %d\n", failures.Load())
	fmt.Printf("- Flagged for review: %d\n", review.Load())
	fmt.Printf("- Output: %s\n", *out)
}

// runWatch processes documents as they land in the directory until
// interrupted.
func runWatch(ctx context.Context, dir string, workers int, handle func(context.Context, string), logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    2 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("watching for documents", "dir", dir, "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	go func() {
		for err := range errs {
			logger.Warn("watcher reported error", "error", err)
		}
	}()
	for path := range paths {
		g.Go(func() error {
			handle(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	logger.Info("watch stopped")
}

func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	textExtractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:           cfg.OCR.Pdftotext,
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		DPI:                 cfg.OCR.DPI,
		MaxPages:            cfg.OCR.MaxPages,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
	}, logger)

	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	classifier := classify.New(completer, classify.Config{
		MaxRetries:   cfg.Pipeline.MaxRetries,
		RetryBackoff: cfg.Pipeline.RetryBackoff,
	}, logger)

	extractor := fields.New(completer, fields.Config{
		MaxRetries:   cfg.Pipeline.MaxRetries,
		RetryBackoff: cfg.Pipeline.RetryBackoff,
	}, logger)

	return pipeline.New(textExtractor, classifier, schema.NewRegistry(), extractor, pipeline.Config{
		MinConfidence:       cfg.Pipeline.MinConfidence,
		SelfConsistencyRuns: cfg.Pipeline.SelfConsistencyRuns,
	}, logger)
}
