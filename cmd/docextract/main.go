// docextract runs one document through the extraction pipeline and prints
// the resulting record as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/classify"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/fields"
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
		file       = flag.String("file", "", "document to process, PDF or image (required)")
		schemaPath = flag.String("schema", "", "custom schema JSON file (optional)")
		pretty     = flag.Bool("pretty", false, "indent the output JSON")
		debug      = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var custom *schema.Definition
	if *schemaPath != "" {
		raw, err := os.ReadFile(*schemaPath)
		if err != nil {
			printError("Error: cannot read schema file: %v\n", err)
			os.Exit(1)
		}
		custom, err = schema.ParseDefinition(raw)
		if err != nil {
			printError("Error: invalid schema: %v\n", err)
			os.Exit(1)
		}
	}

	bytes, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: cannot read document: %v\n", err)
		os.Exit(1)
	}

	proc := buildProcessor(cfg, logger)

	rec, err := proc.Process(context.Background(), document.RawDocument{
		Bytes: bytes,
		Name:  filepath.Base(*file),
		Kind:  constants.MapExtToKind(filepath.Ext(*file)),
	}, custom)
	if err != nil {
		logger.Error("extraction failed", "file", *file, "error", err)
		os.Exit(1)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(rec, "", "  ")
	} else {
		out, err = json.Marshal(rec)
	}
	if err != nil {
		logger.Error("failed to encode record", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
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
