package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Archive  ArchiveConfig
}

// OCRConfig holds text-extraction configuration
type OCRConfig struct {
	Pdftotext           string
	Pdftoppm            string
	Tesseract           string
	TesseractLang       string
	TessdataDir         string
	DPI                 int
	MaxPages            int
	EnableTSVConfidence bool
}

// LLMConfig holds completion-service configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds thresholds and retry behavior for the pipeline
type PipelineConfig struct {
	MinConfidence       float32
	MaxRetries          int
	RetryBackoff        time.Duration
	SelfConsistencyRuns int
}

// ArchiveConfig holds the record archive location
type ArchiveConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:       getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			EnableTSVConfidence: getEnv("OCR_TSV_CONFIDENCE", "1") != "0",
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			MinConfidence:       getEnvAsFloat32("PIPELINE_MIN_CONFIDENCE", 0.60),
			MaxRetries:          getEnvAsInt("PIPELINE_MAX_RETRIES", 2),
			RetryBackoff:        getEnvAsDuration("PIPELINE_RETRY_BACKOFF", 250*time.Millisecond),
			SelfConsistencyRuns: getEnvAsInt("PIPELINE_SELF_CONSISTENCY_RUNS", 0),
		},
		Archive: ArchiveConfig{
			Path: getEnv("ARCHIVE_DB_PATH", "./docextract.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Pipeline.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_MAX_RETRIES must be >= 0", ErrInvalidInput)
	}
	if c.Pipeline.MinConfidence < 0 || c.Pipeline.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_MIN_CONFIDENCE must be in [0,1]", ErrInvalidInput)
	}
	return nil
}
