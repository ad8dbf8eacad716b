package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/document"
	"github.com/MohammedZaid-AI/docextract/internal/llm"
)

// maxClassifyChars caps how much document text is sent for classification.
const maxClassifyChars = 1500

var classifyPrompt = "You are a document classifier. " +
	"Classify the document text into exactly one of these categories: " +
	strings.Join(constants.DocTypeStrings(), ", ") + ". " +
	"Answer with the single category label only, nothing else."

// Config holds retry behavior for the classification call.
type Config struct {
	MaxRetries   int           // default 2
	RetryBackoff time.Duration // default 250ms
}

// Classifier determines which built-in schema applies to a document.
// Classification errors are non-fatal: ambiguous or failed classification
// degrades to General, since schema-guided extraction still works on the
// generic schema. Only empty input is fatal.
type Classifier struct {
	completer llm.Completer
	cfg       Config
	logger    *slog.Logger
}

func New(completer llm.Completer, cfg Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	return &Classifier{completer: completer, cfg: cfg, logger: logger}
}

// Classify returns the detected document type plus any warnings accrued along
// the way (degraded classification, exhausted retries).
func (c *Classifier) Classify(ctx context.Context, text document.ExtractedText) (constants.DocumentType, []string, error) {
	full := text.Text()
	if strings.TrimSpace(full) == "" {
		return "", nil, common.ErrEmptyInput
	}
	snippet := truncateRunes(full, maxClassifyChars)

	answer, err := llm.WithRetry(ctx, c.logger, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) (string, error) {
		return c.completer.Complete(ctx, classifyPrompt, snippet)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		warn := fmt.Sprintf("classification failed (%v); using %s schema", err, constants.General)
		c.logger.Warn("classify.degraded", "error", err)
		return constants.General, []string{warn}, nil
	}

	dt, ok := constants.CanonicalizeDocType(answer)
	if !ok {
		warn := fmt.Sprintf("ambiguous classification %q; using %s schema", answer, constants.General)
		c.logger.Warn("classify.ambiguous", "answer", answer)
		return dt, []string{warn}, nil
	}
	c.logger.Info("classify.ok", "detected_type", dt)
	return dt, nil, nil
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
