package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/MohammedZaid-AI/docextract/internal/common"
)

// WithRetry invokes call up to 1+retries times with a doubling backoff
// between attempts. Only transient failures (service unavailable, timeout)
// are retried; anything else fails immediately. Honors ctx cancellation
// while backing off.
func WithRetry(ctx context.Context, logger *slog.Logger, retries int, backoff time.Duration, call func(context.Context) (string, error)) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !common.IsTransient(err) {
			return "", err
		}
		logger.Warn("llm.retry", "attempt", attempt+1, "max_attempts", retries+1, "error", err)
	}
	return "", lastErr
}
