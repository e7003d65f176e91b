package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docoutline/internal/headers"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *headers.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// retryProvider retries retryable completion errors with backoff.
type retryProvider struct {
	headers.Provider
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

// WithRetry wraps p so that rate limits and server errors are retried up to
// MaxRetries times.
func WithRetry(p headers.Provider, log *slog.Logger) headers.Provider {
	if log == nil {
		log = slog.Default()
	}
	return &retryProvider{Provider: p, log: log, backoff: Backoff}
}

func (r *retryProvider) Complete(ctx context.Context, req headers.Request) (string, error) {
	var out string
	var lastErr error
	for attempt := range MaxRetries {
		out, lastErr = r.Provider.Complete(ctx, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			return out, lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		r.log.Warn("retryable completion error", "provider", r.Name(), "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
