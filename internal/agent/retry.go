package agent

import (
	"context"
	"time"

	"github.com/bingitech/pressroom/internal/provider"
)

const (
	// maxAttempts bounds rate-limit retries. Budget-conscious: a provider
	// that keeps throttling fails the agent for this run.
	maxAttempts = 5

	defaultBackoffBase = 500 * time.Millisecond
)

// withRetry runs fn, retrying only rate-limited failures with exponential
// backoff (base 2). InvalidConfig and ProviderError surface immediately;
// context cancellation always wins over the backoff sleep.
func withRetry[T any](ctx context.Context, base time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if base <= 0 {
		base = defaultBackoffBase
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := base << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !provider.IsRetryable(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
