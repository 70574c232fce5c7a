package retry

import (
	"context"
	"time"

	"github.com/spetersoncode/a2ui"
)

// effectiveDelay returns the delay to use, honoring the peer's Retry-After if larger.
func effectiveDelay(configuredDelay time.Duration, err error) time.Duration {
	serverDelay := a2ui.RetryAfterOf(err)
	if serverDelay > configuredDelay {
		return serverDelay
	}
	return configuredDelay
}

// Do executes fn with retry logic. Only transient errors are retried.
// It respects context cancellation during backoff waits.
// Returns the result on success, or the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !IsTransient(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < attempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, delay, err)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}
