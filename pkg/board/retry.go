package board

import (
	"context"
	"time"

	"github.com/sqing33/stickyboard/pkg/errors"
)

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors the taxonomy marks retryable (CONFLICT, where the
// server rolled back fully); other errors are returned immediately. The
// delay doubles after each failed attempt. Returns the last error if all
// attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return retry(ctx, attempts, delay, errors.Retryable, fn)
}

// RetryWithBackoff is a convenience wrapper around [Retry] with defaults
// tuned for interactive use: 3 attempts with 250ms initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, 250*time.Millisecond, fn)
}

// retry is the loop behind [Retry] with a caller-supplied predicate
// deciding which errors are worth another attempt.
func retry(ctx context.Context, attempts int, delay time.Duration, retryable func(error) bool, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !retryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
