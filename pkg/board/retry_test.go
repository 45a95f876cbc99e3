package board

import (
	"context"
	"testing"
	"time"

	"github.com/sqing33/stickyboard/pkg/errors"
)

func TestRetrySucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New(errors.CodeConflict, "lock timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New(errors.CodeValidation, "rect out of bounds")
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("Retry() = %v, want VALIDATION", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New(errors.CodeConflict, "lock timeout")
	})
	if !errors.Is(err, errors.CodeConflict) {
		t.Fatalf("Retry() = %v, want CONFLICT", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return errors.New(errors.CodeConflict, "lock timeout")
	})
	if err != context.Canceled {
		t.Fatalf("Retry() = %v, want context.Canceled", err)
	}
}
