package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRetryWithBackoff_SucceedsAfterTransientError(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &statusError{StatusCode: 503}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("retryWithBackoff failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	wantErr := &statusError{StatusCode: 404}
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 3, time.Millisecond, func() error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the 404 status error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (4xx must not be retried)", attempts)
	}
}

func TestRetryWithBackoff_Exhaustion(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), zerolog.Nop(), 2, time.Millisecond, func() error {
		attempts++
		return &statusError{StatusCode: 500}
	})

	if err == nil {
		t.Fatal("retryWithBackoff should return the last error after exhaustion")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := retryWithBackoff(ctx, zerolog.Nop(), 5, time.Hour, func() error {
		attempts++
		cancel() // cancel during the first backoff wait
		return &statusError{StatusCode: 500}
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("err = %v, want ErrContextCancelled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
