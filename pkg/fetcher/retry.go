package fetcher

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// retryWithBackoff executes fn with exponential backoff. Jitter (±20%) is
// added to each wait to avoid hammering the upstream in lockstep when
// several pages fail at once. Permanent errors abort immediately.
func retryWithBackoff(ctx context.Context, logger zerolog.Logger, maxAttempts int, initialBackoff time.Duration, fn func() error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Debug().Int("attempt", attempt).Msg("Page fetch succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if !shouldRetry(err) {
			return lastErr
		}
		if attempt >= maxAttempts {
			break
		}

		retriesTotal.Inc()
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))

		logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying page fetch after backoff")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jitter):
		}

		backoff *= 2
	}

	return lastErr
}
