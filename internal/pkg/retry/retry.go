// Package retry wraps exponential backoff for startup dependencies.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	initialInterval = time.Second
	maxInterval     = 16 * time.Second
)

// Do calls op up to attempts times with exponential backoff (1s, 2s, 4s ... capped at 16s).
// It stops early when ctx is cancelled. The last error is returned.
func Do(ctx context.Context, name string, attempts int, op func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			return op(ctx)
		},
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx),
		func(err error, wait time.Duration) {
			slog.Warn("dependency not ready, retrying",
				"dependency", name,
				"attempt", attempt,
				"max_attempts", attempts,
				"backoff", wait,
				"error", err,
			)
		},
	)
}
