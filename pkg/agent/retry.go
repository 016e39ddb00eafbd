package agent

import (
	"context"
	"errors"
	"time"

	"github.com/ospilot/ospilot/pkg/logger"
)

// DefaultMaxAttempts bounds the per-step retry. A step that fails this
// many times in a row fails the task.
const DefaultMaxAttempts = 5

type fatalError interface {
	Fatal() bool
}

// IsFatal reports whether err is marked non-retryable anywhere in its
// chain. Unknown dialect actions and missing device capabilities are
// fatal: they signal misconfiguration, not a transient fault.
func IsFatal(err error) bool {
	var f fatalError
	return errors.As(err, &f) && f.Fatal()
}

// Retry runs fn up to attempts times, sleeping backoff (scaled by the
// attempt number) between failures. Fatal errors and context
// cancellation stop immediately.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsFatal(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		logger.WarnCF("agent", "Step attempt failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"of":      attempts,
			"error":   lastErr.Error(),
		})

		select {
		case <-time.After(backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
