package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospilot/ospilot/pkg/dialect"
)

func TestRetrySucceedsOnFifthAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 5 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("always broken")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "always broken")
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	fatal := &dialect.UnknownActionError{Dialect: "cua", Action: "teleport"}
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return fatal
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsFatal(err))
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 5, time.Millisecond, func() error {
		calls++
		return errors.New("never seen")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestIsFatalOnWrappedError(t *testing.T) {
	inner := &dialect.UnknownActionError{Dialect: "qwen", Action: "teleport"}
	wrapped := errors.Join(errors.New("step failed"), inner)
	assert.True(t, IsFatal(wrapped))
	assert.False(t, IsFatal(errors.New("transient")))
	assert.False(t, IsFatal(nil))
}
