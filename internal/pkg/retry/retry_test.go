package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errNotReady = errors.New("not ready")

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", 3, func(context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", 3, func(context.Context) error {
		calls++
		if calls < 2 {
			return errNotReady
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_SingleAttemptReturnsError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", 0, func(context.Context) error {
		calls++
		return errNotReady
	})

	assert.ErrorIs(t, err, errNotReady)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	start := time.Now()
	err := Do(ctx, "test", 10, func(context.Context) error {
		calls++
		cancel()
		return errNotReady
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), initialInterval)
}
