package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWaiter returns a Waiter whose sleeps complete instantly while
// recording how often they were requested.
func newTestWaiter(attempts int, sleeps *int) *Waiter {
	w := NewWaiter(attempts, time.Second)
	w.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps++
		return nil
	}
	return w
}

// TestWaiter_SucceedsEventually verifies that the waiter keeps polling
// through transient failures and stops as soon as the probe passes.
func TestWaiter_SucceedsEventually(t *testing.T) {
	sleeps := 0
	w := newTestWaiter(10, &sleeps)

	calls := 0
	err := w.Wait(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls, "probe should stop immediately after success")
	assert.Equal(t, 3, sleeps, "one sleep between each pair of attempts")
}

// TestWaiter_ExhaustsBudget verifies the fixed attempt budget: the probe
// runs exactly Attempts times and the error wraps the last probe failure.
func TestWaiter_ExhaustsBudget(t *testing.T) {
	sleeps := 0
	w := newTestWaiter(5, &sleeps)

	lastErr := errors.New("still starting up")
	calls := 0
	err := w.Wait(context.Background(), func(ctx context.Context) error {
		calls++
		return lastErr
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls, "probe must run exactly Attempts times")
	assert.Equal(t, 4, sleeps, "no sleep after the final attempt")
	assert.ErrorIs(t, err, lastErr, "error should wrap the last probe failure")
	assert.Contains(t, err.Error(), "not ready after 5 attempt(s)")
}

// TestWaiter_ContextCancelled verifies the loop honors cancellation
// instead of spending the remaining budget.
func TestWaiter_ContextCancelled(t *testing.T) {
	w := NewWaiter(100, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := w.Wait(ctx, func(ctx context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("not yet")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls, 100, "cancellation must short-circuit the budget")
}

// TestWaiter_InvalidBudget verifies that a zero-attempt waiter is
// rejected rather than silently never probing.
func TestWaiter_InvalidBudget(t *testing.T) {
	w := NewWaiter(0, time.Second)

	err := w.Wait(context.Background(), func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}
