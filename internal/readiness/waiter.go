// Package readiness implements the bounded polling loop used to wait for
// a freshly started container to accept database connections.
//
// The loop is deliberately simple: a fixed number of attempts with a fixed
// sleep interval between them, fully synchronous. There is no backoff and
// no retry beyond the attempt budget — a container that is not ready after
// the budget is treated as failed.
package readiness

import (
	"context"
	"fmt"
	"time"
)

// Probe is one readiness attempt. It returns nil when the target is ready.
// Probes must be cheap and side-effect free; the Waiter may call them up
// to Attempts times.
type Probe func(ctx context.Context) error

// Waiter polls a Probe at a fixed interval until it succeeds or the
// attempt budget is exhausted.
//
// The struct is defined (rather than a bare function) so the sleep can be
// replaced in tests, and so future options can be added without breaking
// the API — the same shape the rest of the codebase uses for injectable
// collaborators.
type Waiter struct {
	// Attempts is the maximum number of probe calls. Must be >= 1.
	Attempts int

	// Interval is the fixed sleep between consecutive probe calls.
	Interval time.Duration

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a Waiter with the given budget.
func NewWaiter(attempts int, interval time.Duration) *Waiter {
	return &Waiter{
		Attempts: attempts,
		Interval: interval,
		sleep:    contextSleep,
	}
}

// Wait calls probe until it succeeds, the attempt budget runs out, or the
// context is cancelled. On exhaustion it returns an error wrapping the
// last probe failure, so callers can surface what the target actually said.
func (w *Waiter) Wait(ctx context.Context, probe Probe) error {
	if w.Attempts < 1 {
		return fmt.Errorf("readiness: attempts must be >= 1, got %d", w.Attempts)
	}

	var lastErr error
	for attempt := 1; attempt <= w.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("readiness wait cancelled after %d attempt(s): %w", attempt-1, err)
		}

		lastErr = probe(ctx)
		if lastErr == nil {
			return nil
		}

		// Don't sleep after the final attempt — the budget is spent.
		if attempt < w.Attempts {
			if err := w.sleep(ctx, w.Interval); err != nil {
				return fmt.Errorf("readiness wait cancelled after %d attempt(s): %w", attempt, err)
			}
		}
	}

	return fmt.Errorf("not ready after %d attempt(s) at %s intervals: %w",
		w.Attempts, w.Interval, lastErr)
}

// contextSleep sleeps for d or until the context is cancelled, whichever
// comes first. A plain time.Sleep would make cancellation wait out the
// full interval.
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
