package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryPolicy is one call site's retry budget.
type retryPolicy struct {
	name        string
	maxAttempts int
	// delay returns the wait before the next attempt given how many remain.
	delay func(remaining int) time.Duration
	// terminal reports whether err on the given 1-based attempt ends the loop at once.
	terminal func(attempt int, err error) bool
}

// attemptBackOff adapts a retryPolicy to backoff.BackOff.
type attemptBackOff struct {
	policy   retryPolicy
	attempts int
}

func (b *attemptBackOff) NextBackOff() time.Duration {
	b.attempts++
	remaining := b.policy.maxAttempts - b.attempts
	if remaining <= 0 {
		return backoff.Stop
	}
	return b.policy.delay(remaining)
}

func (b *attemptBackOff) Reset() {
	b.attempts = 0
}

// retry runs op until it succeeds, returns a terminal error, or the policy's
// attempts are spent. It returns the last error seen. timer may be nil for
// real time.
func retry[T any](
	ctx context.Context,
	policy retryPolicy,
	timer backoff.Timer,
	op func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var result T
	attempt := 0

	operation := func() error {
		attempt++
		v, err := op(ctx, attempt)
		if err == nil {
			result = v
			return nil
		}
		if policy.terminal != nil && policy.terminal(attempt, err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("retrying after failure",
			"operation", policy.name,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	b := backoff.WithContext(&attemptBackOff{policy: policy}, ctx)
	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)
	return result, err
}

// constantDelay waits d before every retry.
func constantDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// linearDelay waits unit multiplied by the number of attempts still remaining.
func linearDelay(unit time.Duration) func(int) time.Duration {
	return func(remaining int) time.Duration { return time.Duration(remaining) * unit }
}
