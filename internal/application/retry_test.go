package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	ch    chan time.Time
	waits []time.Duration
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.ch = make(chan time.Time, 1)
	t.ch <- time.Time{}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

var errBoom = errors.New("boom")

func TestRetry_LinearDelayCountsRemainingAttempts(t *testing.T) {
	timer := &fakeTimer{}
	policy := retryPolicy{name: "test", maxAttempts: 3, delay: linearDelay(time.Second)}

	calls := 0
	_, err := retry(context.Background(), policy, timer, func(context.Context, int) (string, error) {
		calls++
		return "", errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second}, timer.waits)
}

func TestRetry_ConstantDelay(t *testing.T) {
	timer := &fakeTimer{}
	policy := retryPolicy{name: "test", maxAttempts: 2, delay: constantDelay(time.Second)}

	_, err := retry(context.Background(), policy, timer, func(context.Context, int) (int, error) {
		return 0, errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []time.Duration{time.Second}, timer.waits)
}

func TestRetry_ReturnsFirstSuccess(t *testing.T) {
	timer := &fakeTimer{}
	policy := retryPolicy{name: "test", maxAttempts: 3, delay: constantDelay(time.Second)}

	var attempts []int
	got, err := retry(context.Background(), policy, timer, func(_ context.Context, attempt int) (string, error) {
		attempts = append(attempts, attempt)
		if attempt == 2 {
			return "ok", nil
		}
		return "", errBoom
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetry_TerminalErrorStopsImmediately(t *testing.T) {
	timer := &fakeTimer{}
	errFatal := errors.New("fatal")
	policy := retryPolicy{
		name:        "test",
		maxAttempts: 3,
		delay:       constantDelay(time.Second),
		terminal:    func(_ int, err error) bool { return errors.Is(err, errFatal) },
	}

	calls := 0
	_, err := retry(context.Background(), policy, timer, func(context.Context, int) (string, error) {
		calls++
		return "", errFatal
	})

	require.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.waits)
}

func TestRetry_TerminalDependsOnAttempt(t *testing.T) {
	timer := &fakeTimer{}
	policy := retryPolicy{
		name:        "test",
		maxAttempts: 3,
		delay:       constantDelay(time.Second),
		terminal:    func(attempt int, _ error) bool { return attempt == 2 },
	}

	calls := 0
	_, err := retry(context.Background(), policy, timer, func(context.Context, int) (string, error) {
		calls++
		return "", errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestRetry_CanceledContext(t *testing.T) {
	timer := &fakeTimer{}
	policy := retryPolicy{name: "test", maxAttempts: 3, delay: constantDelay(time.Second)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retry(ctx, policy, timer, func(context.Context, int) (string, error) {
		calls++
		return "", errBoom
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
