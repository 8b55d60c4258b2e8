package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-chat/backend/pkg/logger"
)

var errUpstream = errors.New("upstream failed")

func newTestBreaker(failures, successes uint, retry time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(Config{
		Name:             "test",
		FailureThreshold: failures,
		SuccessThreshold: successes,
		RetryTimeout:     retry,
	}, logger.New(logger.Config{Level: "error"}))
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := newTestBreaker(3, 1, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.CurrentState())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	}
	assert.Equal(t, StateOpen, cb.CurrentState())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker(1, 2, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	require.Equal(t, StateOpen, cb.CurrentState())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.CurrentState())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.CurrentState())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := newTestBreaker(1, 2, 10*time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	assert.Equal(t, StateOpen, cb.CurrentState())
}
