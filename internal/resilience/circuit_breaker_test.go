package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond, 1)
	boom := errors.New("boom")

	require.Error(t, cb.Execute(context.Background(), func() error { return boom }))
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Execute(context.Background(), func() error { return boom }))
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("fail") }))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("fail") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("fail again") }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Second, 1)
	require.Error(t, cb.Execute(context.Background(), func() error { return errors.New("fail") }))
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))

	failures, _ := cb.Counts()
	assert.Equal(t, 0, failures)
	assert.Equal(t, StateClosed, cb.State())
}
