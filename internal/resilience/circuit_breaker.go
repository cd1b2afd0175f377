// Package resilience implements the circuit breaker that the tick driver
// (cmd/dispatcherd) runs each Step call through. Errors returned by the
// wrapped operation count as failures; enough of them in a row trip the
// breaker, which then rejects calls until its reset timeout has passed.
// Panics are not recovered here.
package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elevatorsvc/dispatcher/internal/metrics"
)

// State is the circuit breaker's current state.
type State int

const (
	// StateClosed allows all requests through.
	StateClosed State = iota
	// StateOpen rejects all requests without executing them.
	StateOpen
	// StateHalfOpen allows a limited number of requests through to test recovery.
	StateHalfOpen
)

// CircuitBreaker protects a wrapped operation from cascading failures by
// tracking success/failure counts and rejecting calls once a failure
// threshold is exceeded.
type CircuitBreaker struct {
	mu           sync.RWMutex
	state        State
	failureCount int
	successCount int
	nextRetry    time.Time

	maxFailures   int
	resetTimeout  time.Duration
	halfOpenLimit int
}

// NewCircuitBreaker builds a closed circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenLimit int) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:         StateClosed,
		maxFailures:   maxFailures,
		resetTimeout:  resetTimeout,
		halfOpenLimit: halfOpenLimit,
	}
	metrics.SetCircuitBreakerState(int(cb.state))
	return cb
}

// Execute runs operation if the breaker currently allows it, recording the
// outcome. Returns an error immediately, without running operation, when
// the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func() error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("circuit breaker is open - request rejected")
	}

	err := operation()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(cb.nextRetry) {
			cb.setState(StateHalfOpen)
			cb.successCount = 0
			return true
		}
		return false
	case StateHalfOpen:
		return cb.successCount < cb.halfOpenLimit
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.halfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.state == StateHalfOpen {
		cb.setState(StateOpen)
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	} else if cb.failureCount >= cb.maxFailures {
		cb.setState(StateOpen)
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	}
}

// setState must be called with cb.mu held; it also republishes the gauge.
func (cb *CircuitBreaker) setState(s State) {
	cb.state = s
	metrics.SetCircuitBreakerState(int(s))
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Counts returns the current failure and success counters, for diagnostics.
func (cb *CircuitBreaker) Counts() (failures, successes int) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failureCount, cb.successCount
}
