package platform

import (
	"log"
	"sync"
	"time"
)

// CircuitBreaker implements the closed/open/half-open circuit breaker
// pattern for the platform client, identical in shape to the teacher's
// twitch client breaker.
type CircuitBreaker struct {
	mu           sync.RWMutex
	failureCount int
	lastFailure  time.Time
	state        string // "closed", "open", "half-open"
	failureLimit int
	timeout      time.Duration
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(failureLimit int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:        "closed",
		failureLimit: failureLimit,
		timeout:      timeout,
	}
}

// Allow checks whether requests should be let through.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == "open" {
		if time.Since(cb.lastFailure) > cb.timeout {
			cb.state = "half-open"
			return nil
		}
		return &CircuitBreakerError{Message: "circuit breaker is open, platform unavailable"}
	}

	return nil
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == "half-open" {
		cb.state = "closed"
		cb.failureCount = 0
	} else if cb.state == "closed" {
		cb.failureCount = 0
	}
}

// RecordFailure records a failed request, opening the breaker once the
// failure count reaches the configured limit.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailure = time.Now()

	if cb.failureCount >= cb.failureLimit {
		cb.state = "open"
		log.Printf("platform circuit breaker opening: failure_count=%d", cb.failureCount)
	}
}

// State returns the breaker's current state, for metrics and tests.
func (cb *CircuitBreaker) State() string {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
