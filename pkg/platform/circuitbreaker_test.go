package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterFailureLimit(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, "closed", cb.State())
	cb.RecordFailure()
	assert.Equal(t, "open", cb.State())
}

func TestCircuitBreaker_RejectsWhileOpen(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	cb.RecordFailure()
	err := cb.Allow()
	assert.Error(t, err)
	var cbErr *CircuitBreakerError
	assert.ErrorAs(t, err, &cbErr)
}

func TestCircuitBreaker_HalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Allow())
	assert.Equal(t, "half-open", cb.State())
}

func TestCircuitBreaker_SuccessInHalfOpenCloses(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	_ = cb.Allow()
	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.State())
}
