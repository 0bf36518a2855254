package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaGovernor_ConsumeWithinBudget(t *testing.T) {
	qg := NewQuotaGovernor(1000, 0, 0)
	err := qg.Consume(500)
	assert.NoError(t, err)
	assert.Equal(t, 500, qg.Used())
	assert.Equal(t, 500, qg.Remaining())
}

func TestQuotaGovernor_ConsumeExceedsEffectiveLimit(t *testing.T) {
	qg := NewQuotaGovernor(1000, 0.1, 0) // effective limit 900
	err := qg.Consume(950)
	assert.Error(t, err)
	var qe *QuotaExceededError
	assert.ErrorAs(t, err, &qe)
	assert.Equal(t, 0, qg.Used(), "a rejected consume must not change the counter")
}

func TestQuotaGovernor_BufferReservesHeadroom(t *testing.T) {
	qg := NewQuotaGovernor(1000, 0.2, 0) // effective limit 800
	assert.True(t, qg.CanAfford(800))
	assert.False(t, qg.CanAfford(801))
}

func TestQuotaGovernor_CanAffordDoesNotConsume(t *testing.T) {
	qg := NewQuotaGovernor(1000, 0, 0)
	assert.True(t, qg.CanAfford(500))
	assert.Equal(t, 0, qg.Used())
}

func TestQuotaGovernor_RemainingNeverNegative(t *testing.T) {
	qg := NewQuotaGovernor(100, 0, 0)
	assert.NoError(t, qg.Consume(100))
	assert.Equal(t, 0, qg.Remaining())
}
