package platform

import (
	"fmt"
	"sync"
	"time"
)

// QuotaGovernor tracks daily quota consumption against a configured limit
// and safety buffer. It is owned by the composition root and passed by
// pointer to every component that calls the platform client; it is never a
// package-level global.
type QuotaGovernor struct {
	mu             sync.Mutex
	dailyLimit     int
	buffer         float64
	used           int
	billingTZ      *time.Location
	currentDay     string // YYYY-MM-DD in billingTZ, identifies the current budget window
}

// NewQuotaGovernor builds a governor for a daily limit, a safety buffer
// ratio (e.g. 0.10 reserves 10% of the limit as headroom), and the fixed
// UTC offset at which the platform rolls over its billing day.
func NewQuotaGovernor(dailyLimit int, buffer float64, billingTZOffsetHours int) *QuotaGovernor {
	loc := time.FixedZone("platform-billing", billingTZOffsetHours*3600)
	qg := &QuotaGovernor{
		dailyLimit: dailyLimit,
		buffer:     buffer,
		billingTZ:  loc,
	}
	qg.currentDay = qg.dayKey(time.Now())
	return qg
}

func (qg *QuotaGovernor) dayKey(t time.Time) string {
	return t.In(qg.billingTZ).Format("2006-01-02")
}

// effectiveLimit returns the budget after reserving the safety buffer.
func (qg *QuotaGovernor) effectiveLimit() int {
	return int(float64(qg.dailyLimit) * (1 - qg.buffer))
}

// resetIfNewDay clears the used counter when the billing day has rolled
// over since the last call. Caller must hold qg.mu.
func (qg *QuotaGovernor) resetIfNewDay() {
	today := qg.dayKey(time.Now())
	if today != qg.currentDay {
		qg.currentDay = today
		qg.used = 0
	}
}

// CanAfford reports whether cost units remain within the effective budget
// without consuming them.
func (qg *QuotaGovernor) CanAfford(cost int) bool {
	qg.mu.Lock()
	defer qg.mu.Unlock()
	qg.resetIfNewDay()
	return qg.used+cost <= qg.effectiveLimit()
}

// Consume deducts cost units from today's budget, returning
// *QuotaExceededError if doing so would exceed the effective limit. On
// exceeded budget the counter is left unchanged.
func (qg *QuotaGovernor) Consume(cost int) error {
	qg.mu.Lock()
	defer qg.mu.Unlock()
	qg.resetIfNewDay()

	if qg.used+cost > qg.effectiveLimit() {
		return &QuotaExceededError{
			Message: fmt.Sprintf("consuming %d units would exceed effective budget (%d used, %d effective limit)", cost, qg.used, qg.effectiveLimit()),
		}
	}
	qg.used += cost
	return nil
}

// Remaining returns the number of cost units left in today's effective
// budget.
func (qg *QuotaGovernor) Remaining() int {
	qg.mu.Lock()
	defer qg.mu.Unlock()
	qg.resetIfNewDay()
	remaining := qg.effectiveLimit() - qg.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Used returns units consumed so far in the current billing day, for
// metrics reporting.
func (qg *QuotaGovernor) Used() int {
	qg.mu.Lock()
	defer qg.mu.Unlock()
	qg.resetIfNewDay()
	return qg.used
}
