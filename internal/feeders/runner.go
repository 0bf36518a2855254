package feeders

import (
	"context"
	"errors"
	"log"

	"github.com/trendscout/worker/internal/models"
)

// FeederRunStats aggregates per-feeder candidate counts for a single
// runner invocation, mirroring the job-items-processed style counters the
// scheduler harness emits.
type FeederRunStats struct {
	TotalCandidates int
	PerFeeder       map[string]int
	QuotaExhausted  map[string]bool
}

// Runner invokes every registered feeder in a fixed order, catching
// ErrQuotaExceeded per feeder: a feeder that runs out of quota is
// abandoned for this pass, and the runner moves on to the next one rather
// than aborting the whole ingest run.
type Runner struct {
	feeders []Feeder
}

// NewRunner builds a Runner over feeders, in the order they should run.
// Per spec, that order is intent-seed, expansion, long-tail, free-feed:
// candidates from earlier feeders win duplicate-rejection ties in gating
// because gating is applied as a single pass in runner output order.
func NewRunner(feeders ...Feeder) *Runner {
	return &Runner{feeders: feeders}
}

// Run executes every feeder and returns the combined candidates plus run
// statistics. It never returns an error itself: every per-feeder failure
// is logged, quota exhaustion is also recorded in stats, and nothing is
// propagated.
func (r *Runner) Run(ctx context.Context, window models.Window) ([]Candidate, FeederRunStats) {
	stats := FeederRunStats{
		PerFeeder:      make(map[string]int),
		QuotaExhausted: make(map[string]bool),
	}

	var all []Candidate
	for _, f := range r.feeders {
		ch, err := f.Run(ctx, window)
		for c := range ch {
			all = append(all, c)
			stats.PerFeeder[f.Name()]++
			stats.TotalCandidates++
		}

		if err == nil {
			continue
		}
		if errors.Is(err, ErrQuotaExceeded) {
			stats.QuotaExhausted[f.Name()] = true
			log.Printf("feeder %s stopped early: quota exceeded", f.Name())
			continue
		}
		log.Printf("feeder %s failed: %v", f.Name(), err)
	}

	return all, stats
}
