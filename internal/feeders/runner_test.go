package feeders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/pkg/platform"
)

// fakeFeeder is a minimal Feeder used to exercise Runner without any
// platform or repository dependency.
type fakeFeeder struct {
	name       string
	candidates []Candidate
	err        error
}

func (f *fakeFeeder) Name() string { return f.name }

func (f *fakeFeeder) Run(ctx context.Context, window models.Window) (<-chan Candidate, error) {
	out := make(chan Candidate, len(f.candidates))
	for _, c := range f.candidates {
		out <- c
	}
	close(out)
	return out, f.err
}

func TestRunner_AggregatesAcrossFeeders(t *testing.T) {
	r := NewRunner(
		&fakeFeeder{name: "a", candidates: []Candidate{{VideoID: "v1"}, {VideoID: "v2"}}},
		&fakeFeeder{name: "b", candidates: []Candidate{{VideoID: "v3"}}},
	)

	candidates, stats := r.Run(context.Background(), models.Window7d)

	assert.Len(t, candidates, 3)
	assert.Equal(t, 3, stats.TotalCandidates)
	assert.Equal(t, 2, stats.PerFeeder["a"])
	assert.Equal(t, 1, stats.PerFeeder["b"])
}

func TestRunner_QuotaExceededAbandonsOnlyThatFeeder(t *testing.T) {
	r := NewRunner(
		&fakeFeeder{name: "a", candidates: []Candidate{{VideoID: "v1"}}, err: wrapQuota("a", &platform.QuotaExceededError{Message: "daily budget exhausted"})},
		&fakeFeeder{name: "b", candidates: []Candidate{{VideoID: "v2"}}},
	)

	candidates, stats := r.Run(context.Background(), models.Window7d)

	assert.Len(t, candidates, 2, "partial output from the exhausted feeder is still kept")
	assert.True(t, stats.QuotaExhausted["a"])
	assert.False(t, stats.QuotaExhausted["b"])
}

func TestRunner_NonQuotaErrorDoesNotMarkExhausted(t *testing.T) {
	r := NewRunner(&fakeFeeder{name: "a", err: errors.New("boom")})
	_, stats := r.Run(context.Background(), models.Window7d)
	assert.False(t, stats.QuotaExhausted["a"])
}
