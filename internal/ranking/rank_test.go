package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{1, 3, 5}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}

func TestGini_FewerThanTwoMembers(t *testing.T) {
	assert.Equal(t, 0.0, gini(nil))
	assert.Equal(t, 0.0, gini([]float64{5}))
}

func TestGini_AllZero(t *testing.T) {
	assert.Equal(t, 0.0, gini([]float64{0, 0, 0}))
}

func TestGini_PerfectEquality(t *testing.T) {
	g := gini([]float64{10, 10, 10, 10})
	assert.InDelta(t, 0.0, g, 1e-9)
}

func TestGini_HighConcentration(t *testing.T) {
	// one video has almost all the views: concentration should be high.
	g := gini([]float64{1, 1, 1, 1000})
	assert.Greater(t, g, 0.5)
	assert.LessOrEqual(t, g, 1.0)
}

func TestOpportunityScore_NoMedianVelocity(t *testing.T) {
	score := opportunityScore(nil, nil, 0)
	assert.Nil(t, score)
}

func TestOpportunityScore_DefaultsWhenMissing(t *testing.T) {
	mv := 10.0
	score := opportunityScore(&mv, nil, 0)
	// subs defaults to avgSubsFloor (so subs/avgSubsFloor == 1) and
	// concentration defaults to concentrationFloor (0.5):
	// 10 / (1 * 1.5) == 6.666...
	assert.NotNil(t, score)
	assert.InDelta(t, 10.0/1.5, *score, 1e-9)
}

func TestOpportunityScore_ZeroDenominatorFallsBackToMedianVelocity(t *testing.T) {
	mv := 7.0
	subs := 0.0
	score := opportunityScore(&mv, &subs, 0)
	// subs=0 makes the subs factor 0, and concentration=0 falls back to the
	// floor (0.5) rather than also being 0, so the denominator here is
	// actually 0 * 1.5 == 0, which must fall back to median_velocity.
	assert.NotNil(t, score)
	assert.Equal(t, mv, *score)
}
