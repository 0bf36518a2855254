package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout/worker/internal/models"
)

func TestMaxFloat(t *testing.T) {
	assert.Equal(t, 5.0, maxFloat(5, 3))
	assert.Equal(t, 5.0, maxFloat(3, 5))
}

func TestVelocityBefore_NoEarlierSnapshot(t *testing.T) {
	now := time.Now()
	latest := &models.Snapshot{CapturedAt: now, ViewCount: 1000}
	series := []*models.Snapshot{
		{CapturedAt: now.Add(-1 * time.Hour), ViewCount: 900},
	}
	v := velocityBefore(series, latest, now.Add(-48*time.Hour))
	assert.Nil(t, v, "no snapshot before the cutoff means velocity is undefined")
}

func TestVelocityBefore_PicksClosestBeforeCutoff(t *testing.T) {
	now := time.Now()
	latest := &models.Snapshot{CapturedAt: now, ViewCount: 1000}
	series := []*models.Snapshot{
		{CapturedAt: now.Add(-30 * time.Hour), ViewCount: 400},
		{CapturedAt: now.Add(-25 * time.Hour), ViewCount: 600},
		{CapturedAt: now.Add(-20 * time.Hour), ViewCount: 700},
	}
	// cutoff is 24h ago: only the first two snapshots are at or before it,
	// and the closest (not-after) one is -25h at 600 views.
	v := velocityBefore(series, latest, now.Add(-24*time.Hour))
	assert.NotNil(t, v)
	assert.Equal(t, 400.0, *v)
}

func TestVelocityBefore_EmptySeries(t *testing.T) {
	now := time.Now()
	latest := &models.Snapshot{CapturedAt: now, ViewCount: 1000}
	v := velocityBefore(nil, latest, now.Add(-24*time.Hour))
	assert.Nil(t, v)
}
