package gating

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout/worker/internal/models"
)

// fakeVideoRepo implements repository.VideoRepository with just enough
// behavior to exercise the gate; every method the gate itself doesn't
// call returns zero values.
type fakeVideoRepo struct {
	exists        map[string]bool
	channelCounts map[string]int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{exists: make(map[string]bool), channelCounts: make(map[string]int)}
}

func (f *fakeVideoRepo) Exists(ctx context.Context, videoID string) (bool, error) {
	return f.exists[videoID], nil
}

func (f *fakeVideoRepo) CountOpenByChannel(ctx context.Context, channelID string, maxAge time.Duration) (int, error) {
	return f.channelCounts[channelID], nil
}

func (f *fakeVideoRepo) Insert(ctx context.Context, v *models.DiscoveredVideo) error { return nil }
func (f *fakeVideoRepo) Touch(ctx context.Context, videoID string, seenAt time.Time) error {
	return nil
}
func (f *fakeVideoRepo) Get(ctx context.Context, videoID string) (*models.DiscoveredVideo, error) {
	return nil, nil
}
func (f *fakeVideoRepo) ListForWindow(ctx context.Context, window models.Window) ([]*models.DiscoveredVideo, error) {
	return nil, nil
}
func (f *fakeVideoRepo) ListMissingEmbedding(ctx context.Context, limit int) ([]*models.DiscoveredVideo, error) {
	return nil, nil
}
func (f *fakeVideoRepo) RecentTitles(ctx context.Context, window models.Window, limit int) ([]string, error) {
	return nil, nil
}
func (f *fakeVideoRepo) RecentChannelIDs(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}
func (f *fakeVideoRepo) RecomputeTiers(ctx context.Context, tierAHours, tierBHours int, tierAVelocity, tierBVelocity float64) (int, error) {
	return 0, nil
}

func TestGate_Evaluate_Duplicate(t *testing.T) {
	repo := newFakeVideoRepo()
	repo.exists["v1"] = true
	gate := New(repo, Config{MaxPerChannel: 5})

	reason, err := gate.Evaluate(context.Background(), Candidate{
		VideoID:     "v1",
		ChannelID:   "c1",
		PublishedAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, RejectionDuplicate, reason)
}

func TestGate_Evaluate_TooOld(t *testing.T) {
	repo := newFakeVideoRepo()
	gate := New(repo, Config{MaxPerChannel: 5})

	reason, err := gate.Evaluate(context.Background(), Candidate{
		VideoID:     "v1",
		ChannelID:   "c1",
		PublishedAt: time.Now().Add(-200 * 24 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, RejectionTooOld, reason)
}

func TestGate_Evaluate_ChannelCap(t *testing.T) {
	repo := newFakeVideoRepo()
	repo.channelCounts["c1"] = 5
	gate := New(repo, Config{MaxPerChannel: 5})

	reason, err := gate.Evaluate(context.Background(), Candidate{
		VideoID:     "v1",
		ChannelID:   "c1",
		PublishedAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, RejectionChannelCap, reason)
}

func TestGate_Evaluate_Admitted(t *testing.T) {
	repo := newFakeVideoRepo()
	gate := New(repo, Config{MaxPerChannel: 5})

	reason, err := gate.Evaluate(context.Background(), Candidate{
		VideoID:     "v1",
		ChannelID:   "c1",
		PublishedAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, RejectionNone, reason)
}

func TestGate_Evaluate_NoChannelCapWhenUnset(t *testing.T) {
	repo := newFakeVideoRepo()
	repo.channelCounts["c1"] = 1000
	gate := New(repo, Config{MaxPerChannel: 0})

	reason, err := gate.Evaluate(context.Background(), Candidate{
		VideoID:     "v1",
		ChannelID:   "c1",
		PublishedAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.Equal(t, RejectionNone, reason)
}
