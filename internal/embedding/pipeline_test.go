package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout/worker/internal/models"
)

// fakeVideoRepo implements repository.VideoRepository; only
// ListMissingEmbedding matters to this package.
type fakeVideoRepo struct {
	missing []*models.DiscoveredVideo
}

func (f *fakeVideoRepo) Exists(ctx context.Context, videoID string) (bool, error) { return false, nil }
func (f *fakeVideoRepo) CountOpenByChannel(ctx context.Context, channelID string, maxAge time.Duration) (int, error) {
	return 0, nil
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
	if len(f.missing) > limit {
		return f.missing[:limit], nil
	}
	return f.missing, nil
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

// fakeEmbeddingRepo implements repository.EmbeddingRepository.
type fakeEmbeddingRepo struct {
	upserted []*models.Embedding
}

func (f *fakeEmbeddingRepo) Upsert(ctx context.Context, e *models.Embedding) error {
	f.upserted = append(f.upserted, e)
	return nil
}

func (f *fakeEmbeddingRepo) ListForWindow(ctx context.Context, window models.Window) (map[string]*models.Embedding, error) {
	return nil, nil
}

type fakeGenerator struct {
	failFor map[string]bool
}

func (g *fakeGenerator) GenerateVideoEmbedding(ctx context.Context, title, channelTitle string) ([]float32, error) {
	if g.failFor[title] {
		return nil, errors.New("embedding: simulated failure")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestPipeline_Run_EmbedsAllMissing(t *testing.T) {
	videos := &fakeVideoRepo{missing: []*models.DiscoveredVideo{
		{VideoID: "v1", Title: "t1", ChannelTitle: "c1"},
		{VideoID: "v2", Title: "t2", ChannelTitle: "c2"},
	}}
	embeddings := &fakeEmbeddingRepo{}
	gen := &fakeGenerator{failFor: map[string]bool{}}

	p := New(videos, embeddings, gen, "text-embedding-3-small", 10)
	stats, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Embedded)
	assert.Equal(t, 0, stats.Failed)
	assert.Len(t, embeddings.upserted, 2)
}

func TestPipeline_Run_CountsFailures(t *testing.T) {
	videos := &fakeVideoRepo{missing: []*models.DiscoveredVideo{
		{VideoID: "v1", Title: "t1", ChannelTitle: "c1"},
		{VideoID: "v2", Title: "t2", ChannelTitle: "c2"},
	}}
	embeddings := &fakeEmbeddingRepo{}
	gen := &fakeGenerator{failFor: map[string]bool{"t1": true}}

	p := New(videos, embeddings, gen, "text-embedding-3-small", 10)
	stats, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 1, stats.Failed)
}

func TestPipeline_Run_NoVideos(t *testing.T) {
	videos := &fakeVideoRepo{}
	embeddings := &fakeEmbeddingRepo{}
	gen := &fakeGenerator{}

	p := New(videos, embeddings, gen, "text-embedding-3-small", 10)
	stats, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.Embedded)
	assert.Equal(t, 0, stats.Failed)
}
