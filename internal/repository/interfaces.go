package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trendscout/worker/internal/models"
)

// VideoRepository persists discovered videos and answers the admission
// gate's duplicate/cap checks.
type VideoRepository interface {
	Exists(ctx context.Context, videoID string) (bool, error)
	CountOpenByChannel(ctx context.Context, channelID string, maxAge time.Duration) (int, error)
	Insert(ctx context.Context, v *models.DiscoveredVideo) error
	Touch(ctx context.Context, videoID string, seenAt time.Time) error
	Get(ctx context.Context, videoID string) (*models.DiscoveredVideo, error)
	ListForWindow(ctx context.Context, window models.Window) ([]*models.DiscoveredVideo, error)
	ListMissingEmbedding(ctx context.Context, limit int) ([]*models.DiscoveredVideo, error)
	// RecentTitles returns up to limit titles published within the window,
	// newest first, feeding the long-tail feeder's keyword corpus.
	RecentTitles(ctx context.Context, window models.Window, limit int) ([]string, error)
	// RecentChannelIDs returns up to limit distinct channel IDs from the
	// most recently discovered videos, feeding the free-feed feeder.
	RecentChannelIDs(ctx context.Context, limit int) ([]string, error)
	// RecomputeTiers reassigns every video's tier from its age and latest
	// 24h velocity, per the A/B/C selection rule evaluated at selection
	// time. Returns the number of rows whose tier changed.
	RecomputeTiers(ctx context.Context, tierAHours, tierBHours int, tierAVelocity, tierBVelocity float64) (int, error)
}

// SnapshotRepository persists the append-only statistics timeline and
// implements the concurrency-safe due-selection lease.
type SnapshotRepository interface {
	Insert(ctx context.Context, s *models.Snapshot) error
	Latest(ctx context.Context, videoID string) (*models.Snapshot, error)
	Series(ctx context.Context, videoID string, since time.Time) ([]*models.Snapshot, error)
	// LeaseDue selects up to limit videos due for re-sampling, claiming them
	// via FOR UPDATE SKIP LOCKED before invoking fn with the claimed rows;
	// the DB transaction commits before fn runs, so fn may safely perform
	// slow network I/O. Every returned video must be resolved via
	// MarkSampled or ReleaseLease.
	LeaseDue(ctx context.Context, limit int, fn func(ctx context.Context, leased []models.LeasedVideo) error) error
	MarkSampled(ctx context.Context, videoID string, intervalHours int) error
	ReleaseLease(ctx context.Context, videoID string) error
}

// ChannelRepository persists per-channel metadata and the baselines used
// to normalize breakout scores.
type ChannelRepository interface {
	Upsert(ctx context.Context, ch *models.Channel) error
	Get(ctx context.Context, channelID string) (*models.Channel, error)
	ListForRefresh(ctx context.Context, olderThan time.Time, limit int) ([]*models.Channel, error)
	UpdateBaseline(ctx context.Context, channelID string, medianVelocity24h, medianViewsPerDay float64, sampleSize int) error
	// RecomputeBaselines recomputes median_velocity_24h/median_views_per_day
	// for every channel with at least 3 videos published in the last 90
	// days that have a 7d VideoScore, using a single aggregate query.
	// Returns the number of channels updated.
	RecomputeBaselines(ctx context.Context) (int, error)
}

// EmbeddingRepository persists per-video title embeddings.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, e *models.Embedding) error
	ListForWindow(ctx context.Context, window models.Window) (map[string]*models.Embedding, error)
}

// ClusterRepository persists cluster assignments. Clusters are recomputed
// wholesale per window each ranking run, so ReplaceWindow is transactional.
type ClusterRepository interface {
	ReplaceWindow(ctx context.Context, window models.Window, clusters []*models.Cluster, memberships []*models.ClusterMembership) error
	ListForWindow(ctx context.Context, window models.Window) ([]*models.Cluster, error)
	MembersOf(ctx context.Context, clusterID uuid.UUID) ([]*models.ClusterMembership, error)
}

// ScoreRepository persists per-video, per-window computed scores.
type ScoreRepository interface {
	Upsert(ctx context.Context, s *models.VideoScore) error
	ListForWindow(ctx context.Context, window models.Window) ([]*models.VideoScore, error)
	// TopBreakouts returns up to n scores for the window ordered by
	// breakout_by_subs then velocity_24h descending, feeding the
	// expansion feeder.
	TopBreakouts(ctx context.Context, window models.Window, n int) ([]*models.VideoScore, error)
	// Get fetches a single video's prior score for a window, used to
	// compute acceleration against the previous run.
	Get(ctx context.Context, videoID string, window models.Window) (*models.VideoScore, error)
}

// IngestionStateRepository persists per-feeder cursor and run bookkeeping.
type IngestionStateRepository interface {
	Get(ctx context.Context, feeder string) (*models.IngestionState, error)
	Upsert(ctx context.Context, s *models.IngestionState) error
}
