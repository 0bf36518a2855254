// Package models holds the discovery pipeline's core entities. Storage-level
// column names are given via `db` tags; nullable columns are pointer fields,
// matching how the rest of the store layer scans rows.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Window is a rolling age-band filter applied to fetches.
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
)

// Days returns the window's age cutoff in days.
func (w Window) Days() float64 {
	switch w {
	case Window24h:
		return 1
	case Window7d:
		return 7
	case Window30d:
		return 30
	case Window90d:
		return 90
	default:
		return 7
	}
}

// AllWindows lists every supported window, widest-scoping order last so
// callers that need "the widest window" can take the final element.
var AllWindows = []Window{Window24h, Window7d, Window30d, Window90d}

// EligibleWindows returns the windows a candidate of the given age (in days)
// qualifies for.
func EligibleWindows(ageDays float64) []Window {
	var eligible []Window
	for _, w := range AllWindows {
		if ageDays <= w.Days() {
			eligible = append(eligible, w)
		}
	}
	return eligible
}

// SnapshotTier is the prioritization band assigned to a video at selection
// time; it governs how often its statistics are re-sampled.
type SnapshotTier string

const (
	TierA SnapshotTier = "A"
	TierB SnapshotTier = "B"
	TierC SnapshotTier = "C"
)

// Priority orders tiers for the snapshot selection query (lower = sampled
// first).
func (t SnapshotTier) Priority() int {
	switch t {
	case TierA:
		return 0
	case TierB:
		return 1
	default:
		return 2
	}
}

// DiscoveredVideo is a candidate admitted through gating. Identity is the
// platform's own opaque video ID, not a locally generated UUID.
type DiscoveredVideo struct {
	VideoID          string       `db:"video_id"`
	ChannelID        string       `db:"channel_id"`
	ChannelTitle     string       `db:"channel_title"`
	Title            string       `db:"title"`
	ThumbnailURL     *string      `db:"thumbnail_url"`
	PublishedAt      time.Time    `db:"published_at"`
	Feeder           string       `db:"feeder"`
	Seed             *string      `db:"seed"`
	Duration         *int         `db:"duration_seconds"`
	Language         *string      `db:"language"`
	Tags             []string     `db:"tags"`
	FirstSeenAt      time.Time    `db:"first_seen_at"`
	LastSeenAt       time.Time    `db:"last_seen_at"`
	Tier             SnapshotTier `db:"tier"`
	LastSnapshotAt   *time.Time   `db:"last_snapshot_at"`
	NextSnapshotDue  time.Time    `db:"next_snapshot_due_at"`
}

// Snapshot is an append-only, point-in-time observation of a video's
// statistics. It is never mutated once inserted.
type Snapshot struct {
	VideoID      string    `db:"video_id"`
	CapturedAt   time.Time `db:"captured_at"`
	ViewCount    int64     `db:"view_count"`
	LikeCount    *int64    `db:"like_count"`
	CommentCount *int64    `db:"comment_count"`
}

// Channel tracks per-channel metadata and computed baselines used to
// normalize breakout scores.
type Channel struct {
	ChannelID              string     `db:"channel_id"`
	Title                  string     `db:"title"`
	SubscriberCount        *int64     `db:"subscriber_count"`
	ChannelPublishedAt     *time.Time `db:"channel_published_at"`
	MedianVelocity24h      *float64   `db:"median_velocity_24h"`
	MedianViewsPerDay      *float64   `db:"median_views_per_day"`
	VideoCountForBaseline  int        `db:"video_count_for_baseline"`
	LastRefreshedAt        *time.Time `db:"last_refreshed_at"`
	CreatedAt              time.Time  `db:"created_at"`
}

// Embedding is the dense representation of a video's title text, overwritten
// on re-embed.
type Embedding struct {
	VideoID   string    `db:"video_id"`
	Vector    []float32 `db:"vector"`
	Model     string    `db:"model"`
	EmbeddedAt time.Time `db:"embedded_at"`
}

// ClusterMetrics holds the aggregate fields stored alongside a Cluster row.
// The clustering pass fills the member, channel and age fields; the ranking
// pass recomputes all of them.
type ClusterMetrics struct {
	MedianVelocity      *float64 `db:"median_velocity"`
	UniqueChannels      int      `db:"unique_channels"`
	TotalVideos         int      `db:"total_videos"`
	AvgDaysOld          float64  `db:"avg_days_old"`
	AvgChannelSubs      *float64 `db:"avg_channel_subs"`
	WinnerConcentration float64  `db:"winner_concentration"`
	OpportunityScore    *float64 `db:"opportunity_score"`
}

// Cluster is a deterministically identified grouping of semantically similar
// videos within a window.
type Cluster struct {
	ClusterID uuid.UUID `db:"cluster_id"`
	Window    Window    `db:"window"`
	Label     string    `db:"label"`
	Keywords  []string  `db:"keywords"`
	Metrics   ClusterMetrics
	ComputedAt time.Time `db:"computed_at"`
}

// ClusterMembership links a video to the cluster it belongs to for a window.
type ClusterMembership struct {
	ClusterID    uuid.UUID `db:"cluster_id"`
	VideoID      string    `db:"video_id"`
	RankInCluster int      `db:"rank_in_cluster"`
}

// VideoScore holds the per-video, per-window computed scoring metrics.
type VideoScore struct {
	VideoID            string    `db:"video_id"`
	Window             Window    `db:"window"`
	// Title is populated only by queries that join discovered_videos (e.g.
	// TopBreakouts); it is not a video_scores column.
	Title               string    `db:"-"`
	ViewCount           int64     `db:"view_count"`
	ViewsPerDay         float64   `db:"views_per_day"`
	Velocity24h         *float64  `db:"velocity_24h"`
	Velocity7d          *float64  `db:"velocity_7d"`
	Acceleration        *float64  `db:"acceleration"`
	BreakoutBySubs      *float64  `db:"breakout_by_subs"`
	BreakoutByBaseline  *float64  `db:"breakout_by_baseline"`
	ComputedAt          time.Time `db:"computed_at"`
}

// IngestionState tracks per-feeder cursor and run bookkeeping.
type IngestionState struct {
	Feeder             string     `db:"feeder"`
	CursorPosition     int        `db:"cursor_position"`
	LastRunAt          *time.Time `db:"last_run_at"`
	VideosAddedLastRun int        `db:"videos_added_last_run"`
	TotalVideosAdded   int        `db:"total_videos_added"`
}

// LeasedVideo is a row returned by the snapshot scheduler's due-selection
// query. The row stays claimed (its next_snapshot_due_at pushed out by the
// lease duration) after the leasing transaction commits, until MarkSampled
// or ReleaseLease settles it.
type LeasedVideo struct {
	VideoID        string
	ChannelID      string
	Tier           SnapshotTier
	LastSnapshotAt *time.Time
}
