// Package scoring computes per-video, per-window velocity and breakout
// metrics from the raw snapshot series.
package scoring

import (
	"context"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
)

// minSubscribers floors the denominator of breakout_by_subs so tiny or
// missing subscriber counts cannot produce runaway scores.
const minSubscribers = 100

// minAgeDays floors the denominator of views_per_day for just-published
// videos.
const minAgeDays = 0.01

// Scorer computes and persists VideoScore rows for one window at a time.
type Scorer struct {
	videos     repository.VideoRepository
	snapshots  repository.SnapshotRepository
	channels   repository.ChannelRepository
	scores     repository.ScoreRepository
}

// New builds a Scorer.
func New(videos repository.VideoRepository, snapshots repository.SnapshotRepository, channels repository.ChannelRepository, scores repository.ScoreRepository) *Scorer {
	return &Scorer{videos: videos, snapshots: snapshots, channels: channels, scores: scores}
}

// RunStats summarizes a single scoring pass.
type RunStats struct {
	Scored int
	Failed int
}

// Run recomputes scores for every video eligible for window, i.e. every
// video whose age does not exceed the window's cutoff.
func (s *Scorer) Run(ctx context.Context, window models.Window) (RunStats, error) {
	var stats RunStats

	videos, err := s.videos.ListForWindow(ctx, window)
	if err != nil {
		return stats, err
	}

	for _, v := range videos {
		if err := s.scoreOne(ctx, v, window); err != nil {
			stats.Failed++
			continue
		}
		stats.Scored++
	}

	return stats, nil
}

func (s *Scorer) scoreOne(ctx context.Context, v *models.DiscoveredVideo, window models.Window) error {
	now := time.Now()
	latest, err := s.snapshots.Latest(ctx, v.VideoID)
	if err != nil {
		return err
	}

	ageDays := now.Sub(v.PublishedAt).Hours() / 24
	viewsPerDay := float64(latest.ViewCount) / maxFloat(ageDays, minAgeDays)

	series, err := s.snapshots.Series(ctx, v.VideoID, now.Add(-8*24*time.Hour))
	if err != nil {
		return err
	}

	velocity24h := velocityBefore(series, latest, now.Add(-24*time.Hour))
	velocity7d := velocityBefore(series, latest, now.Add(-7*24*time.Hour))

	var acceleration *float64
	if velocity24h != nil {
		prior, err := s.scores.Get(ctx, v.VideoID, window)
		if err == nil && prior.Velocity24h != nil && *prior.Velocity24h != 0 {
			a := *velocity24h / *prior.Velocity24h
			acceleration = &a
		}
	}

	var subscriberCount int64
	var channelMedianVPD *float64
	ch, err := s.channels.Get(ctx, v.ChannelID)
	if err == nil && ch != nil {
		if ch.SubscriberCount != nil {
			subscriberCount = *ch.SubscriberCount
		}
		channelMedianVPD = ch.MedianViewsPerDay
	}

	breakoutBySubs := viewsPerDay / maxFloat(minSubscribers, float64(subscriberCount))

	var breakoutByBaseline *float64
	if channelMedianVPD != nil && *channelMedianVPD > 0 {
		b := viewsPerDay / *channelMedianVPD
		breakoutByBaseline = &b
	}

	return s.scores.Upsert(ctx, &models.VideoScore{
		VideoID:            v.VideoID,
		Window:             window,
		ViewCount:          latest.ViewCount,
		ViewsPerDay:        viewsPerDay,
		Velocity24h:        velocity24h,
		Velocity7d:         velocity7d,
		Acceleration:       acceleration,
		BreakoutBySubs:     &breakoutBySubs,
		BreakoutByBaseline: breakoutByBaseline,
		ComputedAt:         now,
	})
}

// velocityBefore returns latest.ViewCount minus the view count of the
// snapshot closest to, but not after, cutoff. Returns nil when no such
// snapshot exists, e.g. a video with only its first-ever snapshot.
func velocityBefore(series []*models.Snapshot, latest *models.Snapshot, cutoff time.Time) *float64 {
	var before *models.Snapshot
	for _, snap := range series {
		if snap.CapturedAt.After(cutoff) {
			break
		}
		before = snap
	}
	if before == nil {
		return nil
	}
	v := float64(latest.ViewCount - before.ViewCount)
	return &v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
