// Package snapshot implements the tiered, concurrency-safe statistics
// resampling scheduler.
package snapshot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/trendscout/worker/config"
	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/pkg/platform"
)

// Scheduler runs one pass of due-selection, batched stats refetch,
// snapshot insertion, channel refresh, and baseline recomputation.
type Scheduler struct {
	snapshots repository.SnapshotRepository
	channels  repository.ChannelRepository
	videos    repository.VideoRepository
	client    *platform.Client
	cfg       config.SnapshotConfig
}

// New builds a Scheduler.
func New(snapshots repository.SnapshotRepository, channels repository.ChannelRepository, videos repository.VideoRepository, client *platform.Client, cfg config.SnapshotConfig) *Scheduler {
	return &Scheduler{snapshots: snapshots, channels: channels, videos: videos, client: client, cfg: cfg}
}

// RunStats summarizes a single snapshot pass.
type RunStats struct {
	Leased          int
	Snapshotted     int
	ChannelsRefreshed int
	QuotaExhausted  bool
}

// Run leases due videos, refetches their statistics in batches of ≤50,
// inserts one snapshot per returned row, refreshes stale channels, and
// recomputes channel baselines.
func (s *Scheduler) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	touchedChannels := make(map[string]struct{})

	if _, err := s.videos.RecomputeTiers(ctx, s.cfg.TierAHours, s.cfg.TierBHours, s.cfg.TierAVelocityThreshold, s.cfg.TierBVelocityThreshold); err != nil {
		log.Printf("tier recompute failed: %v", err)
	}

	err := s.snapshots.LeaseDue(ctx, s.cfg.MaxPerRun, func(ctx context.Context, leased []models.LeasedVideo) error {
		stats.Leased = len(leased)
		if len(leased) == 0 {
			return nil
		}

		byID := make(map[string]models.LeasedVideo, len(leased))
		ids := make([]string, 0, len(leased))
		for _, lv := range leased {
			byID[lv.VideoID] = lv
			ids = append(ids, lv.VideoID)
			touchedChannels[lv.ChannelID] = struct{}{}
		}

		for bi, batch := range chunk(ids, platform.MaxBatchIDs) {
			statsResp, err := s.client.GetVideoStats(ctx, batch)
			if err != nil {
				var qe *platform.QuotaExceededError
				if errors.As(err, &qe) {
					stats.QuotaExhausted = true
					// Release leases on IDs we never got to (this batch and
					// every later one), so they remain immediately due
					// instead of waiting out the full lease window.
					for _, id := range ids[bi*platform.MaxBatchIDs:] {
						_ = s.snapshots.ReleaseLease(ctx, id)
					}
					return nil
				}
				log.Printf("snapshot batch failed: %v", err)
				for _, id := range batch {
					_ = s.snapshots.ReleaseLease(ctx, id)
				}
				continue
			}

			now := time.Now()
			for _, stat := range statsResp {
				if err := s.snapshots.Insert(ctx, &models.Snapshot{
					VideoID:      stat.VideoID,
					CapturedAt:   now,
					ViewCount:    stat.ViewCount,
					LikeCount:    stat.LikeCount,
					CommentCount: stat.CommentCount,
				}); err != nil {
					log.Printf("snapshot insert failed for %s: %v", stat.VideoID, err)
					continue
				}

				lv := byID[stat.VideoID]
				interval := intervalForTier(lv.Tier, s.cfg)
				if err := s.snapshots.MarkSampled(ctx, stat.VideoID, interval); err != nil {
					log.Printf("mark sampled failed for %s: %v", stat.VideoID, err)
				}
				stats.Snapshotted++
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	refreshed, err := s.refreshChannels(ctx, touchedChannels)
	stats.ChannelsRefreshed = refreshed
	if err != nil {
		log.Printf("channel refresh failed: %v", err)
	}

	if _, err := s.channels.RecomputeBaselines(ctx); err != nil {
		log.Printf("baseline recompute failed: %v", err)
	}

	return stats, nil
}

func intervalForTier(tier models.SnapshotTier, cfg config.SnapshotConfig) int {
	switch tier {
	case models.TierA:
		return cfg.TierAIntervalHours
	case models.TierB:
		return cfg.TierBIntervalHours
	default:
		return cfg.TierCIntervalHours
	}
}

// refreshChannels updates metadata for any touched channel whose last
// refresh is older than ChannelRefreshHours.
func (s *Scheduler) refreshChannels(ctx context.Context, touched map[string]struct{}) (int, error) {
	var toRefresh []string
	cutoff := time.Now().Add(-time.Duration(s.cfg.ChannelRefreshHours) * time.Hour)
	for channelID := range touched {
		ch, err := s.channels.Get(ctx, channelID)
		if err != nil && err != repository.ErrNotFound {
			continue
		}
		if ch == nil || ch.LastRefreshedAt == nil || ch.LastRefreshedAt.Before(cutoff) {
			toRefresh = append(toRefresh, channelID)
		}
	}

	refreshed := 0
	for _, batch := range chunk(toRefresh, platform.MaxBatchIDs) {
		infos, err := s.client.GetChannelInfo(ctx, batch)
		if err != nil {
			return refreshed, err
		}
		for _, info := range infos {
			if err := s.channels.Upsert(ctx, &models.Channel{
				ChannelID:          info.ChannelID,
				Title:              info.Title,
				SubscriberCount:    info.SubscriberCount,
				ChannelPublishedAt: info.ChannelPublishedAt,
			}); err != nil {
				log.Printf("channel upsert failed for %s: %v", info.ChannelID, err)
				continue
			}
			refreshed++
		}
	}
	return refreshed, nil
}

func chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	var out [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}
