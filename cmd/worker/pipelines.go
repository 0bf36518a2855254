package main

import (
	"context"
	"log"
	"time"

	"github.com/trendscout/worker/internal/feeders"
	"github.com/trendscout/worker/internal/gating"
	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/pkg/metrics"
	"github.com/trendscout/worker/pkg/sentry"
)

// runIngest runs every feeder, gates each candidate, and admits the
// survivors. A candidate carrying a free-feed view count gets its first
// snapshot recorded immediately rather than waiting for the next
// snapshot-scheduler pass, so a channel amplified through the zero-quota
// feed is never left with a stale view count until its tier interval elapses.
func runIngest(ctx context.Context, svcs *Services, repos *Repositories, window models.Window) {
	sentry.WithRunTag(ctx, "ingest", string(window))

	candidates, feederStats := svcs.Feeders.Run(ctx, window)
	for feeder, exhausted := range feederStats.QuotaExhausted {
		if exhausted {
			metrics.QuotaExhaustedTotal.WithLabelValues(feeder).Inc()
		}
	}

	admitted := admitCandidates(ctx, svcs, repos, "ingest", candidates)

	metrics.JobItemsProcessed.WithLabelValues("ingest", "admitted").Add(float64(admitted))
	metrics.JobItemsProcessed.WithLabelValues("ingest", "rejected").Add(float64(feederStats.TotalCandidates - admitted))
	log.Printf("ingest: %d candidates, %d admitted", feederStats.TotalCandidates, admitted)
}

// admitCandidates gates a batch of candidates and inserts the survivors,
// recording an initial snapshot for any candidate that already carries a
// view count. It is shared by the ingest pipeline and the rss-expand
// subcommand, which both produce feeders.Candidate values outside of a
// full runner pass.
func admitCandidates(ctx context.Context, svcs *Services, repos *Repositories, label string, candidates []feeders.Candidate) int {
	admitted := 0
	for _, c := range candidates {
		reason, err := svcs.Gate.Evaluate(ctx, gating.Candidate{
			VideoID:     c.VideoID,
			ChannelID:   c.ChannelID,
			PublishedAt: c.PublishedAt,
		})
		if err != nil {
			log.Printf("%s: gate evaluation failed for %s: %v", label, c.VideoID, err)
			sentry.CaptureException(ctx, err)
			continue
		}
		if reason != gating.RejectionNone {
			metrics.GateRejectionsTotal.WithLabelValues(c.Feeder, string(reason)).Inc()
			continue
		}

		now := time.Now()
		v := &models.DiscoveredVideo{
			VideoID:      c.VideoID,
			ChannelID:    c.ChannelID,
			ChannelTitle: c.ChannelTitle,
			Title:        c.Title,
			ThumbnailURL: c.ThumbnailURL,
			PublishedAt:  c.PublishedAt,
			Feeder:       c.Feeder,
			Seed:         seedPtr(c.Seed),
			FirstSeenAt:  now,
			LastSeenAt:   now,
			Tier:         models.TierC,
		}
		if err := repos.Videos.Insert(ctx, v); err != nil {
			log.Printf("%s: insert failed for %s: %v", label, c.VideoID, err)
			sentry.CaptureException(ctx, err)
			continue
		}

		if c.ViewCount != nil {
			snap := &models.Snapshot{
				VideoID:    c.VideoID,
				CapturedAt: now,
				ViewCount:  *c.ViewCount,
			}
			if err := repos.Snapshots.Insert(ctx, snap); err != nil {
				log.Printf("%s: initial snapshot failed for %s: %v", label, c.VideoID, err)
			}
		}

		admitted++
	}
	return admitted
}

func seedPtr(seed string) *string {
	if seed == "" {
		return nil
	}
	return &seed
}

// runSnapshot leases and re-samples due videos, then refreshes channel
// metadata and baselines.
func runSnapshot(ctx context.Context, svcs *Services) {
	sentry.WithRunTag(ctx, "snapshot", "")

	stats, err := svcs.Snapshot.Run(ctx)
	if err != nil {
		log.Printf("snapshot: run failed: %v", err)
		sentry.CaptureException(ctx, err)
		return
	}
	if stats.QuotaExhausted {
		metrics.QuotaExhaustedTotal.WithLabelValues("snapshot").Inc()
	}
	metrics.SnapshotLeasesTotal.WithLabelValues("sampled").Add(float64(stats.Snapshotted))
	metrics.JobItemsProcessed.WithLabelValues("snapshot", "success").Add(float64(stats.Snapshotted))
	log.Printf("snapshot: leased=%d snapshotted=%d channels_refreshed=%d quota_exhausted=%t",
		stats.Leased, stats.Snapshotted, stats.ChannelsRefreshed, stats.QuotaExhausted)
}

// runProcess embeds pending videos, then clusters, scores, and ranks the
// given window, or every window in turn when window is empty.
func runProcess(ctx context.Context, svcs *Services, window models.Window) {
	sentry.WithRunTag(ctx, "process", string(window))

	for {
		stats, err := svcs.Embedding.Run(ctx)
		if err != nil {
			log.Printf("process: embedding failed: %v", err)
			sentry.CaptureException(ctx, err)
			break
		}
		if stats.Embedded == 0 && stats.Failed == 0 {
			break
		}
		log.Printf("process: embedded=%d failed=%d", stats.Embedded, stats.Failed)
		if stats.Embedded == 0 {
			break
		}
	}

	windows := []models.Window{window}
	if window == "" {
		windows = models.AllWindows
	}

	for _, w := range windows {
		clusterStats, err := svcs.Clustering.Run(ctx, w)
		if err != nil {
			log.Printf("process: clustering failed for window %s: %v", w, err)
			sentry.CaptureException(ctx, err)
			continue
		}
		metrics.ClustersFound.WithLabelValues(string(w)).Set(float64(clusterStats.ClustersFound))
		metrics.NoisePointsTotal.WithLabelValues(string(w)).Set(float64(clusterStats.NoiseCount))
		log.Printf("process: window=%s clusters=%d noise=%d", w, clusterStats.ClustersFound, clusterStats.NoiseCount)

		scoreStats, err := svcs.Scoring.Run(ctx, w)
		if err != nil {
			log.Printf("process: scoring failed for window %s: %v", w, err)
			sentry.CaptureException(ctx, err)
			continue
		}
		log.Printf("process: window=%s scored=%d failed=%d", w, scoreStats.Scored, scoreStats.Failed)

		rankStats, err := svcs.Ranking.Run(ctx, w)
		if err != nil {
			log.Printf("process: ranking failed for window %s: %v", w, err)
			sentry.CaptureException(ctx, err)
			continue
		}
		log.Printf("process: window=%s ranked=%d", w, rankStats.Ranked)
	}
}
