// Package ranking aggregates per-cluster opportunity metrics from member
// videos' scores and channels.
package ranking

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
)

// avgSubsFloor and concentrationFloor are the denominator defaults used
// when a cluster's average subscriber count or winner concentration
// cannot be computed.
const (
	avgSubsFloor       = 100_000.0
	concentrationFloor = 0.5
)

// Ranker recomputes ClusterMetrics for every cluster in a window.
type Ranker struct {
	clusters repository.ClusterRepository
	scores   repository.ScoreRepository
	channels repository.ChannelRepository
	videos   repository.VideoRepository
}

// New builds a Ranker.
func New(clusters repository.ClusterRepository, scores repository.ScoreRepository, channels repository.ChannelRepository, videos repository.VideoRepository) *Ranker {
	return &Ranker{clusters: clusters, scores: scores, channels: channels, videos: videos}
}

// RunStats summarizes a single ranking pass.
type RunStats struct {
	Ranked int
}

// Run recomputes and persists metrics for every cluster in window.
func (r *Ranker) Run(ctx context.Context, window models.Window) (RunStats, error) {
	var stats RunStats

	clusters, err := r.clusters.ListForWindow(ctx, window)
	if err != nil {
		return stats, err
	}

	// Metrics are written back onto the same Cluster rows and rewritten via
	// ReplaceWindow so a ranking pass never mints new cluster_ids.
	var allMemberships []*models.ClusterMembership
	for _, c := range clusters {
		members, err := r.clusters.MembersOf(ctx, c.ClusterID)
		if err != nil {
			return stats, err
		}
		metrics, err := r.aggregateCluster(ctx, window, members)
		if err != nil {
			return stats, err
		}
		c.Metrics = metrics
		allMemberships = append(allMemberships, members...)
		stats.Ranked++
	}

	if err := r.clusters.ReplaceWindow(ctx, window, clusters, allMemberships); err != nil {
		return stats, err
	}

	return stats, nil
}

func (r *Ranker) aggregateCluster(ctx context.Context, window models.Window, members []*models.ClusterMembership) (models.ClusterMetrics, error) {
	var velocities []float64
	var subs []float64
	var viewCounts []float64
	channels := make(map[string]struct{})
	var totalAgeDays float64
	count := 0

	for _, m := range members {
		score, err := r.scores.Get(ctx, m.VideoID, window)
		if err != nil && err != repository.ErrNotFound {
			return models.ClusterMetrics{}, err
		}
		if score != nil {
			if score.Velocity24h != nil {
				velocities = append(velocities, *score.Velocity24h)
			}
			viewCounts = append(viewCounts, float64(score.ViewCount))
		}

		v, err := r.videos.Get(ctx, m.VideoID)
		if err != nil && err != repository.ErrNotFound {
			return models.ClusterMetrics{}, err
		}
		if v == nil {
			continue
		}
		channels[v.ChannelID] = struct{}{}
		count++
		if ageDays := time.Since(v.PublishedAt).Hours() / 24; ageDays > 0 {
			totalAgeDays += ageDays
		}

		ch, err := r.channels.Get(ctx, v.ChannelID)
		if err == nil && ch != nil && ch.SubscriberCount != nil {
			subs = append(subs, float64(*ch.SubscriberCount))
		}
	}

	medianVelocity := medianPtr(velocities)
	var avgSubs *float64
	if len(subs) > 0 {
		a := mean(subs)
		avgSubs = &a
	}
	concentration := gini(viewCounts)

	opportunity := opportunityScore(medianVelocity, avgSubs, concentration)

	var avgDaysOld float64
	if count > 0 {
		avgDaysOld = totalAgeDays / float64(count)
	}

	return models.ClusterMetrics{
		MedianVelocity:      medianVelocity,
		UniqueChannels:      len(channels),
		TotalVideos:         len(members),
		AvgDaysOld:          avgDaysOld,
		WinnerConcentration: concentration,
		AvgChannelSubs:      avgSubs,
		OpportunityScore:    opportunity,
	}, nil
}

// opportunityScore applies `median_velocity / ((avg_subs_or_100k / 100k) *
// (1 + concentration_or_0.5))`, falling back to median_velocity itself
// when that denominator factor collapses to zero, and returning nil when
// there is no median velocity at all.
func opportunityScore(medianVelocity, avgSubs *float64, concentration float64) *float64 {
	if medianVelocity == nil {
		return nil
	}
	subs := avgSubsFloor
	if avgSubs != nil {
		subs = *avgSubs
	}
	conc := concentrationFloor
	if concentration > 0 {
		conc = concentration
	}

	denominator := (subs / avgSubsFloor) * (1 + conc)
	if denominator == 0 {
		v := *medianVelocity
		return &v
	}
	v := *medianVelocity / denominator
	return &v
}

func medianPtr(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := median(values)
	return &m
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// gini computes the Gini coefficient of a set of non-negative values,
// clamped to [0,1]. Fewer than 2 members or an all-zero total return 0.
func gini(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	if total == 0 {
		return 0
	}

	var weightedSum float64
	for i, v := range sorted {
		weightedSum += float64(i+1) * v
	}

	g := (2*weightedSum)/(float64(n)*total) - float64(n+1)/float64(n)
	return math.Max(0, math.Min(1, g))
}
