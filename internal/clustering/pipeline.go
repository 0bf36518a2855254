package clustering

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
)

// Config holds clustering tunables, mirroring config.ClusterConfig so this
// package never imports the composition root's config package directly.
type Config struct {
	MinClusterSize int
	NComponents    int
	NNeighbors     int
	MinSamples     int
}

// Pipeline recomputes clusters for a single window: reduce, density
// cluster, identify, label, aggregate, then replace the window wholesale.
type Pipeline struct {
	videos     repository.VideoRepository
	embeddings repository.EmbeddingRepository
	clusters   repository.ClusterRepository
	cfg        Config
}

// New builds a Pipeline.
func New(videos repository.VideoRepository, embeddings repository.EmbeddingRepository, clusters repository.ClusterRepository, cfg Config) *Pipeline {
	return &Pipeline{videos: videos, embeddings: embeddings, clusters: clusters, cfg: cfg}
}

// RunStats summarizes a single clustering pass.
type RunStats struct {
	ClustersFound int
	NoiseCount    int
}

// Run reduces and clusters every video with an embedding in window,
// labels each non-noise cluster, and replaces the window's cluster set.
func (p *Pipeline) Run(ctx context.Context, window models.Window) (RunStats, error) {
	var stats RunStats

	videos, err := p.videos.ListForWindow(ctx, window)
	if err != nil {
		return stats, err
	}
	byID := make(map[string]*models.DiscoveredVideo, len(videos))
	for _, v := range videos {
		byID[v.VideoID] = v
	}

	embeddings, err := p.embeddings.ListForWindow(ctx, window)
	if err != nil {
		return stats, err
	}

	videoIDs := make([]string, 0, len(embeddings))
	for id := range embeddings {
		if _, ok := byID[id]; !ok {
			continue
		}
		videoIDs = append(videoIDs, id)
	}
	sort.Strings(videoIDs)

	if len(videoIDs) == 0 {
		return stats, p.clusters.ReplaceWindow(ctx, window, nil, nil)
	}

	indexed := make([][]float32, len(videoIDs))
	for i, id := range videoIDs {
		indexed[i] = l2Normalize(embeddings[id].Vector)
	}

	reduced := Reduce(indexed, p.cfg.NComponents, p.cfg.NNeighbors)
	labels := DensityCluster(reduced, p.cfg.MinClusterSize, p.cfg.MinSamples)

	byLabel := make(map[int][]int)
	for i, l := range labels {
		if l == NoiseLabel {
			stats.NoiseCount++
			continue
		}
		byLabel[l] = append(byLabel[l], i)
	}

	var clusters []*models.Cluster
	var memberships []*models.ClusterMembership
	now := time.Now()

	for _, memberIdx := range byLabel {
		memberIDs := make([]string, len(memberIdx))
		for i, idx := range memberIdx {
			memberIDs[i] = videoIDs[idx]
		}
		sort.Strings(memberIDs)

		clusterID := ClusterID(string(window), memberIDs)

		titles := make([]string, len(memberIDs))
		for i, id := range memberIDs {
			titles[i] = byID[id].Title
		}
		keywords := ExtractKeywords(titles)
		label := Label(keywords)

		metrics := aggregateMetrics(memberIDs, byID, now)

		clusters = append(clusters, &models.Cluster{
			ClusterID:  clusterID,
			Window:     window,
			Label:      label,
			Keywords:   keywords,
			Metrics:    metrics,
			ComputedAt: now,
		})
		for rank, id := range memberIDs {
			memberships = append(memberships, &models.ClusterMembership{
				ClusterID:     clusterID,
				VideoID:       id,
				RankInCluster: rank,
			})
		}
		stats.ClustersFound++
	}

	if err := p.clusters.ReplaceWindow(ctx, window, clusters, memberships); err != nil {
		return stats, err
	}
	return stats, nil
}

func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func aggregateMetrics(memberIDs []string, byID map[string]*models.DiscoveredVideo, now time.Time) models.ClusterMetrics {
	channels := make(map[string]struct{})
	var totalAgeDays float64

	for _, id := range memberIDs {
		v := byID[id]
		channels[v.ChannelID] = struct{}{}
		ageDays := now.Sub(v.PublishedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		totalAgeDays += ageDays
	}

	avgDaysOld := 0.0
	if len(memberIDs) > 0 {
		avgDaysOld = totalAgeDays / float64(len(memberIDs))
	}

	return models.ClusterMetrics{
		UniqueChannels: len(channels),
		TotalVideos:    len(memberIDs),
		AvgDaysOld:     avgDaysOld,
	}
}
