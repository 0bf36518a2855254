package main

import (
	"time"

	"github.com/trendscout/worker/internal/clustering"
	"github.com/trendscout/worker/internal/embedding"
	"github.com/trendscout/worker/internal/feeders"
	"github.com/trendscout/worker/internal/gating"
	"github.com/trendscout/worker/internal/ranking"
	"github.com/trendscout/worker/internal/scoring"
	"github.com/trendscout/worker/internal/snapshot"
)

// Services holds every pipeline-stage component, wired against Repositories
// and Infrastructure.
type Services struct {
	Gate       *gating.Gate
	Feeders    *feeders.Runner
	Snapshot   *snapshot.Scheduler
	Scoring    *scoring.Scorer
	Clustering *clustering.Pipeline
	Ranking    *ranking.Ranker
	Embedding  *embedding.Pipeline
}

func initServices(infra *Infrastructure, repos *Repositories) *Services {
	cfg := infra.Config

	gate := gating.New(repos.Videos, gating.Config{
		ChannelCapWindow: 24 * time.Hour,
		MaxPerChannel:    cfg.Ingest.MaxPerChannel,
	})

	runner := feeders.NewRunner(
		feeders.NewIntentSeedFeeder(infra.Platform, repos.Ingestion, cfg.Ingest.SeedsPerRun),
		feeders.NewExpansionFeeder(infra.Platform, repos.Scores, 10, cfg.Ingest.ExpansionQueriesMax),
		feeders.NewLongTailFeeder(infra.Platform, repos.Videos, 50, cfg.Ingest.LongTailQueriesMax),
		feeders.NewFreeFeedFeeder(infra.Platform, repos.Videos, cfg.Ingest.FreeFeedChannels),
	)

	sched := snapshot.New(repos.Snapshots, repos.Channels, repos.Videos, infra.Platform, cfg.Snapshot)

	scorer := scoring.New(repos.Videos, repos.Snapshots, repos.Channels, repos.Scores)

	pipeline := clustering.New(repos.Videos, repos.Embeddings, repos.Clusters, clustering.Config{
		MinClusterSize: cfg.Cluster.MinClusterSize,
		NComponents:    cfg.Cluster.NComponents,
		NNeighbors:     cfg.Cluster.NNeighbors,
		MinSamples:     cfg.Cluster.MinSamples,
	})

	ranker := ranking.New(repos.Clusters, repos.Scores, repos.Channels, repos.Videos)

	embedder := embedding.New(repos.Videos, repos.Embeddings, infra.Embedder, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	return &Services{
		Gate:       gate,
		Feeders:    runner,
		Snapshot:   sched,
		Scoring:    scorer,
		Clustering: pipeline,
		Ranking:    ranker,
		Embedding:  embedder,
	}
}
