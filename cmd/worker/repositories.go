package main

import (
	"github.com/trendscout/worker/internal/repository"
)

// Repositories holds every store-layer dependency the pipeline stages use.
type Repositories struct {
	Videos     repository.VideoRepository
	Snapshots  repository.SnapshotRepository
	Channels   repository.ChannelRepository
	Embeddings repository.EmbeddingRepository
	Clusters   repository.ClusterRepository
	Scores     repository.ScoreRepository
	Ingestion  repository.IngestionStateRepository
}

func initRepositories(infra *Infrastructure) *Repositories {
	pool := infra.DB.Pool
	return &Repositories{
		Videos:     repository.NewVideoRepository(pool),
		Snapshots:  repository.NewSnapshotRepository(pool),
		Channels:   repository.NewChannelRepository(pool),
		Embeddings: repository.NewEmbeddingRepository(pool),
		Clusters:   repository.NewClusterRepository(pool),
		Scores:     repository.NewScoreRepository(pool),
		Ingestion:  repository.NewIngestionStateRepository(pool),
	}
}
