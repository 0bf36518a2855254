// Package embedding drives title embedding generation for videos the
// clustering pipeline will later group.
package embedding

import (
	"context"
	"log"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
)

// Generator is the subset of services.EmbeddingService the pipeline needs,
// named here so this package doesn't import the HTTP-facing service
// concretely.
type Generator interface {
	GenerateVideoEmbedding(ctx context.Context, title, channelTitle string) ([]float32, error)
}

// Pipeline embeds every discovered video missing one, in batches.
type Pipeline struct {
	videos     repository.VideoRepository
	embeddings repository.EmbeddingRepository
	generator  Generator
	model      string
	batchSize  int
}

// New builds a Pipeline.
func New(videos repository.VideoRepository, embeddings repository.EmbeddingRepository, generator Generator, model string, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Pipeline{videos: videos, embeddings: embeddings, generator: generator, model: model, batchSize: batchSize}
}

// RunStats summarizes a single embedding pass.
type RunStats struct {
	Embedded int
	Failed   int
}

// Run embeds up to batchSize videos missing an embedding. It is meant to be
// called repeatedly by the composition root's loop driver rather than
// looping internally, so a single pass never runs unbounded.
func (p *Pipeline) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	videos, err := p.videos.ListMissingEmbedding(ctx, p.batchSize)
	if err != nil {
		return stats, err
	}
	if len(videos) == 0 {
		return stats, nil
	}

	for _, v := range videos {
		vector, err := p.generator.GenerateVideoEmbedding(ctx, v.Title, v.ChannelTitle)
		if err != nil {
			log.Printf("embedding: video %s failed: %v", v.VideoID, err)
			stats.Failed++
			continue
		}

		e := &models.Embedding{
			VideoID:    v.VideoID,
			Vector:     vector,
			Model:      p.model,
			EmbeddedAt: time.Now(),
		}
		if err := p.embeddings.Upsert(ctx, e); err != nil {
			return stats, err
		}
		stats.Embedded++
	}

	return stats, nil
}
