package feeders

import (
	"context"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/pkg/platform"
)

const freeFeedFeederName = "free_feed"

// FreeFeedFeeder pulls each of the most recently seen channels' free,
// zero-quota feed and emits items not already known, amplifying known-good
// channels without spending search budget.
type FreeFeedFeeder struct {
	client       *platform.Client
	videos       repository.VideoRepository
	channelCount int
}

// NewFreeFeedFeeder builds a FreeFeedFeeder.
func NewFreeFeedFeeder(client *platform.Client, videos repository.VideoRepository, channelCount int) *FreeFeedFeeder {
	return &FreeFeedFeeder{client: client, videos: videos, channelCount: channelCount}
}

// Name implements Feeder.
func (f *FreeFeedFeeder) Name() string { return freeFeedFeederName }

// Run implements Feeder.
func (f *FreeFeedFeeder) Run(ctx context.Context, window models.Window) (<-chan Candidate, error) {
	channelIDs, err := f.videos.RecentChannelIDs(ctx, f.channelCount)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, channelID := range channelIDs {
		items, err := f.client.FetchChannelFeed(ctx, channelID)
		if err != nil {
			// Per-item/per-channel feed failures are non-fatal: a single
			// unreachable or malformed channel feed should not abort the
			// whole free-feed pass.
			continue
		}
		for _, item := range items {
			exists, err := f.videos.Exists(ctx, item.VideoID)
			if err != nil || exists {
				continue
			}
			candidates = append(candidates, Candidate{
				Feeder:       freeFeedFeederName,
				Seed:         channelID,
				VideoID:      item.VideoID,
				ChannelID:    channelID,
				Title:        item.Title,
				ThumbnailURL: strPtr(item.ThumbnailURL),
				PublishedAt:  item.PublishedAt,
				ViewCount:    item.ViewCount,
			})
		}
	}

	out := make(chan Candidate, len(candidates))
	for _, c := range candidates {
		out <- c
	}
	close(out)
	return out, nil
}
