package feeders

import (
	"context"
	"math/rand/v2"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/internal/textutil"
	"github.com/trendscout/worker/pkg/platform"
)

const longTailFeederName = "long_tail"

// LongTailFeeder samples a keyword corpus from recently ingested titles
// and Cartesian-joins it with a random subset of intent seeds to form
// "<intent> <keyword>" phrases.
type LongTailFeeder struct {
	client        *platform.Client
	videos        repository.VideoRepository
	titleSample   int
	maxQueries    int
	maxResults    int
}

// NewLongTailFeeder builds a LongTailFeeder.
func NewLongTailFeeder(client *platform.Client, videos repository.VideoRepository, titleSample, maxQueries int) *LongTailFeeder {
	return &LongTailFeeder{client: client, videos: videos, titleSample: titleSample, maxQueries: maxQueries, maxResults: 25}
}

// Name implements Feeder.
func (f *LongTailFeeder) Name() string { return longTailFeederName }

// Run implements Feeder.
func (f *LongTailFeeder) Run(ctx context.Context, window models.Window) (<-chan Candidate, error) {
	titles, err := f.videos.RecentTitles(ctx, window, f.titleSample)
	if err != nil {
		return nil, err
	}

	keywordSet := make(map[string]struct{})
	for _, title := range titles {
		for _, tok := range textutil.Tokenize(title) {
			keywordSet[tok] = struct{}{}
		}
	}
	keywords := make([]string, 0, len(keywordSet))
	for k := range keywordSet {
		keywords = append(keywords, k)
	}

	rng := rand.New(rand.NewPCG(uint64(len(keywords)), 0x9e3779b9))
	rng.Shuffle(len(keywords), func(i, j int) { keywords[i], keywords[j] = keywords[j], keywords[i] })

	seedSample := sampleIntentSeeds(rng, 5)

	var phrases []string
	for _, seed := range seedSample {
		for _, kw := range keywords {
			phrases = append(phrases, seed+" "+kw)
		}
	}
	rng.Shuffle(len(phrases), func(i, j int) { phrases[i], phrases[j] = phrases[j], phrases[i] })

	maxQueries := f.maxQueries
	if maxQueries > len(phrases) {
		maxQueries = len(phrases)
	}

	var candidates []Candidate
	var runErr error

	for i := 0; i < maxQueries; i++ {
		results, err := f.client.SearchVideos(ctx, platform.SearchParams{
			Query:      phrases[i],
			MaxResults: f.maxResults,
			Order:      platform.OrderDate,
		})
		if err != nil {
			runErr = wrapQuota(longTailFeederName, err)
			break
		}
		for _, res := range results {
			candidates = append(candidates, Candidate{
				Feeder:       longTailFeederName,
				Seed:         phrases[i],
				VideoID:      res.VideoID,
				ChannelID:    res.ChannelID,
				ChannelTitle: res.ChannelTitle,
				Title:        res.Title,
				ThumbnailURL: strPtr(res.ThumbnailURL),
				PublishedAt:  res.PublishedAt,
			})
		}
	}

	out := make(chan Candidate, len(candidates))
	for _, c := range candidates {
		out <- c
	}
	close(out)
	return out, runErr
}

// sampleIntentSeeds picks n seeds from intentSeedsV1 without replacement
// using the long-tail feeder's own PRNG, independent of the intent-seed
// feeder's cursor.
func sampleIntentSeeds(rng *rand.Rand, n int) []string {
	if n > len(intentSeedsV1) {
		n = len(intentSeedsV1)
	}
	idx := rng.Perm(len(intentSeedsV1))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = intentSeedsV1[j]
	}
	return out
}
