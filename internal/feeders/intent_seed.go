package feeders

import (
	"context"
	"fmt"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/pkg/platform"
)

// intentSeedsV1 is the fixed, ordered list of short intent patterns the
// intent-seed feeder cycles through. Versioned because changing this list
// materially changes which niches get discovered; bump the variable name
// (intentSeedsV2, etc.) rather than editing in place if the list needs to
// change meaning rather than just grow.
var intentSeedsV1 = []string{
	"how to", "tutorial", "review", "unboxing", "vs comparison",
	"day in the life", "explained", "beginner guide", "tips and tricks",
	"top 10", "best of", "worst", "mistakes to avoid", "before you buy",
	"first impressions", "long term review", "setup guide", "build guide",
	"behind the scenes", "reaction", "challenge", "experiment",
	"what happens if", "why does", "how does", "guide for beginners",
	"advanced guide", "cheat sheet", "walkthrough", "playthrough",
	"speedrun", "full tutorial", "crash course", "deep dive",
	"everything you need to know", "common mistakes", "pros and cons",
	"is it worth it", "budget build", "premium build", "comparison test",
	"side by side", "blind test", "taste test", "honest review",
	"one month later", "one year later", "update", "patch notes reaction",
	"tier list", "ranking", "worst to best", "hidden gems",
	"underrated", "overrated", "hot take", "myth busting", "fact check",
	"q&a", "ask me anything", "live reaction", "recap", "highlights",
	"compilation", "fails compilation", "wins compilation", "bloopers",
	"making of", "how it's made", "teardown", "repair guide",
	"troubleshooting", "fix it", "upgrade guide", "downgrade",
	"alternative to", "dupe test", "knockoff vs original", "generation comparison",
	"old vs new", "then and now", "evolution of", "history of",
	"origin story", "documentary", "explained simply", "for dummies",
	"quick guide", "in depth review",
}

// orderForWindow picks the search ordering the intent-seed feeder uses for a given
// window: recent windows favor freshness, wider windows favor popularity.
func orderForWindow(window models.Window) platform.SearchOrder {
	if window == models.Window24h {
		return platform.OrderDate
	}
	return platform.OrderViewCount
}

const intentSeedFeederName = "intent_seed"

// IntentSeedFeeder issues one search per seed in intentSeedsV1, advancing
// a persisted cursor by seedsPerRun each invocation and wrapping at the
// end of the list.
type IntentSeedFeeder struct {
	client       *platform.Client
	state        repository.IngestionStateRepository
	seedsPerRun  int
	maxResults   int
}

// NewIntentSeedFeeder builds an IntentSeedFeeder.
func NewIntentSeedFeeder(client *platform.Client, state repository.IngestionStateRepository, seedsPerRun int) *IntentSeedFeeder {
	return &IntentSeedFeeder{client: client, state: state, seedsPerRun: seedsPerRun, maxResults: 25}
}

// Name implements Feeder.
func (f *IntentSeedFeeder) Name() string { return intentSeedFeederName }

// Run implements Feeder.
func (f *IntentSeedFeeder) Run(ctx context.Context, window models.Window) (<-chan Candidate, error) {
	cursor := 0
	st, err := f.state.Get(ctx, intentSeedFeederName)
	if err != nil && err != repository.ErrNotFound {
		return nil, fmt.Errorf("loading intent-seed cursor: %w", err)
	}
	if st != nil {
		cursor = st.CursorPosition
	}

	n := f.seedsPerRun
	if n <= 0 || n > len(intentSeedsV1) {
		n = len(intentSeedsV1)
	}
	seeds := make([]string, 0, n)
	for i := 0; i < n; i++ {
		seeds = append(seeds, intentSeedsV1[(cursor+i)%len(intentSeedsV1)])
	}

	var candidates []Candidate
	var runErr error

	for _, seed := range seeds {
		results, err := f.client.SearchVideos(ctx, platform.SearchParams{
			Query:      seed,
			MaxResults: f.maxResults,
			Order:      orderForWindow(window),
		})
		if err != nil {
			runErr = wrapQuota(intentSeedFeederName, err)
			break
		}
		for _, res := range results {
			candidates = append(candidates, Candidate{
				Feeder:       intentSeedFeederName,
				Seed:         seed,
				VideoID:      res.VideoID,
				ChannelID:    res.ChannelID,
				ChannelTitle: res.ChannelTitle,
				Title:        res.Title,
				ThumbnailURL: strPtr(res.ThumbnailURL),
				PublishedAt:  res.PublishedAt,
			})
		}
	}

	newCursor := (cursor + n) % len(intentSeedsV1)
	_ = f.state.Upsert(ctx, &models.IngestionState{
		Feeder:             intentSeedFeederName,
		CursorPosition:     newCursor,
		LastRunAt:          timePtr(),
		VideosAddedLastRun: len(candidates),
		TotalVideosAdded:   totalAdded(st, len(candidates)),
	})

	out := make(chan Candidate, len(candidates))
	for _, c := range candidates {
		out <- c
	}
	close(out)

	return out, runErr
}

func totalAdded(prior *models.IngestionState, added int) int {
	if prior == nil {
		return added
	}
	return prior.TotalVideosAdded + added
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr() *time.Time {
	t := time.Now()
	return &t
}
