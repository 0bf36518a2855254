package feeders

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/internal/textutil"
	"github.com/trendscout/worker/pkg/platform"
)

const expansionFeederName = "expansion"

// ExpansionFeeder mines 2- and 3-gram phrases out of the recent top
// performers' titles and re-searches on them, looking for more videos in
// the same vein.
type ExpansionFeeder struct {
	client     *platform.Client
	scores     repository.ScoreRepository
	topN       int
	maxQueries int
	maxResults int
}

// NewExpansionFeeder builds an ExpansionFeeder.
func NewExpansionFeeder(client *platform.Client, scores repository.ScoreRepository, topN, maxQueries int) *ExpansionFeeder {
	return &ExpansionFeeder{client: client, scores: scores, topN: topN, maxQueries: maxQueries, maxResults: 25}
}

// Name implements Feeder.
func (f *ExpansionFeeder) Name() string { return expansionFeederName }

// Run implements Feeder.
func (f *ExpansionFeeder) Run(ctx context.Context, window models.Window) (<-chan Candidate, error) {
	top, err := f.scores.TopBreakouts(ctx, window, f.topN)
	if err != nil {
		return nil, err
	}

	phrases := extractPhrases(titlesFromScores(top))
	queries := topPhrases(phrases, 15)

	var candidates []Candidate
	var runErr error

	maxQueries := f.maxQueries
	if maxQueries > len(queries) {
		maxQueries = len(queries)
	}
	for i := 0; i < maxQueries; i++ {
		results, err := f.client.SearchVideos(ctx, platform.SearchParams{
			Query:      queries[i],
			MaxResults: f.maxResults,
			Order:      platform.OrderRelevance,
		})
		if err != nil {
			runErr = wrapQuota(expansionFeederName, err)
			break
		}
		for _, res := range results {
			candidates = append(candidates, Candidate{
				Feeder:       expansionFeederName,
				Seed:         queries[i],
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

// titlesFromScores extracts the joined video title TopBreakouts attaches
// to each score row.
func titlesFromScores(scores []*models.VideoScore) []string {
	titles := make([]string, 0, len(scores))
	for _, s := range scores {
		if s.Title != "" {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

// extractPhrases builds frequency-ranked 2- and 3-grams from a set of
// titles, using the shared tokenizer's stopword and minimum-length rules.
func extractPhrases(titles []string) map[string]int {
	freq := make(map[string]int)
	for _, title := range titles {
		tokens := textutil.Tokenize(title)
		for _, n := range []int{2, 3} {
			for _, gram := range textutil.NGrams(tokens, n) {
				freq[gram]++
			}
		}
	}
	return freq
}

// topPhrases frequency-ranks phrases and shuffles the top n with a
// non-global PRNG, so the expansion feeder varies its query set run to
// run without needing true randomness.
func topPhrases(freq map[string]int, n int) []string {
	type entry struct {
		phrase string
		count  int
	}
	entries := make([]entry, 0, len(freq))
	for phrase, count := range freq {
		entries = append(entries, entry{phrase, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].phrase < entries[j].phrase
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	rng := rand.New(rand.NewPCG(uint64(len(entries)), 0x5bd1e995))
	rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })

	phrases := make([]string, len(entries))
	for i, e := range entries {
		phrases[i] = e.phrase
	}
	return phrases
}
