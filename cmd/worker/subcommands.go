package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/trendscout/worker/config"
	"github.com/trendscout/worker/internal/feeders"
	"github.com/trendscout/worker/internal/models"
)

// subcommandNames lists the verbs handled here instead of by the
// --mode flag on the default invocation, consolidating what the teacher
// split across several single-purpose binaries into one.
var subcommandNames = map[string]bool{
	"embed":      true,
	"cluster":    true,
	"score":      true,
	"rank":       true,
	"rss-expand": true,
}

// dispatchSubcommand runs name as a flag.NewFlagSet subcommand if it is
// one of subcommandNames, returning handled=false for anything else so
// main falls through to the default --mode flag parsing.
func dispatchSubcommand(name string, args []string) (code int, handled bool) {
	if !subcommandNames[name] {
		return 0, false
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	windowFlag := fs.String("window", "", "window to restrict to (24h, 7d, 30d, 90d); empty means every window")
	fs.Parse(args)
	window := models.Window(*windowFlag)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	infra := initInfrastructure(cfg)
	defer infra.Close()

	repos := initRepositories(infra)
	svcs := initServices(infra, repos)

	ctx := context.Background()

	windows := []models.Window{window}
	if window == "" {
		windows = models.AllWindows
	}

	switch name {
	case "embed":
		for {
			stats, err := svcs.Embedding.Run(ctx)
			if err != nil {
				log.Printf("embed: %v", err)
				return 1, true
			}
			log.Printf("embed: embedded=%d failed=%d", stats.Embedded, stats.Failed)
			if stats.Embedded == 0 {
				break
			}
		}

	case "cluster":
		for _, w := range windows {
			stats, err := svcs.Clustering.Run(ctx, w)
			if err != nil {
				log.Printf("cluster: window=%s: %v", w, err)
				return 1, true
			}
			log.Printf("cluster: window=%s clusters=%d noise=%d", w, stats.ClustersFound, stats.NoiseCount)
		}

	case "score":
		for _, w := range windows {
			stats, err := svcs.Scoring.Run(ctx, w)
			if err != nil {
				log.Printf("score: window=%s: %v", w, err)
				return 1, true
			}
			log.Printf("score: window=%s scored=%d failed=%d", w, stats.Scored, stats.Failed)
		}

	case "rank":
		for _, w := range windows {
			stats, err := svcs.Ranking.Run(ctx, w)
			if err != nil {
				log.Printf("rank: window=%s: %v", w, err)
				return 1, true
			}
			log.Printf("rank: window=%s ranked=%d", w, stats.Ranked)
		}

	case "rss-expand":
		// Runs only the expansion feeder, bypassing intent-seed, long-tail,
		// and free-feed: useful for manually widening coverage around the
		// current top scores without waiting for the next full ingest pass.
		runWindow := window
		if runWindow == "" {
			runWindow = models.Window7d
		}
		expansion := feeders.NewExpansionFeeder(infra.Platform, repos.Scores, 10, cfg.Ingest.ExpansionQueriesMax)
		ch, err := expansion.Run(ctx, runWindow)
		if err != nil {
			log.Printf("rss-expand: %v", err)
			return 1, true
		}
		var candidates []feeders.Candidate
		for c := range ch {
			candidates = append(candidates, c)
		}
		admitted := admitCandidates(ctx, svcs, repos, "rss-expand", candidates)
		log.Printf("rss-expand: %d candidates, %d admitted", len(candidates), admitted)

	default:
		fmt.Fprintf(os.Stderr, "unhandled subcommand %q\n", name)
		return 1, true
	}

	return 0, true
}
