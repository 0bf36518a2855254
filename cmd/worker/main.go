package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trendscout/worker/config"
	"github.com/trendscout/worker/internal/models"
)

// processLoopIntervalMinutes paces --mode process runs; unlike ingest and
// snapshot, scoring/clustering/ranking have no per-tier schedule of their
// own, so there is no matching config knob to read here.
const processLoopIntervalMinutes = 15

func main() {
	if len(os.Args) > 1 {
		if code, handled := dispatchSubcommand(os.Args[1], os.Args[2:]); handled {
			os.Exit(code)
		}
	}

	mode := flag.String("mode", "all", "pipeline stage to run: all, ingest, snapshot, process")
	windowFlag := flag.String("window", "", "window to restrict process/score/cluster/rank to (24h, 7d, 30d, 90d); empty means every window")
	once := flag.Bool("once", false, "run the selected stage a single time and exit, instead of looping")
	flag.Parse()

	window := models.Window(*windowFlag)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	infra := initInfrastructure(cfg)
	defer infra.Close()

	repos := initRepositories(infra)
	svcs := initServices(infra, repos)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		<-shutdown
		log.Println("shutdown signal received, finishing current pass...")
		cancel()
		close(stopped)
	}()

	runStage := func(ctx context.Context) {
		switch *mode {
		case "ingest":
			runIngest(ctx, svcs, repos, window)
		case "snapshot":
			runSnapshot(ctx, svcs)
		case "process":
			runProcess(ctx, svcs, window)
		case "all":
			runIngest(ctx, svcs, repos, window)
			runSnapshot(ctx, svcs)
			runProcess(ctx, svcs, window)
		default:
			fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
			os.Exit(1)
		}
	}

	if *once {
		runStage(ctx)
		os.Exit(0)
	}

	intervalMinutes := cfg.Ingest.LoopIntervalMinutes
	if *mode == "snapshot" {
		intervalMinutes = cfg.Snapshot.LoopIntervalMinutes
	} else if *mode == "process" {
		intervalMinutes = processLoopIntervalMinutes
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	for {
		select {
		case <-ctx.Done():
			goto drained
		default:
		}

		runStage(ctx)

		waited := time.Duration(0)
		for waited < interval {
			select {
			case <-ctx.Done():
				goto drained
			default:
			}
			time.Sleep(time.Second)
			waited += time.Second
		}
	}

drained:
	<-stopped
	log.Println("worker exited on signal")
	os.Exit(130)
}
