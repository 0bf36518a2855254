package main

import (
	"context"
	"log"

	"github.com/trendscout/worker/config"
	"github.com/trendscout/worker/internal/services"
	"github.com/trendscout/worker/pkg/database"
	"github.com/trendscout/worker/pkg/platform"
	redispkg "github.com/trendscout/worker/pkg/redis"
	sentrypkg "github.com/trendscout/worker/pkg/sentry"
	"github.com/trendscout/worker/pkg/telemetry"
)

// Infrastructure holds the process's core clients, initialized once at
// startup and shared across every pipeline stage.
type Infrastructure struct {
	DB       *database.DB
	Redis    *redispkg.Client
	Quota    *platform.QuotaGovernor
	Platform *platform.Client
	Embedder *services.EmbeddingService
	Config   *config.Config
}

func initInfrastructure(cfg *config.Config) *Infrastructure {
	telemetryCfg := &telemetry.Config{
		Enabled:          cfg.Telemetry.Enabled,
		ServiceName:      cfg.Telemetry.ServiceName,
		ServiceVersion:   cfg.Telemetry.ServiceVersion,
		OTLPEndpoint:     cfg.Telemetry.OTLPEndpoint,
		Insecure:         cfg.Telemetry.Insecure,
		TracesSampleRate: cfg.Telemetry.TracesSampleRate,
		Environment:      cfg.Telemetry.Environment,
	}
	if err := telemetry.Init(telemetryCfg); err != nil {
		log.Printf("WARNING: telemetry init failed: %v", err)
	}

	db, err := database.NewDBWithTracing(&cfg.Database, cfg.Telemetry.Enabled)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	redisClient, err := redispkg.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	if err := sentrypkg.Init(&cfg.Sentry); err != nil {
		log.Printf("WARNING: sentry init failed: %v", err)
	}

	quota := platform.NewQuotaGovernor(cfg.Quota.DailyLimit, cfg.Quota.Buffer, cfg.Platform.BillingTZOffsetHours)

	platformClient, err := platform.NewClient(cfg.Platform, quota)
	if err != nil {
		log.Fatalf("failed to build platform client: %v", err)
	}
	if cfg.Telemetry.Enabled {
		platformClient.WrapTransport(telemetry.WrapHTTPClient)
	}

	embedder := services.NewEmbeddingService(&services.EmbeddingConfig{
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		RedisClient:       redisClient.GetClient(),
		RequestsPerMinute: 500,
	})

	return &Infrastructure{
		DB:       db,
		Redis:    redisClient,
		Quota:    quota,
		Platform: platformClient,
		Embedder: embedder,
		Config:   cfg,
	}
}

func (i *Infrastructure) Close() {
	i.Embedder.Close()
	i.Redis.Close()
	i.DB.Close()
	sentrypkg.Close()
	if err := telemetry.Shutdown(context.Background()); err != nil {
		log.Printf("WARNING: telemetry shutdown failed: %v", err)
	}
}
