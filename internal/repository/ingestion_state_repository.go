package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trendscout/worker/internal/models"
)

// IngestionStatePGRepository is the Postgres-backed
// IngestionStateRepository implementation.
type IngestionStatePGRepository struct {
	db *pgxpool.Pool
}

// NewIngestionStateRepository creates a new ingestion state repository.
func NewIngestionStateRepository(db *pgxpool.Pool) *IngestionStatePGRepository {
	return &IngestionStatePGRepository{db: db}
}

// Get fetches a feeder's cursor and run bookkeeping. A feeder that has never
// run has no row; Get then returns ErrNotFound, which callers treat as
// "start from the beginning."
func (r *IngestionStatePGRepository) Get(ctx context.Context, feeder string) (*models.IngestionState, error) {
	var s models.IngestionState
	err := r.db.QueryRow(ctx, `
		SELECT feeder, cursor_position, last_run_at, videos_added_last_run, total_videos_added
		FROM ingestion_state WHERE feeder = $1
	`, feeder).Scan(&s.Feeder, &s.CursorPosition, &s.LastRunAt, &s.VideosAddedLastRun, &s.TotalVideosAdded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert stores a feeder's cursor and run bookkeeping.
func (r *IngestionStatePGRepository) Upsert(ctx context.Context, s *models.IngestionState) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ingestion_state (feeder, cursor_position, last_run_at, videos_added_last_run, total_videos_added)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (feeder) DO UPDATE SET
			cursor_position = EXCLUDED.cursor_position,
			last_run_at = EXCLUDED.last_run_at,
			videos_added_last_run = EXCLUDED.videos_added_last_run,
			total_videos_added = EXCLUDED.total_videos_added
	`, s.Feeder, s.CursorPosition, s.LastRunAt, s.VideosAddedLastRun, s.TotalVideosAdded)
	return err
}
