package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trendscout/worker/internal/models"
)

// ScorePGRepository is the Postgres-backed ScoreRepository implementation.
type ScorePGRepository struct {
	db *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *pgxpool.Pool) *ScorePGRepository {
	return &ScorePGRepository{db: db}
}

// Upsert stores or overwrites a video's computed scores for a window.
func (r *ScorePGRepository) Upsert(ctx context.Context, s *models.VideoScore) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO video_scores (
			video_id, window, view_count, views_per_day, velocity_24h, velocity_7d,
			acceleration, breakout_by_subs, breakout_by_baseline, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (video_id, window) DO UPDATE SET
			view_count = EXCLUDED.view_count,
			views_per_day = EXCLUDED.views_per_day,
			velocity_24h = EXCLUDED.velocity_24h,
			velocity_7d = EXCLUDED.velocity_7d,
			acceleration = EXCLUDED.acceleration,
			breakout_by_subs = EXCLUDED.breakout_by_subs,
			breakout_by_baseline = EXCLUDED.breakout_by_baseline,
			computed_at = EXCLUDED.computed_at
	`,
		s.VideoID, string(s.Window), s.ViewCount, s.ViewsPerDay, s.Velocity24h, s.Velocity7d,
		s.Acceleration, s.BreakoutBySubs, s.BreakoutByBaseline, s.ComputedAt,
	)
	return err
}

// ListForWindow returns every computed score for a window.
func (r *ScorePGRepository) ListForWindow(ctx context.Context, window models.Window) ([]*models.VideoScore, error) {
	rows, err := r.db.Query(ctx, `
		SELECT video_id, window, view_count, views_per_day, velocity_24h, velocity_7d,
		       acceleration, breakout_by_subs, breakout_by_baseline, computed_at
		FROM video_scores WHERE window = $1
	`, string(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.VideoScore
	for rows.Next() {
		var s models.VideoScore
		var w string
		if err := rows.Scan(
			&s.VideoID, &w, &s.ViewCount, &s.ViewsPerDay, &s.Velocity24h, &s.Velocity7d,
			&s.Acceleration, &s.BreakoutBySubs, &s.BreakoutByBaseline, &s.ComputedAt,
		); err != nil {
			return nil, err
		}
		s.Window = models.Window(w)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// TopBreakouts returns up to n scores for the window ordered by
// breakout_by_subs then velocity_24h descending (NULLs last), feeding the
// expansion feeder's candidate-phrase extraction.
func (r *ScorePGRepository) TopBreakouts(ctx context.Context, window models.Window, n int) ([]*models.VideoScore, error) {
	rows, err := r.db.Query(ctx, `
		SELECT vs.video_id, vs.window, vs.view_count, vs.views_per_day, vs.velocity_24h, vs.velocity_7d,
		       vs.acceleration, vs.breakout_by_subs, vs.breakout_by_baseline, vs.computed_at, dv.title
		FROM video_scores vs
		JOIN discovered_videos dv ON dv.video_id = vs.video_id
		WHERE vs.window = $1
		ORDER BY vs.breakout_by_subs DESC NULLS LAST, vs.velocity_24h DESC NULLS LAST
		LIMIT $2
	`, string(window), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.VideoScore
	for rows.Next() {
		var s models.VideoScore
		var w string
		if err := rows.Scan(
			&s.VideoID, &w, &s.ViewCount, &s.ViewsPerDay, &s.Velocity24h, &s.Velocity7d,
			&s.Acceleration, &s.BreakoutBySubs, &s.BreakoutByBaseline, &s.ComputedAt, &s.Title,
		); err != nil {
			return nil, err
		}
		s.Window = models.Window(w)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Get fetches a single video's score for a window, used by the scorer to
// read the prior run's velocity_24h when computing acceleration.
func (r *ScorePGRepository) Get(ctx context.Context, videoID string, window models.Window) (*models.VideoScore, error) {
	var s models.VideoScore
	var w string
	err := r.db.QueryRow(ctx, `
		SELECT video_id, window, view_count, views_per_day, velocity_24h, velocity_7d,
		       acceleration, breakout_by_subs, breakout_by_baseline, computed_at
		FROM video_scores WHERE video_id = $1 AND window = $2
	`, videoID, string(window)).Scan(
		&s.VideoID, &w, &s.ViewCount, &s.ViewsPerDay, &s.Velocity24h, &s.Velocity7d,
		&s.Acceleration, &s.BreakoutBySubs, &s.BreakoutByBaseline, &s.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Window = models.Window(w)
	return &s, nil
}
