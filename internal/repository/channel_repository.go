package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trendscout/worker/internal/models"
)

// ChannelPGRepository is the Postgres-backed ChannelRepository
// implementation.
type ChannelPGRepository struct {
	db *pgxpool.Pool
}

// NewChannelRepository creates a new channel repository.
func NewChannelRepository(db *pgxpool.Pool) *ChannelPGRepository {
	return &ChannelPGRepository{db: db}
}

// Upsert inserts or refreshes a channel's platform-reported metadata
// without disturbing its computed baselines.
func (r *ChannelPGRepository) Upsert(ctx context.Context, ch *models.Channel) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO channels (channel_id, title, subscriber_count, channel_published_at, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (channel_id) DO UPDATE SET
			title = EXCLUDED.title,
			subscriber_count = EXCLUDED.subscriber_count,
			channel_published_at = COALESCE(channels.channel_published_at, EXCLUDED.channel_published_at),
			last_refreshed_at = now()
	`, ch.ChannelID, ch.Title, ch.SubscriberCount, ch.ChannelPublishedAt)
	return err
}

// Get fetches a single channel.
func (r *ChannelPGRepository) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	var ch models.Channel
	err := r.db.QueryRow(ctx, `
		SELECT channel_id, title, subscriber_count, channel_published_at,
		       median_velocity_24h, median_views_per_day, video_count_for_baseline,
		       last_refreshed_at, created_at
		FROM channels WHERE channel_id = $1
	`, channelID).Scan(
		&ch.ChannelID, &ch.Title, &ch.SubscriberCount, &ch.ChannelPublishedAt,
		&ch.MedianVelocity24h, &ch.MedianViewsPerDay, &ch.VideoCountForBaseline,
		&ch.LastRefreshedAt, &ch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// ListForRefresh returns up to limit channels whose metadata is older than
// olderThan (or has never been refreshed), least-recently-refreshed first.
func (r *ChannelPGRepository) ListForRefresh(ctx context.Context, olderThan time.Time, limit int) ([]*models.Channel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT channel_id, title, subscriber_count, channel_published_at,
		       median_velocity_24h, median_views_per_day, video_count_for_baseline,
		       last_refreshed_at, created_at
		FROM channels
		WHERE last_refreshed_at IS NULL OR last_refreshed_at < $1
		ORDER BY last_refreshed_at ASC NULLS FIRST
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(
			&ch.ChannelID, &ch.Title, &ch.SubscriberCount, &ch.ChannelPublishedAt,
			&ch.MedianVelocity24h, &ch.MedianViewsPerDay, &ch.VideoCountForBaseline,
			&ch.LastRefreshedAt, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &ch)
	}
	return out, rows.Err()
}

// UpdateBaseline stores the channel's recomputed velocity/views-per-day
// medians, used to normalize a video's breakout-by-baseline score.
func (r *ChannelPGRepository) UpdateBaseline(ctx context.Context, channelID string, medianVelocity24h, medianViewsPerDay float64, sampleSize int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE channels
		SET median_velocity_24h = $2, median_views_per_day = $3, video_count_for_baseline = $4
		WHERE channel_id = $1
	`, channelID, medianVelocity24h, medianViewsPerDay, sampleSize)
	return err
}

// RecomputeBaselines recomputes every eligible channel's baselines in a
// single aggregate statement: eligibility is ≥3 videos published in the
// last 90 days that carry a 7d VideoScore, and the baseline is the 50th
// percentile of those videos' velocity_24h and views_per_day.
func (r *ChannelPGRepository) RecomputeBaselines(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, `
		WITH eligible AS (
			SELECT dv.channel_id, vs.velocity_24h, vs.views_per_day
			FROM discovered_videos dv
			JOIN video_scores vs ON vs.video_id = dv.video_id AND vs.window = '7d'
			WHERE dv.published_at > now() - interval '90 days'
		),
		agg AS (
			SELECT channel_id,
			       percentile_cont(0.5) WITHIN GROUP (ORDER BY velocity_24h) AS median_velocity_24h,
			       percentile_cont(0.5) WITHIN GROUP (ORDER BY views_per_day) AS median_views_per_day,
			       count(*) AS n
			FROM eligible
			GROUP BY channel_id
			HAVING count(*) >= 3
		)
		UPDATE channels c
		SET median_velocity_24h = agg.median_velocity_24h,
		    median_views_per_day = agg.median_views_per_day,
		    video_count_for_baseline = agg.n
		FROM agg
		WHERE c.channel_id = agg.channel_id
	`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
