package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/trendscout/worker/internal/models"
)

const videoColumns = `video_id, channel_id, channel_title, title, thumbnail_url, published_at,
	feeder, seed, duration_seconds, language, tags, first_seen_at, last_seen_at,
	tier, last_snapshot_at, next_snapshot_due_at`

// prefixColumns qualifies a comma-separated column list with a table
// alias, for queries that join discovered_videos against another table.
func prefixColumns(alias, columns string) string {
	fields := strings.Split(columns, ",")
	for i, f := range fields {
		fields[i] = alias + "." + strings.TrimSpace(f)
	}
	return strings.Join(fields, ", ")
}

// VideoPGRepository is the Postgres-backed VideoRepository implementation.
type VideoPGRepository struct {
	db *pgxpool.Pool
}

// NewVideoRepository creates a new video repository.
func NewVideoRepository(db *pgxpool.Pool) *VideoPGRepository {
	return &VideoPGRepository{db: db}
}

// Exists reports whether a video has already been admitted.
func (r *VideoPGRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM discovered_videos WHERE video_id = $1)`, videoID).Scan(&exists)
	return exists, err
}

// CountOpenByChannel counts videos from a channel first seen within maxAge,
// used to enforce the per-channel admission cap.
func (r *VideoPGRepository) CountOpenByChannel(ctx context.Context, channelID string, maxAge time.Duration) (int, error) {
	var count int
	cutoff := time.Now().Add(-maxAge)
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM discovered_videos WHERE channel_id = $1 AND first_seen_at >= $2`,
		channelID, cutoff,
	).Scan(&count)
	return count, err
}

// Insert admits a new discovered video. New videos start in tier C, due
// for their first snapshot immediately.
func (r *VideoPGRepository) Insert(ctx context.Context, v *models.DiscoveredVideo) error {
	tier := v.Tier
	if tier == "" {
		tier = models.TierC
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO discovered_videos (
			video_id, channel_id, channel_title, title, thumbnail_url, published_at,
			feeder, seed, duration_seconds, language, tags, first_seen_at, last_seen_at,
			tier, last_snapshot_at, next_snapshot_due_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
		ON CONFLICT (video_id) DO NOTHING
	`,
		v.VideoID, v.ChannelID, v.ChannelTitle, v.Title, v.ThumbnailURL, v.PublishedAt,
		v.Feeder, v.Seed, v.Duration, v.Language, pq.Array(v.Tags), v.FirstSeenAt, v.LastSeenAt,
		tier, v.LastSnapshotAt,
	)
	return err
}

// Touch updates a video's last_seen_at, recording that a feeder
// re-observed it without re-admitting it.
func (r *VideoPGRepository) Touch(ctx context.Context, videoID string, seenAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE discovered_videos SET last_seen_at = $2 WHERE video_id = $1`, videoID, seenAt)
	return err
}

func scanVideo(row pgx.Row) (*models.DiscoveredVideo, error) {
	var v models.DiscoveredVideo
	var tags pq.StringArray
	var tier string
	err := row.Scan(
		&v.VideoID, &v.ChannelID, &v.ChannelTitle, &v.Title, &v.ThumbnailURL, &v.PublishedAt,
		&v.Feeder, &v.Seed, &v.Duration, &v.Language, &tags, &v.FirstSeenAt, &v.LastSeenAt,
		&tier, &v.LastSnapshotAt, &v.NextSnapshotDue,
	)
	if err != nil {
		return nil, err
	}
	v.Tags = tags
	v.Tier = models.SnapshotTier(tier)
	return &v, nil
}

// Get fetches a single discovered video.
func (r *VideoPGRepository) Get(ctx context.Context, videoID string) (*models.DiscoveredVideo, error) {
	row := r.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM discovered_videos WHERE video_id = $1`, videoID)
	v, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// ListForWindow returns every video whose age qualifies it for the given
// window, newest first.
func (r *VideoPGRepository) ListForWindow(ctx context.Context, window models.Window) ([]*models.DiscoveredVideo, error) {
	cutoff := time.Now().Add(-time.Duration(window.Days() * 24 * float64(time.Hour)))
	rows, err := r.db.Query(ctx, `
		SELECT `+videoColumns+`
		FROM discovered_videos WHERE published_at >= $1
		ORDER BY published_at DESC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DiscoveredVideo
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RecentTitles returns up to limit titles published within the window,
// newest first.
func (r *VideoPGRepository) RecentTitles(ctx context.Context, window models.Window, limit int) ([]string, error) {
	cutoff := time.Now().Add(-time.Duration(window.Days() * 24 * float64(time.Hour)))
	rows, err := r.db.Query(ctx, `
		SELECT title FROM discovered_videos
		WHERE published_at >= $1
		ORDER BY published_at DESC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// RecentChannelIDs returns up to limit distinct channel IDs, ordered by
// the most recent video discovered from that channel.
func (r *VideoPGRepository) RecentChannelIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT channel_id FROM (
			SELECT channel_id, MAX(first_seen_at) AS last_seen
			FROM discovered_videos
			GROUP BY channel_id
		) recent
		ORDER BY last_seen DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecomputeTiers reassigns every video's tier from its age and latest 24h
// velocity in a single statement: A if younger than tierAHours or its
// latest 7d-window velocity_24h exceeds tierAVelocity, B analogous against
// tierBHours/tierBVelocity, C otherwise. Thresholds are configuration, not
// hardcoded, per the tiering Open Question.
func (r *VideoPGRepository) RecomputeTiers(ctx context.Context, tierAHours, tierBHours int, tierAVelocity, tierBVelocity float64) (int, error) {
	tag, err := r.db.Exec(ctx, `
		WITH latest_velocity AS (
			SELECT DISTINCT ON (video_id) video_id, velocity_24h
			FROM video_scores
			WHERE window = '7d'
			ORDER BY video_id, computed_at DESC
		),
		recomputed AS (
			SELECT dv.video_id,
			       CASE
			           WHEN dv.published_at > now() - make_interval(hours => $1)
			               OR COALESCE(lv.velocity_24h, 0) > $2 THEN 'A'
			           WHEN dv.published_at > now() - make_interval(hours => $3)
			               OR COALESCE(lv.velocity_24h, 0) > $4 THEN 'B'
			           ELSE 'C'
			       END AS tier
			FROM discovered_videos dv
			LEFT JOIN latest_velocity lv ON lv.video_id = dv.video_id
		)
		UPDATE discovered_videos dv
		SET tier = recomputed.tier
		FROM recomputed
		WHERE dv.video_id = recomputed.video_id AND dv.tier IS DISTINCT FROM recomputed.tier
	`, tierAHours, tierAVelocity, tierBHours, tierBVelocity)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ListMissingEmbedding returns up to limit videos with no row in the
// embeddings table, oldest-discovered first.
func (r *VideoPGRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]*models.DiscoveredVideo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+prefixColumns("dv", videoColumns)+`
		FROM discovered_videos dv
		LEFT JOIN embeddings e ON e.video_id = dv.video_id
		WHERE e.video_id IS NULL
		ORDER BY dv.first_seen_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DiscoveredVideo
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
