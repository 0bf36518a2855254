package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trendscout/worker/internal/models"
)

// SnapshotPGRepository is the Postgres-backed SnapshotRepository
// implementation.
type SnapshotPGRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotPGRepository {
	return &SnapshotPGRepository{db: db}
}

// Insert appends a new statistics observation. Snapshots are never
// updated once written.
func (r *SnapshotPGRepository) Insert(ctx context.Context, s *models.Snapshot) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO snapshots (video_id, captured_at, view_count, like_count, comment_count)
		VALUES ($1, $2, $3, $4, $5)
	`, s.VideoID, s.CapturedAt, s.ViewCount, s.LikeCount, s.CommentCount)
	return err
}

// Latest returns the most recent snapshot for a video.
func (r *SnapshotPGRepository) Latest(ctx context.Context, videoID string) (*models.Snapshot, error) {
	var s models.Snapshot
	err := r.db.QueryRow(ctx, `
		SELECT video_id, captured_at, view_count, like_count, comment_count
		FROM snapshots WHERE video_id = $1
		ORDER BY captured_at DESC LIMIT 1
	`, videoID).Scan(&s.VideoID, &s.CapturedAt, &s.ViewCount, &s.LikeCount, &s.CommentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Series returns every snapshot for a video captured at or after since,
// oldest first, for velocity and acceleration computation.
func (r *SnapshotPGRepository) Series(ctx context.Context, videoID string, since time.Time) ([]*models.Snapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT video_id, captured_at, view_count, like_count, comment_count
		FROM snapshots WHERE video_id = $1 AND captured_at >= $2
		ORDER BY captured_at ASC
	`, videoID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.VideoID, &s.CapturedAt, &s.ViewCount, &s.LikeCount, &s.CommentCount); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// leaseDuration bounds how long a claimed-but-unreported video is excluded
// from the next selection round, in case the leasing process crashes
// before calling MarkSampled or ReleaseLease.
const leaseDuration = 10 * time.Minute

// LeaseDue selects up to limit videos due for re-sampling, ordered by tier
// priority then by how overdue they are, and claims them by pushing
// next_snapshot_due_at out by leaseDuration. FOR UPDATE SKIP LOCKED
// guarantees concurrent scheduler instances never double-claim the same
// row; the claiming transaction is held only for the duration of the
// select-and-update, not across the network calls the caller makes with
// the returned rows. Callers must follow up with MarkSampled or
// ReleaseLease for every returned video.
func (r *SnapshotPGRepository) LeaseDue(ctx context.Context, limit int, fn func(ctx context.Context, leased []models.LeasedVideo) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin lease transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT dv.video_id, dv.channel_id, dv.tier, dv.last_snapshot_at
		FROM discovered_videos dv
		WHERE dv.next_snapshot_due_at <= now()
		ORDER BY
			CASE dv.tier WHEN 'A' THEN 0 WHEN 'B' THEN 1 ELSE 2 END,
			dv.next_snapshot_due_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return fmt.Errorf("select due videos: %w", err)
	}

	var leased []models.LeasedVideo
	for rows.Next() {
		var lv models.LeasedVideo
		var tier string
		if err := rows.Scan(&lv.VideoID, &lv.ChannelID, &tier, &lv.LastSnapshotAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan leased video: %w", err)
		}
		lv.Tier = models.SnapshotTier(tier)
		leased = append(leased, lv)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if len(leased) > 0 {
		ids := make([]string, len(leased))
		for i, lv := range leased {
			ids[i] = lv.VideoID
		}
		if _, err := tx.Exec(ctx, `
			UPDATE discovered_videos SET next_snapshot_due_at = now() + $2::interval
			WHERE video_id = ANY($1)
		`, ids, leaseDuration.String()); err != nil {
			return fmt.Errorf("claim leased videos: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit lease transaction: %w", err)
	}

	return fn(ctx, leased)
}

// MarkSampled records a successful snapshot and schedules the video's next
// due time per its tier's resample interval.
func (r *SnapshotPGRepository) MarkSampled(ctx context.Context, videoID string, intervalHours int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE discovered_videos
		SET last_snapshot_at = now(), next_snapshot_due_at = now() + make_interval(hours => $2)
		WHERE video_id = $1
	`, videoID, intervalHours)
	return err
}

// ReleaseLease undoes a claim without recording a snapshot, used when a
// platform call fails so the video becomes immediately eligible again.
func (r *SnapshotPGRepository) ReleaseLease(ctx context.Context, videoID string) error {
	_, err := r.db.Exec(ctx, `UPDATE discovered_videos SET next_snapshot_due_at = now() WHERE video_id = $1`, videoID)
	return err
}
