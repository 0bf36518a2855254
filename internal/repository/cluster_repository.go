package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/trendscout/worker/internal/models"
)

// ClusterPGRepository is the Postgres-backed ClusterRepository
// implementation.
type ClusterPGRepository struct {
	db *pgxpool.Pool
}

// NewClusterRepository creates a new cluster repository.
func NewClusterRepository(db *pgxpool.Pool) *ClusterPGRepository {
	return &ClusterPGRepository{db: db}
}

// ReplaceWindow atomically replaces every cluster and membership row for a
// window with a freshly computed set: clustering has no incremental update
// path, so each ranking run recomputes the window wholesale.
func (r *ClusterPGRepository) ReplaceWindow(ctx context.Context, window models.Window, clusters []*models.Cluster, memberships []*models.ClusterMembership) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace-window transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cluster_memberships WHERE cluster_id IN (SELECT cluster_id FROM clusters WHERE window = $1)`, string(window)); err != nil {
		return fmt.Errorf("clear memberships: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM clusters WHERE window = $1`, string(window)); err != nil {
		return fmt.Errorf("clear clusters: %w", err)
	}

	for _, c := range clusters {
		_, err := tx.Exec(ctx, `
			INSERT INTO clusters (
				cluster_id, window, label, keywords, median_velocity, unique_channels,
				total_videos, avg_days_old, avg_channel_subs, winner_concentration,
				opportunity_score, computed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			c.ClusterID, string(c.Window), c.Label, pq.Array(c.Keywords),
			c.Metrics.MedianVelocity, c.Metrics.UniqueChannels, c.Metrics.TotalVideos,
			c.Metrics.AvgDaysOld, c.Metrics.AvgChannelSubs, c.Metrics.WinnerConcentration,
			c.Metrics.OpportunityScore, c.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("insert cluster %s: %w", c.ClusterID, err)
		}
	}

	for _, m := range memberships {
		_, err := tx.Exec(ctx, `
			INSERT INTO cluster_memberships (cluster_id, video_id, rank_in_cluster)
			VALUES ($1, $2, $3)
		`, m.ClusterID, m.VideoID, m.RankInCluster)
		if err != nil {
			return fmt.Errorf("insert membership %s/%s: %w", m.ClusterID, m.VideoID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace-window transaction: %w", err)
	}
	return nil
}

// ListForWindow returns every cluster computed for a window, ordered by
// opportunity score descending (NULLs last).
func (r *ClusterPGRepository) ListForWindow(ctx context.Context, window models.Window) ([]*models.Cluster, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cluster_id, window, label, keywords, median_velocity, unique_channels,
		       total_videos, avg_days_old, avg_channel_subs, winner_concentration,
		       opportunity_score, computed_at
		FROM clusters WHERE window = $1
		ORDER BY opportunity_score DESC NULLS LAST
	`, string(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Cluster
	for rows.Next() {
		var c models.Cluster
		var w string
		var keywords pq.StringArray
		if err := rows.Scan(
			&c.ClusterID, &w, &c.Label, &keywords, &c.Metrics.MedianVelocity, &c.Metrics.UniqueChannels,
			&c.Metrics.TotalVideos, &c.Metrics.AvgDaysOld, &c.Metrics.AvgChannelSubs, &c.Metrics.WinnerConcentration,
			&c.Metrics.OpportunityScore, &c.ComputedAt,
		); err != nil {
			return nil, err
		}
		c.Window = models.Window(w)
		c.Keywords = keywords
		out = append(out, &c)
	}
	return out, rows.Err()
}

// MembersOf returns every membership row for a cluster, ordered by rank.
func (r *ClusterPGRepository) MembersOf(ctx context.Context, clusterID uuid.UUID) ([]*models.ClusterMembership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cluster_id, video_id, rank_in_cluster
		FROM cluster_memberships WHERE cluster_id = $1
		ORDER BY rank_in_cluster ASC
	`, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ClusterMembership
	for rows.Next() {
		var m models.ClusterMembership
		if err := rows.Scan(&m.ClusterID, &m.VideoID, &m.RankInCluster); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
