package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/trendscout/worker/internal/models"
)

// EmbeddingPGRepository is the Postgres-backed EmbeddingRepository
// implementation, storing vectors in a pgvector column.
type EmbeddingPGRepository struct {
	db *pgxpool.Pool
}

// NewEmbeddingRepository creates a new embedding repository.
func NewEmbeddingRepository(db *pgxpool.Pool) *EmbeddingPGRepository {
	return &EmbeddingPGRepository{db: db}
}

// Upsert stores or overwrites a video's embedding. Re-embedding (e.g. on a
// model upgrade) replaces the vector in place.
func (r *EmbeddingPGRepository) Upsert(ctx context.Context, e *models.Embedding) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO embeddings (video_id, vector, model, embedded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id) DO UPDATE SET
			vector = EXCLUDED.vector, model = EXCLUDED.model, embedded_at = EXCLUDED.embedded_at
	`, e.VideoID, pgvector.NewVector(e.Vector), e.Model, e.EmbeddedAt)
	return err
}

// ListForWindow returns every embedding belonging to a video published
// within the given window, keyed by video ID for easy joining with
// clustering input.
func (r *EmbeddingPGRepository) ListForWindow(ctx context.Context, window models.Window) (map[string]*models.Embedding, error) {
	cutoff := time.Now().Add(-time.Duration(window.Days() * 24 * float64(time.Hour)))
	rows, err := r.db.Query(ctx, `
		SELECT e.video_id, e.vector, e.model, e.embedded_at
		FROM embeddings e
		JOIN discovered_videos dv ON dv.video_id = e.video_id
		WHERE dv.published_at >= $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*models.Embedding)
	for rows.Next() {
		var e models.Embedding
		var vec pgvector.Vector
		if err := rows.Scan(&e.VideoID, &vec, &e.Model, &e.EmbeddedAt); err != nil {
			return nil, err
		}
		e.Vector = vec.Slice()
		out[e.VideoID] = &e
	}
	return out, rows.Err()
}
