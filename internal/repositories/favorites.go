package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresFavoriteRepository provides PostgreSQL-backed persistence for favorites.
type PostgresFavoriteRepository struct {
	pool db.Pool
}

// NewPostgresFavoriteRepository constructs a favorite repository backed by PostgreSQL.
func NewPostgresFavoriteRepository(pool db.Pool) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{pool: pool}
}

// Add links a video to the user's favorites. Re-adding an existing favorite
// is a no-op.
func (r *PostgresFavoriteRepository) Add(ctx context.Context, userID, videoID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO favorites (user_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

// Remove unlinks a video from the user's favorites.
func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, videoID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM favorites
        WHERE user_id = $1 AND video_id = $2
    `, userID, videoID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListForUser returns the user's favorited videos, most recently added first.
func (r *PostgresFavoriteRepository) ListForUser(ctx context.Context, userID int64) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.video_id, v.video_title, v.video_description, v.is_available, v.thumbnail,
               v.asset_url, v.asset_status, v.release_date, v.created_at
        FROM videos v
        JOIN favorites f ON f.video_id = v.video_id
        WHERE f.user_id = $1
        ORDER BY f.added_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}
