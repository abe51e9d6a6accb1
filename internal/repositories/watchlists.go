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

// PostgresWatchlistRepository provides PostgreSQL-backed persistence for watchlists.
type PostgresWatchlistRepository struct {
	pool db.Pool
}

// NewPostgresWatchlistRepository constructs a watchlist repository backed by PostgreSQL.
func NewPostgresWatchlistRepository(pool db.Pool) *PostgresWatchlistRepository {
	return &PostgresWatchlistRepository{pool: pool}
}

// EnsureForUser returns the user's watchlist, creating the row on first use.
func (r *PostgresWatchlistRepository) EnsureForUser(ctx context.Context, userID int64) (models.Watchlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Watchlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        INSERT INTO watchlists (user_id, created_at)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO NOTHING
    `, userID, time.Now().UTC()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Watchlist{}, ErrNotFound
		}
		return models.Watchlist{}, fmt.Errorf("ensure watchlist: %w", err)
	}

	var list models.Watchlist
	err = conn.QueryRow(ctx, `
        SELECT watchlist_id, user_id, created_at
        FROM watchlists
        WHERE user_id = $1
    `, userID).Scan(&list.ID, &list.UserID, &list.CreatedAt)
	if err != nil {
		return models.Watchlist{}, fmt.Errorf("select watchlist: %w", err)
	}

	return list, nil
}

// AddVideo links a video into the watchlist. Re-adding an existing entry is
// a no-op.
func (r *PostgresWatchlistRepository) AddVideo(ctx context.Context, watchlistID, videoID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watchlist_video (watchlist_id, video_id)
        VALUES ($1, $2)
        ON CONFLICT (watchlist_id, video_id) DO NOTHING
    `, watchlistID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watchlist entry: %w", err)
	}

	return nil
}

// RemoveVideo unlinks a video from the watchlist.
func (r *PostgresWatchlistRepository) RemoveVideo(ctx context.Context, watchlistID, videoID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM watchlist_video
        WHERE watchlist_id = $1 AND video_id = $2
    `, watchlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListVideos returns the watchlist's videos in insertion order.
func (r *PostgresWatchlistRepository) ListVideos(ctx context.Context, watchlistID int64) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.video_id, v.video_title, v.video_description, v.is_available, v.thumbnail,
               v.asset_url, v.asset_status, v.release_date, v.created_at
        FROM videos v
        JOIN watchlist_video wv ON wv.video_id = v.video_id
        WHERE wv.watchlist_id = $1
        ORDER BY wv.added_at, wv.video_id
    `, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("query watchlist videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}
