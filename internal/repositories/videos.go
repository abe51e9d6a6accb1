package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamia/backend/internal/assets"
	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for the video catalog.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoListColumns = `video_id, video_title, video_description, is_available, thumbnail, asset_url, asset_status, release_date, created_at`

// List returns one page of the catalog in reverse release order, plus the
// total row count for pagination.
func (r *PostgresVideoRepository) List(ctx context.Context, offset, limit int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoListColumns+`
        FROM videos
        ORDER BY release_date DESC
        OFFSET $1 LIMIT $2
    `, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// ListByCategory returns one page of videos linked to the category, plus the
// total count of linked videos.
func (r *PostgresVideoRepository) ListByCategory(ctx context.Context, categoryID int64, offset, limit int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM videos v
        JOIN category_video cv ON cv.video_id = v.video_id
        WHERE cv.category_id = $1
    `, categoryID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos by category: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoListColumns+`
        FROM videos v
        JOIN category_video cv ON cv.video_id = v.video_id
        WHERE cv.category_id = $1
        ORDER BY release_date DESC
        OFFSET $2 LIMIT $3
    `, categoryID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos by category: %w", err)
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// FindByID fetches a single video including its blobs and linked categories.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id int64) (models.Video, []models.Category, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT video_id, video_title, video_description, is_available, thumbnail, video_data, asset_url, asset_status, release_date, created_at
        FROM videos
        WHERE video_id = $1
    `, id)

	var video models.Video
	err = row.Scan(&video.ID, &video.Title, &video.Description, &video.Available, &video.Thumbnail,
		&video.VideoData, &video.AssetURL, &video.AssetStatus, &video.ReleaseDate, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, nil, ErrNotFound
		}
		return models.Video{}, nil, fmt.Errorf("select video: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT c.category_id, c.category_name
        FROM categories c
        JOIN category_video cv ON cv.category_id = c.category_id
        WHERE cv.video_id = $1
        ORDER BY c.category_name
    `, id)
	if err != nil {
		return models.Video{}, nil, fmt.Errorf("query video categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return models.Video{}, nil, fmt.Errorf("scan video category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return models.Video{}, nil, fmt.Errorf("iterate video categories: %w", err)
	}

	return video, categories, nil
}

// Create stores a new catalog entry and returns the assigned id.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var id int64
	err = conn.QueryRow(ctx, `
        INSERT INTO videos (video_title, video_description, is_available, thumbnail, video_data, asset_url, asset_status, release_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING video_id
    `, video.Title, video.Description, video.Available, video.Thumbnail, video.VideoData,
		video.AssetURL, video.AssetStatus, video.ReleaseDate, video.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}

	return id, nil
}

// Update rewrites the mutable columns of an existing catalog entry.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET video_title = $2,
            video_description = $3,
            is_available = $4,
            thumbnail = $5,
            video_data = $6,
            asset_url = $7,
            asset_status = $8,
            release_date = $9
        WHERE video_id = $1
    `, video.ID, video.Title, video.Description, video.Available, video.Thumbnail,
		video.VideoData, video.AssetURL, video.AssetStatus, video.ReleaseDate)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetCategories replaces the category links for a video.
func (r *PostgresVideoRepository) SetCategories(ctx context.Context, videoID int64, categoryIDs []int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin category link transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM category_video WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, `
            INSERT INTO category_video (category_id, video_id)
            VALUES ($1, $2)
            ON CONFLICT DO NOTHING
        `, categoryID, videoID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrNotFound
			}
			return fmt.Errorf("insert category link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit category links: %w", err)
	}

	return nil
}

// MarkAssetReady records a completed offload: the blob moves out of the row
// and the object location takes its place.
func (r *PostgresVideoRepository) MarkAssetReady(ctx context.Context, videoID int64, location string, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2,
            asset_url = $3,
            video_data = NULL
        WHERE video_id = $1
    `, videoID, models.AssetStatusReady, location)
	if err != nil {
		return fmt.Errorf("update video asset status ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAssetFailed records a failed offload attempt for the provided video.
func (r *PostgresVideoRepository) MarkAssetFailed(ctx context.Context, videoID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2,
            asset_url = ''
        WHERE video_id = $1
    `, videoID, models.AssetStatusFailed)
	if err != nil {
		return fmt.Errorf("update video asset status failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.Title, &video.Description, &video.Available,
			&video.Thumbnail, &video.AssetURL, &video.AssetStatus, &video.ReleaseDate, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

var _ assets.StatusUpdater = (*PostgresVideoRepository)(nil)
