package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a comment and returns the stored record.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = conn.QueryRow(ctx, `
        INSERT INTO comments (user_id, video_id, comment_content, written_at)
        VALUES ($1, $2, $3, $4)
        RETURNING comment_id, written_at
    `, comment.UserID, comment.VideoID, comment.Content, comment.WrittenAt).Scan(&comment.ID, &comment.WrittenAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	return comment, nil
}

// ListForVideo returns a video's comments, newest first.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID int64) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT comment_id, user_id, video_id, comment_content, written_at
        FROM comments
        WHERE video_id = $1
        ORDER BY written_at DESC
    `, videoID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.UserID, &comment.VideoID, &comment.Content, &comment.WrittenAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
