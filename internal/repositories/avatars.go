package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresAvatarRepository provides PostgreSQL-backed persistence for avatars.
type PostgresAvatarRepository struct {
	pool db.Pool
}

// NewPostgresAvatarRepository constructs an avatar repository backed by PostgreSQL.
func NewPostgresAvatarRepository(pool db.Pool) *PostgresAvatarRepository {
	return &PostgresAvatarRepository{pool: pool}
}

// Create stores a new avatar payload and returns the assigned id.
func (r *PostgresAvatarRepository) Create(ctx context.Context, imageData []byte) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	now := time.Now().UTC()
	var id int64
	err = conn.QueryRow(ctx, `
        INSERT INTO avatars (image_data, created_at, updated_at)
        VALUES ($1, $2, $3)
        RETURNING avatar_id
    `, imageData, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert avatar: %w", err)
	}

	return id, nil
}

// FindByID fetches an avatar by primary key.
func (r *PostgresAvatarRepository) FindByID(ctx context.Context, id int64) (models.Avatar, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Avatar{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT avatar_id, image_data, created_at, updated_at
        FROM avatars
        WHERE avatar_id = $1
    `, id)

	var avatar models.Avatar
	if err := row.Scan(&avatar.ID, &avatar.ImageData, &avatar.CreatedAt, &avatar.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Avatar{}, ErrNotFound
		}
		return models.Avatar{}, fmt.Errorf("select avatar: %w", err)
	}

	return avatar, nil
}

// FindDefault returns the oldest avatar row, assigned to new registrations.
func (r *PostgresAvatarRepository) FindDefault(ctx context.Context) (models.Avatar, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Avatar{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT avatar_id, image_data, created_at, updated_at
        FROM avatars
        ORDER BY avatar_id
        LIMIT 1
    `)

	var avatar models.Avatar
	if err := row.Scan(&avatar.ID, &avatar.ImageData, &avatar.CreatedAt, &avatar.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Avatar{}, ErrNotFound
		}
		return models.Avatar{}, fmt.Errorf("select default avatar: %w", err)
	}

	return avatar, nil
}
