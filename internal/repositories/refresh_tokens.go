package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamia/backend/internal/auth"
	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresTokenStore persists refresh tokens to PostgreSQL, keyed by jti.
type PostgresTokenStore struct {
	pool db.Pool
}

// NewPostgresTokenStore constructs a token store backed by PostgreSQL.
func NewPostgresTokenStore(pool db.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// Save stores or updates a refresh token record.
func (s *PostgresTokenStore) Save(ctx context.Context, token models.RefreshToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO refresh_tokens (jti, user_id, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (jti)
        DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
    `, token.JTI, token.UserID, token.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}

	return nil
}

// Find loads a refresh token record by its jti.
func (s *PostgresTokenStore) Find(ctx context.Context, jti string) (models.RefreshToken, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT jti, user_id, expires_at
        FROM refresh_tokens
        WHERE jti = $1
    `, jti)

	var token models.RefreshToken
	var expiresAt time.Time
	if err := row.Scan(&token.JTI, &token.UserID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, auth.ErrSessionNotFound
		}
		return models.RefreshToken{}, fmt.Errorf("select refresh token: %w", err)
	}

	token.ExpiresAt = expiresAt.UTC()
	return token, nil
}

// Delete removes a refresh token record by jti.
func (s *PostgresTokenStore) Delete(ctx context.Context, jti string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM refresh_tokens
        WHERE jti = $1
    `, jti)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}

	return nil
}

// DeleteAllForUser removes every refresh token owned by the user, logging the
// user out of all devices at once.
func (s *PostgresTokenStore) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM refresh_tokens
        WHERE user_id = $1
    `, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens for user: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ auth.TokenStore = (*PostgresTokenStore)(nil)
