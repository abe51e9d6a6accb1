package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/streamia/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the refresh token's jti has no server-side row.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the server-side session row is past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// TokenStore persists issued refresh tokens so sessions survive process
// restarts and can be revoked per device or per user.
type TokenStore interface {
	Save(ctx context.Context, token models.RefreshToken) error
	Find(ctx context.Context, jti string) (models.RefreshToken, error)
	Delete(ctx context.Context, jti string) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

// Manager manages the lifecycle of issued tokens backed by a persistent store.
type Manager struct {
	signer *Signer
	store  TokenStore

	nowFunc func() time.Time
}

// NewManager constructs a Manager around the provided signer and store.
func NewManager(signer *Signer, store TokenStore) *Manager {
	if signer == nil {
		panic("auth: signer must not be nil")
	}
	if store == nil {
		panic("auth: token store must not be nil")
	}
	return &Manager{signer: signer, store: store, nowFunc: time.Now}
}

// Issue creates an access/refresh token pair for the user and records the
// refresh token's jti server-side.
func (m *Manager) Issue(ctx context.Context, userID int64) (models.TokenPair, error) {
	if userID <= 0 {
		return models.TokenPair{}, errors.New("auth: user id must be provided")
	}

	accessToken, accessExpires, err := m.signer.SignAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	jti := uuid.NewString()
	refreshToken, refreshExpires, err := m.signer.SignRefresh(userID, jti)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.store.Save(ctx, models.RefreshToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: refreshExpires,
	}); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refreshToken,
		RefreshJTI:       jti,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// Refresh validates a refresh token against the store and mints a fresh
// access token. The refresh token itself is not rotated: the same jti stays
// valid until its original expiry or an explicit logout.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, ErrInvalidToken
	}

	claims, err := m.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	session, err := m.store.Find(ctx, claims.JTI)
	if err != nil {
		return "", time.Time{}, err
	}

	if m.now().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, claims.JTI)
		return "", time.Time{}, ErrSessionExpired
	}

	return m.signer.SignAccess(session.UserID)
}

// VerifyAccess validates a bearer access token and returns the user id.
func (m *Manager) VerifyAccess(token string) (int64, error) {
	return m.signer.VerifyAccess(token)
}

// Revoke removes the session row matching the refresh token's jti. The
// signature must check out, but an elapsed expiry is tolerated so logout
// still clears stale sessions.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := m.signer.DecodeRefresh(refreshToken)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, claims.JTI)
}

// RevokeAll removes every session row belonging to the refresh token's
// subject, invalidating all of the user's devices at once.
func (m *Manager) RevokeAll(ctx context.Context, refreshToken string) (int64, error) {
	claims, err := m.signer.DecodeRefresh(refreshToken)
	if err != nil {
		return 0, err
	}
	if _, err := m.store.DeleteAllForUser(ctx, claims.UserID); err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (m *Manager) now() time.Time {
	if m.nowFunc != nil {
		return m.nowFunc().UTC()
	}
	return time.Now().UTC()
}
