package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamia/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		JWTSecret:        "test-secret",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       7 * 24 * time.Hour,
		CategoryCacheTTL: time.Minute,
		ObjectStore:      config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		Ingest:           config.IngestConfig{QueueSize: 4, Workers: 1},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer cleanup()

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Avatars == nil {
		t.Fatal("expected avatar repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Categories == nil || deps.Category == nil || deps.Cache == nil {
		t.Fatal("expected category catalog to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video repository to be configured")
	}
	if deps.Comments == nil {
		t.Fatal("expected comment repository to be configured")
	}
	if deps.Favorites == nil {
		t.Fatal("expected favorite repository to be configured")
	}
	if deps.Watchlists == nil {
		t.Fatal("expected watchlist repository to be configured")
	}
	if deps.Ingestor == nil {
		t.Fatal("expected asset ingestor to be configured")
	}
	if deps.LoginLimiter == nil {
		t.Fatal("expected login rate limiter to be configured")
	}
}

func TestBuildDependenciesWithoutObjectStore(t *testing.T) {
	cfg := config.Config{
		JWTSecret:        "test-secret",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       7 * 24 * time.Hour,
		CategoryCacheTTL: time.Minute,
	}

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if deps.Ingestor != nil {
		t.Fatal("expected no ingestor when the object store is not configured")
	}
}

func TestBuildDependenciesRejectsEmptySecret(t *testing.T) {
	_, _, err := buildDependencies(context.Background(), fakePool{}, config.Config{}, slog.Default())
	if err == nil {
		t.Fatal("expected error for empty signing secret")
	}
}
