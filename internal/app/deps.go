package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/streamia/backend/internal/assets"
	"github.com/streamia/backend/internal/auth"
	"github.com/streamia/backend/internal/catalog"
	"github.com/streamia/backend/internal/config"
	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/handlers"
	"github.com/streamia/backend/internal/middleware"
	"github.com/streamia/backend/internal/repositories"
	"github.com/streamia/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers; it must run before
// the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(), error) {
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	categories := repositories.NewPostgresCategoryRepository(pool)
	categoryCache := catalog.NewCachingLister(categories, cfg.CategoryCacheTTL)

	var ingestor handlers.AssetIngestor
	cleanup := func() {}
	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		worker := assets.NewIngestor(store, videos, assets.Config{
			QueueSize: cfg.Ingest.QueueSize,
			Workers:   cfg.Ingest.Workers,
		}, logger)
		ingestor = worker
		cleanup = worker.Close
	}

	deps := handlers.Dependencies{
		Users:      users,
		Avatars:    repositories.NewPostgresAvatarRepository(pool),
		Sessions:   auth.NewManager(signer, repositories.NewPostgresTokenStore(pool)),
		Categories: categoryCache,
		Category:   categories,
		Cache:      categoryCache,
		Videos:     videos,
		Comments:   repositories.NewPostgresCommentRepository(pool),
		Favorites:  repositories.NewPostgresFavoriteRepository(pool),
		Watchlists: repositories.NewPostgresWatchlistRepository(pool),
		Ingestor:   ingestor,

		LoginLimiter:  middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		SecureCookies: cfg.IsProduction(),
	}

	return deps, cleanup, nil
}
