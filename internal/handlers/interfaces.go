package handlers

import (
	"context"
	"time"

	"github.com/streamia/backend/internal/assets"
	"github.com/streamia/backend/internal/models"
)

// UserStore captures the persistence operations required by account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// AvatarStore captures persistence for profile images.
type AvatarStore interface {
	Create(ctx context.Context, imageData []byte) (int64, error)
	FindByID(ctx context.Context, id int64) (models.Avatar, error)
	FindDefault(ctx context.Context) (models.Avatar, error)
}

// SessionManager issues, refreshes, verifies and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID int64) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
	VerifyAccess(token string) (int64, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, refreshToken string) (int64, error)
}

// CategoryLister returns the category catalog, possibly through a cache.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CategoryStore captures writes against the category catalog.
type CategoryStore interface {
	Create(ctx context.Context, name string) (models.Category, error)
}

// CacheInvalidator drops a cached listing after a mutation.
type CacheInvalidator interface {
	Invalidate()
}

// VideoStore captures persistence for the video catalog.
type VideoStore interface {
	List(ctx context.Context, offset, limit int) ([]models.Video, int64, error)
	ListByCategory(ctx context.Context, categoryID int64, offset, limit int) ([]models.Video, int64, error)
	FindByID(ctx context.Context, id int64) (models.Video, []models.Category, error)
	Create(ctx context.Context, video models.Video) (int64, error)
	Update(ctx context.Context, video models.Video) error
	SetCategories(ctx context.Context, videoID int64, categoryIDs []int64) error
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID int64) ([]models.Comment, error)
}

// FavoriteStore captures persistence for user favorites.
type FavoriteStore interface {
	Add(ctx context.Context, userID, videoID int64) error
	Remove(ctx context.Context, userID, videoID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.Video, error)
}

// WatchlistStore captures persistence for per-user watchlists.
type WatchlistStore interface {
	EnsureForUser(ctx context.Context, userID int64) (models.Watchlist, error)
	AddVideo(ctx context.Context, watchlistID, videoID int64) error
	RemoveVideo(ctx context.Context, watchlistID, videoID int64) error
	ListVideos(ctx context.Context, watchlistID int64) ([]models.Video, error)
}

// AssetIngestor schedules background offload of large video payloads.
type AssetIngestor interface {
	Enqueue(ctx context.Context, job assets.Job) error
}
