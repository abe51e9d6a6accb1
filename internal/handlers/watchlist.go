package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/repositories"
)

// WatchlistHandler serves the per-user watchlist. The backing list row is
// created lazily on first use.
type WatchlistHandler struct {
	Watchlists WatchlistStore
	Sessions   SessionManager
}

// List handles GET /api/users/me/watchlist.
func (h WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	list, err := h.Watchlists.EnsureForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to resolve watchlist", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load watchlist", nil)
		return
	}

	videos, err := h.Watchlists.ListVideos(ctx, list.ID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list watchlist videos", "watchlistId", list.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load watchlist", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, videoListItems(videos))
}

// Add handles POST /api/users/me/watchlist/{videoId}.
func (h WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	list, err := h.Watchlists.EnsureForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to resolve watchlist", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load watchlist", nil)
		return
	}

	if err := h.Watchlists.AddVideo(ctx, list.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to add watchlist video", "watchlistId", list.ID, "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to update watchlist", nil)
		return
	}

	respondData(ctx, w, http.StatusCreated, map[string]string{"message": "Added to watchlist"})
}

// Remove handles DELETE /api/users/me/watchlist/{videoId}.
func (h WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	list, err := h.Watchlists.EnsureForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to resolve watchlist", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load watchlist", nil)
		return
	}

	if err := h.Watchlists.RemoveVideo(ctx, list.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not in watchlist", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to remove watchlist video", "watchlistId", list.ID, "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to update watchlist", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]string{"message": "Removed from watchlist"})
}
