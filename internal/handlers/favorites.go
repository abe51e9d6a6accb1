package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/repositories"
)

// FavoriteHandler serves the per-user favorites list.
type FavoriteHandler struct {
	Favorites FavoriteStore
	Sessions  SessionManager
}

// List handles GET /api/users/me/favorites.
func (h FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	videos, err := h.Favorites.ListForUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list favorites", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load favorites", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, videoListItems(videos))
}

// Add handles POST /api/users/me/favorites/{videoId}. Adding an already
// favorited video is a no-op success.
func (h FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Favorites.Add(ctx, userID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to add favorite", "userId", userID, "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to add favorite", nil)
		return
	}

	respondData(ctx, w, http.StatusCreated, map[string]string{"message": "Favorite added"})
}

// Remove handles DELETE /api/users/me/favorites/{videoId}.
func (h FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Favorites.Remove(ctx, userID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Favorite not found", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to remove favorite", "userId", userID, "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to remove favorite", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]string{"message": "Favorite removed"})
}
