package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
	"github.com/streamia/backend/internal/validation"
)

// CommentHandler serves comment creation and per-video listing.
type CommentHandler struct {
	Comments CommentStore
	Sessions SessionManager
}

type createCommentRequest struct {
	UserID  int64  `json:"user_id"`
	VideoID int64  `json:"video_id"`
	Content string `json:"comment_content"`
}

func (r createCommentRequest) Validate() validation.Errors {
	errs := validation.Errors{}
	errs.Positive("user_id", r.UserID)
	errs.Positive("video_id", r.VideoID)
	errs.Required("comment_content", strings.TrimSpace(r.Content))
	errs.MaxLen("comment_content", r.Content, 2000)
	return errs
}

type commentPayload struct {
	CommentID int64  `json:"comment_id"`
	UserID    int64  `json:"user_id"`
	VideoID   int64  `json:"video_id"`
	Content   string `json:"comment_content"`
	WrittenAt string `json:"written_at"`
}

// Create handles POST /api/comments. The authenticated subject must match the
// user_id in the payload; users cannot write comments as someone else.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request, req createCommentRequest) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}
	if userID != req.UserID {
		respondError(ctx, w, http.StatusForbidden, "Cannot comment as another user", nil)
		return
	}

	comment, err := h.Comments.Create(ctx, models.Comment{
		UserID:    req.UserID,
		VideoID:   req.VideoID,
		Content:   strings.TrimSpace(req.Content),
		WrittenAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to create comment", "videoId", req.VideoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create comment", nil)
		return
	}

	respondData(ctx, w, http.StatusCreated, commentToPayload(comment))
}

// ListForVideo handles GET /api/videos/{videoId}/comments, newest first.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list comments", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load comments", nil)
		return
	}

	out := make([]commentPayload, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentToPayload(c))
	}
	respondData(ctx, w, http.StatusOK, out)
}

func commentToPayload(c models.Comment) commentPayload {
	return commentPayload{
		CommentID: c.ID,
		UserID:    c.UserID,
		VideoID:   c.VideoID,
		Content:   c.Content,
		WrittenAt: c.WrittenAt.Format(time.RFC3339),
	}
}
