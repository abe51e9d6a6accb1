package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/streamia/backend/internal/assets"
	"github.com/streamia/backend/internal/images"
	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
	"github.com/streamia/backend/internal/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// maxVideoBytes caps multipart uploads of raw video payloads.
	maxVideoBytes = 512 << 20

	releaseDateLayout = "2006-01-02"
)

// VideoHandler serves the video catalog, both the public read surface and the
// admin write surface.
type VideoHandler struct {
	Videos   VideoStore
	Sessions SessionManager
	Users    UserStore
	Ingestor AssetIngestor
}

type videoListItem struct {
	VideoID     int64  `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsAvailable bool   `json:"is_available"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	ReleaseDate string `json:"release_date"`
}

type videoListResponse struct {
	Videos []videoListItem `json:"videos"`
	Total  int64           `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

type videoDetailResponse struct {
	VideoID     int64             `json:"video_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	IsAvailable bool              `json:"is_available"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	VideoData   string            `json:"video_data,omitempty"`
	AssetURL    string            `json:"asset_url,omitempty"`
	ReleaseDate string            `json:"release_date"`
	Categories  []categoryPayload `json:"categories"`
}

type createVideoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ReleaseDate string  `json:"release_date"`
	IsAvailable bool    `json:"is_available"`
	CategoryIDs []int64 `json:"category_ids"`
}

func (r createVideoRequest) Validate() validation.Errors {
	errs := validation.Errors{}
	errs.Required("title", strings.TrimSpace(r.Title))
	errs.MaxLen("title", r.Title, 200)
	if r.ReleaseDate != "" {
		if _, err := time.Parse(releaseDateLayout, r.ReleaseDate); err != nil {
			errs.Add("release_date", "must be a date in YYYY-MM-DD format")
		}
	}
	for _, id := range r.CategoryIDs {
		if id <= 0 {
			errs.Add("category_ids", "must contain positive integers")
			break
		}
	}
	return errs
}

// List handles GET /api/videos with optional offset and limit parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	videos, total, err := h.Videos.List(ctx, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list videos", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load videos", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, videoListResponse{
		Videos: videoListItems(videos),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// ListByCategory handles GET /api/categories/{categoryId}/videos.
func (h VideoHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categoryID, err := strconv.ParseInt(r.PathValue("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	videos, total, err := h.Videos.ListByCategory(ctx, categoryID, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list videos by category", "categoryId", categoryID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load videos", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, videoListResponse{
		Videos: videoListItems(videos),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// Detail handles GET /api/videos/{videoId}. Blob payloads are base64-encoded
// inline; offloaded assets are returned by URL instead.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	video, categories, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to load video", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load video", nil)
		return
	}

	payload := videoDetailResponse{
		VideoID:     video.ID,
		Title:       video.Title,
		Description: video.Description,
		IsAvailable: video.Available,
		AssetURL:    video.AssetURL,
		ReleaseDate: video.ReleaseDate.Format(releaseDateLayout),
		Categories:  categoryPayloads(categories),
	}
	if len(video.Thumbnail) > 0 {
		payload.Thumbnail = images.DataURI(video.Thumbnail)
	}
	if len(video.VideoData) > 0 && video.AssetStatus != models.AssetStatusReady {
		payload.VideoData = base64.StdEncoding.EncodeToString(video.VideoData)
	}

	respondData(ctx, w, http.StatusOK, payload)
}

// Create handles POST /api/videos. The payload is JSON metadata only;
// media is attached through the update endpoint.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request, req createVideoRequest) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireAdmin(w, r, h.Sessions, h.Users); !ok {
		return
	}

	releaseDate := time.Now().UTC()
	if req.ReleaseDate != "" {
		releaseDate, _ = time.Parse(releaseDateLayout, req.ReleaseDate)
	}

	video := models.Video{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Available:   req.IsAvailable,
		ReleaseDate: releaseDate,
		CreatedAt:   time.Now().UTC(),
	}

	id, err := h.Videos.Create(ctx, video)
	if err != nil {
		logger.Error("failed to create video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create video", nil)
		return
	}

	if len(req.CategoryIDs) > 0 {
		if err := h.Videos.SetCategories(ctx, id, req.CategoryIDs); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, http.StatusBadRequest, "Unknown category ID", nil)
				return
			}
			logger.Error("failed to link categories", "videoId", id, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to link categories", nil)
			return
		}
	}

	logger.Info("created video", "videoId", id)
	respondData(ctx, w, http.StatusCreated, map[string]int64{"video_id": id})
}

// Update handles PUT /api/videos/{videoId}. The body is multipart form
// data: metadata fields plus optional thumbnail and video files. A video file
// large enough to offload is handed to the ingestor rather than stored inline.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireAdmin(w, r, h.Sessions, h.Users); !ok {
		return
	}

	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		respondError(ctx, w, http.StatusBadRequest, "Invalid video ID", nil)
		return
	}

	if err := r.ParseMultipartForm(maxVideoBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	video, _, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logger.Error("failed to load video", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load video", nil)
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
	}
	if r.Form.Has("description") {
		video.Description = r.FormValue("description")
	}
	if raw := r.FormValue("is_available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "Invalid is_available value", nil)
			return
		}
		video.Available = available
	}
	if raw := r.FormValue("release_date"); raw != "" {
		releaseDate, err := time.Parse(releaseDateLayout, raw)
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "Invalid release_date value", nil)
			return
		}
		video.ReleaseDate = releaseDate
	}

	if data, ok := readFormFile(w, r, "thumbnail", maxAvatarBytes); !ok {
		return
	} else if data != nil {
		video.Thumbnail = data
	}

	var pendingIngest []byte
	var ingestContentType string
	if file, header, err := r.FormFile("video"); err == nil {
		data, readErr := io.ReadAll(io.LimitReader(file, maxVideoBytes+1))
		file.Close()
		if readErr != nil {
			logger.Error("failed to read video upload", "error", readErr)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to read video upload", nil)
			return
		}
		if len(data) > maxVideoBytes {
			respondError(ctx, w, http.StatusBadRequest, "Video file is too large", nil)
			return
		}

		video.VideoData = data
		video.AssetURL = ""
		if h.Ingestor != nil {
			video.AssetStatus = models.AssetStatusPending
			pendingIngest = data
			ingestContentType = header.Header.Get("Content-Type")
			if ingestContentType == "" {
				ingestContentType = "video/mp4"
			}
		} else {
			video.AssetStatus = models.AssetStatusNone
		}
	}

	if err := h.Videos.Update(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Video not found", nil)
			return
		}
		logger.Error("failed to update video", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to update video", nil)
		return
	}

	if category := r.FormValue("category_ids"); category != "" {
		categoryIDs, parseErr := parseIDList(category)
		if parseErr != nil {
			respondError(ctx, w, http.StatusBadRequest, "Invalid category_ids value", nil)
			return
		}
		if err := h.Videos.SetCategories(ctx, videoID, categoryIDs); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, http.StatusBadRequest, "Unknown category ID", nil)
				return
			}
			logger.Error("failed to link categories", "videoId", videoID, "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to link categories", nil)
			return
		}
	}

	if pendingIngest != nil {
		job := assets.Job{VideoID: videoID, Data: pendingIngest, ContentType: ingestContentType}
		if err := h.Ingestor.Enqueue(ctx, job); err != nil {
			logger.Warn("failed to enqueue asset offload", "videoId", videoID, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, map[string]string{"message": "Video updated"})
}

func pageParams(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	ctx := r.Context()
	offset, limit = 0, defaultPageLimit

	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(ctx, w, http.StatusBadRequest, "Invalid offset parameter", nil)
			return 0, 0, false
		}
		offset = parsed
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(ctx, w, http.StatusBadRequest, "Invalid limit parameter", nil)
			return 0, 0, false
		}
		limit = min(parsed, maxPageLimit)
	}

	return offset, limit, true
}

// readFormFile reads an optional multipart file part. A missing part yields
// (nil, true); failures write the error response and yield (nil, false).
func readFormFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, bool) {
	ctx := r.Context()

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, true
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		logging.FromContext(ctx).Error("failed to read upload", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to read upload", nil)
		return nil, false
	}
	if int64(len(data)) > maxBytes {
		respondError(ctx, w, http.StatusBadRequest, "Uploaded file is too large", nil)
		return nil, false
	}

	return data, true
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid id list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func videoListItems(videos []models.Video) []videoListItem {
	out := make([]videoListItem, 0, len(videos))
	for _, v := range videos {
		item := videoListItem{
			VideoID:     v.ID,
			Title:       v.Title,
			Description: v.Description,
			IsAvailable: v.Available,
			ReleaseDate: v.ReleaseDate.Format(releaseDateLayout),
		}
		if len(v.Thumbnail) > 0 {
			item.Thumbnail = images.DataURI(v.Thumbnail)
		}
		out = append(out, item)
	}
	return out
}
