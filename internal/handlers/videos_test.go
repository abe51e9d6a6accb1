package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/streamia/backend/internal/models"
)

func seedVideo(t *testing.T, store *fakeVideoStore, title string, releaseDate time.Time) int64 {
	t.Helper()

	id, err := store.Create(context.Background(), models.Video{
		Title:       title,
		Description: "about " + title,
		Available:   true,
		Thumbnail:   []byte{0xff, 0xd8, 0xff},
		ReleaseDate: releaseDate,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return id
}

func TestVideoHandlerList(t *testing.T) {
	videos := newFakeVideoStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		seedVideo(t, videos, "video", base.AddDate(0, 0, i))
	}

	handler := VideoHandler{Videos: videos}
	req := httptest.NewRequest(http.MethodGet, "/api/videos?offset=1&limit=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	resp := decodeSuccess[videoListResponse](t, rec)
	if resp.Total != 5 {
		t.Fatalf("expected total 5, got %d", resp.Total)
	}
	if len(resp.Videos) != 2 {
		t.Fatalf("expected 2 videos on the page, got %d", len(resp.Videos))
	}
	if resp.Offset != 1 || resp.Limit != 2 {
		t.Fatalf("unexpected paging echo: offset=%d limit=%d", resp.Offset, resp.Limit)
	}
	if !strings.HasPrefix(resp.Videos[0].Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("expected thumbnail data URI, got %q", resp.Videos[0].Thumbnail)
	}
}

func TestVideoHandlerListRejectsBadPaging(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore()}

	for _, target := range []string{
		"/api/videos?offset=-1",
		"/api/videos?offset=abc",
		"/api/videos?limit=0",
		"/api/videos?limit=xyz",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d got %d", target, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestVideoHandlerListByCategory(t *testing.T) {
	videos := newFakeVideoStore()
	videos.names[1] = "Drama"
	videos.names[2] = "Comedy"

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inCategory := seedVideo(t, videos, "tagged", base)
	seedVideo(t, videos, "untagged", base.AddDate(0, 0, 1))
	if err := videos.SetCategories(context.Background(), inCategory, []int64{1}); err != nil {
		t.Fatalf("link category: %v", err)
	}

	handler := VideoHandler{Videos: videos}
	req := httptest.NewRequest(http.MethodGet, "/api/categories/1/videos", nil)
	req.SetPathValue("categoryId", "1")
	rec := httptest.NewRecorder()

	handler.ListByCategory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	resp := decodeSuccess[videoListResponse](t, rec)
	if resp.Total != 1 || len(resp.Videos) != 1 {
		t.Fatalf("expected exactly one tagged video, got total=%d page=%d", resp.Total, len(resp.Videos))
	}
	if resp.Videos[0].VideoID != inCategory {
		t.Fatalf("expected video %d, got %d", inCategory, resp.Videos[0].VideoID)
	}
}

func TestVideoHandlerDetail(t *testing.T) {
	videos := newFakeVideoStore()
	videos.names[3] = "Sci-Fi"
	videoID := seedVideo(t, videos, "detail", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	if err := videos.SetCategories(context.Background(), videoID, []int64{3}); err != nil {
		t.Fatalf("link category: %v", err)
	}

	handler := VideoHandler{Videos: videos}
	req := httptest.NewRequest(http.MethodGet, "/api/videos/1", nil)
	req.SetPathValue("videoId", "1")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	resp := decodeSuccess[videoDetailResponse](t, rec)
	if resp.VideoID != videoID || resp.Title != "detail" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.ReleaseDate != "2024-05-20" {
		t.Fatalf("unexpected release date %q", resp.ReleaseDate)
	}
	if len(resp.Categories) != 1 || resp.Categories[0].Name != "Sci-Fi" {
		t.Fatalf("unexpected categories: %+v", resp.Categories)
	}
	if !strings.HasPrefix(resp.Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("expected thumbnail data URI, got %q", resp.Thumbnail)
	}
}

func TestVideoHandlerDetailInvalidID(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/videos/abc", nil)
	req.SetPathValue("videoId", "abc")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Invalid video ID" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestVideoHandlerDetailNotFound(t *testing.T) {
	handler := VideoHandler{Videos: newFakeVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/videos/99", nil)
	req.SetPathValue("videoId", "99")
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Video not found" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestVideoHandlerCreateRequiresAdmin(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	userID := seedUser(t, users, "user@example.com", "password123", false)

	handler := VideoHandler{Videos: newFakeVideoStore(), Sessions: sessions, Users: users}

	body, _ := json.Marshal(createVideoRequest{Title: "blocked"})
	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, userID))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Admin access required" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestVideoHandlerCreate(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	videos := newFakeVideoStore()
	videos.names[1] = "Drama"

	handler := VideoHandler{Videos: videos, Sessions: sessions, Users: users}

	body, _ := json.Marshal(createVideoRequest{
		Title:       "new release",
		Description: "a fresh drop",
		ReleaseDate: "2024-06-01",
		IsAvailable: true,
		CategoryIDs: []int64{1},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	resp := decodeSuccess[map[string]int64](t, rec)
	videoID := resp["video_id"]
	if videoID == 0 {
		t.Fatalf("expected a video id, got %v", resp)
	}

	stored := videos.videos[videoID]
	if stored.Title != "new release" || !stored.Available {
		t.Fatalf("unexpected stored video: %+v", stored)
	}
	if got := videos.links[videoID]; len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected category link, got %v", got)
	}
}

func TestVideoHandlerCreateUnknownCategory(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	handler := VideoHandler{Videos: newFakeVideoStore(), Sessions: sessions, Users: users}

	body, _ := json.Marshal(createVideoRequest{Title: "orphan", CategoryIDs: []int64{42}})
	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Unknown category ID" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestVideoHandlerUpdateEnqueuesOffload(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	videos := newFakeVideoStore()
	videoID := seedVideo(t, videos, "before", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	ingestor := &fakeIngestor{}
	handler := VideoHandler{Videos: videos, Sessions: sessions, Users: users, Ingestor: ingestor}

	payload := []byte("raw video bytes")
	body, contentType := multipartBody(t,
		map[string]string{"title": "after", "is_available": "false"},
		map[string][]byte{"video": payload},
	)
	req := httptest.NewRequest(http.MethodPut, "/api/videos/1", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	req.SetPathValue("videoId", "1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored := videos.videos[videoID]
	if stored.Title != "after" || stored.Available {
		t.Fatalf("unexpected stored video: %+v", stored)
	}
	if stored.AssetStatus != models.AssetStatusPending {
		t.Fatalf("expected pending asset status, got %q", stored.AssetStatus)
	}

	if len(ingestor.jobs) != 1 {
		t.Fatalf("expected one ingest job, got %d", len(ingestor.jobs))
	}
	if ingestor.jobs[0].VideoID != videoID || !bytes.Equal(ingestor.jobs[0].Data, payload) {
		t.Fatalf("unexpected ingest job: %+v", ingestor.jobs[0])
	}
}

func TestVideoHandlerUpdateNotFound(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	handler := VideoHandler{Videos: newFakeVideoStore(), Sessions: sessions, Users: users}

	body, contentType := multipartBody(t, map[string]string{"title": "ghost"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/videos/404", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	req.SetPathValue("videoId", "404")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
