package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWatchlistHandlerAddListRemove(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	userID := seedUser(t, users, "watcher@example.com", "password123", false)

	videos := newFakeVideoStore()
	videoID := seedVideo(t, videos, "watch later", time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC))

	watchlists := newFakeWatchlistStore(videos)
	handler := WatchlistHandler{Watchlists: watchlists, Sessions: sessions}
	token := accessTokenFor(t, sessions, userID)

	addReq := httptest.NewRequest(http.MethodPost, "/api/users/me/watchlist/1", nil)
	addReq.Header.Set("Authorization", "Bearer "+token)
	addReq.SetPathValue("videoId", "1")
	addRec := httptest.NewRecorder()
	handler.Add(addRec, addReq)

	if addRec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, addRec.Code, addRec.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/users/me/watchlist", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	listRec := httptest.NewRecorder()
	handler.List(listRec, listReq)

	listed := decodeSuccess[[]videoListItem](t, listRec)
	if len(listed) != 1 || listed[0].VideoID != videoID {
		t.Fatalf("unexpected watchlist: %+v", listed)
	}

	removeReq := httptest.NewRequest(http.MethodDelete, "/api/users/me/watchlist/1", nil)
	removeReq.Header.Set("Authorization", "Bearer "+token)
	removeReq.SetPathValue("videoId", "1")
	removeRec := httptest.NewRecorder()
	handler.Remove(removeRec, removeReq)

	if removeRec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, removeRec.Code)
	}
}

func TestWatchlistHandlerCreatedLazily(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	userID := seedUser(t, users, "watcher@example.com", "password123", false)

	watchlists := newFakeWatchlistStore(newFakeVideoStore())
	handler := WatchlistHandler{Watchlists: watchlists, Sessions: sessions}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/watchlist", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, userID))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := watchlists.lists[userID]; !ok {
		t.Fatal("expected watchlist row to be created on first use")
	}

	listed := decodeSuccess[[]videoListItem](t, rec)
	if len(listed) != 0 {
		t.Fatalf("expected empty watchlist, got %+v", listed)
	}
}

func TestWatchlistHandlerRemoveMissingEntry(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	userID := seedUser(t, users, "watcher@example.com", "password123", false)

	watchlists := newFakeWatchlistStore(newFakeVideoStore())
	handler := WatchlistHandler{Watchlists: watchlists, Sessions: sessions}

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me/watchlist/7", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, userID))
	req.SetPathValue("videoId", "7")
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
