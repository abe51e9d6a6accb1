package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamia/backend/internal/catalog"
)

func TestCategoryHandlerList(t *testing.T) {
	store := newFakeCategoryStore()
	if _, err := store.Create(t.Context(), "Drama"); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if _, err := store.Create(t.Context(), "Comedy"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	handler := CategoryHandler{Lister: store}
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	resp := decodeSuccess[[]categoryPayload](t, rec)
	if len(resp) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(resp))
	}
}

func TestCategoryHandlerListUsesCache(t *testing.T) {
	store := newFakeCategoryStore()
	if _, err := store.Create(t.Context(), "Drama"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	cache := catalog.NewCachingLister(store, time.Minute)
	handler := CategoryHandler{Lister: cache}

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		rec := httptest.NewRecorder()
		handler.List(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
		}
	}

	if store.listCalls != 1 {
		t.Fatalf("expected one backing list call, got %d", store.listCalls)
	}
}

func TestCategoryHandlerCreate(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	store := newFakeCategoryStore()
	cache := catalog.NewCachingLister(store, time.Minute)
	handler := CategoryHandler{Lister: cache, Store: store, Cache: cache, Sessions: sessions, Users: users}

	// Warm the cache so Create has something to invalidate.
	warm := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	handler.List(httptest.NewRecorder(), warm)

	body, _ := json.Marshal(createCategoryRequest{Name: "Horror"})
	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	resp := decodeSuccess[categoryPayload](t, rec)
	if resp.Name != "Horror" || resp.CategoryID == 0 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	// A fresh list after the write must observe the new category.
	listReq := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	listRec := httptest.NewRecorder()
	handler.List(listRec, listReq)

	listed := decodeSuccess[[]categoryPayload](t, listRec)
	if len(listed) != 1 || listed[0].Name != "Horror" {
		t.Fatalf("expected cache to be invalidated, got %+v", listed)
	}
}

func TestCategoryHandlerCreateConflict(t *testing.T) {
	users := newFakeUserStore()
	sessions, _ := newTestSessions(t)
	adminID := seedUser(t, users, "admin@example.com", "password123", true)

	store := newFakeCategoryStore()
	if _, err := store.Create(t.Context(), "Drama"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	handler := CategoryHandler{Lister: store, Store: store, Sessions: sessions, Users: users}

	body, _ := json.Marshal(createCategoryRequest{Name: "Drama"})
	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, sessions, adminID))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Category already exists" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestCategoryHandlerCreateRequiresAuth(t *testing.T) {
	sessions, _ := newTestSessions(t)
	handler := CategoryHandler{Lister: newFakeCategoryStore(), Store: newFakeCategoryStore(), Sessions: sessions, Users: newFakeUserStore()}

	body, _ := json.Marshal(createCategoryRequest{Name: "Horror"})
	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	withValidation(handler.Create)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}
