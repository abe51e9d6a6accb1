package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
	"github.com/streamia/backend/internal/validation"
)

// CategoryHandler serves the category catalog. Reads go through a cache;
// writes invalidate it.
type CategoryHandler struct {
	Lister   CategoryLister
	Store    CategoryStore
	Cache    CacheInvalidator
	Sessions SessionManager
	Users    UserStore
}

type categoryPayload struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"category_name"`
}

type createCategoryRequest struct {
	Name string `json:"category_name"`
}

func (r createCategoryRequest) Validate() validation.Errors {
	errs := validation.Errors{}
	errs.Required("category_name", strings.TrimSpace(r.Name))
	errs.MaxLen("category_name", r.Name, 100)
	return errs
}

// List handles GET /api/categories.
func (h CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.Lister.ListCategories(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list categories", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load categories", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, categoryPayloads(categories))
}

// Create handles POST /api/categories.
func (h CategoryHandler) Create(w http.ResponseWriter, r *http.Request, req createCategoryRequest) {
	ctx := r.Context()

	if _, ok := requireAdmin(w, r, h.Sessions, h.Users); !ok {
		return
	}

	category, err := h.Store.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "Category already exists", nil)
			return
		}
		logging.FromContext(ctx).Error("failed to create category", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create category", nil)
		return
	}

	if h.Cache != nil {
		h.Cache.Invalidate()
	}

	respondData(ctx, w, http.StatusCreated, categoryPayload{CategoryID: category.ID, Name: category.Name})
}

func categoryPayloads(categories []models.Category) []categoryPayload {
	out := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryPayload{CategoryID: c.ID, Name: c.Name})
	}
	return out
}
