package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/models"
)

var errNoBearerToken = errors.New("missing bearer token")

// bearerToken extracts the access token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoBearerToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errNoBearerToken
	}
	return token, nil
}

// requireUser authenticates the request's bearer token. On failure it writes
// a 401 envelope and reports false.
func requireUser(w http.ResponseWriter, r *http.Request, sessions SessionManager) (int64, bool) {
	ctx := r.Context()

	token, err := bearerToken(r)
	if err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized", nil)
		return 0, false
	}

	userID, err := sessions.VerifyAccess(token)
	if err != nil {
		logging.FromContext(ctx).Warn("access token rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid token", nil)
		return 0, false
	}

	return userID, true
}

// requireAdmin authenticates the bearer token and checks the is_admin flag.
// On failure it writes a 401 or 403 envelope and reports false.
func requireAdmin(w http.ResponseWriter, r *http.Request, sessions SessionManager, users UserStore) (models.User, bool) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, sessions)
	if !ok {
		return models.User{}, false
	}

	user, err := users.FindByID(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("admin lookup failed", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized", nil)
		return models.User{}, false
	}

	if !user.IsAdmin {
		respondError(ctx, w, http.StatusForbidden, "Admin access required", nil)
		return models.User{}, false
	}

	return user, true
}
