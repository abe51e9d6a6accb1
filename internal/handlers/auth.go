package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamia/backend/internal/auth"
	"github.com/streamia/backend/internal/logging"
)

// AuthHandler implements the session lifecycle endpoints: login, refresh,
// logout and logout-all.
type AuthHandler struct {
	Users         UserStore
	Sessions      SessionManager
	LoginLimiter  RateLimiter
	SecureCookies bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	Avatar   string `json:"avatar,omitempty"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/users/login. Valid credentials produce an access
// token in the body and a refresh token in an HttpOnly cookie.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.LoginLimiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "Too many login attempts", nil)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "Invalid JSON", nil)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "email", req.Email, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	pair, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "userId", user.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create session", nil)
		return
	}

	setRefreshCookie(w, pair.RefreshToken, pair.RefreshExpiresAt, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, loginResponse{
		Token: pair.AccessToken,
		User: userPayload{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsAdmin:  user.IsAdmin,
		},
	})
}

// Refresh handles GET /api/auth/refresh. It reads the refresh cookie and
// mints a new access token when the server-side session is still alive.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		respondError(ctx, w, http.StatusUnauthorized, "Missing refresh token", nil)
		return
	}

	accessToken, _, err := h.Sessions.Refresh(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrSessionNotFound),
			errors.Is(err, auth.ErrSessionExpired):
			logger.Warn("refresh rejected", "error", err)
			respondError(ctx, w, http.StatusForbidden, "Invalid refresh token", nil)
		default:
			logger.Error("refresh failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Unable to refresh session", nil)
		}
		return
	}

	respondData(ctx, w, http.StatusOK, tokenResponse{Token: accessToken})
}

// Logout handles POST /api/users/logout. It deletes the session row matching
// the presented cookie's jti and clears the cookie. The response is 200 even
// when no session row remains; the client state ends up the same either way.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.Sessions.Revoke(ctx, cookie.Value); err != nil {
			logging.FromContext(ctx).Warn("logout revoke failed", "error", err)
		}
	}

	clearRefreshCookie(w, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// LogoutAll handles POST /api/users/logout-all. Every session row belonging
// to the cookie's subject is deleted, invalidating all devices.
func (h AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	userID, err := h.Sessions.RevokeAll(ctx, cookie.Value)
	if err != nil {
		logger.Warn("logout-all revoke failed", "error", err)
	} else {
		logger.Info("revoked all sessions", "userId", userID)
	}

	clearRefreshCookie(w, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, map[string]string{"message": "Logged out from all devices"})
}
