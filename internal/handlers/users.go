package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamia/backend/internal/images"
	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
	"github.com/streamia/backend/internal/validation"
)

// maxAvatarBytes caps profile image uploads.
const maxAvatarBytes = 5 << 20

// UserHandler implements account registration and profile endpoints.
type UserHandler struct {
	Users    UserStore
	Avatars  AvatarStore
	Sessions SessionManager
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() validation.Errors {
	errs := validation.Errors{}
	errs.Required("username", r.Username)
	errs.MinLen("username", r.Username, 3)
	errs.MaxLen("username", r.Username, 50)
	errs.Required("email", r.Email)
	errs.Email("email", r.Email)
	errs.Required("password", r.Password)
	errs.MinLen("password", r.Password, 8)
	return errs
}

// Register handles POST /api/users/register. New accounts are linked to the
// default avatar and must present an unused email address.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request, req registerRequest) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	email := strings.TrimSpace(strings.ToLower(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create account", nil)
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: string(hash),
	}

	if avatar, err := h.Avatars.FindDefault(ctx); err == nil {
		user.AvatarID = &avatar.ID
	} else {
		logger.Warn("no default avatar available", "error", err)
	}

	id, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "Email is already in use", nil)
			return
		}
		logger.Error("failed to create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create account", nil)
		return
	}

	logger.Info("registered user", "userId", id)
	respondData(ctx, w, http.StatusCreated, userPayload{
		UserID:   id,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Me handles GET /api/users/me. The avatar, when present, is inlined as a
// data URI so browsers can render it without a second request.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("profile lookup failed", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load profile", nil)
		return
	}

	payload := userPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}

	if user.AvatarID != nil {
		avatar, err := h.Avatars.FindByID(ctx, *user.AvatarID)
		if err != nil {
			logging.FromContext(ctx).Warn("avatar lookup failed", "avatarId", *user.AvatarID, "error", err)
		} else {
			payload.Avatar = images.DataURI(avatar.ImageData)
		}
	}

	respondData(ctx, w, http.StatusOK, payload)
}

// UpdateMe handles PUT /api/users/me. The body is multipart form data with an
// optional email field and an optional avatar file; absent parts leave the
// current values untouched.
func (h UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("profile lookup failed", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to load profile", nil)
		return
	}

	if email := strings.TrimSpace(strings.ToLower(r.FormValue("email"))); email != "" {
		errs := validation.Errors{}
		errs.Email("email", email)
		if !errs.Empty() {
			respondError(ctx, w, http.StatusBadRequest, "Validation failed", errs)
			return
		}
		user.Email = email
	}

	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
		if err != nil {
			logger.Error("failed to read avatar upload", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to read avatar", nil)
			return
		}
		if len(data) > maxAvatarBytes {
			respondError(ctx, w, http.StatusBadRequest, "Avatar file is too large", nil)
			return
		}

		avatarID, err := h.Avatars.Create(ctx, data)
		if err != nil {
			logger.Error("failed to store avatar", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to store avatar", nil)
			return
		}
		user.AvatarID = &avatarID
	}

	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "Email is already in use", nil)
			return
		}
		logger.Error("failed to update profile", "userId", userID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to update profile", nil)
		return
	}

	respondData(ctx, w, http.StatusOK, userPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	})
}
