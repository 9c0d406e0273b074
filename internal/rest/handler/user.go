package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/civicpulse/civicpulse/internal/storage"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	db     database.Client
	media  *storage.MediaClient
	logger *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(db database.Client, media *storage.MediaClient, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		db:     db,
		media:  media,
		logger: logger,
	}
}

// GetProfile returns the caller's own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	user, err := h.db.Service().User().GetUser(req.Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return respondAuthError(w, http.StatusNotFound, restTypes.AuthCodeUserNotFound, caller.Language)
		}

		h.logger.Error("Failed to get profile", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, convert.User(user))
}

// GetUser returns another user's public profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, req bunrouter.Request) error {
	userID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid user ID", "")
	}

	user, err := h.db.Service().User().GetUser(req.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return respondError(w, http.StatusNotFound, "User not found", "")
		}

		h.logger.Error("Failed to get user", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, convert.User(user))
}

// UpdateProfile applies partial edits to the caller's profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	var body restTypes.ProfileUpdateRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	user, err := h.db.Service().User().GetUser(req.Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return respondAuthError(w, http.StatusNotFound, restTypes.AuthCodeUserNotFound, caller.Language)
		}

		h.logger.Error("Failed to load profile for update", zap.Error(err))

		return internalError(w)
	}

	if body.DisplayName != "" {
		user.DisplayName = body.DisplayName
	}

	if body.District != "" {
		user.District = body.District
	}

	if body.Interests != nil {
		user.Interests = body.Interests
	}

	if err := h.db.Service().User().UpdateProfile(req.Context(), user); err != nil {
		h.logger.Error("Failed to update profile", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, convert.User(user))
}

// UploadAvatar stores a new avatar image and records its URL.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	file, header, err := req.FormFile("avatar")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Missing avatar file", "")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadSize+1))
	if err != nil {
		h.logger.Error("Failed to read avatar upload", zap.Error(err))

		return internalError(w)
	}

	url, err := h.media.UploadAvatar(req.Context(), caller.UserID, data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyUpload),
			errors.Is(err, storage.ErrUnsupportedFormat):
			return respondError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, storage.ErrUploadTooLarge):
			return respondError(w, http.StatusRequestEntityTooLarge, err.Error(), "")
		}

		h.logger.Error("Failed to upload avatar", zap.Error(err))

		return internalError(w)
	}

	if err := h.db.Service().User().UpdateAvatar(req.Context(), caller.UserID, url); err != nil {
		h.logger.Error("Failed to record avatar URL", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.AvatarResponse{URL: url})
}
