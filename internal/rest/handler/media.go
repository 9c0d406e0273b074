package handler

import (
	"errors"
	"io"
	"net/http"

	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/civicpulse/civicpulse/internal/storage"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// MediaHandler handles direct media uploads for posts.
type MediaHandler struct {
	media  *storage.MediaClient
	logger *zap.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(media *storage.MediaClient, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		media:  media,
		logger: logger,
	}
}

// UploadPostMedia stores an image for a post being composed and returns
// its public URL. The client attaches the URL to the post on submit.
func (h *MediaHandler) UploadPostMedia(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	file, header, err := req.FormFile("media")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Missing media file", "")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadSize+1))
	if err != nil {
		h.logger.Error("Failed to read media upload", zap.Error(err))

		return internalError(w)
	}

	url, err := h.media.UploadPostMedia(
		req.Context(), caller.UserID.String(), data, header.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyUpload),
			errors.Is(err, storage.ErrUnsupportedFormat):
			return respondError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, storage.ErrUploadTooLarge):
			return respondError(w, http.StatusRequestEntityTooLarge, err.Error(), "")
		}

		h.logger.Error("Failed to upload media", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.MediaResponse{URL: url})
}
