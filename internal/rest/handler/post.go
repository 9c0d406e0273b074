package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	"github.com/civicpulse/civicpulse/internal/rest/middleware"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// PostHandler handles post and report endpoints.
type PostHandler struct {
	db         database.Client
	classifier *ai.Classifier
	pageSize   int
	logger     *zap.Logger
}

// NewPostHandler creates a new post handler.
func NewPostHandler(db database.Client, classifier *ai.Classifier, pageSize int, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		db:         db,
		classifier: classifier,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// CreatePost creates a post or report authored by the caller.
// Reports may be submitted anonymously; the author is then omitted.
func (h *PostHandler) CreatePost(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	var body restTypes.CreatePostRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	post := &types.Post{
		Content:  body.Content,
		Media:    body.Media,
		City:     body.City,
		District: body.District,
		Lat:      body.Lat,
		Lon:      body.Lon,
		Type:     enum.PostType(body.Type),
	}

	if post.Type != "" && !post.Type.IsValid() {
		return respondError(w, http.StatusBadRequest, "Unknown post type", "")
	}

	authorID := caller.UserID
	if !body.Anonymous {
		post.AuthorID = &authorID
	}

	post.Classification = h.classifier.ClassifyPost(req.Context(), post)

	if err := h.db.Service().Post().CreatePost(req.Context(), post); err != nil {
		if errors.Is(err, types.ErrEmptyContent) {
			return respondError(w, http.StatusBadRequest, "Post content is empty", "")
		}

		h.logger.Error("Failed to create post", zap.Error(err))

		return internalError(w)
	}

	return respondCreated(w, convert.Post(post, caller.UserID))
}

// GetFeed returns the latest posts for a city.
func (h *PostHandler) GetFeed(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())

	city := req.URL.Query().Get("city")

	limit := h.pageSize
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= h.pageSize {
			limit = parsed
		}
	}

	posts, err := h.db.Service().Post().GetFeed(req.Context(), city, limit)
	if err != nil {
		h.logger.Error("Failed to load feed", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.FeedResponse{Posts: convert.Posts(posts, caller.UserID)})
}

// GetTrending returns the most upvoted open reports.
func (h *PostHandler) GetTrending(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())

	posts, err := h.db.Model().Post().GetTopReports(req.Context(), h.pageSize)
	if err != nil {
		h.logger.Error("Failed to load trending reports", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.FeedResponse{Posts: convert.Posts(posts, caller.UserID)})
}

// GetPost returns a single post with its report updates.
func (h *PostHandler) GetPost(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	post, err := h.db.Service().Post().GetPost(req.Context(), postID)
	if err != nil {
		if errors.Is(err, types.ErrPostNotFound) {
			return respondError(w, http.StatusNotFound, "Post not found", "")
		}

		h.logger.Error("Failed to get post", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, convert.Post(post, caller.UserID))
}

// DeletePost removes a post owned by the caller.
func (h *PostHandler) DeletePost(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	if err := h.db.Service().Post().DeletePost(req.Context(), postID, caller.UserID); err != nil {
		if errors.Is(err, types.ErrPostNotFound) {
			return respondError(w, http.StatusNotFound, "Post not found", "")
		}

		h.logger.Error("Failed to delete post", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// ToggleUpvote flips the caller's upvote on a post and returns the
// confirmed state.
func (h *PostHandler) ToggleUpvote(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	upvoted, count, err := h.db.Service().Post().ToggleUpvote(req.Context(), postID, caller.UserID)
	if err != nil {
		if errors.Is(err, types.ErrPostNotFound) {
			return respondError(w, http.StatusNotFound, "Post not found", "")
		}

		h.logger.Error("Failed to toggle upvote", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.ToggleResponse{Active: upvoted, Count: count})
}

// ToggleWatch flips the caller's watch flag on a post.
func (h *PostHandler) ToggleWatch(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	watching, err := h.db.Service().Post().ToggleWatch(req.Context(), postID, caller.UserID)
	if err != nil {
		if errors.Is(err, types.ErrPostNotFound) {
			return respondError(w, http.StatusNotFound, "Post not found", "")
		}

		h.logger.Error("Failed to toggle watch", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.ToggleResponse{Active: watching})
}

// SharePost bumps a post's share counter.
func (h *PostHandler) SharePost(w http.ResponseWriter, req bunrouter.Request) error {
	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	if err := h.db.Service().Post().SharePost(req.Context(), postID); err != nil {
		if errors.Is(err, types.ErrPostNotFound) {
			return respondError(w, http.StatusNotFound, "Post not found", "")
		}

		h.logger.Error("Failed to record share", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// VerifyReport records a community verification on a report.
func (h *PostHandler) VerifyReport(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	if err := h.db.Service().Post().VerifyReport(req.Context(), postID, caller.UserID); err != nil {
		switch {
		case errors.Is(err, types.ErrPostNotFound):
			return respondError(w, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, types.ErrNotReport):
			return respondError(w, http.StatusBadRequest, "Post is not a report", "")
		}

		h.logger.Error("Failed to verify report", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// UpdateStatus moves a report along its lifecycle.
func (h *PostHandler) UpdateStatus(w http.ResponseWriter, req bunrouter.Request) error {
	if _, ok, err := requireAuth(w, req); !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	var body restTypes.StatusRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	err = h.db.Service().Post().UpdateReportStatus(req.Context(), postID, enum.PostStatus(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrPostNotFound):
			return respondError(w, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, types.ErrNotReport):
			return respondError(w, http.StatusBadRequest, "Post is not a report", "")
		case errors.Is(err, types.ErrInvalidStatus):
			return respondError(w, http.StatusConflict, "Invalid status transition", "")
		}

		h.logger.Error("Failed to update report status", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// AddUpdate appends a progress note to a report.
func (h *PostHandler) AddUpdate(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	var body restTypes.ReportUpdateRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	authorID := caller.UserID
	update := &types.ReportUpdate{
		PostID:   postID,
		AuthorID: &authorID,
		Content:  body.Content,
		Media:    body.Media,
	}

	if err := h.db.Service().Post().AddReportUpdate(req.Context(), update); err != nil {
		switch {
		case errors.Is(err, types.ErrPostNotFound):
			return respondError(w, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, types.ErrNotReport):
			return respondError(w, http.StatusBadRequest, "Post is not a report", "")
		case errors.Is(err, types.ErrEmptyContent):
			return respondError(w, http.StatusBadRequest, "Update content is empty", "")
		}

		h.logger.Error("Failed to add report update", zap.Error(err))

		return internalError(w)
	}

	return respondCreated(w, convert.ReportUpdate(update))
}
