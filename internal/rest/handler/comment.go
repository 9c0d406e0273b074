package handler

import (
	"errors"
	"net/http"

	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	"github.com/civicpulse/civicpulse/internal/rest/middleware"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(db database.Client, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		db:     db,
		logger: logger,
	}
}

// AddComment creates a comment or a one-level reply on a post.
func (h *CommentHandler) AddComment(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	var body restTypes.CommentRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	comment := &types.Comment{
		PostID:   postID,
		AuthorID: caller.UserID,
		ParentID: body.ParentID,
		Content:  body.Content,
	}

	if err := h.db.Service().Comment().AddComment(req.Context(), comment); err != nil {
		switch {
		case errors.Is(err, types.ErrEmptyContent):
			return respondError(w, http.StatusBadRequest, "Comment content is empty", "")
		case errors.Is(err, types.ErrPostNotFound):
			return respondError(w, http.StatusNotFound, "Post not found", "")
		case errors.Is(err, types.ErrCommentNotFound):
			return respondError(w, http.StatusNotFound, "Parent comment not found", "")
		case errors.Is(err, types.ErrNestedReply):
			return respondError(w, http.StatusBadRequest, "Replies to replies are not allowed", "")
		}

		h.logger.Error("Failed to add comment", zap.Error(err))

		return internalError(w)
	}

	return respondCreated(w, convert.Comment(comment, caller.UserID))
}

// ListComments returns all comments on a post, oldest first.
func (h *CommentHandler) ListComments(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())

	postID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid post ID", "")
	}

	comments, err := h.db.Service().Comment().ListComments(req.Context(), postID)
	if err != nil {
		h.logger.Error("Failed to list comments", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.CommentsResponse{Comments: convert.Comments(comments, caller.UserID)})
}

// ToggleLike flips the caller's like on a comment.
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	commentID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid comment ID", "")
	}

	liked, err := h.db.Service().Comment().ToggleLike(req.Context(), commentID, caller.UserID)
	if err != nil {
		if errors.Is(err, types.ErrCommentNotFound) {
			return respondError(w, http.StatusNotFound, "Comment not found", "")
		}

		h.logger.Error("Failed to toggle comment like", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.ToggleResponse{Active: liked})
}

// DeleteComment removes a comment owned by the caller.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	commentID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid comment ID", "")
	}

	if err := h.db.Service().Comment().DeleteComment(req.Context(), commentID, caller.UserID); err != nil {
		if errors.Is(err, types.ErrCommentNotFound) {
			return respondError(w, http.StatusNotFound, "Comment not found", "")
		}

		h.logger.Error("Failed to delete comment", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
