package service

import (
	"context"

	"github.com/civicpulse/civicpulse/internal/database/models"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommentService handles comment business logic on top of the comment model:
// threading rules and the notifications that ride comment activity.
type CommentService struct {
	model  *models.CommentModel
	posts  *models.PostModel
	logger *zap.Logger

	notifications *NotificationService
}

// NewComment creates a new comment service.
func NewComment(
	model *models.CommentModel,
	posts *models.PostModel,
	notifications *NotificationService,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		model:         model,
		posts:         posts,
		notifications: notifications,
		logger:        logger.Named("comment_service"),
	}
}

// AddComment validates and persists a comment. Threading is one level deep:
// a reply's parent must be a top-level comment on the same post.
func (s *CommentService) AddComment(ctx context.Context, comment *types.Comment) error {
	if comment.Content == "" {
		return types.ErrEmptyContent
	}

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	post, err := s.posts.GetPost(ctx, comment.PostID)
	if err != nil {
		return err
	}

	var parent *types.Comment

	if comment.ParentID != nil {
		parent, err = s.model.GetComment(ctx, *comment.ParentID)
		if err != nil {
			return err
		}

		if parent.ParentID != nil || parent.PostID != comment.PostID {
			return types.ErrNestedReply
		}
	}

	if err := s.model.CreateComment(ctx, comment); err != nil {
		return err
	}

	switch {
	case parent != nil && parent.AuthorID != comment.AuthorID:
		s.notifications.NotifyReply(ctx, parent.AuthorID, comment.PostID, comment.ID)
	case parent == nil && post.AuthorID != nil && *post.AuthorID != comment.AuthorID:
		s.notifications.NotifyComment(ctx, *post.AuthorID, comment.PostID, comment.ID)
	}

	return nil
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID) ([]*types.Comment, error) {
	return s.model.GetPostComments(ctx, postID)
}

// ToggleLike flips the viewer's like on a comment and returns the new state.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, viewerID uuid.UUID) (bool, error) {
	return s.model.ToggleLike(ctx, commentID, viewerID)
}

// DeleteComment removes a comment owned by the author.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, authorID uuid.UUID) error {
	return s.model.DeleteComment(ctx, commentID, authorID)
}
