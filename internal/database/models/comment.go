package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// CommentModel handles database operations for comments.
type CommentModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewComment creates a new comment model.
func NewComment(db *bun.DB, logger *zap.Logger) *CommentModel {
	return &CommentModel{
		db:     db,
		logger: logger.Named("db_comment"),
	}
}

// GetComment retrieves a single comment.
func (r *CommentModel) GetComment(ctx context.Context, commentID uuid.UUID) (*types.Comment, error) {
	comment := new(types.Comment)

	err := r.db.NewSelect().
		Model(comment).
		Where("id = ?", commentID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrCommentNotFound
		}

		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// GetPostComments retrieves all comments on a post ordered oldest first,
// replies interleaved after their parents by creation time.
func (r *CommentModel) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*types.Comment, error) {
	var comments []*types.Comment

	err := r.db.NewSelect().
		Model(&comments).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return comments, nil
}

// CreateComment inserts a comment and bumps the parent post's counter in
// one transaction.
func (r *CommentModel) CreateComment(ctx context.Context, comment *types.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if comment.LikedBy == nil {
		comment.LikedBy = []uuid.UUID{}
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(comment).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*types.Post)(nil)).
			Set("engagement_comments = engagement_comments + 1").
			Where("id = ?", comment.PostID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to bump comment counter: %w", err)
		}

		return nil
	})
}

// DeleteComment removes a comment by its author and decrements the post
// counter in one transaction.
func (r *CommentModel) DeleteComment(ctx context.Context, commentID, authorID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		comment := new(types.Comment)

		err := tx.NewSelect().
			Model(comment).
			Where("id = ?", commentID).
			Where("author_id = ?", authorID). // Only allow deleting own comments
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrCommentNotFound
			}

			return fmt.Errorf("failed to get comment: %w", err)
		}

		_, err = tx.NewDelete().
			Model((*types.Comment)(nil)).
			Where("id = ?", commentID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*types.Post)(nil)).
			Set("engagement_comments = GREATEST(engagement_comments - 1, 0)").
			Where("id = ?", comment.PostID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to decrement comment counter: %w", err)
		}

		return nil
	})
}

// ToggleLike flips the caller's membership in the comment's liker set and
// adjusts the counter to match. Returns the new liked state.
func (r *CommentModel) ToggleLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	var liked bool

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		comment := new(types.Comment)

		err := tx.NewSelect().
			Model(comment).
			Column("id", "liked_by").
			Where("id = ?", commentID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrCommentNotFound
			}

			return fmt.Errorf("failed to get comment: %w", err)
		}

		if comment.HasLiked(userID) {
			_, err = tx.NewUpdate().
				Model((*types.Comment)(nil)).
				Set("liked_by = array_remove(liked_by, ?)", userID).
				Set("likes = GREATEST(likes - 1, 0)").
				Where("id = ?", commentID).
				Exec(ctx)
			liked = false
		} else {
			_, err = tx.NewUpdate().
				Model((*types.Comment)(nil)).
				Set("liked_by = array_append(liked_by, ?)", userID).
				Set("likes = likes + 1").
				Where("id = ?", commentID).
				Exec(ctx)
			liked = true
		}

		if err != nil {
			return fmt.Errorf("failed to toggle comment like: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}
