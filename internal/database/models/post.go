package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PostModel handles database operations for posts and report updates.
// Reads that can legitimately find nothing return types.ErrPostNotFound or
// an empty slice; transient write failures are returned to the caller
// unretried so its own rollback policy applies.
type PostModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPost creates a new post model.
func NewPost(db *bun.DB, logger *zap.Logger) *PostModel {
	return &PostModel{
		db:     db,
		logger: logger.Named("db_post"),
	}
}

// CreatePost inserts a new post.
func (r *PostModel) CreatePost(ctx context.Context, post *types.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	if post.UpvotedBy == nil {
		post.UpvotedBy = []uuid.UUID{}
	}

	if post.WatchedBy == nil {
		post.WatchedBy = []uuid.UUID{}
	}

	_, err := r.db.NewInsert().
		Model(post).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetPost retrieves a single post with its report updates.
func (r *PostModel) GetPost(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	post := new(types.Post)

	err := r.getPostQuery(post, postID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrPostNotFound
		}

		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if post.IsReport() && post.Updates == nil {
		post.Updates = []*types.ReportUpdate{}
	}

	return post, nil
}

// getPostQuery builds the single-post select. The where clause must use
// the model alias bun derives for types.Post.
func (r *PostModel) getPostQuery(post *types.Post, postID uuid.UUID) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(post).
		Relation("Updates", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("post.id = ?", postID)
}

// GetFeed retrieves the newest posts, optionally filtered by city.
func (r *PostModel) GetFeed(ctx context.Context, city string, limit int) ([]*types.Post, error) {
	var posts []*types.Post

	q := r.db.NewSelect().
		Model(&posts).
		Order("created_at DESC").
		Limit(limit)

	if city != "" {
		q = q.Where("city = ?", city)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return posts, nil
}

// GetReportsBetween retrieves report posts created within [from, to).
func (r *PostModel) GetReportsBetween(ctx context.Context, from, to time.Time, limit int) ([]*types.Post, error) {
	var posts []*types.Post

	err := r.db.NewSelect().
		Model(&posts).
		Where("type = ?", enum.PostTypeReport).
		Where("created_at >= ?", from).
		Where("created_at < ?", to).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}

	return posts, nil
}

// GetTopReports retrieves the most-upvoted open reports.
func (r *PostModel) GetTopReports(ctx context.Context, limit int) ([]*types.Post, error) {
	var posts []*types.Post

	err := r.db.NewSelect().
		Model(&posts).
		Where("type = ?", enum.PostTypeReport).
		Where("status IN (?)", bun.In([]enum.PostStatus{enum.PostStatusActive, enum.PostStatusVerified})).
		Order("engagement_upvotes DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top reports: %w", err)
	}

	return posts, nil
}

// UpdateStatus moves a report to a new lifecycle status.
func (r *PostModel) UpdateStatus(ctx context.Context, postID uuid.UUID, status enum.PostStatus) error {
	res, err := r.db.NewUpdate().
		Model((*types.Post)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", postID).
		Where("type = ?", enum.PostTypeReport).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return types.ErrPostNotFound
	}

	return nil
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *PostModel) IncrementViews(ctx context.Context, postID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*types.Post)(nil)).
		Set("engagement_views = engagement_views + 1").
		Where("id = ?", postID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	return nil
}

// IncrementShares bumps the share counter.
func (r *PostModel) IncrementShares(ctx context.Context, postID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*types.Post)(nil)).
		Set("engagement_shares = engagement_shares + 1").
		Where("id = ?", postID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment shares: %w", err)
	}

	return nil
}

// AddReportUpdate appends a community update to a report post.
func (r *PostModel) AddReportUpdate(ctx context.Context, update *types.ReportUpdate) error {
	update.CreatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(update).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add report update: %w", err)
	}

	return nil
}

// GetReportUpdates retrieves a report's updates ordered by creation time.
func (r *PostModel) GetReportUpdates(ctx context.Context, postID uuid.UUID) ([]*types.ReportUpdate, error) {
	var updates []*types.ReportUpdate

	err := r.db.NewSelect().
		Model(&updates).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get report updates: %w", err)
	}

	return updates, nil
}

// DeletePost removes a post owned by the given author.
func (r *PostModel) DeletePost(ctx context.Context, postID, authorID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*types.Post)(nil)).
		Where("id = ?", postID).
		Where("author_id = ?", authorID). // Only the author may delete
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return types.ErrPostNotFound
	}

	return nil
}
