package models

import (
	"context"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// StatsModel issues the capped read queries the pulse dashboard reduces
// in memory. Nothing here is persisted; every call hits the live tables.
type StatsModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStats creates a new StatsModel.
func NewStats(db *bun.DB, logger *zap.Logger) *StatsModel {
	return &StatsModel{
		db:     db,
		logger: logger.Named("db_stats"),
	}
}

// CountReportsBetween counts report posts created within [from, to).
func (r *StatsModel) CountReportsBetween(ctx context.Context, from, to time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*types.Post)(nil)).
		Where("type = ?", enum.PostTypeReport).
		Where("created_at >= ?", from).
		Where("created_at < ?", to).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return count, nil
}

// GetRecentReports retrieves the newest report posts up to the cap.
func (r *StatsModel) GetRecentReports(ctx context.Context, since time.Time, limit int) ([]*types.Post, error) {
	var posts []*types.Post

	err := r.db.NewSelect().
		Model(&posts).
		Where("type = ?", enum.PostTypeReport).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent reports: %w", err)
	}

	return posts, nil
}

// GetTopReports retrieves the most upvoted open reports up to the cap.
func (r *StatsModel) GetTopReports(ctx context.Context, limit int) ([]*types.Post, error) {
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

// GetTopContributors retrieves users ranked by the composite contribution
// score up to the cap.
func (r *StatsModel) GetTopContributors(ctx context.Context, limit int) ([]*types.User, error) {
	var users []*types.User

	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("stats_reports * 10 + stats_total_upvotes * 2 DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top contributors: %w", err)
	}

	return users, nil
}
