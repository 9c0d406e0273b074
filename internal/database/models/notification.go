package models

import (
	"context"
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// NotificationModel handles database operations for notifications.
// Rows are append-only; the read flag is the only mutable field.
type NotificationModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewNotification creates a new notification model.
func NewNotification(db *bun.DB, logger *zap.Logger) *NotificationModel {
	return &NotificationModel{
		db:     db,
		logger: logger.Named("db_notification"),
	}
}

// CreateNotification inserts a notification for a target user.
func (r *NotificationModel) CreateNotification(ctx context.Context, notification *types.Notification) error {
	notification.CreatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(notification).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetUserNotifications retrieves the newest notifications for a user.
func (r *NotificationModel) GetUserNotifications(
	ctx context.Context, userID uuid.UUID, limit int,
) ([]*types.Notification, error) {
	var notifications []*types.Notification

	err := r.db.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationModel) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*types.Notification)(nil)).
		Where("user_id = ?", userID).
		Where("NOT read").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead sets the read flag on one notification owned by the user.
func (r *NotificationModel) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*types.Notification)(nil)).
		Set("read = true").
		Where("id = ?", notificationID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead sets the read flag on every unread notification for a user.
func (r *NotificationModel) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*types.Notification)(nil)).
		Set("read = true").
		Where("user_id = ?", userID).
		Where("NOT read").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}
