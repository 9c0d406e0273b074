package service

import (
	"context"
	"fmt"

	"github.com/civicpulse/civicpulse/internal/database/models"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService creates and serves notifications. Creation is
// best-effort everywhere: a failed notification never fails the action
// that produced it.
type NotificationService struct {
	model  *models.NotificationModel
	logger *zap.Logger
}

// NewNotification creates a new notification service.
func NewNotification(model *models.NotificationModel, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		model:  model,
		logger: logger.Named("notification_service"),
	}
}

// List retrieves the newest notifications for a user.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	return s.model.GetUserNotifications(ctx, userID, limit)
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.model.CountUnread(ctx, userID)
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.model.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags every unread notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.model.MarkAllRead(ctx, userID)
}

// NotifyUpvote tells a post author someone upvoted their post.
func (s *NotificationService) NotifyUpvote(ctx context.Context, authorID, postID, voterID uuid.UUID) {
	s.create(ctx, &types.Notification{
		ID:     uuid.New(),
		UserID: authorID,
		Type:   enum.NotificationTypeUpvote,
		Title:  "Your post got an upvote",
		Body:   "A neighbour upvoted your post.",
		Payload: types.NotificationPayload{
			PostID: &postID,
			UserID: &voterID,
		},
	})
}

// NotifyComment tells a post author about a new comment.
func (s *NotificationService) NotifyComment(ctx context.Context, authorID, postID, commentID uuid.UUID) {
	s.create(ctx, &types.Notification{
		ID:     uuid.New(),
		UserID: authorID,
		Type:   enum.NotificationTypeComment,
		Title:  "New comment on your post",
		Body:   "Someone commented on your post.",
		Payload: types.NotificationPayload{
			PostID:    &postID,
			CommentID: &commentID,
		},
	})
}

// NotifyReply tells a commenter about a reply to their comment.
func (s *NotificationService) NotifyReply(ctx context.Context, authorID, postID, commentID uuid.UUID) {
	s.create(ctx, &types.Notification{
		ID:     uuid.New(),
		UserID: authorID,
		Type:   enum.NotificationTypeCommentReply,
		Title:  "New reply to your comment",
		Body:   "Someone replied to your comment.",
		Payload: types.NotificationPayload{
			PostID:    &postID,
			CommentID: &commentID,
		},
	})
}

// NotifyStatusChange tells the author and watchers that a report moved to a
// new lifecycle status.
func (s *NotificationService) NotifyStatusChange(
	ctx context.Context, targets []uuid.UUID, postID uuid.UUID, status enum.PostStatus,
) {
	for _, target := range targets {
		s.create(ctx, &types.Notification{
			ID:     uuid.New(),
			UserID: target,
			Type:   enum.NotificationTypeStatusChange,
			Title:  "Report status changed",
			Body:   fmt.Sprintf("A report you follow is now %s.", status),
			Payload: types.NotificationPayload{
				PostID: &postID,
			},
		})
	}
}

// NotifyReportUpdate tells watchers a report received a community update.
func (s *NotificationService) NotifyReportUpdate(ctx context.Context, targets []uuid.UUID, postID uuid.UUID) {
	for _, target := range targets {
		s.create(ctx, &types.Notification{
			ID:     uuid.New(),
			UserID: target,
			Type:   enum.NotificationTypeReportUpdate,
			Title:  "New update on a report you follow",
			Body:   "A report you follow received a community update.",
			Payload: types.NotificationPayload{
				PostID: &postID,
			},
		})
	}
}

// NotifyLevelUp congratulates a user on reaching a new tier.
func (s *NotificationService) NotifyLevelUp(ctx context.Context, userID uuid.UUID, level enum.UserLevel, badgeID string) {
	s.create(ctx, &types.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   enum.NotificationTypeBadge,
		Title:  "Level up!",
		Body:   fmt.Sprintf("You reached the %s tier.", level),
		Payload: types.NotificationPayload{
			BadgeID: badgeID,
		},
	})
}

func (s *NotificationService) create(ctx context.Context, notification *types.Notification) {
	if err := s.model.CreateNotification(ctx, notification); err != nil {
		s.logger.Warn("Failed to create notification",
			zap.String("type", string(notification.Type)),
			zap.String("userId", notification.UserID.String()),
			zap.Error(err))
	}
}
