package convert

import (
	"github.com/civicpulse/civicpulse/internal/database/types"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
)

// User converts a database user to its public REST shape.
func User(user *types.User) *restTypes.User {
	if user == nil {
		return nil
	}

	return &restTypes.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Persona:     string(user.Persona),
		City:        user.City,
		District:    user.District,
		Interests:   emptyIfNil(user.Interests),
		Stats:       UserStats(user.Stats),
		Badges:      emptyIfNil(user.Badges),
		CreatedAt:   user.CreatedAt,
	}
}

// UserStats converts the gamification counters.
func UserStats(stats types.UserStats) restTypes.UserStats {
	return restTypes.UserStats{
		Reports:      stats.Reports,
		TotalUpvotes: stats.TotalUpvotes,
		Resolved:     stats.ResolvedCount,
		Points:       stats.Points,
		Level:        string(stats.Level),
	}
}

// Notification converts an inbox entry.
func Notification(notification *types.Notification) *restTypes.Notification {
	if notification == nil {
		return nil
	}

	return &restTypes.Notification{
		ID:    notification.ID,
		Type:  string(notification.Type),
		Title: notification.Title,
		Body:  notification.Body,
		Payload: restTypes.NotificationPayload{
			PostID:    notification.Payload.PostID,
			CommentID: notification.Payload.CommentID,
			UserID:    notification.Payload.UserID,
			BadgeID:   notification.Payload.BadgeID,
		},
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

// Notifications converts an inbox page.
func Notifications(notifications []*types.Notification) []*restTypes.Notification {
	result := make([]*restTypes.Notification, 0, len(notifications))
	for _, notification := range notifications {
		result = append(result, Notification(notification))
	}

	return result
}
