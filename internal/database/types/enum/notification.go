package enum

// NotificationType tags what kind of event produced a notification.
type NotificationType string

const (
	NotificationTypeUpvote       NotificationType = "upvote"
	NotificationTypeComment      NotificationType = "comment"
	NotificationTypeCommentReply NotificationType = "comment_reply"
	NotificationTypeStatusChange NotificationType = "status_change"
	NotificationTypeReportUpdate NotificationType = "report_update"
	NotificationTypeBadge        NotificationType = "badge"
	NotificationTypeSystem       NotificationType = "system"
)

// IsValid reports whether the notification type is one of the known values.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeUpvote, NotificationTypeComment, NotificationTypeCommentReply,
		NotificationTypeStatusChange, NotificationTypeReportUpdate,
		NotificationTypeBadge, NotificationTypeSystem:
		return true
	}

	return false
}
