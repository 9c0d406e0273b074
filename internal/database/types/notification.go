package types

import (
	"errors"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPayload references the entity that produced the notification.
// At most one field is set, matching the notification type.
type NotificationPayload struct {
	PostID    *uuid.UUID `json:"postId,omitempty"`
	CommentID *uuid.UUID `json:"commentId,omitempty"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	BadgeID   string     `json:"badgeId,omitempty"`
}

// Notification is created when another user's action affects the target
// user. Rows are immutable except for the read flag.
type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID        uuid.UUID             `bun:",pk,type:uuid"          json:"id"`
	UserID    uuid.UUID             `bun:",notnull,type:uuid"     json:"userId"`
	Type      enum.NotificationType `bun:",notnull"               json:"type"`
	Title     string                `bun:",notnull"               json:"title"`
	Body      string                `bun:",notnull"               json:"body"`
	Payload   NotificationPayload   `bun:"type:jsonb"             json:"payload"`
	Read      bool                  `bun:",notnull,default:false" json:"read"`
	CreatedAt time.Time             `bun:",notnull"               json:"createdAt"`
}
