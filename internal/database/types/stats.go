package types

import (
	"time"

	"github.com/google/uuid"
)

// DayCount is one bucket of the weekly report series.
type DayCount struct {
	Day      time.Time `json:"day"`
	Reports  int       `json:"reports"`
	Resolved int       `json:"resolved"`
}

// TopIssue is one entry of the ranked issue list on the pulse dashboard.
type TopIssue struct {
	PostID   uuid.UUID `json:"postId"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	District string    `json:"district"`
	Upvotes  int       `json:"upvotes"`
	Watchers int       `json:"watchers"`
}

// Contributor is one entry of the ranked contributor list.
// Score is the composite reports*10 + upvotes*2.
type Contributor struct {
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	Reports     int       `json:"reports"`
	Upvotes     int       `json:"upvotes"`
	Score       int       `json:"score"`
}

// PulseSnapshot is the full derived dashboard state. It has no persistence
// of its own and is recomputed from scratch on every refresh.
type PulseSnapshot struct {
	Today        int            `json:"today"`
	Yesterday    int            `json:"yesterday"`
	Weekly       []DayCount     `json:"weekly"`
	TopIssues    []*TopIssue    `json:"topIssues"`
	Contributors []*Contributor `json:"contributors"`
	RefreshedAt  time.Time      `json:"refreshedAt"`
}
