package types

import (
	"errors"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotReport      = errors.New("post is not a report")
	ErrInvalidPostID  = errors.New("invalid post ID")
	ErrEmptyContent   = errors.New("post content is empty")
	ErrInvalidStatus  = errors.New("invalid status transition")
	ErrUpdateNotFound = errors.New("report update not found")
)

// Classification is the AI analysis record attached to a post.
// Stored as a JSONB column so the shape can evolve without migrations.
type Classification struct {
	Category   string        `json:"category"`
	Confidence float64       `json:"confidence"`
	Severity   enum.Severity `json:"severity,omitempty"`
	Tags       []string      `json:"tags"`
	Keywords   []string      `json:"keywords"`
	Sentiment  string        `json:"sentiment,omitempty"`
}

// DefaultClassification is the conservative fallback applied whenever the
// hosted model fails or returns something unparseable. The product never
// blocks a post on AI failure.
func DefaultClassification() Classification {
	return Classification{
		Category:   string(enum.PostTypeGeneral),
		Confidence: 0.5,
		Tags:       []string{},
		Keywords:   []string{},
	}
}

// Engagement is the counter bundle on a post. Upvotes mirrors |UpvotedBy|
// in steady state; the feed layer may diverge transiently while an
// optimistic toggle is in flight.
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Watchers int `json:"watchers"`
	Views    int `json:"views"`
}

// Location places a post in the city grid.
type Location struct {
	City     string  `json:"city"`
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Post represents a user-authored feed item of any type.
// Report-typed posts additionally carry Status, Severity, VerifiedCount and
// an ordered list of community updates.
type Post struct {
	bun.BaseModel `bun:"table:posts"`

	ID             uuid.UUID       `bun:",pk,type:uuid"                json:"id"`
	AuthorID       *uuid.UUID      `bun:"author_id,type:uuid"          json:"authorId"` // nil for anonymous reports
	Content        string          `bun:",notnull"                     json:"content"`
	Media          []string        `bun:",array"                       json:"media"`
	City           string          `bun:",notnull"                     json:"city"`
	District       string          `bun:",notnull"                     json:"district"`
	Lat            float64         `bun:",notnull"                     json:"lat"`
	Lon            float64         `bun:",notnull"                     json:"lon"`
	Type           enum.PostType   `bun:",notnull"                     json:"type"`
	Classification Classification  `bun:"type:jsonb"                   json:"classification"`
	Engagement     Engagement      `bun:"embed:engagement_"            json:"engagement"`
	UpvotedBy      []uuid.UUID     `bun:"upvoted_by,array,type:uuid[]" json:"upvotedBy"`
	WatchedBy      []uuid.UUID     `bun:"watched_by,array,type:uuid[]" json:"watchedBy"`
	Status         enum.PostStatus `bun:",nullzero"                    json:"status,omitempty"`
	Severity       enum.Severity   `bun:",nullzero"                    json:"severity,omitempty"`
	VerifiedCount  int             `bun:",notnull,default:0"           json:"verifiedCount"`
	CreatedAt      time.Time       `bun:",notnull"                     json:"createdAt"`
	UpdatedAt      time.Time       `bun:",notnull"                     json:"updatedAt"`

	Updates []*ReportUpdate `bun:"rel:has-many,join:id=post_id" json:"updates,omitempty"`
}

// IsReport reports whether the post carries report lifecycle fields.
func (p *Post) IsReport() bool {
	return p.Type == enum.PostTypeReport
}

// HasUpvoted reports whether the given user is in the upvoter set.
func (p *Post) HasUpvoted(userID uuid.UUID) bool {
	for _, id := range p.UpvotedBy {
		if id == userID {
			return true
		}
	}

	return false
}

// IsWatching reports whether the given user is in the watcher set.
func (p *Post) IsWatching(userID uuid.UUID) bool {
	for _, id := range p.WatchedBy {
		if id == userID {
			return true
		}
	}

	return false
}

// ReportUpdate is an append-only community update owned by a report post,
// ordered by creation time.
type ReportUpdate struct {
	bun.BaseModel `bun:"table:report_updates"`

	ID        uuid.UUID  `bun:",pk,type:uuid"       json:"id"`
	PostID    uuid.UUID  `bun:",notnull,type:uuid"  json:"postId"`
	AuthorID  *uuid.UUID `bun:"author_id,type:uuid" json:"authorId"`
	Content   string     `bun:",notnull"            json:"content"`
	Media     []string   `bun:",array"              json:"media"`
	CreatedAt time.Time  `bun:",notnull"            json:"createdAt"`
}
