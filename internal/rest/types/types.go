package types

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse is the body returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Post represents a feed post as served to clients, including the
// viewer-specific engagement flags.
type Post struct {
	ID             uuid.UUID       `json:"id"`
	AuthorID       *uuid.UUID      `json:"authorId,omitempty"`
	Content        string          `json:"content"`
	Media          []string        `json:"media"`
	City           string          `json:"city"`
	District       string          `json:"district"`
	Lat            float64         `json:"lat"`
	Lon            float64         `json:"lon"`
	Type           string          `json:"type"`
	Classification Classification  `json:"classification"`
	Engagement     Engagement      `json:"engagement"`
	Status         string          `json:"status,omitempty"`
	Severity       string          `json:"severity,omitempty"`
	VerifiedCount  int             `json:"verifiedCount"`
	Upvoted        bool            `json:"upvoted"`
	Watching       bool            `json:"watching"`
	Updates        []*ReportUpdate `json:"updates,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Classification carries the AI-assigned category data for a post.
type Classification struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags"`
	Keywords   []string `json:"keywords"`
	Sentiment  string   `json:"sentiment,omitempty"`
}

// Engagement carries a post's public counters.
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Watchers int `json:"watchers"`
	Views    int `json:"views"`
}

// ReportUpdate is an append-only progress note on a report.
type ReportUpdate struct {
	ID        uuid.UUID  `json:"id"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	Content   string     `json:"content"`
	Media     []string   `json:"media"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Comment represents a post comment with the viewer's like flag.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"postId"`
	AuthorID  uuid.UUID  `json:"authorId"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Content   string     `json:"content"`
	Likes     int        `json:"likes"`
	Liked     bool       `json:"liked"`
	CreatedAt time.Time  `json:"createdAt"`
}

// User is the public profile shape.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Persona     string    `json:"persona"`
	City        string    `json:"city"`
	District    string    `json:"district,omitempty"`
	Interests   []string  `json:"interests"`
	Stats       UserStats `json:"stats"`
	Badges      []string  `json:"badges"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserStats mirrors the gamification counters.
type UserStats struct {
	Reports      int    `json:"reports"`
	TotalUpvotes int    `json:"totalUpvotes"`
	Resolved     int    `json:"resolved"`
	Points       int    `json:"points"`
	Level        string `json:"level"`
}

// Notification is a single inbox entry.
type Notification struct {
	ID        uuid.UUID           `json:"id"`
	Type      string              `json:"type"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Payload   NotificationPayload `json:"payload"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NotificationPayload links a notification to the entities it concerns.
type NotificationPayload struct {
	PostID    *uuid.UUID `json:"postId,omitempty"`
	CommentID *uuid.UUID `json:"commentId,omitempty"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	BadgeID   string     `json:"badgeId,omitempty"`
}

// CreatePostRequest is the body for POST /posts.
type CreatePostRequest struct {
	Content  string   `json:"content"`
	Type     string   `json:"type"`
	City     string   `json:"city"`
	District string   `json:"district"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Media    []string `json:"media"`
	// Anonymous hides the author on reports.
	Anonymous bool `json:"anonymous"`
}

// FeedResponse wraps a page of posts.
type FeedResponse struct {
	Posts []*Post `json:"posts"`
}

// ToggleResponse reports the new state after an upvote/watch/like toggle.
type ToggleResponse struct {
	Active bool `json:"active"`
	Count  int  `json:"count,omitempty"`
}

// StatusRequest is the body for PUT /posts/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ReportUpdateRequest is the body for POST /posts/:id/updates.
type ReportUpdateRequest struct {
	Content string   `json:"content"`
	Media   []string `json:"media"`
}

// CommentRequest is the body for POST /posts/:id/comments.
type CommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

// CommentsResponse wraps a post's comment list.
type CommentsResponse struct {
	Comments []*Comment `json:"comments"`
}

// NotificationsResponse wraps an inbox page.
type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

// UnreadResponse carries the unread badge count.
type UnreadResponse struct {
	Count int `json:"count"`
}

// SignInRequest is the body for POST /session/signin.
type SignInRequest struct {
	Email string `json:"email"`
}

// SessionResponse describes the caller's session after a sign-in or
// onboarding commit.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        *uuid.UUID `json:"userId,omitempty"`
	Email         string     `json:"email,omitempty"`
	Onboarding    bool       `json:"onboarding"`
}

// OnboardingStartRequest begins the onboarding accumulator.
type OnboardingStartRequest struct {
	Email string `json:"email"`
}

// OnboardingStepRequest carries one wizard step. Zero-valued fields
// leave the accumulated data untouched.
type OnboardingStepRequest struct {
	DisplayName string   `json:"displayName,omitempty"`
	City        string   `json:"city,omitempty"`
	District    string   `json:"district,omitempty"`
	Persona     string   `json:"persona,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// InterestsRequest carries free-text onboarding answers for interest
// extraction.
type InterestsRequest struct {
	Answers []string `json:"answers"`
}

// InterestsResponse is the extracted interest profile.
type InterestsResponse struct {
	Interests     []string `json:"interests"`
	SuggestedTags []string `json:"suggestedTags"`
}

// ProfileUpdateRequest is the body for PUT /users/me.
type ProfileUpdateRequest struct {
	DisplayName string   `json:"displayName,omitempty"`
	District    string   `json:"district,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// AvatarResponse returns the stored avatar URL.
type AvatarResponse struct {
	URL string `json:"url"`
}

// MediaResponse returns the public URL of an uploaded object.
type MediaResponse struct {
	URL string `json:"url"`
}

// ChatMessage is one prior turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ThemeRequest sets the caller's theme preference.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse returns the effective theme preference.
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// LanguageRequest sets the caller's language preference.
type LanguageRequest struct {
	Language string `json:"language"`
}

// LanguageResponse returns the effective language preference.
type LanguageResponse struct {
	Language string `json:"language"`
}
