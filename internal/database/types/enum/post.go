package enum

// PostType categorizes a feed post.
type PostType string

const (
	PostTypeReport    PostType = "REPORT"
	PostTypeNews      PostType = "NEWS"
	PostTypeGeneral   PostType = "GENERAL"
	PostTypePromotion PostType = "PROMOTION"
)

// IsValid reports whether the post type is one of the known values.
func (t PostType) IsValid() bool {
	switch t {
	case PostTypeReport, PostTypeNews, PostTypeGeneral, PostTypePromotion:
		return true
	}

	return false
}

// PostStatus tracks the lifecycle of a report-type post.
// Reports start active and move through verified to resolved or closed.
type PostStatus string

const (
	PostStatusActive   PostStatus = "active"
	PostStatusVerified PostStatus = "verified"
	PostStatusResolved PostStatus = "resolved"
	PostStatusClosed   PostStatus = "closed"
)

// IsValid reports whether the post status is one of the known values.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusActive, PostStatusVerified, PostStatusResolved, PostStatusClosed:
		return true
	}

	return false
}

// Severity is the ordinal urgency tag attached to report-type posts.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid reports whether the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}

	return false
}
