package types

import (
	"errors"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserID      = errors.New("invalid user ID")
	ErrOnboardingPartial  = errors.New("onboarding data is incomplete")
	ErrInvalidPersona     = errors.New("unknown persona")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidPointsState = errors.New("points state is inconsistent")
)

// UserStats is the gamification bundle on a user row.
// Level is monotonically derived from Points via the fixed tier thresholds;
// crossing a threshold resets Points to 0 and advances exactly one tier.
type UserStats struct {
	Reports       int            `json:"reports"`
	TotalUpvotes  int            `json:"totalUpvotes"`
	ResolvedCount int            `json:"resolvedCount"`
	Points        int            `json:"points"`
	Level         enum.UserLevel `json:"level"`
}

// ApplyDelta returns the stats after applying a signed point delta and
// resolving promotion. Points never go negative. At most one promotion
// happens per call: crossing the current tier's threshold advances exactly
// one tier and resets points to 0; diamond is terminal.
func (s UserStats) ApplyDelta(delta int) (UserStats, bool) {
	next := s

	next.Points += delta
	if next.Points < 0 {
		next.Points = 0
	}

	threshold, hasSuccessor := next.Level.Threshold()
	if hasSuccessor && next.Points >= threshold {
		level, ok := next.Level.Next()
		if ok {
			next.Level = level
			next.Points = 0

			return next, true
		}
	}

	return next, false
}

// UserPreferences is the notification/display preference bundle.
type UserPreferences struct {
	PushEnabled     bool   `json:"pushEnabled"`
	EmailDigest     bool   `json:"emailDigest"`
	NearbyAlerts    bool   `json:"nearbyAlerts"`
	DigestFrequency string `json:"digestFrequency,omitempty"`
}

// User represents a registered community member.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID          uuid.UUID       `bun:",pk,type:uuid"      json:"id"`
	Email       string          `bun:",notnull,unique"    json:"email"`
	DisplayName string          `bun:",notnull"           json:"displayName"`
	AvatarURL   string          `bun:",nullzero"          json:"avatarUrl,omitempty"`
	Persona     enum.Persona    `bun:",notnull"           json:"persona"`
	City        string          `bun:",notnull"           json:"city"`
	District    string          `bun:",nullzero"          json:"district,omitempty"`
	Interests   []string        `bun:",array"             json:"interests"`
	Preferences UserPreferences `bun:"type:jsonb"         json:"preferences"`
	Stats       UserStats       `bun:"embed:stats_"       json:"stats"`
	Badges      []string        `bun:",array"             json:"badges"`
	CreatedAt   time.Time       `bun:",notnull"           json:"createdAt"`
	UpdatedAt   time.Time       `bun:",notnull"           json:"updatedAt"`
}

// OnboardingData accumulates wizard steps before a User row exists.
// It is committed atomically into a User record and then discarded;
// nothing here is persisted until Complete succeeds.
type OnboardingData struct {
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	City        string          `json:"city"`
	District    string          `json:"district"`
	Interests   []string        `json:"interests"`
	Persona     enum.Persona    `json:"persona"`
	Preferences UserPreferences `json:"preferences"`
}

// Validate checks that every wizard step has been filled in.
func (o *OnboardingData) Validate() error {
	if o.Email == "" || o.DisplayName == "" || o.City == "" {
		return ErrOnboardingPartial
	}

	if !o.Persona.IsValid() {
		return ErrInvalidPersona
	}

	return nil
}

// ToUser materializes the accumulated wizard data into a fresh User row
// with zeroed stats at the bronze tier.
func (o *OnboardingData) ToUser(now time.Time) *User {
	return &User{
		ID:          uuid.New(),
		Email:       o.Email,
		DisplayName: o.DisplayName,
		Persona:     o.Persona,
		City:        o.City,
		District:    o.District,
		Interests:   o.Interests,
		Preferences: o.Preferences,
		Stats: UserStats{
			Level: enum.UserLevelBronze,
		},
		Badges:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
