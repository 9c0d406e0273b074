package state

import (
	"context"
	"errors"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// ErrNotOnboarding is returned when an onboarding step arrives for a session
// that has no wizard in progress.
var ErrNotOnboarding = errors.New("no onboarding in progress")

// Session is the per-device authentication state plus the onboarding
// accumulator. The accumulator exists only while the signup wizard runs and
// is discarded once the user record is committed.
type Session struct {
	UserID        uuid.UUID             `json:"userId,omitempty"`
	Email         string                `json:"email,omitempty"`
	Authenticated bool                  `json:"authenticated"`
	Onboarding    *types.OnboardingData `json:"onboarding,omitempty"`
}

// SessionStore persists sessions keyed by session ID.
type SessionStore struct {
	*Store[Session]
}

// NewSessionStore creates the session store.
func NewSessionStore(client rueidis.Client, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		Store: NewStore(client, "session", Session{}, logger),
	}
}

// SignIn records an authenticated session, discarding any onboarding state.
func (s *SessionStore) SignIn(ctx context.Context, sessionID string, userID uuid.UUID, email string) error {
	return s.Store.Set(ctx, sessionID, Session{
		UserID:        userID,
		Email:         email,
		Authenticated: true,
	})
}

// SignOut removes the session entirely.
func (s *SessionStore) SignOut(ctx context.Context, sessionID string) error {
	return s.Delete(ctx, sessionID)
}

// StartOnboarding attaches a fresh accumulator to the session.
func (s *SessionStore) StartOnboarding(ctx context.Context, sessionID, email string) error {
	session := s.Fetch(ctx, sessionID)
	session.Onboarding = &types.OnboardingData{Email: email}

	return s.Store.Set(ctx, sessionID, session)
}

// UpdateOnboarding applies one wizard step to the accumulator and persists
// the whole session.
func (s *SessionStore) UpdateOnboarding(
	ctx context.Context, sessionID string, step func(*types.OnboardingData),
) error {
	session := s.Fetch(ctx, sessionID)
	if session.Onboarding == nil {
		return ErrNotOnboarding
	}

	step(session.Onboarding)

	return s.Store.Set(ctx, sessionID, session)
}

// CompleteOnboarding returns the accumulated data and clears it from the
// session, marking the session authenticated for the new user.
func (s *SessionStore) CompleteOnboarding(
	ctx context.Context, sessionID string, userID uuid.UUID,
) (*types.OnboardingData, error) {
	session := s.Fetch(ctx, sessionID)
	if session.Onboarding == nil {
		return nil, ErrNotOnboarding
	}

	data := session.Onboarding

	session.Onboarding = nil
	session.UserID = userID
	session.Email = data.Email
	session.Authenticated = true

	if err := s.Store.Set(ctx, sessionID, session); err != nil {
		return nil, err
	}

	return data, nil
}
