package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/civicpulse/civicpulse/internal/state"
	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// SessionHeader carries the client's opaque session identifier.
const SessionHeader = "X-Session-ID"

type callerKey struct{}

// Caller describes the resolved identity of a request. Anonymous requests
// have a zero UserID and Authenticated false.
type Caller struct {
	SessionID     string
	UserID        uuid.UUID
	Authenticated bool
	Language      string
}

// Session resolves the caller from the session header and attaches it to
// the request context.
type Session struct {
	sessions  *state.SessionStore
	languages *state.LanguageStore
	logger    *zap.Logger
}

// New creates a session middleware backed by the given stores.
func New(sessions *state.SessionStore, languages *state.LanguageStore, logger *zap.Logger) *Session {
	return &Session{
		sessions:  sessions,
		languages: languages,
		logger:    logger.Named("session_middleware"),
	}
}

// AsRESTMiddleware adapts the middleware for bunrouter.
func (m *Session) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		caller := Caller{
			SessionID: req.Header.Get(SessionHeader),
			Language:  languageTag(req.Header.Get("Accept-Language")),
		}

		if caller.SessionID != "" {
			session := m.sessions.Fetch(req.Context(), caller.SessionID)
			caller.UserID = session.UserID
			caller.Authenticated = session.Authenticated

			if session.Authenticated {
				caller.Language = m.languages.Fetch(req.Context(), session.UserID.String())
			}
		}

		ctx := context.WithValue(req.Context(), callerKey{}, caller)
		req.Request = req.Request.WithContext(ctx)

		return next(w, req)
	}
}

// CallerFromContext returns the caller resolved by the session middleware.
// Requests that bypassed the middleware resolve to an anonymous caller.
func CallerFromContext(ctx context.Context) Caller {
	if caller, ok := ctx.Value(callerKey{}).(Caller); ok {
		return caller
	}

	return Caller{Language: state.DefaultLanguage}
}

// languageTag reduces an Accept-Language header to a bare two-letter tag.
func languageTag(header string) string {
	if header == "" {
		return state.DefaultLanguage
	}

	tag := strings.TrimSpace(strings.Split(header, ",")[0])
	if idx := strings.IndexAny(tag, "-_;"); idx > 0 {
		tag = tag[:idx]
	}

	tag = strings.ToLower(tag)
	if len(tag) != 2 {
		return state.DefaultLanguage
	}

	return tag
}
