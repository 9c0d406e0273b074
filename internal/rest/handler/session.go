package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/civicpulse/civicpulse/internal/ai"
	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	"github.com/civicpulse/civicpulse/internal/rest/middleware"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/civicpulse/civicpulse/internal/state"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// SessionHandler handles sign-in, sign-out and the onboarding wizard.
type SessionHandler struct {
	db        database.Client
	sessions  *state.SessionStore
	extractor *ai.InterestExtractor
	logger    *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(
	db database.Client, sessions *state.SessionStore, extractor *ai.InterestExtractor, logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		db:        db,
		sessions:  sessions,
		extractor: extractor,
		logger:    logger,
	}
}

// GetSession describes the caller's current session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	session := h.sessions.Fetch(req.Context(), caller.SessionID)

	response := restTypes.SessionResponse{
		Authenticated: session.Authenticated,
		Email:         session.Email,
		Onboarding:    session.Onboarding != nil,
	}
	if session.Authenticated {
		userID := session.UserID
		response.UserID = &userID
	}

	return bunrouter.JSON(w, response)
}

// SignIn binds the session to an existing account. The upstream identity
// provider has already checked credentials; this endpoint resolves the
// account and localizes the known failure codes.
func (h *SessionHandler) SignIn(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	var body restTypes.SignInRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	email := strings.TrimSpace(body.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return respondAuthError(w, http.StatusBadRequest, restTypes.AuthCodeInvalidEmail, caller.Language)
	}

	user, err := h.db.Model().User().GetUserByEmail(req.Context(), email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return respondAuthError(w, http.StatusNotFound, restTypes.AuthCodeUserNotFound, caller.Language)
		}

		h.logger.Error("Failed to look up account", zap.Error(err))

		return internalError(w)
	}

	if err := h.sessions.SignIn(req.Context(), caller.SessionID, user.ID, user.Email); err != nil {
		h.logger.Error("Failed to store session", zap.Error(err))

		return internalError(w)
	}

	userID := user.ID

	return bunrouter.JSON(w, restTypes.SessionResponse{
		Authenticated: true,
		UserID:        &userID,
		Email:         user.Email,
	})
}

// SignOut clears the caller's session.
func (h *SessionHandler) SignOut(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	if err := h.sessions.SignOut(req.Context(), caller.SessionID); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// StartOnboarding opens the signup wizard for the session.
func (h *SessionHandler) StartOnboarding(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	var body restTypes.OnboardingStartRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	email := strings.TrimSpace(body.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return respondAuthError(w, http.StatusBadRequest, restTypes.AuthCodeInvalidEmail, caller.Language)
	}

	if err := h.sessions.StartOnboarding(req.Context(), caller.SessionID, email); err != nil {
		h.logger.Error("Failed to start onboarding", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// UpdateOnboarding merges one wizard step into the accumulator.
func (h *SessionHandler) UpdateOnboarding(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	var body restTypes.OnboardingStepRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	if body.Persona != "" && !enum.Persona(body.Persona).IsValid() {
		return respondError(w, http.StatusBadRequest, "Unknown persona", "")
	}

	err := h.sessions.UpdateOnboarding(req.Context(), caller.SessionID, func(data *types.OnboardingData) {
		if body.DisplayName != "" {
			data.DisplayName = body.DisplayName
		}
		if body.City != "" {
			data.City = body.City
		}
		if body.District != "" {
			data.District = body.District
		}
		if body.Persona != "" {
			data.Persona = enum.Persona(body.Persona)
		}
		if body.Interests != nil {
			data.Interests = body.Interests
		}
	})
	if err != nil {
		if errors.Is(err, state.ErrNotOnboarding) {
			return respondError(w, http.StatusConflict, "No onboarding in progress", "")
		}

		h.logger.Error("Failed to update onboarding", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// ExtractInterests turns free-text wizard answers into an interest
// profile and folds it into the accumulator. AI failures yield an empty
// profile, never an error.
func (h *SessionHandler) ExtractInterests(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	var body restTypes.InterestsRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	session := h.sessions.Fetch(req.Context(), caller.SessionID)
	if session.Onboarding == nil {
		return respondError(w, http.StatusConflict, "No onboarding in progress", "")
	}

	profile := h.extractor.ExtractInterests(
		req.Context(), session.Onboarding.Persona, session.Onboarding.City, body.Answers,
	)

	err := h.sessions.UpdateOnboarding(req.Context(), caller.SessionID, func(data *types.OnboardingData) {
		if len(profile.Interests) > 0 {
			data.Interests = profile.Interests
		}
	})
	if err != nil && !errors.Is(err, state.ErrNotOnboarding) {
		h.logger.Error("Failed to store extracted interests", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.InterestsResponse{
		Interests:     profile.Interests,
		SuggestedTags: profile.SuggestedTags,
	})
}

// CompleteOnboarding commits the accumulated wizard data into a user row
// and authenticates the session.
func (h *SessionHandler) CompleteOnboarding(w http.ResponseWriter, req bunrouter.Request) error {
	caller := middleware.CallerFromContext(req.Context())
	if caller.SessionID == "" {
		return respondError(w, http.StatusBadRequest, "Missing session header", "")
	}

	session := h.sessions.Fetch(req.Context(), caller.SessionID)
	if session.Onboarding == nil {
		return respondError(w, http.StatusConflict, "No onboarding in progress", "")
	}

	user, err := h.db.Service().User().CompleteOnboarding(req.Context(), session.Onboarding)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrOnboardingPartial):
			return respondError(w, http.StatusBadRequest, "Onboarding data is incomplete", "")
		case errors.Is(err, types.ErrInvalidPersona):
			return respondError(w, http.StatusBadRequest, "Unknown persona", "")
		case errors.Is(err, types.ErrUserAlreadyExists):
			return respondError(w, http.StatusConflict, "An account with that email already exists", "")
		}

		h.logger.Error("Failed to complete onboarding", zap.Error(err))

		return internalError(w)
	}

	if _, err := h.sessions.CompleteOnboarding(req.Context(), caller.SessionID, user.ID); err != nil {
		h.logger.Error("Failed to authenticate onboarded session", zap.Error(err))

		return internalError(w)
	}

	return respondCreated(w, convert.User(user))
}
