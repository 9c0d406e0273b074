package handler

import (
	"net/http"

	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/civicpulse/civicpulse/internal/state"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// PreferencesHandler handles per-user theme and language settings.
type PreferencesHandler struct {
	themes    *state.ThemeStore
	languages *state.LanguageStore
	logger    *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(
	themes *state.ThemeStore, languages *state.LanguageStore, logger *zap.Logger,
) *PreferencesHandler {
	return &PreferencesHandler{
		themes:    themes,
		languages: languages,
		logger:    logger,
	}
}

// GetTheme returns the caller's theme preference.
func (h *PreferencesHandler) GetTheme(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	theme := h.themes.Fetch(req.Context(), caller.UserID.String())

	return bunrouter.JSON(w, restTypes.ThemeResponse{Theme: string(theme)})
}

// SetTheme stores the caller's theme preference.
func (h *PreferencesHandler) SetTheme(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	var body restTypes.ThemeRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.themes.Set(req.Context(), caller.UserID.String(), state.Theme(body.Theme)); err != nil {
		return respondError(w, http.StatusBadRequest, err.Error(), "")
	}

	return bunrouter.JSON(w, restTypes.ThemeResponse{Theme: body.Theme})
}

// GetLanguage returns the caller's language preference.
func (h *PreferencesHandler) GetLanguage(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	language := h.languages.Fetch(req.Context(), caller.UserID.String())

	return bunrouter.JSON(w, restTypes.LanguageResponse{Language: language})
}

// SetLanguage stores the caller's language preference.
func (h *PreferencesHandler) SetLanguage(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	var body restTypes.LanguageRequest
	if err := decodeBody(req, &body); err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid request body", "")
	}

	if err := h.languages.Set(req.Context(), caller.UserID.String(), body.Language); err != nil {
		return respondError(w, http.StatusBadRequest, err.Error(), "")
	}

	return bunrouter.JSON(w, restTypes.LanguageResponse{Language: body.Language})
}
