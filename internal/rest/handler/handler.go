// Package handler implements the REST endpoint handlers.
package handler

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/civicpulse/civicpulse/internal/rest/middleware"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
)

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, message, code string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return bunrouter.JSON(w, restTypes.ErrorResponse{Error: message, Code: code})
}

// respondAuthError writes a localized error for a known auth code.
func respondAuthError(w http.ResponseWriter, status int, code, language string) error {
	return respondError(w, status, restTypes.AuthMessage(code, language), code)
}

// respondCreated writes a JSON body with a 201 status.
func respondCreated(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	return bunrouter.JSON(w, v)
}

// internalError logs nothing itself; callers log before invoking it.
func internalError(w http.ResponseWriter) error {
	return respondError(w, http.StatusInternalServerError, "Internal server error", "")
}

// decodeBody parses a JSON request body into v.
func decodeBody(req bunrouter.Request, v any) error {
	defer func() { _ = req.Body.Close() }()

	return sonic.ConfigDefault.NewDecoder(req.Body).Decode(v)
}

// requireAuth resolves the caller and rejects unauthenticated requests.
// The bool result reports whether the request may proceed.
func requireAuth(w http.ResponseWriter, req bunrouter.Request) (middleware.Caller, bool, error) {
	caller := middleware.CallerFromContext(req.Context())
	if !caller.Authenticated {
		err := respondAuthError(w, http.StatusUnauthorized, restTypes.AuthCodeUserNotFound, caller.Language)

		return caller, false, err
	}

	return caller, true, nil
}

// pathID parses a UUID path parameter.
func pathID(req bunrouter.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(req.Param(name))
}
