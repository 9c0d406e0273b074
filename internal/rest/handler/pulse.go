package handler

import (
	"net/http"

	"github.com/civicpulse/civicpulse/internal/pulse"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// PulseHandler serves the city pulse dashboard.
type PulseHandler struct {
	pulse  *pulse.Service
	logger *zap.Logger
}

// NewPulseHandler creates a new pulse handler.
func NewPulseHandler(pulse *pulse.Service, logger *zap.Logger) *PulseHandler {
	return &PulseHandler{
		pulse:  pulse,
		logger: logger,
	}
}

// GetSnapshot returns the current dashboard aggregate, computing it on
// first access.
func (h *PulseHandler) GetSnapshot(w http.ResponseWriter, req bunrouter.Request) error {
	snapshot := h.pulse.Cached(req.Context())
	if snapshot == nil {
		var err error

		snapshot, err = h.pulse.Refresh(req.Context())
		if err != nil {
			h.logger.Error("Failed to compute pulse snapshot", zap.Error(err))

			return internalError(w)
		}
	}

	return bunrouter.JSON(w, snapshot)
}

// Refresh forces a recompute of the dashboard aggregate.
func (h *PulseHandler) Refresh(w http.ResponseWriter, req bunrouter.Request) error {
	snapshot, err := h.pulse.Refresh(req.Context())
	if err != nil {
		h.logger.Error("Failed to refresh pulse snapshot", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, snapshot)
}
