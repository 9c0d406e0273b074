package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

const defaultNotificationLimit = 50

// NotificationHandler handles inbox endpoints.
type NotificationHandler struct {
	db     database.Client
	logger *zap.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(db database.Client, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		db:     db,
		logger: logger,
	}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	limit := defaultNotificationLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= defaultNotificationLimit {
			limit = parsed
		}
	}

	notifications, err := h.db.Service().Notification().List(req.Context(), caller.UserID, limit)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.NotificationsResponse{
		Notifications: convert.Notifications(notifications),
	})
}

// Unread returns the caller's unread badge count.
func (h *NotificationHandler) Unread(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	count, err := h.db.Service().Notification().UnreadCount(req.Context(), caller.UserID)
	if err != nil {
		h.logger.Error("Failed to count unread notifications", zap.Error(err))

		return internalError(w)
	}

	return bunrouter.JSON(w, restTypes.UnreadResponse{Count: count})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	notificationID, err := pathID(req, "id")
	if err != nil {
		return respondError(w, http.StatusBadRequest, "Invalid notification ID", "")
	}

	if err := h.db.Service().Notification().MarkRead(req.Context(), notificationID, caller.UserID); err != nil {
		if errors.Is(err, types.ErrNotificationNotFound) {
			return respondError(w, http.StatusNotFound, "Notification not found", "")
		}

		h.logger.Error("Failed to mark notification read", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// MarkAllRead marks every notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, req bunrouter.Request) error {
	caller, ok, err := requireAuth(w, req)
	if !ok {
		return err
	}

	if err := h.db.Service().Notification().MarkAllRead(req.Context(), caller.UserID); err != nil {
		h.logger.Error("Failed to mark notifications read", zap.Error(err))

		return internalError(w)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
