package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/notification"
)

type NotificationHandler struct {
	service notification.Service
	logger  zerolog.Logger
}

func NewNotificationHandler(service notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	notifications, err := h.service.ListForUser(r.Context(), actorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	notifID := strings.TrimSpace(mux.Vars(r)["notificationID"])
	if notifID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "notification id is required"})
		return
	}

	notif, err := h.service.MarkRead(r.Context(), actorID, notifID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notif)
}
