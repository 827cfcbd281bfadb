package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/invites"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

type InviteHandler struct {
	service *invites.Service
	logger  zerolog.Logger
}

type inviteRequest struct {
	AssessmentID     string `json:"assessment_id"`
	IntervieweeEmail string `json:"interviewee_email"`
	ExpiresInDays    *int   `json:"expires_in_days"`
}

// inviteResponse is the creation payload: the only place the plaintext token
// ever appears.
type inviteResponse struct {
	models.Invite
	Token            string `json:"token"`
	IntervieweeEmail string `json:"interviewee_email"`
}

func NewInviteHandler(service *invites.Service, logger zerolog.Logger) *InviteHandler {
	return &InviteHandler{
		service: service,
		logger:  logger.With().Str("handler", "invite").Logger(),
	}
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var payload inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	outcome, err := h.service.Create(r.Context(), invites.CreateParams{
		RecruiterID:      actorID,
		AssessmentID:     strings.TrimSpace(payload.AssessmentID),
		IntervieweeEmail: strings.TrimSpace(strings.ToLower(payload.IntervieweeEmail)),
		ExpiresInDays:    payload.ExpiresInDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]interface{}{
		"message": "invite created successfully",
		"invite": inviteResponse{
			Invite:           outcome.Invite,
			Token:            outcome.Token,
			IntervieweeEmail: outcome.IntervieweeEmail,
		},
	}
	if outcome.MailWarning != "" {
		response["warning"] = outcome.MailWarning
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	invitesList, err := h.service.List(r.Context(), actorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list invites")
		writeError(w, err)
		return
	}
	if invitesList == nil {
		invitesList = []models.Invite{}
	}

	writeJSON(w, http.StatusOK, invitesList)
}

func (h *InviteHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	invite, err := h.service.Get(r.Context(), actorID, mux.Vars(r)["inviteID"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invite)
}

func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "token is required"})
		return
	}

	invite, err := h.service.Redeem(r.Context(), actorID, token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "invitation accepted successfully",
		"assessment_id": invite.AssessmentID,
	})
}
