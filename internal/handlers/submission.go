package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/grading"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

type SubmissionHandler struct {
	service *grading.Service
	logger  zerolog.Logger
}

func NewSubmissionHandler(service *grading.Service, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("handler", "submission").Logger(),
	}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var payload struct {
		AssessmentID string          `json:"assessment_id"`
		Answers      json.RawMessage `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	submission, err := h.service.Submit(r.Context(), actorID, payload.AssessmentID, payload.Answers)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "submission successful",
		"submission_id": submission.ID,
	})
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	submissions, err := h.service.ListForRecruiter(r.Context(), actorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list submissions")
		writeError(w, err)
		return
	}
	if submissions == nil {
		submissions = []models.SubmissionWithCandidate{}
	}

	writeJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Grade *float64 `json:"grade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	submission, err := h.service.Grade(r.Context(), actorID, mux.Vars(r)["submissionID"], payload.Grade)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submission)
}
