package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/repository"
)

// AssessmentHandler is thin catalog glue: recruiters manage assessments they
// created, anyone authenticated can read them.
type AssessmentHandler struct {
	assessmentRepo repository.AssessmentRepository
	logger         zerolog.Logger
}

type assessmentRequest struct {
	Title     string `json:"title"`
	TimeLimit *int   `json:"time_limit"`
	Published *bool  `json:"published"`
}

func NewAssessmentHandler(assessmentRepo repository.AssessmentRepository, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentRepo: assessmentRepo,
		logger:         logger.With().Str("handler", "assessment").Logger(),
	}
}

func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var payload assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" || payload.TimeLimit == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title and time_limit are required"})
		return
	}

	assessment := models.Assessment{
		Title:     payload.Title,
		CreatorID: actorID,
		TimeLimit: payload.TimeLimit,
	}
	if payload.Published != nil {
		assessment.Published = *payload.Published
	}

	created, err := h.assessmentRepo.Create(r.Context(), assessment)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to create assessment"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "assessment created",
		"assessment": created,
	})
}

func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.assessmentRepo.GetByID(r.Context(), mux.Vars(r)["assessmentID"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "assessment not found"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to load assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load assessment"})
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessmentRepo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list assessments")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to list assessments"})
		return
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}

	writeJSON(w, http.StatusOK, assessments)
}

func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	assessment, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var payload assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	if title := strings.TrimSpace(payload.Title); title != "" {
		assessment.Title = title
	}
	if payload.TimeLimit != nil {
		assessment.TimeLimit = payload.TimeLimit
	}
	if payload.Published != nil {
		assessment.Published = *payload.Published
	}

	updated, err := h.assessmentRepo.Update(r.Context(), assessment)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to update assessment"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "assessment updated",
		"assessment": updated,
	})
}

func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	assessment, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.assessmentRepo.Delete(r.Context(), assessment.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete assessment"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "assessment deleted"})
}

// loadOwned fetches the assessment from the route and verifies the actor
// created it. A foreign assessment reads as not found, matching the invite
// engine's masking.
func (h *AssessmentHandler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Assessment, bool) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return models.Assessment{}, false
	}

	assessment, err := h.assessmentRepo.GetByID(r.Context(), mux.Vars(r)["assessmentID"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "assessment not found or permission denied"})
			return models.Assessment{}, false
		}
		h.logger.Error().Err(err).Msg("failed to load assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load assessment"})
		return models.Assessment{}, false
	}
	if assessment.CreatorID != actorID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "assessment not found or permission denied"})
		return models.Assessment{}, false
	}

	return assessment, true
}
