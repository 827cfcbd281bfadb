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

type ResultHandler struct {
	service *grading.Service
	logger  zerolog.Logger
}

func NewResultHandler(service *grading.Service, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("handler", "result").Logger(),
	}
}

func (h *ResultHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var payload struct {
		SubmissionID    string   `json:"submission_id"`
		Score           *float64 `json:"score"`
		TimeTaken       *int     `json:"time_taken"`
		Rank            *int     `json:"rank"`
		PassStatus      bool     `json:"pass_status"`
		IsReleased      bool     `json:"is_released"`
		FeedbackSummary string   `json:"feedback_summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	result, err := h.service.UpsertResult(r.Context(), actorID, grading.ResultParams{
		SubmissionID:    payload.SubmissionID,
		Score:           payload.Score,
		TimeTaken:       payload.TimeTaken,
		Rank:            payload.Rank,
		PassStatus:      payload.PassStatus,
		IsReleased:      payload.IsReleased,
		FeedbackSummary: payload.FeedbackSummary,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "result saved",
		"result":  result,
	})
}

func (h *ResultHandler) Release(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	result, err := h.service.Release(r.Context(), actorID, mux.Vars(r)["resultID"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "result released successfully",
		"result":  result,
	})
}

func (h *ResultHandler) ListReleased(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	results, err := h.service.ListReleased(r.Context(), actorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list released results")
		writeError(w, err)
		return
	}
	if results == nil {
		results = []models.Result{}
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *ResultHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	entries, err := h.service.Ranking(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.RankingEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
