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

type QuestionHandler struct {
	questionRepo   repository.QuestionRepository
	assessmentRepo repository.AssessmentRepository
	logger         zerolog.Logger
}

type questionRequest struct {
	Type      string          `json:"type"`
	Prompt    string          `json:"prompt"`
	Options   json.RawMessage `json:"options"`
	AnswerKey *string         `json:"answer_key"`
}

func NewQuestionHandler(questionRepo repository.QuestionRepository, assessmentRepo repository.AssessmentRepository, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionRepo:   questionRepo,
		assessmentRepo: assessmentRepo,
		logger:         logger.With().Str("handler", "question").Logger(),
	}
}

func (h *QuestionHandler) ListByAssessment(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionRepo.ListByAssessment(r.Context(), mux.Vars(r)["assessmentID"])
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list questions")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to list questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	assessmentID := mux.Vars(r)["assessmentID"]
	assessment, err := h.assessmentRepo.GetByID(r.Context(), assessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "assessment not found or permission denied"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to load assessment")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load assessment"})
		return
	}
	if assessment.CreatorID != actorID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "assessment not found or permission denied"})
		return
	}

	var payload questionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	question, ok := buildQuestion(w, assessmentID, payload)
	if !ok {
		return
	}

	created, err := h.questionRepo.Create(r.Context(), question)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to create question"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	question, err := h.questionRepo.GetByID(r.Context(), mux.Vars(r)["questionID"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "question not found"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to load question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load question"})
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	question, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var payload questionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	if payload.Type != "" {
		questionType := models.QuestionType(payload.Type)
		if !models.IsValidQuestionType(questionType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid question type"})
			return
		}
		question.Type = questionType
	}
	if prompt := strings.TrimSpace(payload.Prompt); prompt != "" {
		question.Prompt = prompt
	}
	if len(payload.Options) > 0 {
		question.Options = payload.Options
	}
	if payload.AnswerKey != nil {
		question.AnswerKey = payload.AnswerKey
	}

	updated, err := h.questionRepo.Update(r.Context(), question)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to update question"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	question, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.questionRepo.Delete(r.Context(), question.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete question"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}

func (h *QuestionHandler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Question, bool) {
	actorID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return models.Question{}, false
	}

	question, err := h.questionRepo.GetByID(r.Context(), mux.Vars(r)["questionID"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "question not found"})
			return models.Question{}, false
		}
		h.logger.Error().Err(err).Msg("failed to load question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load question"})
		return models.Question{}, false
	}

	assessment, err := h.assessmentRepo.GetByID(r.Context(), question.AssessmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load assessment for question")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to load question"})
		return models.Question{}, false
	}
	if assessment.CreatorID != actorID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "question not found"})
		return models.Question{}, false
	}

	return question, true
}

func buildQuestion(w http.ResponseWriter, assessmentID string, payload questionRequest) (models.Question, bool) {
	questionType := models.QuestionType(strings.TrimSpace(payload.Type))
	prompt := strings.TrimSpace(payload.Prompt)

	if prompt == "" || !models.IsValidQuestionType(questionType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "prompt and a valid type are required"})
		return models.Question{}, false
	}
	if questionType == models.QuestionMultipleChoice {
		if len(payload.Options) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "options are required for multiple_choice"})
			return models.Question{}, false
		}
		if payload.AnswerKey == nil || strings.TrimSpace(*payload.AnswerKey) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "answer key is required for multiple_choice"})
			return models.Question{}, false
		}
	}

	return models.Question{
		AssessmentID: assessmentID,
		Type:         questionType,
		Prompt:       prompt,
		Options:      payload.Options,
		AnswerKey:    payload.AnswerKey,
	}, true
}
