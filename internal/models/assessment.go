package models

import (
	"encoding/json"
	"time"
)

type Assessment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatorID string    `json:"creator_id"`
	Published bool      `json:"published"`
	TimeLimit *int      `json:"time_limit,omitempty"` // minutes
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionSubjective     QuestionType = "subjective"
	QuestionCodekata       QuestionType = "codekata"
)

func IsValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionMultipleChoice, QuestionSubjective, QuestionCodekata:
		return true
	}
	return false
}

type Question struct {
	ID           string          `json:"id"`
	AssessmentID string          `json:"assessment_id"`
	Type         QuestionType    `json:"type"`
	Prompt       string          `json:"prompt"`
	Options      json.RawMessage `json:"options,omitempty"`
	AnswerKey    *string         `json:"answer_key,omitempty"`
}
