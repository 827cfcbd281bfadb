package models

import (
	"encoding/json"
	"time"
)

// Submission is one interviewee's recorded answer set for one assessment
// attempt. Answers map question ids to responses; the pipeline treats the
// mapping as opaque.
type Submission struct {
	ID           string          `json:"id"`
	AssessmentID string          `json:"assessment_id"`
	UserID       string          `json:"user_id"`
	Answers      json.RawMessage `json:"answers"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Grade        *float64        `json:"grade,omitempty"`
}

// SubmissionWithCandidate pairs a submission with the submitting user's
// public profile for the recruiter listing.
type SubmissionWithCandidate struct {
	Submission
	Candidate PublicProfile `json:"candidate"`
}
