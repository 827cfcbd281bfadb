package models

import "time"

// Notification is a user-visible event record. Read is monotonic: once
// marked read it never flips back.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Text         string    `json:"text"`
	AssessmentID *string   `json:"assessment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Read         bool      `json:"read"`
}
