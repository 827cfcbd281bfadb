package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	// InviteDeclined is reserved in the schema; no operation produces it yet.
	InviteDeclined InviteStatus = "declined"
)

// Invite authorizes one interviewee to take one assessment, issued by the
// assessment's owning recruiter. The plaintext token is returned exactly once
// at creation; only its hash is stored.
type Invite struct {
	ID              string       `json:"id"`
	RecruiterID     string       `json:"recruiter_id"`
	IntervieweeID   string       `json:"interviewee_id"`
	AssessmentID    string       `json:"assessment_id"`
	Status          InviteStatus `json:"status"`
	TokenHash       string       `json:"-"`
	SentAt          time.Time    `json:"sent_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
	AcceptedAt      *time.Time   `json:"accepted_at,omitempty"`
	DeliveryChannel string       `json:"delivery_channel"`
}

// IsExpired determines whether the invite's deadline has passed.
func (i Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsPending indicates whether the invite can still be redeemed.
func (i Invite) IsPending() bool {
	return i.Status == InvitePending
}
