package models

import "time"

// Result is the graded outcome of a submission. At most one result exists per
// submission; it stays hidden from the interviewee until released.
type Result struct {
	ID              string    `json:"id"`
	SubmissionID    string    `json:"submission_id"`
	Score           float64   `json:"score"`
	TimeTaken       *int      `json:"time_taken,omitempty"` // seconds
	Rank            *int      `json:"rank,omitempty"`
	PassStatus      bool      `json:"pass_status"`
	IsReleased      bool      `json:"is_released"`
	FeedbackSummary string    `json:"feedback_summary"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RankedResult joins a result with its candidate's display name for the
// recruiter leaderboard.
type RankedResult struct {
	Result
	CandidateName string `json:"name"`
}

// RankingEntry is one leaderboard row, ordered by score descending.
type RankingEntry struct {
	Name            string  `json:"name"`
	Score           float64 `json:"score"`
	Rank            *int    `json:"rank,omitempty"`
	PassStatus      bool    `json:"pass_status"`
	IsReleased      bool    `json:"is_released"`
	TimeTaken       *int    `json:"time_taken,omitempty"`
	FeedbackSummary string  `json:"feedback_summary"`
}
