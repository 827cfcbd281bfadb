// Package grading implements the submission and results pipeline: answer
// intake, recruiter grading, result upsert and release, and the score-ranked
// leaderboard.
package grading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/notification"
	"github.com/smart-recruiter/assessment-api/internal/repository"
)

type Service struct {
	submissions repository.SubmissionRepository
	results     repository.ResultRepository
	users       repository.UserRepository
	assessments repository.AssessmentRepository
	sink        notification.Sink
	logger      zerolog.Logger

	// Now stamps submitted_at; tests override it.
	Now func() time.Time
}

func NewService(
	submissions repository.SubmissionRepository,
	results repository.ResultRepository,
	users repository.UserRepository,
	assessments repository.AssessmentRepository,
	sink notification.Sink,
	logger zerolog.Logger,
) *Service {
	return &Service{
		submissions: submissions,
		results:     results,
		users:       users,
		assessments: assessments,
		sink:        sink,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		Now:         time.Now,
	}
}

// Submit records an interviewee's answers. Deliberately permissive: no check
// that an accepted invite links the interviewee to the assessment, and
// repeated submissions for the same pair are allowed. Both match the upstream
// product behavior; tightening either would be a new constraint.
func (s *Service) Submit(ctx context.Context, intervieweeID, assessmentID string, answers json.RawMessage) (models.Submission, error) {
	if _, err := authz.CheckRole(ctx, s.users, intervieweeID, models.RoleInterviewee); err != nil {
		return models.Submission{}, err
	}
	if assessmentID == "" || len(answers) == 0 || string(answers) == "null" {
		return models.Submission{}, apperr.Validation("assessment_id and answers are required")
	}

	return s.submissions.Create(ctx, models.Submission{
		AssessmentID: assessmentID,
		UserID:       intervieweeID,
		Answers:      answers,
		SubmittedAt:  s.Now(),
	})
}

// ListForRecruiter returns submissions on the recruiter's own assessments,
// each enriched with the candidate's public profile.
func (s *Service) ListForRecruiter(ctx context.Context, recruiterID string) ([]models.SubmissionWithCandidate, error) {
	if _, err := authz.CheckRole(ctx, s.users, recruiterID, models.RoleRecruiter); err != nil {
		return nil, err
	}
	return s.submissions.ListByAssessmentCreator(ctx, recruiterID)
}

// Grade sets the numeric grade on a submission. Re-grading overwrites.
func (s *Service) Grade(ctx context.Context, recruiterID, submissionID string, grade *float64) (models.Submission, error) {
	if grade == nil {
		return models.Submission{}, apperr.Validation("grade is required")
	}

	submission, err := s.getOwnedSubmission(ctx, recruiterID, submissionID)
	if err != nil {
		return models.Submission{}, err
	}

	return s.submissions.UpdateGrade(ctx, submission.ID, *grade)
}

type ResultParams struct {
	SubmissionID    string
	Score           *float64
	TimeTaken       *int
	Rank            *int
	PassStatus      bool
	IsReleased      bool
	FeedbackSummary string
}

// UpsertResult creates or fully overwrites the result for a submission. All
// fields take the supplied values, including an explicit is_released
// downgrade: this is the only path that can un-release a result, and it is
// kept on purpose.
func (s *Service) UpsertResult(ctx context.Context, recruiterID string, params ResultParams) (models.Result, error) {
	if params.SubmissionID == "" || params.Score == nil {
		return models.Result{}, apperr.Validation("submission_id and score are required")
	}

	submission, err := s.getOwnedSubmission(ctx, recruiterID, params.SubmissionID)
	if err != nil {
		return models.Result{}, err
	}

	return s.results.Upsert(ctx, models.Result{
		SubmissionID:    submission.ID,
		Score:           *params.Score,
		TimeTaken:       params.TimeTaken,
		Rank:            params.Rank,
		PassStatus:      params.PassStatus,
		IsReleased:      params.IsReleased,
		FeedbackSummary: params.FeedbackSummary,
	})
}

// Release makes a result visible to its interviewee. Releasing an already
// released result is a success no-op.
func (s *Service) Release(ctx context.Context, recruiterID, resultID string) (models.Result, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Result{}, apperr.NotFound("result not found")
		}
		return models.Result{}, err
	}

	submission, err := s.getOwnedSubmission(ctx, recruiterID, result.SubmissionID)
	if err != nil {
		return models.Result{}, err
	}

	released, err := s.results.Release(ctx, result.ID)
	if err != nil {
		return models.Result{}, err
	}

	s.sink.Emit(ctx, submission.UserID, "Your assessment result has been released.", &submission.AssessmentID)
	return released, nil
}

// ListReleased returns the interviewee's own released results.
func (s *Service) ListReleased(ctx context.Context, intervieweeID string) ([]models.Result, error) {
	return s.results.ListReleasedByUser(ctx, intervieweeID)
}

// Ranking is the recruiter-only leaderboard: every result joined with its
// candidate's name, score descending. Submission id breaks score ties so the
// order is stable across calls. Release state does not filter here; it gates
// only the interviewee-facing listing.
func (s *Service) Ranking(ctx context.Context, recruiterID string) ([]models.RankingEntry, error) {
	if _, err := authz.CheckRole(ctx, s.users, recruiterID, models.RoleRecruiter); err != nil {
		return nil, err
	}

	rows, err := s.results.ListWithCandidates(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].SubmissionID < rows[j].SubmissionID
	})

	entries := make([]models.RankingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.RankingEntry{
			Name:            row.CandidateName,
			Score:           row.Score,
			Rank:            row.Rank,
			PassStatus:      row.PassStatus,
			IsReleased:      row.IsReleased,
			TimeTaken:       row.TimeTaken,
			FeedbackSummary: row.FeedbackSummary,
		})
	}
	return entries, nil
}

// getOwnedSubmission loads a submission and verifies the actor owns its
// assessment. Existence is checked before ownership so an unknown id is a
// NotFound, not an Authorization error.
func (s *Service) getOwnedSubmission(ctx context.Context, recruiterID, submissionID string) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Submission{}, apperr.NotFound("submission not found")
		}
		return models.Submission{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Submission{}, fmt.Errorf("submission %s references missing assessment %s", submission.ID, submission.AssessmentID)
		}
		return models.Submission{}, err
	}
	if err := authz.CheckAssessmentOwner(assessment, recruiterID); err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}
