package repository

import (
	"context"
	"database/sql"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission models.Submission) (models.Submission, error)
	GetByID(ctx context.Context, submissionID string) (models.Submission, error)
	UpdateGrade(ctx context.Context, submissionID string, grade float64) (models.Submission, error)
	// ListByAssessmentCreator returns submissions to assessments created by
	// the recruiter, each joined with the submitting user's public profile.
	ListByAssessmentCreator(ctx context.Context, recruiterID string) ([]models.SubmissionWithCandidate, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission models.Submission) (models.Submission, error) {
	const query = `
		INSERT INTO submissions (assessment_id, user_id, answers, submitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, assessment_id, user_id, answers, submitted_at, grade;
	`

	row := r.db.QueryRowContext(ctx, query,
		submission.AssessmentID,
		submission.UserID,
		[]byte(submission.Answers),
		submission.SubmittedAt,
	)
	return scanSubmission(row)
}

func (r *submissionRepository) GetByID(ctx context.Context, submissionID string) (models.Submission, error) {
	const query = `
		SELECT id, assessment_id, user_id, answers, submitted_at, grade
		FROM submissions
		WHERE id = $1;
	`
	return scanSubmission(r.db.QueryRowContext(ctx, query, submissionID))
}

func (r *submissionRepository) UpdateGrade(ctx context.Context, submissionID string, grade float64) (models.Submission, error) {
	const query = `
		UPDATE submissions
		SET grade = $2
		WHERE id = $1
		RETURNING id, assessment_id, user_id, answers, submitted_at, grade;
	`
	return scanSubmission(r.db.QueryRowContext(ctx, query, submissionID, grade))
}

func (r *submissionRepository) ListByAssessmentCreator(ctx context.Context, recruiterID string) ([]models.SubmissionWithCandidate, error) {
	const query = `
		SELECT s.id, s.assessment_id, s.user_id, s.answers, s.submitted_at, s.grade,
		       u.id, u.name, u.email
		FROM submissions s
		JOIN assessments a ON a.id = s.assessment_id
		JOIN users u ON u.id = s.user_id
		WHERE a.creator_id = $1
		ORDER BY s.submitted_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithCandidate
	for rows.Next() {
		var (
			item    models.SubmissionWithCandidate
			answers []byte
			grade   sql.NullFloat64
		)
		if err := rows.Scan(
			&item.ID,
			&item.AssessmentID,
			&item.UserID,
			&answers,
			&item.SubmittedAt,
			&grade,
			&item.Candidate.ID,
			&item.Candidate.Name,
			&item.Candidate.Email,
		); err != nil {
			return nil, err
		}
		if len(answers) > 0 {
			item.Answers = answers
		}
		if grade.Valid {
			g := grade.Float64
			item.Grade = &g
		}
		submissions = append(submissions, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return submissions, nil
}

func scanSubmission(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Submission, error) {
	var (
		submission models.Submission
		answers    []byte
		grade      sql.NullFloat64
	)
	if err := scanner.Scan(
		&submission.ID,
		&submission.AssessmentID,
		&submission.UserID,
		&answers,
		&submission.SubmittedAt,
		&grade,
	); err != nil {
		return models.Submission{}, err
	}
	if len(answers) > 0 {
		submission.Answers = answers
	}
	if grade.Valid {
		g := grade.Float64
		submission.Grade = &g
	}
	return submission, nil
}
