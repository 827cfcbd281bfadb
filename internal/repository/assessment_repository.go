package repository

import (
	"context"
	"database/sql"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment models.Assessment) (models.Assessment, error)
	GetByID(ctx context.Context, assessmentID string) (models.Assessment, error)
	List(ctx context.Context) ([]models.Assessment, error)
	Update(ctx context.Context, assessment models.Assessment) (models.Assessment, error)
	Delete(ctx context.Context, assessmentID string) error
}

type assessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment models.Assessment) (models.Assessment, error) {
	const query = `
		INSERT INTO assessments (title, creator_id, published, time_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, creator_id, published, time_limit, created_at, updated_at;
	`

	row := r.db.QueryRowContext(ctx, query,
		assessment.Title,
		assessment.CreatorID,
		assessment.Published,
		assessment.TimeLimit,
	)
	return scanAssessment(row)
}

func (r *assessmentRepository) GetByID(ctx context.Context, assessmentID string) (models.Assessment, error) {
	const query = `
		SELECT id, title, creator_id, published, time_limit, created_at, updated_at
		FROM assessments
		WHERE id = $1;
	`
	return scanAssessment(r.db.QueryRowContext(ctx, query, assessmentID))
}

func (r *assessmentRepository) List(ctx context.Context) ([]models.Assessment, error) {
	const query = `
		SELECT id, title, creator_id, published, time_limit, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []models.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) Update(ctx context.Context, assessment models.Assessment) (models.Assessment, error) {
	const query = `
		UPDATE assessments
		SET title = $2, published = $3, time_limit = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, title, creator_id, published, time_limit, created_at, updated_at;
	`

	row := r.db.QueryRowContext(ctx, query,
		assessment.ID,
		assessment.Title,
		assessment.Published,
		assessment.TimeLimit,
	)
	return scanAssessment(row)
}

func (r *assessmentRepository) Delete(ctx context.Context, assessmentID string) error {
	const query = `DELETE FROM assessments WHERE id = $1;`

	result, err := r.db.ExecContext(ctx, query, assessmentID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAssessment(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Assessment, error) {
	var (
		assessment models.Assessment
		timeLimit  sql.NullInt64
	)
	if err := scanner.Scan(
		&assessment.ID,
		&assessment.Title,
		&assessment.CreatorID,
		&assessment.Published,
		&timeLimit,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
	); err != nil {
		return models.Assessment{}, err
	}
	if timeLimit.Valid {
		v := int(timeLimit.Int64)
		assessment.TimeLimit = &v
	}
	return assessment, nil
}
