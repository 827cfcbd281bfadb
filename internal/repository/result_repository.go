package repository

import (
	"context"
	"database/sql"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type ResultRepository interface {
	// Upsert creates or fully overwrites the result keyed by submission id.
	// Last writer wins, including an explicit is_released downgrade.
	Upsert(ctx context.Context, result models.Result) (models.Result, error)
	GetByID(ctx context.Context, resultID string) (models.Result, error)
	Release(ctx context.Context, resultID string) (models.Result, error)
	ListReleasedByUser(ctx context.Context, userID string) ([]models.Result, error)
	// ListWithCandidates returns every result joined with the candidate's
	// display name, release state regardless. Ordering is the caller's job.
	ListWithCandidates(ctx context.Context) ([]models.RankedResult, error)
}

type resultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepository{db: db}
}

const resultColumns = `id, submission_id, score, time_taken, rank, pass_status, is_released, feedback_summary, created_at, updated_at`

func (r *resultRepository) Upsert(ctx context.Context, result models.Result) (models.Result, error) {
	const query = `
		INSERT INTO results (submission_id, score, time_taken, rank, pass_status, is_released, feedback_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (submission_id) DO UPDATE
		SET score = EXCLUDED.score,
		    time_taken = EXCLUDED.time_taken,
		    rank = EXCLUDED.rank,
		    pass_status = EXCLUDED.pass_status,
		    is_released = EXCLUDED.is_released,
		    feedback_summary = EXCLUDED.feedback_summary,
		    updated_at = now()
		RETURNING ` + resultColumns + `;
	`

	row := r.db.QueryRowContext(ctx, query,
		result.SubmissionID,
		result.Score,
		result.TimeTaken,
		result.Rank,
		result.PassStatus,
		result.IsReleased,
		result.FeedbackSummary,
	)
	return scanResult(row)
}

func (r *resultRepository) GetByID(ctx context.Context, resultID string) (models.Result, error) {
	const query = `
		SELECT ` + resultColumns + `
		FROM results
		WHERE id = $1;
	`
	return scanResult(r.db.QueryRowContext(ctx, query, resultID))
}

func (r *resultRepository) Release(ctx context.Context, resultID string) (models.Result, error) {
	const query = `
		UPDATE results
		SET is_released = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING ` + resultColumns + `;
	`
	return scanResult(r.db.QueryRowContext(ctx, query, resultID))
}

func (r *resultRepository) ListReleasedByUser(ctx context.Context, userID string) ([]models.Result, error) {
	const query = `
		SELECT r.id, r.submission_id, r.score, r.time_taken, r.rank, r.pass_status, r.is_released, r.feedback_summary, r.created_at, r.updated_at
		FROM results r
		JOIN submissions s ON s.id = r.submission_id
		WHERE s.user_id = $1 AND r.is_released = TRUE
		ORDER BY r.updated_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) ListWithCandidates(ctx context.Context) ([]models.RankedResult, error) {
	const query = `
		SELECT r.id, r.submission_id, r.score, r.time_taken, r.rank, r.pass_status, r.is_released, r.feedback_summary, r.created_at, r.updated_at,
		       u.name
		FROM results r
		JOIN submissions s ON s.id = r.submission_id
		JOIN users u ON u.id = s.user_id;
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RankedResult
	for rows.Next() {
		var (
			item      models.RankedResult
			timeTaken sql.NullInt64
			rank      sql.NullInt64
		)
		if err := rows.Scan(
			&item.ID,
			&item.SubmissionID,
			&item.Score,
			&timeTaken,
			&rank,
			&item.PassStatus,
			&item.IsReleased,
			&item.FeedbackSummary,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.CandidateName,
		); err != nil {
			return nil, err
		}
		if timeTaken.Valid {
			v := int(timeTaken.Int64)
			item.TimeTaken = &v
		}
		if rank.Valid {
			v := int(rank.Int64)
			item.Rank = &v
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanResult(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Result, error) {
	var (
		result    models.Result
		timeTaken sql.NullInt64
		rank      sql.NullInt64
	)
	if err := scanner.Scan(
		&result.ID,
		&result.SubmissionID,
		&result.Score,
		&timeTaken,
		&rank,
		&result.PassStatus,
		&result.IsReleased,
		&result.FeedbackSummary,
		&result.CreatedAt,
		&result.UpdatedAt,
	); err != nil {
		return models.Result{}, err
	}
	if timeTaken.Valid {
		v := int(timeTaken.Int64)
		result.TimeTaken = &v
	}
	if rank.Valid {
		v := int(rank.Int64)
		result.Rank = &v
	}
	return result, nil
}
