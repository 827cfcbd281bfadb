package repository

import (
	"context"
	"database/sql"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type QuestionRepository interface {
	Create(ctx context.Context, question models.Question) (models.Question, error)
	GetByID(ctx context.Context, questionID string) (models.Question, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.Question, error)
	Update(ctx context.Context, question models.Question) (models.Question, error)
	Delete(ctx context.Context, questionID string) error
}

type questionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question models.Question) (models.Question, error) {
	const query = `
		INSERT INTO questions (assessment_id, type, prompt, options, answer_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, assessment_id, type, prompt, options, answer_key;
	`

	row := r.db.QueryRowContext(ctx, query,
		question.AssessmentID,
		string(question.Type),
		question.Prompt,
		nullableJSON(question.Options),
		question.AnswerKey,
	)
	return scanQuestion(row)
}

func (r *questionRepository) GetByID(ctx context.Context, questionID string) (models.Question, error) {
	const query = `
		SELECT id, assessment_id, type, prompt, options, answer_key
		FROM questions
		WHERE id = $1;
	`
	return scanQuestion(r.db.QueryRowContext(ctx, query, questionID))
}

func (r *questionRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.Question, error) {
	const query = `
		SELECT id, assessment_id, type, prompt, options, answer_key
		FROM questions
		WHERE assessment_id = $1
		ORDER BY id;
	`

	rows, err := r.db.QueryContext(ctx, query, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(ctx context.Context, question models.Question) (models.Question, error) {
	const query = `
		UPDATE questions
		SET type = $2, prompt = $3, options = $4, answer_key = $5
		WHERE id = $1
		RETURNING id, assessment_id, type, prompt, options, answer_key;
	`

	row := r.db.QueryRowContext(ctx, query,
		question.ID,
		string(question.Type),
		question.Prompt,
		nullableJSON(question.Options),
		question.AnswerKey,
	)
	return scanQuestion(row)
}

func (r *questionRepository) Delete(ctx context.Context, questionID string) error {
	const query = `DELETE FROM questions WHERE id = $1;`

	result, err := r.db.ExecContext(ctx, query, questionID)
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

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func scanQuestion(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Question, error) {
	var (
		question  models.Question
		options   []byte
		answerKey sql.NullString
	)
	if err := scanner.Scan(
		&question.ID,
		&question.AssessmentID,
		&question.Type,
		&question.Prompt,
		&options,
		&answerKey,
	); err != nil {
		return models.Question{}, err
	}
	if len(options) > 0 {
		question.Options = options
	}
	if answerKey.Valid {
		v := answerKey.String
		question.AnswerKey = &v
	}
	return question, nil
}
