package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, userID, text string, assessmentID *string, at time.Time) (models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkRead flips read to true for the recipient's own notification.
	// Re-marking an already-read notification succeeds unchanged.
	MarkRead(ctx context.Context, userID, notificationID string) (models.Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, text, assessment_id, created_at, read`

func (r *notificationRepository) Create(ctx context.Context, userID, text string, assessmentID *string, at time.Time) (models.Notification, error) {
	const query = `
		INSERT INTO notifications (user_id, text, assessment_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns + `;
	`
	row := r.db.QueryRowContext(ctx, query, userID, text, assessmentID, at)
	return scanNotification(row)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	const query = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID string) (models.Notification, error) {
	const query = `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns + `;
	`
	row := r.db.QueryRowContext(ctx, query, notificationID, userID)
	return scanNotification(row)
}

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Notification, error) {
	var (
		notification models.Notification
		assessmentID sql.NullString
	)
	if err := scanner.Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Text,
		&assessmentID,
		&notification.CreatedAt,
		&notification.Read,
	); err != nil {
		return models.Notification{}, err
	}
	if assessmentID.Valid {
		v := assessmentID.String
		notification.AssessmentID = &v
	}
	return notification, nil
}
