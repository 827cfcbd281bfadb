package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/repository"
)

// Sink is the fire-and-forget side of the notification service. Emit appends
// a user-visible event record and never reports failure to the caller; a
// dropped notification must not fail the operation that produced it.
type Sink interface {
	Emit(ctx context.Context, userID, text string, assessmentID *string)
}

// Service exposes the sink plus the recipient-facing read surface.
type Service interface {
	Sink
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) (models.Notification, error)
}

type service struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With().Str("component", "notification_service").Logger(),
		now:    time.Now,
	}
}

func (s *service) Emit(ctx context.Context, userID, text string, assessmentID *string) {
	if userID == "" || text == "" {
		return
	}
	if _, err := s.repo.Create(ctx, userID, text, assessmentID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to persist notification")
	}
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID string) (models.Notification, error) {
	notif, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, apperr.NotFound("notification not found")
		}
		return models.Notification{}, err
	}
	return notif, nil
}
