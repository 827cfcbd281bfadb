// Package invites implements the invitation lifecycle: a recruiter issues a
// token-bearing invite for an assessment they own, the invited interviewee
// redeems it once before it expires. Status only ever moves forward.
package invites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/notification"
	"github.com/smart-recruiter/assessment-api/internal/repository"
)

const defaultExpiresInDays = 7

type Service struct {
	invites     repository.InviteRepository
	users       repository.UserRepository
	assessments repository.AssessmentRepository
	sink        notification.Sink
	mailer      notification.Mailer
	urlTpl      string
	logger      zerolog.Logger

	// Now is the clock used for sent_at, expiry, and redemption checks.
	// Tests override it.
	Now func() time.Time
}

func NewService(
	invites repository.InviteRepository,
	users repository.UserRepository,
	assessments repository.AssessmentRepository,
	sink notification.Sink,
	mailer notification.Mailer,
	inviteURLTemplate string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		invites:     invites,
		users:       users,
		assessments: assessments,
		sink:        sink,
		mailer:      mailer,
		urlTpl:      inviteURLTemplate,
		logger:      logger.With().Str("component", "invite_service").Logger(),
		Now:         time.Now,
	}
}

type CreateParams struct {
	RecruiterID      string
	AssessmentID     string
	IntervieweeEmail string
	// ExpiresInDays defaults to 7 when nil. Zero is honored: it creates an
	// invite that is already at its deadline.
	ExpiresInDays *int
}

// CreateOutcome carries the created invite plus the one-time plaintext token
// and the best-effort mail delivery status.
type CreateOutcome struct {
	Invite           models.Invite
	Token            string
	IntervieweeEmail string
	MailWarning      string
}

// Create validates recruiter role, assessment ownership, and the interviewee
// email, then persists a pending invite. Mail delivery runs strictly after
// the invite is durable; its failure is reported on the outcome, never as an
// error.
func (s *Service) Create(ctx context.Context, params CreateParams) (CreateOutcome, error) {
	recruiter, err := authz.CheckRole(ctx, s.users, params.RecruiterID, models.RoleRecruiter)
	if err != nil {
		return CreateOutcome{}, err
	}
	if params.AssessmentID == "" || params.IntervieweeEmail == "" {
		return CreateOutcome{}, apperr.Validation("assessment_id and interviewee_email are required")
	}

	assessment, err := s.assessments.GetByID(ctx, params.AssessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CreateOutcome{}, apperr.NotFound("assessment not found or permission denied")
		}
		return CreateOutcome{}, err
	}
	// A foreign assessment looks identical to a missing one.
	if assessment.CreatorID != recruiter.ID {
		return CreateOutcome{}, apperr.NotFound("assessment not found or permission denied")
	}

	interviewee, err := s.users.GetByEmailAndRole(ctx, params.IntervieweeEmail, models.RoleInterviewee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CreateOutcome{}, apperr.NotFound("interviewee not found, please ensure they are registered")
		}
		return CreateOutcome{}, err
	}

	expiresInDays := defaultExpiresInDays
	if params.ExpiresInDays != nil && *params.ExpiresInDays >= 0 {
		expiresInDays = *params.ExpiresInDays
	}

	token, err := GenerateToken()
	if err != nil {
		return CreateOutcome{}, err
	}

	now := s.Now()
	invite, err := s.invites.Create(ctx, models.Invite{
		RecruiterID:     recruiter.ID,
		IntervieweeID:   interviewee.ID,
		AssessmentID:    assessment.ID,
		Status:          models.InvitePending,
		TokenHash:       HashToken(token),
		SentAt:          now,
		ExpiresAt:       now.Add(time.Duration(expiresInDays) * 24 * time.Hour),
		DeliveryChannel: "email",
	})
	if err != nil {
		return CreateOutcome{}, err
	}

	outcome := CreateOutcome{
		Invite:           invite,
		Token:            token,
		IntervieweeEmail: interviewee.Email,
	}

	// Post-commit side effects. The invite row is the durable fact; nothing
	// below may undo it.
	s.sink.Emit(ctx, recruiter.ID,
		fmt.Sprintf("Invite sent to %s for %q.", interviewee.Email, assessment.Title),
		&assessment.ID)
	s.sink.Emit(ctx, interviewee.ID,
		fmt.Sprintf("You have been invited to the assessment %q.", assessment.Title),
		&assessment.ID)

	if s.mailer != nil {
		if err := s.sendInviteMail(recruiter, interviewee, assessment, token, invite.ExpiresAt); err != nil {
			s.logger.Error().Err(err).Str("invite_id", invite.ID).Msg("invite email delivery failed")
			outcome.MailWarning = "invite created but email delivery failed"
		}
	}

	return outcome, nil
}

func (s *Service) sendInviteMail(recruiter, interviewee models.User, assessment models.Assessment, token string, expiresAt time.Time) error {
	inviteURL := fmt.Sprintf(s.urlTpl, token)
	subject := "Assessment Invitation"
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"You have been invited to participate in an assessment: %s.\n\n"+
			"Click below to accept the invitation:\n%s\n\n"+
			"This invitation will expire on %s.\n\n"+
			"Best regards,\n%s\n",
		interviewee.Name,
		assessment.Title,
		inviteURL,
		expiresAt.UTC().Format("2006-01-02 15:04 MST"),
		recruiter.Name,
	)
	return s.mailer.Send(interviewee.Email, subject, body)
}

// Redeem is the one-shot pending→accepted transition. Preconditions run in
// strict order, first failure wins: unknown token, wrong interviewee,
// non-pending status, expiry.
func (s *Service) Redeem(ctx context.Context, intervieweeID, token string) (models.Invite, error) {
	invite, err := s.invites.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invite{}, apperr.NotFound("invalid invitation token")
		}
		return models.Invite{}, err
	}
	if invite.IntervieweeID != intervieweeID {
		return models.Invite{}, apperr.Authorization("you are not authorized to accept this invite")
	}
	if !invite.IsPending() {
		return models.Invite{}, apperr.Conflict("this invitation has already been processed")
	}
	now := s.Now()
	if invite.IsExpired(now) {
		return models.Invite{}, apperr.Expired("this invitation has expired")
	}

	accepted, err := s.invites.MarkAccepted(ctx, invite.ID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with a concurrent redeem.
			return models.Invite{}, apperr.Conflict("this invitation has already been processed")
		}
		return models.Invite{}, err
	}

	if assessment, err := s.assessments.GetByID(ctx, accepted.AssessmentID); err == nil {
		text := fmt.Sprintf("You accepted the invitation to %q.", assessment.Title)
		if assessment.TimeLimit != nil {
			text = fmt.Sprintf("You accepted the invitation to %q. Time limit: %d minutes.", assessment.Title, *assessment.TimeLimit)
		}
		s.sink.Emit(ctx, accepted.IntervieweeID, text, &assessment.ID)
		s.sink.Emit(ctx, accepted.RecruiterID,
			fmt.Sprintf("Your invitation for %q was accepted.", assessment.Title),
			&assessment.ID)
	}

	return accepted, nil
}

// List returns the recruiter's own invites, newest first. Tokens are never
// re-exposed here.
func (s *Service) List(ctx context.Context, recruiterID string) ([]models.Invite, error) {
	return s.invites.ListByRecruiter(ctx, recruiterID)
}

// Get returns one invite, visible only to its sender or recipient.
func (s *Service) Get(ctx context.Context, actorID, inviteID string) (models.Invite, error) {
	invite, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invite{}, apperr.NotFound("invite not found")
		}
		return models.Invite{}, err
	}
	if invite.RecruiterID != actorID && invite.IntervieweeID != actorID {
		return models.Invite{}, apperr.Authorization("invite is not visible to actor")
	}
	return invite, nil
}
