package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/smart-recruiter/assessment-api/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, invite models.Invite) (models.Invite, error)
	GetByID(ctx context.Context, inviteID string) (models.Invite, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (models.Invite, error)
	// MarkAccepted transitions a pending invite to accepted. It returns
	// sql.ErrNoRows when the invite is gone or no longer pending, which makes
	// the transition atomic under concurrent redeems.
	MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) (models.Invite, error)
	ListByRecruiter(ctx context.Context, recruiterID string) ([]models.Invite, error)
}

type inviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) InviteRepository {
	return &inviteRepository{db: db}
}

const inviteColumns = `id, recruiter_id, interviewee_id, assessment_id, status, token_hash, sent_at, expires_at, accepted_at, delivery_channel`

func (r *inviteRepository) Create(ctx context.Context, invite models.Invite) (models.Invite, error) {
	const query = `
		INSERT INTO invites (recruiter_id, interviewee_id, assessment_id, status, token_hash, sent_at, expires_at, delivery_channel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + inviteColumns + `;
	`

	row := r.db.QueryRowContext(ctx, query,
		invite.RecruiterID,
		invite.IntervieweeID,
		invite.AssessmentID,
		string(invite.Status),
		invite.TokenHash,
		invite.SentAt,
		invite.ExpiresAt,
		invite.DeliveryChannel,
	)
	return scanInvite(row)
}

func (r *inviteRepository) GetByID(ctx context.Context, inviteID string) (models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE id = $1;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, inviteID))
}

func (r *inviteRepository) GetByTokenHash(ctx context.Context, tokenHash string) (models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE token_hash = $1;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, tokenHash))
}

func (r *inviteRepository) MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) (models.Invite, error) {
	const query = `
		UPDATE invites
		SET status = 'accepted', accepted_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + inviteColumns + `;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, inviteID, acceptedAt))
}

func (r *inviteRepository) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE recruiter_id = $1
		ORDER BY sent_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.Invite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func scanInvite(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Invite, error) {
	var (
		invite     models.Invite
		acceptedAt sql.NullTime
	)
	if err := scanner.Scan(
		&invite.ID,
		&invite.RecruiterID,
		&invite.IntervieweeID,
		&invite.AssessmentID,
		&invite.Status,
		&invite.TokenHash,
		&invite.SentAt,
		&invite.ExpiresAt,
		&acceptedAt,
		&invite.DeliveryChannel,
	); err != nil {
		return models.Invite{}, err
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		invite.AcceptedAt = &t
	}
	return invite, nil
}
