package invites

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

type fakeUserRepo struct {
	users map[string]models.User
}

func (f *fakeUserRepo) Create(_ context.Context, name, email, _ string, role models.UserRole) (models.User, error) {
	user := models.User{ID: uuid.NewString(), Name: name, Email: email, Role: role}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Authenticate(_ context.Context, _, _ string) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID string) (models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmailAndRole(_ context.Context, email string, role models.UserRole) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email && user.Role == role {
			return user, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

type fakeAssessmentRepo struct {
	assessments map[string]models.Assessment
}

func (f *fakeAssessmentRepo) Create(_ context.Context, assessment models.Assessment) (models.Assessment, error) {
	assessment.ID = uuid.NewString()
	f.assessments[assessment.ID] = assessment
	return assessment, nil
}

func (f *fakeAssessmentRepo) GetByID(_ context.Context, assessmentID string) (models.Assessment, error) {
	assessment, ok := f.assessments[assessmentID]
	if !ok {
		return models.Assessment{}, sql.ErrNoRows
	}
	return assessment, nil
}

func (f *fakeAssessmentRepo) List(_ context.Context) ([]models.Assessment, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAssessmentRepo) Update(_ context.Context, assessment models.Assessment) (models.Assessment, error) {
	f.assessments[assessment.ID] = assessment
	return assessment, nil
}

func (f *fakeAssessmentRepo) Delete(_ context.Context, assessmentID string) error {
	delete(f.assessments, assessmentID)
	return nil
}

type fakeInviteRepo struct {
	invites map[string]models.Invite
}

func (f *fakeInviteRepo) Create(_ context.Context, invite models.Invite) (models.Invite, error) {
	for _, existing := range f.invites {
		if existing.TokenHash == invite.TokenHash {
			return models.Invite{}, errors.New("duplicate token hash")
		}
	}
	invite.ID = uuid.NewString()
	f.invites[invite.ID] = invite
	return invite, nil
}

func (f *fakeInviteRepo) GetByID(_ context.Context, inviteID string) (models.Invite, error) {
	invite, ok := f.invites[inviteID]
	if !ok {
		return models.Invite{}, sql.ErrNoRows
	}
	return invite, nil
}

func (f *fakeInviteRepo) GetByTokenHash(_ context.Context, tokenHash string) (models.Invite, error) {
	for _, invite := range f.invites {
		if invite.TokenHash == tokenHash {
			return invite, nil
		}
	}
	return models.Invite{}, sql.ErrNoRows
}

func (f *fakeInviteRepo) MarkAccepted(_ context.Context, inviteID string, acceptedAt time.Time) (models.Invite, error) {
	invite, ok := f.invites[inviteID]
	if !ok || invite.Status != models.InvitePending {
		return models.Invite{}, sql.ErrNoRows
	}
	invite.Status = models.InviteAccepted
	invite.AcceptedAt = &acceptedAt
	f.invites[inviteID] = invite
	return invite, nil
}

func (f *fakeInviteRepo) ListByRecruiter(_ context.Context, recruiterID string) ([]models.Invite, error) {
	var invites []models.Invite
	for _, invite := range f.invites {
		if invite.RecruiterID == recruiterID {
			invites = append(invites, invite)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].SentAt.After(invites[j].SentAt) })
	return invites, nil
}

type recordedNotification struct {
	UserID string
	Text   string
}

type recordingSink struct {
	emitted []recordedNotification
}

func (s *recordingSink) Emit(_ context.Context, userID, text string, _ *string) {
	s.emitted = append(s.emitted, recordedNotification{UserID: userID, Text: text})
}

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) Send(recipient, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, recipient)
	return nil
}

type inviteEnv struct {
	service     *Service
	users       *fakeUserRepo
	assessments *fakeAssessmentRepo
	invites     *fakeInviteRepo
	sink        *recordingSink
	mailer      *stubMailer
	recruiter   models.User
	interviewee models.User
	assessment  models.Assessment
	clock       time.Time
}

func newInviteEnv(t *testing.T) *inviteEnv {
	t.Helper()
	env := &inviteEnv{
		users:       &fakeUserRepo{users: map[string]models.User{}},
		assessments: &fakeAssessmentRepo{assessments: map[string]models.Assessment{}},
		invites:     &fakeInviteRepo{invites: map[string]models.Invite{}},
		sink:        &recordingSink{},
		mailer:      &stubMailer{},
		clock:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	ctx := context.Background()
	var err error
	env.recruiter, err = env.users.Create(ctx, "Rita Recruiter", "rita@example.com", "pw", models.RoleRecruiter)
	if err != nil {
		t.Fatalf("create recruiter: %v", err)
	}
	env.interviewee, err = env.users.Create(ctx, "Ivan Interviewee", "ivan@example.com", "pw", models.RoleInterviewee)
	if err != nil {
		t.Fatalf("create interviewee: %v", err)
	}
	limit := 60
	env.assessment, err = env.assessments.Create(ctx, models.Assessment{
		Title:     "Backend Screening",
		CreatorID: env.recruiter.ID,
		TimeLimit: &limit,
	})
	if err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	env.service = NewService(env.invites, env.users, env.assessments, env.sink, env.mailer,
		"http://localhost:5173/invites/accept?token=%s", zerolog.Nop())
	env.service.Now = func() time.Time { return env.clock }
	return env
}

func (env *inviteEnv) create(t *testing.T, days *int) CreateOutcome {
	t.Helper()
	outcome, err := env.service.Create(context.Background(), CreateParams{
		RecruiterID:      env.recruiter.ID,
		AssessmentID:     env.assessment.ID,
		IntervieweeEmail: env.interviewee.Email,
		ExpiresInDays:    days,
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	return outcome
}

func intPtr(v int) *int { return &v }

func TestCreateInvite(t *testing.T) {
	env := newInviteEnv(t)

	outcome := env.create(t, nil)

	if outcome.Token == "" {
		t.Fatal("expected plaintext token in creation outcome")
	}
	invite := outcome.Invite
	if invite.Status != models.InvitePending {
		t.Fatalf("status = %q, want pending", invite.Status)
	}
	if invite.TokenHash != HashToken(outcome.Token) {
		t.Fatal("stored hash does not match returned token")
	}
	if !invite.SentAt.Equal(env.clock) {
		t.Fatalf("sent_at = %v, want %v", invite.SentAt, env.clock)
	}
	wantExpiry := env.clock.Add(7 * 24 * time.Hour)
	if !invite.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expires_at = %v, want %v", invite.ExpiresAt, wantExpiry)
	}
	if invite.AcceptedAt != nil {
		t.Fatal("accepted_at must be nil on a pending invite")
	}

	// One notification each side, one email to the interviewee.
	if len(env.sink.emitted) != 2 {
		t.Fatalf("emitted %d notifications, want 2", len(env.sink.emitted))
	}
	recipients := map[string]bool{}
	for _, n := range env.sink.emitted {
		recipients[n.UserID] = true
	}
	if !recipients[env.recruiter.ID] || !recipients[env.interviewee.ID] {
		t.Fatalf("notifications went to %v, want both recruiter and interviewee", recipients)
	}
	if len(env.mailer.sent) != 1 || env.mailer.sent[0] != env.interviewee.Email {
		t.Fatalf("mail sent to %v, want [%s]", env.mailer.sent, env.interviewee.Email)
	}
	if outcome.MailWarning != "" {
		t.Fatalf("unexpected mail warning: %q", outcome.MailWarning)
	}
}

func TestCreateInvitePreconditions(t *testing.T) {
	env := newInviteEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateParams
		kind   apperr.Kind
	}{
		{
			name: "actor is not a recruiter",
			params: CreateParams{
				RecruiterID:      env.interviewee.ID,
				AssessmentID:     env.assessment.ID,
				IntervieweeEmail: env.interviewee.Email,
			},
			kind: apperr.KindAuthorization,
		},
		{
			name: "unknown assessment",
			params: CreateParams{
				RecruiterID:      env.recruiter.ID,
				AssessmentID:     uuid.NewString(),
				IntervieweeEmail: env.interviewee.Email,
			},
			kind: apperr.KindNotFound,
		},
		{
			name: "unregistered interviewee",
			params: CreateParams{
				RecruiterID:      env.recruiter.ID,
				AssessmentID:     env.assessment.ID,
				IntervieweeEmail: "nobody@example.com",
			},
			kind: apperr.KindNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.Create(ctx, tc.params)
			if apperr.KindOf(err) != tc.kind {
				t.Fatalf("err = %v (kind %v), want kind %v", err, apperr.KindOf(err), tc.kind)
			}
		})
	}
}

func TestCreateInviteForeignAssessmentMasksAsNotFound(t *testing.T) {
	env := newInviteEnv(t)
	ctx := context.Background()

	other, err := env.users.Create(ctx, "Omar Other", "omar@example.com", "pw", models.RoleRecruiter)
	if err != nil {
		t.Fatalf("create second recruiter: %v", err)
	}

	_, err = env.service.Create(ctx, CreateParams{
		RecruiterID:      other.ID,
		AssessmentID:     env.assessment.ID,
		IntervieweeEmail: env.interviewee.Email,
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want NotFound for non-owned assessment", err)
	}
}

func TestCreateInviteMailFailureKeepsInvite(t *testing.T) {
	env := newInviteEnv(t)
	env.mailer.err = errors.New("smtp connection refused")

	outcome, err := env.service.Create(context.Background(), CreateParams{
		RecruiterID:      env.recruiter.ID,
		AssessmentID:     env.assessment.ID,
		IntervieweeEmail: env.interviewee.Email,
	})
	if err != nil {
		t.Fatalf("mail failure must not fail the operation, got %v", err)
	}
	if outcome.MailWarning == "" {
		t.Fatal("expected a mail warning on the outcome")
	}
	if _, err := env.invites.GetByID(context.Background(), outcome.Invite.ID); err != nil {
		t.Fatalf("invite must remain persisted after mail failure: %v", err)
	}
}

func TestRedeem(t *testing.T) {
	env := newInviteEnv(t)
	outcome := env.create(t, nil)
	ctx := context.Background()

	env.clock = env.clock.Add(time.Hour)
	invite, err := env.service.Redeem(ctx, env.interviewee.ID, outcome.Token)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if invite.Status != models.InviteAccepted {
		t.Fatalf("status = %q, want accepted", invite.Status)
	}
	if invite.AcceptedAt == nil || !invite.AcceptedAt.Equal(env.clock) {
		t.Fatalf("accepted_at = %v, want %v", invite.AcceptedAt, env.clock)
	}

	// One-shot transition: a second redeem conflicts.
	_, err = env.service.Redeem(ctx, env.interviewee.ID, outcome.Token)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second redeem err = %v, want Conflict", err)
	}
}

func TestRedeemPreconditionOrder(t *testing.T) {
	env := newInviteEnv(t)
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.service.Redeem(ctx, env.interviewee.ID, "bogus")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("err = %v, want NotFound", err)
		}
	})

	t.Run("wrong interviewee wins over expiry", func(t *testing.T) {
		outcome := env.create(t, intPtr(0))
		env.clock = env.clock.Add(time.Second)
		_, err := env.service.Redeem(ctx, env.recruiter.ID, outcome.Token)
		if apperr.KindOf(err) != apperr.KindAuthorization {
			t.Fatalf("err = %v, want Authorization before Expired", err)
		}
	})

	t.Run("processed wins over expiry", func(t *testing.T) {
		outcome := env.create(t, intPtr(1))
		if _, err := env.service.Redeem(ctx, env.interviewee.ID, outcome.Token); err != nil {
			t.Fatalf("first redeem: %v", err)
		}
		env.clock = env.clock.Add(48 * time.Hour)
		_, err := env.service.Redeem(ctx, env.interviewee.ID, outcome.Token)
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Fatalf("err = %v, want Conflict before Expired", err)
		}
	})
}

func TestRedeemExpired(t *testing.T) {
	env := newInviteEnv(t)
	outcome := env.create(t, intPtr(0))

	env.clock = env.clock.Add(time.Second)
	_, err := env.service.Redeem(context.Background(), env.interviewee.ID, outcome.Token)
	if apperr.KindOf(err) != apperr.KindExpired {
		t.Fatalf("err = %v, want Expired", err)
	}

	// The status field stays pending; expiry is purely temporal.
	stored, err := env.invites.GetByID(context.Background(), outcome.Invite.ID)
	if err != nil {
		t.Fatalf("reload invite: %v", err)
	}
	if stored.Status != models.InvitePending {
		t.Fatalf("status = %q, want pending after failed redeem", stored.Status)
	}
}

func TestListNewestFirstAndScoped(t *testing.T) {
	env := newInviteEnv(t)
	ctx := context.Background()

	first := env.create(t, nil)
	env.clock = env.clock.Add(time.Minute)
	second := env.create(t, nil)

	listed, err := env.service.List(ctx, env.recruiter.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d invites, want 2", len(listed))
	}
	if listed[0].ID != second.Invite.ID || listed[1].ID != first.Invite.ID {
		t.Fatal("invites are not ordered newest sent_at first")
	}

	other, err := env.service.List(ctx, env.interviewee.ID)
	if err != nil {
		t.Fatalf("list for non-sender: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("non-sender sees %d invites, want 0", len(other))
	}
}

func TestGetVisibility(t *testing.T) {
	env := newInviteEnv(t)
	ctx := context.Background()
	outcome := env.create(t, nil)

	for _, actor := range []string{env.recruiter.ID, env.interviewee.ID} {
		if _, err := env.service.Get(ctx, actor, outcome.Invite.ID); err != nil {
			t.Fatalf("get as %s: %v", actor, err)
		}
	}

	stranger, err := env.users.Create(ctx, "Sam Stranger", "sam@example.com", "pw", models.RoleInterviewee)
	if err != nil {
		t.Fatalf("create stranger: %v", err)
	}
	_, err = env.service.Get(ctx, stranger.ID, outcome.Invite.ID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("err = %v, want Authorization for third party", err)
	}

	_, err = env.service.Get(ctx, env.recruiter.ID, uuid.NewString())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want NotFound for unknown invite", err)
	}
}

func TestCreateInviteNotificationFailureDoesNotSurface(t *testing.T) {
	// The sink contract is fire-and-forget; this exercises the service with a
	// sink that drops everything.
	env := newInviteEnv(t)
	env.service = NewService(env.invites, env.users, env.assessments, dropSink{}, env.mailer,
		"http://localhost:5173/invites/accept?token=%s", zerolog.Nop())
	env.service.Now = func() time.Time { return env.clock }

	if _, err := env.service.Create(context.Background(), CreateParams{
		RecruiterID:      env.recruiter.ID,
		AssessmentID:     env.assessment.ID,
		IntervieweeEmail: env.interviewee.Email,
	}); err != nil {
		t.Fatalf("create with dropping sink: %v", err)
	}
}

type dropSink struct{}

func (dropSink) Emit(context.Context, string, string, *string) {}
