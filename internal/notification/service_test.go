package notification

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

type fakeNotificationRepo struct {
	notifications map[string]models.Notification
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, userID, text string, assessmentID *string, at time.Time) (models.Notification, error) {
	if f.createErr != nil {
		return models.Notification{}, f.createErr
	}
	notif := models.Notification{
		ID:           uuid.NewString(),
		UserID:       userID,
		Text:         text,
		AssessmentID: assessmentID,
		CreatedAt:    at,
	}
	f.notifications[notif.ID] = notif
	return notif, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	var listed []models.Notification
	for _, notif := range f.notifications {
		if notif.UserID == userID {
			listed = append(listed, notif)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].CreatedAt.After(listed[j].CreatedAt) })
	return listed, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) (models.Notification, error) {
	notif, ok := f.notifications[notificationID]
	if !ok || notif.UserID != userID {
		return models.Notification{}, sql.ErrNoRows
	}
	notif.Read = true
	f.notifications[notificationID] = notif
	return notif, nil
}

func newTestService() (Service, *fakeNotificationRepo) {
	repo := &fakeNotificationRepo{notifications: map[string]models.Notification{}}
	return NewService(repo, zerolog.Nop()), repo
}

func TestEmitPersists(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.NewString()
	assessmentID := uuid.NewString()

	svc.Emit(context.Background(), userID, "You have been invited.", &assessmentID)

	if len(repo.notifications) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(repo.notifications))
	}
	for _, notif := range repo.notifications {
		if notif.UserID != userID || notif.Text != "You have been invited." {
			t.Fatalf("stored notification = %+v", notif)
		}
		if notif.Read {
			t.Fatal("fresh notification must be unread")
		}
	}
}

func TestEmitSwallowsFailures(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = errors.New("db down")

	// Must not panic and has no error channel to the caller.
	svc.Emit(context.Background(), uuid.NewString(), "text", nil)

	if len(repo.notifications) != 0 {
		t.Fatal("nothing should have been stored")
	}
}

func TestEmitIgnoresEmptyInput(t *testing.T) {
	svc, repo := newTestService()

	svc.Emit(context.Background(), "", "text", nil)
	svc.Emit(context.Background(), uuid.NewString(), "", nil)

	if len(repo.notifications) != 0 {
		t.Fatalf("stored %d notifications, want 0", len(repo.notifications))
	}
}

func TestMarkRead(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	userID := uuid.NewString()

	svc.Emit(ctx, userID, "hello", nil)
	var notifID string
	for id := range repo.notifications {
		notifID = id
	}

	marked, err := svc.MarkRead(ctx, userID, notifID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !marked.Read {
		t.Fatal("notification not marked read")
	}

	// Recipient-scoped: another user cannot mark it.
	_, err = svc.MarkRead(ctx, uuid.NewString(), notifID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("foreign mark err = %v, want NotFound", err)
	}

	_, err = svc.MarkRead(ctx, userID, uuid.NewString())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown id err = %v, want NotFound", err)
	}
}

func TestListForUserScoped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	svc.Emit(ctx, alice, "one", nil)
	svc.Emit(ctx, bob, "two", nil)

	listed, err := svc.ListForUser(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Text != "one" {
		t.Fatalf("listed = %+v, want only alice's notification", listed)
	}
}
