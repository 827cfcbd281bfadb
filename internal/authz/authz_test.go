package authz

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

func TestIdentityRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), "user-1", models.RoleRecruiter))

	uid, ok := UserIDFromRequest(req)
	if !ok || uid != "user-1" {
		t.Fatalf("user id = %q (%v), want user-1", uid, ok)
	}
	role, ok := RoleFromRequest(req)
	if !ok || role != models.RoleRecruiter {
		t.Fatalf("role = %q (%v), want recruiter", role, ok)
	}
}

func TestIdentityMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromRequest(req); ok {
		t.Fatal("unexpected user id on bare request")
	}
	if _, ok := RoleFromRequest(req); ok {
		t.Fatal("unexpected role on bare request")
	}

	// Invalid role is never stored.
	req = req.WithContext(WithIdentity(req.Context(), "user-1", models.UserRole("admin")))
	if _, ok := RoleFromRequest(req); ok {
		t.Fatal("invalid role must not round-trip")
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRoleHandler(models.RoleRecruiter, next)

	cases := []struct {
		name       string
		role       models.UserRole
		withRole   bool
		wantStatus int
	}{
		{"matching role", models.RoleRecruiter, true, http.StatusNoContent},
		{"wrong role", models.RoleInterviewee, true, http.StatusForbidden},
		{"no role", "", false, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.withRole {
				req = req.WithContext(WithIdentity(req.Context(), "user-1", tc.role))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

type staticUserLookup struct {
	user models.User
	err  error
}

func (s staticUserLookup) GetByID(context.Context, string) (models.User, error) {
	return s.user, s.err
}

func TestCheckRole(t *testing.T) {
	ctx := context.Background()

	recruiter := models.User{ID: "u1", Role: models.RoleRecruiter}
	if _, err := CheckRole(ctx, staticUserLookup{user: recruiter}, "u1", models.RoleRecruiter); err != nil {
		t.Fatalf("matching role: %v", err)
	}

	_, err := CheckRole(ctx, staticUserLookup{user: recruiter}, "u1", models.RoleInterviewee)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("wrong role err = %v, want Authorization", err)
	}

	_, err = CheckRole(ctx, staticUserLookup{err: sql.ErrNoRows}, "ghost", models.RoleRecruiter)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("unknown actor err = %v, want Authorization", err)
	}
}

func TestCheckAssessmentOwner(t *testing.T) {
	assessment := models.Assessment{ID: "a1", CreatorID: "owner"}
	if err := CheckAssessmentOwner(assessment, "owner"); err != nil {
		t.Fatalf("owner: %v", err)
	}
	err := CheckAssessmentOwner(assessment, "intruder")
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("non-owner err = %v, want Authorization", err)
	}
}
