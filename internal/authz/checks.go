package authz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/smart-recruiter/assessment-api/internal/apperr"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

// UserLookup is the slice of the user repository the capability checks need.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

// CheckRole verifies that the actor exists and holds the required role.
// Every service operation calls this (or CheckAssessmentOwner) before
// touching any state.
func CheckRole(ctx context.Context, users UserLookup, actorID string, required models.UserRole) (models.User, error) {
	user, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.Authorization("unknown actor")
		}
		return models.User{}, err
	}
	if user.Role != required {
		return models.User{}, apperr.Authorization("operation requires role %q", required)
	}
	return user, nil
}

// CheckAssessmentOwner verifies that the actor created the assessment.
func CheckAssessmentOwner(assessment models.Assessment, actorID string) error {
	if assessment.CreatorID != actorID {
		return apperr.Authorization("assessment is not owned by actor")
	}
	return nil
}
