package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/handlers"
	"github.com/smart-recruiter/assessment-api/internal/models"
)

// NewRouter sets up the API routes.
func NewRouter(
	auth *handlers.AuthHandler,
	assessment *handlers.AssessmentHandler,
	question *handlers.QuestionHandler,
	invite *handlers.InviteHandler,
	submission *handlers.SubmissionHandler,
	result *handlers.ResultHandler,
	notification *handlers.NotificationHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/login", auth.Login).Methods(http.MethodPost)

	// Everything below requires a bearer token.
	api := router.NewRoute().Subrouter()
	api.Use(auth.JWTMiddleware)

	recruiter := func(h http.HandlerFunc) http.Handler {
		return authz.RequireRoleHandler(models.RoleRecruiter, h)
	}
	interviewee := func(h http.HandlerFunc) http.Handler {
		return authz.RequireRoleHandler(models.RoleInterviewee, h)
	}

	// Invitation engine
	api.Handle("/invites", recruiter(invite.Create)).Methods(http.MethodPost)
	api.Handle("/invites", recruiter(invite.List)).Methods(http.MethodGet)
	api.HandleFunc("/invites/{inviteID}", invite.Get).Methods(http.MethodGet)
	api.Handle("/invites/accept/{token}", interviewee(invite.Accept)).Methods(http.MethodPatch)

	// Submission and grading pipeline
	api.Handle("/submissions", interviewee(submission.Create)).Methods(http.MethodPost)
	api.Handle("/submissions", recruiter(submission.List)).Methods(http.MethodGet)
	api.Handle("/submissions/{submissionID}", recruiter(submission.Grade)).Methods(http.MethodPatch)
	api.Handle("/results", recruiter(result.Upsert)).Methods(http.MethodPost)
	api.Handle("/results/{resultID}/release", recruiter(result.Release)).Methods(http.MethodPatch)
	api.Handle("/interviewee/results", interviewee(result.ListReleased)).Methods(http.MethodGet)
	api.Handle("/interviewee-rankings", recruiter(result.Ranking)).Methods(http.MethodGet)

	// Notifications
	api.HandleFunc("/notifications", notification.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}", notification.MarkRead).Methods(http.MethodPatch)

	// Assessment catalog
	api.Handle("/assessments", recruiter(assessment.Create)).Methods(http.MethodPost)
	api.HandleFunc("/assessments", assessment.List).Methods(http.MethodGet)
	api.HandleFunc("/assessments/{assessmentID}", assessment.Get).Methods(http.MethodGet)
	api.Handle("/assessments/{assessmentID}", recruiter(assessment.Update)).Methods(http.MethodPatch)
	api.Handle("/assessments/{assessmentID}", recruiter(assessment.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/assessments/{assessmentID}/questions", question.ListByAssessment).Methods(http.MethodGet)
	api.Handle("/assessments/{assessmentID}/questions", recruiter(question.Create)).Methods(http.MethodPost)
	api.HandleFunc("/questions/{questionID}", question.Get).Methods(http.MethodGet)
	api.Handle("/questions/{questionID}", recruiter(question.Update)).Methods(http.MethodPatch)
	api.Handle("/questions/{questionID}", recruiter(question.Delete)).Methods(http.MethodDelete)

	return router
}
