package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/config"
	"github.com/smart-recruiter/assessment-api/internal/grading"
	"github.com/smart-recruiter/assessment-api/internal/handlers"
	"github.com/smart-recruiter/assessment-api/internal/invites"
	"github.com/smart-recruiter/assessment-api/internal/middleware"
	"github.com/smart-recruiter/assessment-api/internal/migration"
	"github.com/smart-recruiter/assessment-api/internal/notification"
	"github.com/smart-recruiter/assessment-api/internal/repository"
	"github.com/smart-recruiter/assessment-api/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	logger        zerolog.Logger
	notifications notification.Service
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	gooseAdapter := migration.NewGooseAdapter(logger)
	goose.SetLogger(gooseAdapter)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Initialize notification service.
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := notification.NewService(notificationRepo, logger)

	// Create the application instance.
	app := &application{
		config:        cfg,
		db:            db,
		logger:        logger,
		notifications: notificationService,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{cfg.FrontendOrigin}),
		h.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	userRepo := repository.NewUserRepository(app.db)
	assessmentRepo := repository.NewAssessmentRepository(app.db)
	questionRepo := repository.NewQuestionRepository(app.db)
	inviteRepo := repository.NewInviteRepository(app.db)
	submissionRepo := repository.NewSubmissionRepository(app.db)
	resultRepo := repository.NewResultRepository(app.db)

	// Mailer for invites. Best-effort: a nil mailer means invites are
	// created without email delivery.
	var mailer notification.Mailer
	if app.config.Email.Enabled {
		smtpMailer, err := notification.NewSMTPMailer(app.config.Email)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure invite mailer")
		}
		mailer = smtpMailer
	}

	// Core services
	inviteService := invites.NewService(inviteRepo, userRepo, assessmentRepo, app.notifications, mailer, app.config.Email.InviteURLTemplate, logger)
	gradingService := grading.NewService(submissionRepo, resultRepo, userRepo, assessmentRepo, app.notifications, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, app.config.JWTSecret, logger)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentRepo, logger)
	questionHandler := handlers.NewQuestionHandler(questionRepo, assessmentRepo, logger)
	inviteHandler := handlers.NewInviteHandler(inviteService, logger)
	submissionHandler := handlers.NewSubmissionHandler(gradingService, logger)
	resultHandler := handlers.NewResultHandler(gradingService, logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, logger)

	return routes.NewRouter(authHandler, assessmentHandler, questionHandler, inviteHandler, submissionHandler, resultHandler, notificationHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
