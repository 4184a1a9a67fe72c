package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventconcierge/config"
	_ "eventconcierge/docs"
	"eventconcierge/internal/adapters/auth"
	"eventconcierge/internal/adapters/email"
	httpdelivery "eventconcierge/internal/delivery/http"
	"eventconcierge/internal/delivery/http/controllers"
	"eventconcierge/internal/delivery/http/middleware"
	"eventconcierge/internal/domain"
	"eventconcierge/internal/repository/postgres"
	"eventconcierge/internal/services"

	_ "github.com/lib/pq"
)

const serviceTimeout = 5 * time.Second

// @title EventConcierge API
// @version 1.0
// @description Event participation and concierge assignment backend: marketer membership, concierge approval workflow, attendee check-in, and invitations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	marketerRepo := postgres.NewEventMarketerRepository(db)
	participationRepo := postgres.NewUserParticipationRepository(db)
	requestRepo := postgres.NewConciergeRequestRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	}, logger)
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	hasher := auth.NewBcryptHasher(0)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, tokenIssuer, emailService, logger, cfg.JWTExpiry)
	userService := services.NewUserService(userRepo, serviceTimeout)
	eventService := services.NewEventService(eventRepo, marketerRepo, participationRepo, requestRepo, invitationRepo, userRepo, emailService, serviceTimeout)
	participationService := services.NewParticipationService(eventRepo, marketerRepo, participationRepo, roleRepo, serviceTimeout)
	reconciler := services.NewParticipationReconciler(marketerRepo, participationRepo, serviceTimeout)
	conciergeService := services.NewConciergeService(eventRepo, requestRepo, serviceTimeout)
	attendeeService := services.NewAttendeeService(eventRepo, attendeeRepo, requestRepo, logger, serviceTimeout)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService),
		User:          controllers.NewUserController(logger, userService, participationService),
		Event:         controllers.NewEventController(logger, eventService),
		Participation: controllers.NewParticipationController(logger, participationService, reconciler),
		Concierge:     controllers.NewConciergeController(logger, conciergeService),
		Attendee:      controllers.NewAttendeeController(logger, attendeeService),
	}, tokenVerifier, roleRepo, logger)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ReconcileInterval > 0 {
		go runReconcileLoop(ctx, reconciler, cfg.ReconcileInterval, logger)
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

// runReconcileLoop periodically repairs participation divergence until ctx is
// cancelled. The same pass is exposed to admins over HTTP.
func runReconcileLoop(ctx context.Context, reconciler domain.ParticipationReconciler, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := reconciler.Reconcile(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "reconciliation pass failed", "err", err)
				continue
			}
			if report.AddedUserSide > 0 || report.RemovedOrphaned > 0 {
				logger.InfoContext(ctx, "reconciliation repaired divergence",
					"added_user_side", report.AddedUserSide,
					"removed_orphaned", report.RemovedOrphaned)
			}
		}
	}
}
