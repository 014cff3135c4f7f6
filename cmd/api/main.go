// @title parkpack API
// @version 1.0
// @description Social client backend for dog-park visits: presences, play dates, votes, friendships, and park chat.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"parkpack/config"
	"parkpack/internal/adapters/auth"
	"parkpack/internal/adapters/email"
	delivery "parkpack/internal/delivery/http"
	"parkpack/internal/delivery/http/controllers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/realtime"
	"parkpack/internal/repository/postgres"
	"parkpack/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

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

	bridge := realtime.NewBridge(realtime.NewListener(cfg.DBUrl, logger), logger)
	defer bridge.Close()

	// Repositories
	presenceRepo := postgres.NewPresenceRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	friendshipRepo := postgres.NewFriendshipRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:        cfg.Email.Provider,
		FromAddress:     cfg.Email.FromAddress,
		FromName:        cfg.Email.FromName,
		Region:          cfg.Email.SESRegion,
		AccessKeyID:     cfg.Email.SESAccessKeyID,
		SecretAccessKey: cfg.Email.SESSecretKey,
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	presenceSvc := services.NewPresenceService(presenceRepo, profileRepo)
	eventSvc := services.NewEventService(eventRepo, rsvpRepo, invitationRepo, profileRepo, emailSvc, serviceTimeout)
	voteSvc := services.NewVoteService(voteRepo)
	friendshipSvc := services.NewFriendshipService(friendshipRepo)
	mediaSvc := services.NewMediaService(mediaRepo, voteSvc)
	messageSvc := services.NewMessageService(messageRepo)

	mux := delivery.NewRouter(delivery.Controllers{
		Presence:   controllers.NewPresenceController(logger, presenceSvc),
		Event:      controllers.NewEventController(logger, eventSvc),
		Vote:       controllers.NewVoteController(logger, voteSvc),
		Media:      controllers.NewMediaController(logger, mediaSvc),
		Friendship: controllers.NewFriendshipController(logger, friendshipSvc),
		Message:    controllers.NewMessageController(logger, messageSvc),
		WS:         delivery.NewWSHandler(logger, bridge, cfg.AllowedOrigins),
	}, middleware.RequireAuth(verifier))

	handler := middleware.RequestID(
		middleware.LoggingMiddleware(logger,
			middleware.CORS(cfg.AllowedOrigins, mux)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
