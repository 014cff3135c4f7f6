// Command watch tails one park from the terminal: roster, active play dates,
// photo tallies, and chat, kept current by the live views.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"parkpack/config"
	"parkpack/internal/adapters/email"
	"parkpack/internal/live"
	"parkpack/internal/realtime"
	"parkpack/internal/repository/postgres"
	"parkpack/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	locationID := flag.String("park", "", "park location id to watch")
	viewerID := flag.String("viewer", "", "profile id viewing the park")
	flag.Parse()
	if *locationID == "" || *viewerID == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	mailer, err := email.NewMailer(email.MailerConfig{Provider: "noop"})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	profileRepo := postgres.NewProfileRepository(db)
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())
	presenceSvc := services.NewPresenceService(postgres.NewPresenceRepository(db), profileRepo)
	eventSvc := services.NewEventService(postgres.NewEventRepository(db), postgres.NewRSVPRepository(db),
		postgres.NewEventInvitationRepository(db), profileRepo, emailSvc, serviceTimeout)
	voteSvc := services.NewVoteService(postgres.NewVoteRepository(db))
	mediaSvc := services.NewMediaService(postgres.NewMediaRepository(db), voteSvc)
	messageSvc := services.NewMessageService(postgres.NewMessageRepository(db))

	// The refresh tick is what notices expired play dates; expiration sends no
	// push on its own.
	opts := live.Options{RefreshInterval: cfg.RefreshInterval, Logger: logger}
	ctx := context.Background()

	roster, err := live.NewRosterView(ctx, presenceSvc, bridge, *locationID, opts)
	if err != nil {
		logger.Error("open roster view", "err", err)
		os.Exit(1)
	}
	defer roster.Close()

	events, err := live.NewEventListView(ctx, eventSvc, bridge, *locationID, opts)
	if err != nil {
		logger.Error("open event list view", "err", err)
		os.Exit(1)
	}
	defer events.Close()

	photos, err := live.NewPhotoFeedView(ctx, mediaSvc, voteSvc, bridge, *locationID, *viewerID, opts)
	if err != nil {
		logger.Error("open photo feed view", "err", err)
		os.Exit(1)
	}
	defer photos.Close()

	chat, err := live.NewMessagesView(ctx, messageSvc, bridge, *locationID, *viewerID, opts)
	if err != nil {
		logger.Error("open messages view", "err", err)
		os.Exit(1)
	}
	defer chat.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			printPark(*locationID, roster, events, photos, chat)
		case <-stop:
			logger.Info("stopping watch")
			return
		}
	}
}

func printPark(locationID string, roster *live.RosterView, events *live.EventListView, photos *live.PhotoFeedView, chat *live.MessagesView) {
	fmt.Printf("== %s @ %s ==\n", locationID, time.Now().Format(time.Kitchen))

	if entries, err := roster.Snapshot(); err != nil {
		fmt.Printf("roster unavailable: %v\n", err)
	} else {
		fmt.Printf("here now: %d\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %s (%d animals)\n", e.Profile.DisplayName, len(e.Animals))
		}
	}

	if active, err := events.Snapshot(); err != nil {
		fmt.Printf("play dates unavailable: %v\n", err)
	} else {
		for _, ev := range active {
			fmt.Printf("play date: %s at %s\n", ev.Title, ev.StartsAt.Format(time.Kitchen))
		}
	}

	if items, err := photos.Snapshot(); err != nil {
		fmt.Printf("photos unavailable: %v\n", err)
	} else {
		for _, p := range items {
			fmt.Printf("photo %s: %d votes\n", p.Photo.ID, p.Tally.Count)
		}
	}

	if msgs, err := chat.Snapshot(); err != nil {
		fmt.Printf("chat unavailable: %v\n", err)
	} else if n := len(msgs); n > 0 {
		last := msgs[n-1]
		fmt.Printf("last message: %s\n", last.Body)
	}
}
