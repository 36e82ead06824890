package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faction-oc-bot/bot"
	"faction-oc-bot/clock"
	"faction-oc-bot/command"
	"faction-oc-bot/config"
	"faction-oc-bot/database"
	"faction-oc-bot/handlers"
	"faction-oc-bot/health"
	"faction-oc-bot/torn"
	"faction-oc-bot/tracker"
	"faction-oc-bot/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	utils.SetupLogging(settings.Log.Level)

	b, err := bot.NewBot(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing bot. Please set BOT_TOKEN in your .env or config file.")
	}

	store, err := database.Open(settings.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}

	t := tracker.New(
		store,
		torn.NewClient(settings.Torn.BaseURL, settings.Torn.Timeout),
		tracker.DiscordMessenger{Session: b.Session},
		clock.Real(),
		tracker.Options{
			DefaultAPIKey: settings.TornAPIKey,
			Policy: tracker.Policy{
				AlertThreshold: settings.Tracker.AlertThreshold,
				AlertCooldown:  settings.Tracker.AlertCooldown,
			},
			ReactionWindow: settings.Tracker.ReactionWindow,
			AlertMention:   settings.Tracker.AlertMention,
		},
	)

	jobs := []bot.Job{
		{
			Name:     "oc-update",
			Schedule: settings.Tracker.Schedule,
			Run:      func() { t.RunCycle(context.Background()) },
		},
		{
			Name:     "alert-cleanup",
			Schedule: settings.Cleanup.Schedule,
			Run: func() {
				database.CleanupExpiredAlerts(context.Background(), store, time.Now(), settings.Tracker.AlertCooldown)
			},
		},
	}

	b.RegisterCommands(command.AllCommands)
	if err := b.Start(func(b *bot.Bot) { handlers.Register(b, t) }, jobs); err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("Error starting bot")
	}

	var healthServer *health.Server
	if settings.Health.Addr != "" {
		healthServer = health.Start(settings.Health.Addr, t)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if healthServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := healthServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Health server shutdown failed")
		}
		cancel()
	}
	b.Stop()
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}
