package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	settings, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if settings.Bot.Prefix != "!" {
		t.Fatalf("Bot.Prefix = %q, want \"!\"", settings.Bot.Prefix)
	}
	if settings.Database.Driver != "sqlite" {
		t.Fatalf("Database.Driver = %q, want sqlite", settings.Database.Driver)
	}
	if settings.Tracker.Schedule != "* * * * *" {
		t.Fatalf("Tracker.Schedule = %q, want every minute", settings.Tracker.Schedule)
	}
	if settings.Tracker.AlertThreshold != 24*time.Hour || settings.Tracker.AlertCooldown != 24*time.Hour {
		t.Fatalf("alert threshold/cooldown = %v/%v, want 24h/24h", settings.Tracker.AlertThreshold, settings.Tracker.AlertCooldown)
	}
	if settings.Tracker.ReactionWindow != 5*time.Minute {
		t.Fatalf("Tracker.ReactionWindow = %v, want 5m", settings.Tracker.ReactionWindow)
	}
	if settings.Tracker.AlertMention != "<@&everyone>" {
		t.Fatalf("Tracker.AlertMention = %q", settings.Tracker.AlertMention)
	}
}

func TestDecodeOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("tracker.reaction_window", "90s")
	v.Set("bot.adminChannelId", "555")
	v.Set("commands.auth.developers", []string{"1", "2"})

	settings, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if settings.Tracker.ReactionWindow != 90*time.Second {
		t.Fatalf("Tracker.ReactionWindow = %v, want 90s", settings.Tracker.ReactionWindow)
	}
	if settings.Bot.AdminChannelID != "555" {
		t.Fatalf("Bot.AdminChannelID = %q, want 555", settings.Bot.AdminChannelID)
	}
	if len(settings.Commands.Auth.Developers) != 2 {
		t.Fatalf("Developers = %v, want 2 entries", settings.Commands.Auth.Developers)
	}
}
