package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"faction-oc-bot/database"
	"faction-oc-bot/models"

	"github.com/bwmarrin/discordgo"
)

func openStore(t *testing.T) database.Store {
	t.Helper()
	store, err := database.OpenBolt(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetAPIKeyPersists(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if got := SetAPIKey(ctx, store, "abc123"); got != "Torn API key saved successfully." {
		t.Fatalf("SetAPIKey() = %q", got)
	}
	value, ok, err := store.GetConfig(ctx, models.KeyTornAPIKey)
	if err != nil || !ok || value != "abc123" {
		t.Fatalf("GetConfig(torn_api_key) = %q, %v, %v", value, ok, err)
	}
}

func TestSetChannelPersists(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	want := "Channel set to <#123456789012345678> for updates."
	if got := SetChannel(ctx, store, "123456789012345678"); got != want {
		t.Fatalf("SetChannel() = %q, want %q", got, want)
	}
	value, _, _ := store.GetConfig(ctx, models.KeyUpdateChannel)
	if value != "123456789012345678" {
		t.Fatalf("update_channel = %q", value)
	}
}

func TestTallyReport(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if got := TallyReport(ctx, store); got != "No infractions recorded." {
		t.Fatalf("TallyReport(empty) = %q", got)
	}

	for _, m := range []models.Member{
		{ID: 1, Name: "carol"},
		{ID: 2, Name: "alice"},
		{ID: 3, Name: "bob"},
		{ID: 4, Name: "dave"},
	} {
		if err := store.UpsertMember(ctx, m); err != nil {
			t.Fatalf("UpsertMember(%d) error = %v", m.ID, err)
		}
	}
	for id, by := range map[int64]int{1: 1, 2: 3, 3: 1} {
		if err := store.IncrementInfractions(ctx, id, by); err != nil {
			t.Fatalf("IncrementInfractions(%d) error = %v", id, err)
		}
	}

	want := "**Infraction Tally**\n• alice: 3\n• bob: 1\n• carol: 1"
	if got := TallyReport(ctx, store); got != want {
		t.Fatalf("TallyReport() = %q, want %q", got, want)
	}
}

func TestCountsAsVote(t *testing.T) {
	reaction := func(userID string, member *discordgo.Member) *discordgo.MessageReactionAdd {
		return &discordgo.MessageReactionAdd{
			MessageReaction: &discordgo.MessageReaction{UserID: userID, MessageID: "m1"},
			Member:          member,
		}
	}
	tests := []struct {
		name string
		r    *discordgo.MessageReactionAdd
		want bool
	}{
		{"member", reaction("u1", &discordgo.Member{User: &discordgo.User{ID: "u1"}}), true},
		{"no_member", reaction("u1", nil), true},
		{"self", reaction("bot", nil), false},
		{"other_bot", reaction("u2", &discordgo.Member{User: &discordgo.User{ID: "u2", Bot: true}}), false},
		{"empty", &discordgo.MessageReactionAdd{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsAsVote("bot", tt.r); got != tt.want {
				t.Fatalf("countsAsVote() = %v, want %v", got, tt.want)
			}
		})
	}
}
