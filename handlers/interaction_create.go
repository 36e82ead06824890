package handlers

import (
	"context"

	"faction-oc-bot/database"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// InteractionCreate handles slash command interactions.
func InteractionCreate(store database.Store) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand {
			CommandDispatcher(s, i, store)
		}
	}
}

// CommandDispatcher is the central handler for all application command interactions.
func CommandDispatcher(s *discordgo.Session, i *discordgo.InteractionCreate, store database.Store) {
	switch i.ApplicationCommandData().Name {
	case "ping":
		HandlePing(s, i)
	case "tally":
		HandleTally(s, i, store)
	default:
		respond(s, i, "🚫 Unknown command.", discordgo.MessageFlagsEphemeral)
	}
}

// HandlePing handles the logic for the /ping command.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, "Pong!", 0)
}

// HandleTally handles the logic for the /tally command.
func HandleTally(s *discordgo.Session, i *discordgo.InteractionCreate, store database.Store) {
	respond(s, i, TallyReport(context.Background(), store), 0)
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, flags discordgo.MessageFlags) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("command", i.ApplicationCommandData().Name).Msg("Failed to respond to interaction")
	}
}
