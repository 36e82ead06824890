package handlers

import (
	"faction-oc-bot/bot"
	"faction-oc-bot/tracker"
	"faction-oc-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Register all handlers to the bot.
func Register(b *bot.Bot, t *tracker.Tracker) {
	auth, err := utils.NewAuth()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load command permissions, commands are unrestricted")
		auth = utils.NewAuthFromConfig(b.Settings.Commands.Auth)
	}

	prefix := viper.GetString("bot.prefix")
	if prefix == "" {
		prefix = "!" // Default prefix
	}

	b.Session.AddHandler(MessageCreate(NewRouter(t, prefix), auth, prefix))
	b.Session.AddHandler(InteractionCreate(t.Store()))
	b.Session.AddHandler(MessageReactionAdd(t))

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Msgf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
