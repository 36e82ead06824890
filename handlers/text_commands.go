package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"faction-oc-bot/database"
	"faction-oc-bot/models"
	"faction-oc-bot/tracker"
	"faction-oc-bot/utils"

	"github.com/Necroforger/dgrouter/exrouter"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	cmdForceUpdate = "forceupdate"
	cmdSetAPIKey   = "setapikey"
	cmdSetChannel  = "setchannel"
)

const permissionDenied = "🚫 You do not have permission to run this command."

var (
	apiKeyPattern         = regexp.MustCompile(`^\s+([a-zA-Z0-9]+)$`)
	channelMentionPattern = regexp.MustCompile(`<#(\d+)>`)
	channelIDPattern      = regexp.MustCompile(`^\s+(\d+)\s*$`)
)

// commandName returns the word following prefix, or "" when content is not a command.
func commandName(prefix, content string) string {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsForceUpdate reports whether content is exactly the force update command.
func IsForceUpdate(prefix, content string) bool {
	return strings.TrimSpace(content) == prefix+cmdForceUpdate
}

// ParseSetAPIKey extracts the key from "<prefix>setapikey <APIKEY>". The key must be alphanumeric
// and the only argument.
func ParseSetAPIKey(prefix, content string) (string, bool) {
	rest, ok := strings.CutPrefix(content, prefix+cmdSetAPIKey)
	if !ok {
		return "", false
	}
	match := apiKeyPattern.FindStringSubmatch(rest)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ParseSetChannel extracts a channel id from "<prefix>setchannel <#id>" or "<prefix>setchannel id".
func ParseSetChannel(prefix, content string) (string, bool) {
	rest, ok := strings.CutPrefix(content, prefix+cmdSetChannel)
	if !ok {
		return "", false
	}
	if match := channelMentionPattern.FindStringSubmatch(rest); match != nil {
		return match[1], true
	}
	if match := channelIDPattern.FindStringSubmatch(rest); match != nil {
		return match[1], true
	}
	return "", false
}

// SetAPIKey persists the Torn API key and returns the reply text.
func SetAPIKey(ctx context.Context, store database.Store, apiKey string) string {
	if err := store.SetConfig(ctx, models.KeyTornAPIKey, apiKey); err != nil {
		log.Error().Err(err).Msg("Failed to save API key")
		return "Failed to save API key."
	}
	utils.Info("Commands", "setapikey", "Torn API key updated")
	return "Torn API key saved successfully."
}

// SetChannel persists the update channel and returns the reply text.
func SetChannel(ctx context.Context, store database.Store, channelID string) string {
	if err := store.SetConfig(ctx, models.KeyUpdateChannel, channelID); err != nil {
		log.Error().Err(err).Msg("Failed to save channel")
		return "Failed to save channel."
	}
	utils.Info("Commands", "setchannel", fmt.Sprintf("Update channel set to %s", channelID))
	return fmt.Sprintf("Channel set to <#%s> for updates.", channelID)
}

// NewRouter builds the text command router.
func NewRouter(t *tracker.Tracker, prefix string) *exrouter.Route {
	router := exrouter.New()

	router.On(cmdForceUpdate, func(ctx *exrouter.Context) {
		if !IsForceUpdate(prefix, ctx.Msg.Content) {
			return
		}
		outcome := t.RunCycle(context.Background())
		log.Info().Str("user", ctx.Msg.Author.ID).Str("outcome", string(outcome)).Msg("Forced OC update")
		if err := ctx.Ses.ChannelMessageDelete(ctx.Msg.ChannelID, ctx.Msg.ID); err != nil {
			log.Debug().Err(err).Msg("Could not delete forceupdate message")
		}
	}).Desc("Run the OC update now")

	router.On(cmdSetAPIKey, func(ctx *exrouter.Context) {
		apiKey, ok := ParseSetAPIKey(prefix, ctx.Msg.Content)
		if !ok {
			reply(ctx, "Usage: "+prefix+cmdSetAPIKey+" <APIKEY>")
			return
		}
		reply(ctx, SetAPIKey(context.Background(), t.Store(), apiKey))
	}).Desc("Set the Torn API key")

	router.On(cmdSetChannel, func(ctx *exrouter.Context) {
		channelID, ok := ParseSetChannel(prefix, ctx.Msg.Content)
		if !ok {
			reply(ctx, "Please mention a channel, e.g. `"+prefix+cmdSetChannel+" #channel-name`")
			return
		}
		reply(ctx, SetChannel(context.Background(), t.Store(), channelID))
	}).Desc("Set the channel for OC updates")

	return router
}

func reply(ctx *exrouter.Context, content string) {
	if _, err := ctx.Ses.ChannelMessageSendReply(ctx.Msg.ChannelID, content, ctx.Msg.Reference()); err != nil {
		log.Error().Err(err).Str("channel", ctx.Msg.ChannelID).Msg("Failed to reply to command")
	}
}

// MessageCreate will be called every time a new message is created on any channel that the authenticated bot has access to.
func MessageCreate(router *exrouter.Route, auth *utils.Auth, prefix string) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore bots, the bot itself and direct messages.
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}

		switch commandName(prefix, m.Content) {
		case cmdForceUpdate, cmdSetAPIKey, cmdSetChannel:
		default:
			return
		}

		if !auth.CanConfigure(m.Message) {
			if _, err := s.ChannelMessageSendReply(m.ChannelID, permissionDenied, m.Reference()); err != nil {
				log.Error().Err(err).Msg("Failed to send permission denied reply")
			}
			return
		}

		if err := router.FindAndExecute(s, prefix, s.State.User.ID, m.Message); err != nil {
			log.Debug().Err(err).Str("content", m.Content).Msg("No route for command")
		}
	}
}
