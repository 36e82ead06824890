package handlers

import (
	"faction-oc-bot/tracker"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// MessageReactionAdd routes reactions on open OC alerts to the tracker.
func MessageReactionAdd(t *tracker.Tracker) func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		selfID := ""
		if s.State != nil && s.State.User != nil {
			selfID = s.State.User.ID
		}
		if !countsAsVote(selfID, r) {
			return
		}
		if t.HandleReaction(r.MessageID, r.Emoji.Name) {
			log.Info().Str("user", r.UserID).Str("alert", r.MessageID).Str("emoji", r.Emoji.Name).Msg("OC alert answered")
		}
	}
}

// countsAsVote filters out the bot's own reactions and those of other bots.
func countsAsVote(selfID string, r *discordgo.MessageReactionAdd) bool {
	if r.MessageReaction == nil || r.UserID == selfID {
		return false
	}
	return r.Member == nil || r.Member.User == nil || !r.Member.User.Bot
}
