package tracker

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Messenger is the chat surface the update cycle writes to.
type Messenger interface {
	// Send posts content and returns the new message id.
	Send(ctx context.Context, channelID, content string) (string, error)
	// Edit replaces the content of an existing message. It fails if the message is gone.
	Edit(ctx context.Context, channelID, messageID, content string) error
	Delete(ctx context.Context, channelID, messageID string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// DiscordMessenger implements Messenger over a discordgo session.
type DiscordMessenger struct {
	Session *discordgo.Session
}

func (d DiscordMessenger) Send(ctx context.Context, channelID, content string) (string, error) {
	msg, err := d.Session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (d DiscordMessenger) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := d.Session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return err
}

func (d DiscordMessenger) Delete(ctx context.Context, channelID, messageID string) error {
	return d.Session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d DiscordMessenger) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.Session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}
