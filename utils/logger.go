package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	session   *discordgo.Session
	channelID string
)

// SetupLogging configures the global zerolog logger for console output.
func SetupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().Timestamp().Logger()
}

// InitLogger initializes the logger with a Discord session.
func InitLogger(s *discordgo.Session) {
	session = s
	channelID = viper.GetString("bot.adminChannelId")
	if channelID == "" {
		log.Warn().Msg("bot.adminChannelId is not set. Logging to channel will be disabled.")
	}
}

// Log writes the entry to zerolog and mirrors it to the admin channel when one is configured.
func Log(level, module, operation, details string) {
	event := log.Info()
	color := ColorInfo
	switch level {
	case "WARN":
		event, color = log.Warn(), ColorWarn
	case "ERROR":
		event, color = log.Error(), ColorError
	}
	event.Str("module", module).Str("operation", operation).Msg(details)

	if session == nil || channelID == "" {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Module",
				Value:  module,
				Inline: true,
			},
			{
				Name:   "Operation",
				Value:  operation,
				Inline: true,
			},
			{
				Name:  "Details",
				Value: details,
			},
		},
	}

	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Error().Err(err).Msg("Error sending log message to Discord")
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
