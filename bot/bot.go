package bot

import (
	"fmt"

	"faction-oc-bot/command"
	"faction-oc-bot/models"
	"faction-oc-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Settings models.Settings
	Commands map[string]command.Command

	scheduler *cron.Cron
}

// NewBot creates and initializes a new Bot instance.
func NewBot(settings models.Settings) (*Bot, error) {
	if settings.BotToken == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + settings.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions

	return &Bot{
		Session:  dg,
		Settings: settings,
		Commands: make(map[string]command.Command),
	}, nil
}

// RegisterCommands registers the provided commands.
func (b *Bot) RegisterCommands(commands []command.Command) {
	for _, cmd := range commands {
		b.Commands[cmd.Definition().Name] = cmd
	}
}

// Start registers handlers, opens the session, publishes the slash commands and starts the jobs.
func (b *Bot) Start(registerHandlers func(*Bot), jobs []Job) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session)

	// Register slash commands
	for _, cmd := range b.Commands {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd.Definition()); err != nil {
			log.Error().Err(err).Str("command", cmd.Definition().Name).Msg("Cannot create command")
		}
	}

	scheduler, err := startScheduler(jobs)
	if err != nil {
		b.Session.Close()
		return err
	}
	b.scheduler = scheduler

	log.Info().Msg("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session after running jobs finish.
func (b *Bot) Stop() {
	stopScheduler(b.scheduler)
	if b.Session != nil {
		b.Session.Close()
	}
	log.Info().Msg("Bot stopped gracefully.")
}
