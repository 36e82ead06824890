package command

import "github.com/bwmarrin/discordgo"

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}

// TallyCommand defines the structure for the /tally command.
type TallyCommand struct{}

// Definition returns the application command definition.
func (c *TallyCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "tally",
		Description: "Lists members with OC infractions",
	}
}
