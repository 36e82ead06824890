package utils

import (
	"slices"

	"faction-oc-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.AuthConfig
}

// NewAuth creates a new Auth instance from the commands.auth configuration.
func NewAuth() (*Auth, error) {
	var commandsConfig models.CommandsConfig
	if err := viper.UnmarshalKey("commands", &commandsConfig); err != nil {
		return nil, err
	}
	return NewAuthFromConfig(commandsConfig.Auth), nil
}

// NewAuthFromConfig builds an Auth from an already loaded configuration.
func NewAuthFromConfig(cfg models.AuthConfig) *Auth {
	return &Auth{config: cfg}
}

// Restricted reports whether any developer or admin role is configured.
// An unrestricted bot lets every guild member run commands.
func (a *Auth) Restricted() bool {
	return len(a.config.Developers) > 0 || len(a.config.AdminsRoles) > 0
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	return slices.Contains(a.config.Developers, userID)
}

// IsAdmin checks if a member holds an admin role.
func (a *Auth) IsAdmin(roles []string) bool {
	for _, adminRoleID := range a.config.AdminsRoles {
		if slices.Contains(roles, adminRoleID) {
			return true
		}
	}
	return false
}

// CanConfigure checks whether the author of a message may run the configuration commands.
func (a *Auth) CanConfigure(m *discordgo.Message) bool {
	if !a.Restricted() {
		return true
	}
	if m.Author != nil && a.IsDeveloper(m.Author.ID) {
		return true
	}
	return m.Member != nil && a.IsAdmin(m.Member.Roles)
}
