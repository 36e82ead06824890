package models

import "time"

// Configuration store keys.
const (
	KeyTornAPIKey    = "torn_api_key"
	KeyUpdateChannel = "update_channel"
	KeyUpdateMessage = "update_message"
)

// ConfigEntry is a single row of the key/value configuration table.
type ConfigEntry struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Settings is the process configuration assembled from .env, config.yaml and the environment.
type Settings struct {
	BotToken   string         `mapstructure:"bot_token"`
	TornAPIKey string         `mapstructure:"torn_api_key"`
	Bot        BotConfig      `mapstructure:"bot"`
	Torn       TornConfig     `mapstructure:"torn"`
	Database   DatabaseConfig `mapstructure:"database"`
	Tracker    TrackerConfig  `mapstructure:"tracker"`
	Cleanup    CleanupConfig  `mapstructure:"cleanup"`
	Commands   CommandsConfig `mapstructure:"commands"`
	Health     HealthConfig   `mapstructure:"health"`
	Log        LogConfig      `mapstructure:"log"`
}

// BotConfig holds the Discord-facing settings.
type BotConfig struct {
	Prefix         string `mapstructure:"prefix"`
	AdminChannelID string `mapstructure:"adminchannelid"`
}

// TornConfig holds the Torn API client settings.
type TornConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig selects and locates the persistent store.
// Driver is one of "sqlite", "postgres" or "bolt".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// TrackerConfig tunes the update cycle.
type TrackerConfig struct {
	Schedule       string        `mapstructure:"schedule"`
	AlertThreshold time.Duration `mapstructure:"alert_threshold"`
	AlertCooldown  time.Duration `mapstructure:"alert_cooldown"`
	ReactionWindow time.Duration `mapstructure:"reaction_window"`
	AlertMention   string        `mapstructure:"alert_mention"`
}

// CleanupConfig schedules pruning of expired alert records.
type CleanupConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// CommandsConfig restricts who may run the configuration commands.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig lists developer user ids and admin role ids.
// When both are empty every guild member may run commands.
type AuthConfig struct {
	Developers  []string `mapstructure:"developers"`
	AdminsRoles []string `mapstructure:"admin_roles"`
}

// HealthConfig enables the HTTP health endpoint when Addr is set.
type HealthConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig sets the zerolog level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}
