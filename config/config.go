package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"faction-oc-bot/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration into the global viper instance from, in order:
// 1. the .env file (as environment variables)
// 2. config.yaml in the working directory
// Environment variables override values from the file.
func LoadConfig() {
	// 1. Load .env into the environment; a missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, skipping.")
	}

	setDefaults(viper.GetViper())

	// 2. Read the base config file (config.yaml).
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = viper.BindEnv("bot_token", "BOT_TOKEN")
	_ = viper.BindEnv("torn_api_key", "TORN_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Msg("No config.yaml found, using environment variables and defaults.")
		} else {
			// A config file that exists but does not parse is fatal.
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}
}

// Load runs LoadConfig and decodes the result into Settings.
func Load() (models.Settings, error) {
	LoadConfig()
	return Decode(viper.GetViper())
}

// Decode unmarshals v into Settings.
func Decode(v *viper.Viper) (models.Settings, error) {
	var settings models.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("torn_api_key", "")
	v.SetDefault("bot.prefix", "!")
	v.SetDefault("bot.adminChannelId", "")
	v.SetDefault("torn.base_url", "https://api.torn.com")
	v.SetDefault("torn.timeout", 15*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/botdata.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("tracker.schedule", "* * * * *")
	v.SetDefault("tracker.alert_threshold", 24*time.Hour)
	v.SetDefault("tracker.alert_cooldown", 24*time.Hour)
	v.SetDefault("tracker.reaction_window", 5*time.Minute)
	v.SetDefault("tracker.alert_mention", "<@&everyone>")
	v.SetDefault("cleanup.schedule", "@daily")
	v.SetDefault("commands.auth.developers", []string{})
	v.SetDefault("commands.auth.admin_roles", []string{})
	v.SetDefault("health.addr", "")
	v.SetDefault("log.level", "info")
}
