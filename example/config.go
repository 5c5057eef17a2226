package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koba789/gqldecorator/internal/logging"
)

// Config holds the settings shared by the commands. Values come from flags,
// then GQLDECORATOR_* environment variables, then the defaults.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Format   string `mapstructure:"format"`
	Seed     bool   `mapstructure:"seed"`
}

var flagKeys = map[string]string{
	"log-level": "log_level",
	"format":    "format",
	"seed":      "seed",
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "warn")
	v.SetDefault("format", "sdl")
	v.SetDefault("seed", true)

	v.SetEnvPrefix("GQLDECORATOR")
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validateConfig(config *Config) error {
	if _, err := zerolog.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	switch config.Format {
	case "sdl", "json":
	default:
		return fmt.Errorf("invalid format %q: expected sdl or json", config.Format)
	}
	return nil
}

// setupLogging routes library logs to stderr at the configured level.
func setupLogging(config *Config) {
	level, _ := zerolog.ParseLevel(config.LogLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	logging.SetGlobalLogger(logger)
}
