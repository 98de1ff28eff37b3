// Package config provides Viper-based configuration loading for the game hub.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP/WebSocket listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// AllowedOrigins is the CORS allow-list; "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr returns the "host:port" listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds the round and turn timing rules shared by the room managers.
type GameConfig struct {
	// TurnTimeout is how long the current player may hold a turn before it is
	// forfeited. Only variants with timed turns use it.
	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
	// AutoNextDelay is the pause between a finished round and the automatic
	// start of the next one.
	AutoNextDelay time.Duration `mapstructure:"auto_next_delay"`
}

// ChatConfig holds chat sub-channel settings.
type ChatConfig struct {
	// HistoryLimit caps the per-room message log; the oldest entry is evicted
	// once the cap is exceeded.
	HistoryLimit int `mapstructure:"history_limit"`
}

// MaintenanceConfig holds the periodic activity reporter settings.
type MaintenanceConfig struct {
	// ReportSchedule is a cron spec for the activity report job.
	ReportSchedule string `mapstructure:"report_schedule"`
}

// Config is the root configuration object.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Game        GameConfig        `mapstructure:"game"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("game.turn_timeout", 30*time.Second)
	v.SetDefault("game.auto_next_delay", 3*time.Second)
	v.SetDefault("chat.history_limit", 50)
	v.SetDefault("maintenance.report_schedule", "@every 1m")
}

// Load reads configuration from the optional file at path (YAML), falling back
// to defaults, with GAMEHUB_* environment variables taking precedence.
//
// An empty path skips the file lookup entirely.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GAMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config %q: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	if c.Game.TurnTimeout < 0 {
		return fmt.Errorf("game.turn_timeout must not be negative")
	}
	if c.Game.AutoNextDelay <= 0 {
		return fmt.Errorf("game.auto_next_delay must be positive")
	}
	if c.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat.history_limit must be positive")
	}
	if c.Maintenance.ReportSchedule == "" {
		return fmt.Errorf("maintenance.report_schedule must not be empty")
	}
	return nil
}
