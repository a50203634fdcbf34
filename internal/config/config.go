// Package config loads server configuration from a YAML file with sane
// defaults, plus a small set of environment overrides for secrets.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "5s" or "2m", or from bare integers taken as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var secs int64
	if err := node.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", node.Value)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	World    WorldConfig    `yaml:"world"`
	Features FeaturesConfig `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig covers the HTTP listener and admin auth.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"`
}

// WorldConfig covers the simulation clock, generation, and storage.
type WorldConfig struct {
	Seed         int64    `yaml:"seed"`
	DBPath       string   `yaml:"db_path"`
	TickInterval Duration `yaml:"tick_interval"`
	SaveInterval Duration `yaml:"save_interval"`
	DayLength    int64    `yaml:"day_length"`
	NightLength  int64    `yaml:"night_length"`
}

// FeaturesConfig toggles optional simulation mechanics.
type FeaturesConfig struct {
	Zones     bool `yaml:"zones"`
	Energy    bool `yaml:"energy"`
	Fatigue   bool `yaml:"fatigue"`
	ExamineXP bool `yaml:"examine_xp"`
}

// LoggingConfig covers log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		World: WorldConfig{
			DBPath:       "emberwood.db",
			TickInterval: Duration(5 * time.Second),
			SaveInterval: Duration(30 * time.Second),
			DayLength:    100,
			NightLength:  50,
		},
		Features: FeaturesConfig{
			Zones:   true,
			Energy:  true,
			Fatigue: true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file at path, falling back to defaults if the
// file does not exist. Environment variables override secrets last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Info("no config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv("EMBERWOOD_ADMIN_KEY"); key != "" {
		cfg.Server.AdminKey = key
	}
	if db := os.Getenv("EMBERWOOD_DB"); db != "" {
		cfg.World.DBPath = db
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.World.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.World.TickInterval.Std())
	}
	if c.World.DayLength <= 0 || c.World.NightLength <= 0 {
		return fmt.Errorf("day_length and night_length must be positive")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogLevel maps the configured level name onto slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
