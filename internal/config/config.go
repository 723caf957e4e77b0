// Package config loads process configuration from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
)

// #region types
// Config is the full process configuration.
type Config struct {
	DBPath       string          `yaml:"db_path"`
	SeedPath     string          `yaml:"seed_path"`
	ListenAddr   string          `yaml:"listen_addr"`
	MetricsAddr  string          `yaml:"metrics_addr"`
	LogLevel     string          `yaml:"log_level"`
	RoundIdleTTL time.Duration   `yaml:"round_idle_ttl"` // 0 keeps idle rounds forever
	Game         game.Config     `yaml:"game"`
	Learning     learning.Config `yaml:"learning"`
}

// Default returns the configuration used when no file or env is set.
func Default() Config {
	return Config{
		DBPath:       "adaptive_guess.db",
		SeedPath:     "data/catalog.yaml",
		ListenAddr:   "localhost:50061",
		MetricsAddr:  "localhost:9464",
		LogLevel:     "info",
		RoundIdleTTL: 30 * time.Minute,
		Game:         game.DefaultConfig(),
		Learning:     learning.DefaultConfig(),
	}
}

// #endregion types

// #region load
// Load reads path over the defaults, then applies env overrides. An empty
// path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DBPath = envOr("ADAPTIVE_GUESS_DB", c.DBPath)
	c.SeedPath = envOr("ADAPTIVE_GUESS_SEED", c.SeedPath)
	c.ListenAddr = envOr("ADAPTIVE_GUESS_ADDR", c.ListenAddr)
	c.MetricsAddr = envOr("ADAPTIVE_GUESS_METRICS_ADDR", c.MetricsAddr)
	c.LogLevel = envOr("ADAPTIVE_GUESS_LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("ADAPTIVE_GUESS_MAX_QUESTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ADAPTIVE_GUESS_MAX_QUESTIONS: %w", err)
		}
		c.Game.MaxQuestions = n
	}
	if v := os.Getenv("ADAPTIVE_GUESS_ROUND_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ADAPTIVE_GUESS_ROUND_TTL: %w", err)
		}
		c.RoundIdleTTL = d
	}
	if v := os.Getenv("ADAPTIVE_GUESS_BOOST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ADAPTIVE_GUESS_BOOST: %w", err)
		}
		c.Game.EffectivenessBoost = b
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region logger
// Logger builds a console logger on w at the configured level.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// #endregion logger
