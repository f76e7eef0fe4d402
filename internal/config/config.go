package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region config
// Config holds the daemon settings. File values are overridden by the
// REPLAY_* environment variables.
type Config struct {
	DB           string `yaml:"db"`
	GRPCAddr     string `yaml:"grpc_addr"`
	MetricsAddr  string `yaml:"metrics_addr"`
	HistoryLimit int    `yaml:"history_limit"` // 0 = unbounded
	Persist      bool   `yaml:"persist"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:          "canvas_replay.db",
		GRPCAddr:    "localhost:50061",
		MetricsAddr: ":9464",
		Persist:     true,
	}
}
// #endregion config

// #region load
// Load reads path (if non-empty) over the defaults, then applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(content); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML content over the defaults. Keys absent from the
// file keep their default value.
func Parse(content []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DB = envOr("REPLAY_DB", c.DB)
	c.GRPCAddr = envOr("REPLAY_GRPC_ADDR", c.GRPCAddr)
	c.MetricsAddr = envOr("REPLAY_METRICS_ADDR", c.MetricsAddr)

	if v := os.Getenv("REPLAY_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPLAY_HISTORY_LIMIT: %w", err)
		}
		c.HistoryLimit = n
	}
	// Kill switch: REPLAY_PERSIST=false keeps history in memory only.
	if v := os.Getenv("REPLAY_PERSIST"); v != "" {
		c.Persist = !strings.EqualFold(v, "false") && v != "0"
	}
	return nil
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be >= 0, got %d", c.HistoryLimit)
	}
	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr is required")
	}
	if c.Persist && c.DB == "" {
		return fmt.Errorf("db is required when persist is on")
	}
	return nil
}
// #endregion load

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
