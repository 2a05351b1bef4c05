// Package config provides configuration loading and structs for the alchemy server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Vector  VectorConfig  `yaml:"vector"`
	Search  SearchConfig  `yaml:"search"`
	Game    GameConfig    `yaml:"game"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RateLimit is requests per second per player on the query endpoints. 0 disables limiting.
	RateLimit *float64 `yaml:"rate_limit"`
	Burst     int      `yaml:"burst"`
}

// RateLimitOrDefault returns the configured rate limit; 2 req/s when unset.
func (s *ServerConfig) RateLimitOrDefault() float64 {
	if s.RateLimit != nil {
		return *s.RateLimit
	}
	return 2
}

// StorageConfig holds artifact and database paths.
type StorageConfig struct {
	IndexPath    string `yaml:"index_path"`
	WordsPath    string `yaml:"words_path"`
	DatabasePath string `yaml:"database_path"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	IndexType string `yaml:"index_type"`
}

// SearchConfig holds result count and caching settings.
type SearchConfig struct {
	DefaultCount int `yaml:"default_count"`
	MaxCount     int `yaml:"max_count"`
	CacheSize    int `yaml:"cache_size"`
}

// GameConfig holds scoring settings.
type GameConfig struct {
	RewardThreshold float64 `yaml:"reward_threshold"`
	LeaderboardSize int     `yaml:"leaderboard_size"`
}

// WatchConfig holds artifact monitor settings.
type WatchConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// EnabledOrDefault returns whether the artifact monitor runs; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies environment overrides
// and defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.WordsPath = expandPath(cfg.Storage.WordsPath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// Default returns a config with defaults and environment overrides applied,
// for running without a config file.
func Default() (*Config, error) {
	var cfg Config
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyEnv overrides cfg with ALCHEMY_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("ALCHEMY_INDEX_PATH"); v != "" {
		cfg.Storage.IndexPath = v
	}
	if v := os.Getenv("ALCHEMY_WORDS_PATH"); v != "" {
		cfg.Storage.WordsPath = v
	}
	if v := os.Getenv("ALCHEMY_DATABASE_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("ALCHEMY_INDEX_TYPE"); v != "" {
		cfg.Vector.IndexType = v
	}
	if v := os.Getenv("ALCHEMY_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ALCHEMY_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("ALCHEMY_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ALCHEMY_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
