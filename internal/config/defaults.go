package config

import "github.com/hyperjump/wordalchemy/internal/vector"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Burst <= 0 {
		cfg.Server.Burst = 5
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/wordalchemy/data/word_embeddings.faiss"
	}
	if cfg.Storage.WordsPath == "" {
		cfg.Storage.WordsPath = "/usr/local/var/wordalchemy/data/words.list"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/wordalchemy/data/db/leaderboard.db"
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = string(vector.IndexTypeMemory)
	}
	if cfg.Search.DefaultCount <= 0 {
		cfg.Search.DefaultCount = 5
	}
	if cfg.Search.MaxCount <= 0 {
		cfg.Search.MaxCount = 20
	}
	if cfg.Search.DefaultCount > cfg.Search.MaxCount {
		cfg.Search.DefaultCount = cfg.Search.MaxCount
	}
	// A negative cache size disables the cache; zero means unset.
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 256
	}
	if cfg.Game.RewardThreshold == 0 {
		cfg.Game.RewardThreshold = 0.8
	}
	if cfg.Game.LeaderboardSize <= 0 {
		cfg.Game.LeaderboardSize = 10
	}
}
