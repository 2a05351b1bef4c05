// Package main is the alchemy CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/config"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/keyword"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/server"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/internal/watcher"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/wordalchemy/config.yaml"

// configPathDefault returns ALCHEMY_CONFIG when set, else the built-in default.
func configPathDefault() string {
	if p := strings.TrimSpace(os.Getenv("ALCHEMY_CONFIG")); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig loads config from path. When path is the built-in default, a
// config.yaml in the current directory wins; when neither exists, defaults
// (plus ALCHEMY_* overrides) are used.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "similar":
		runSimilar()
	case "analogy":
		runAnalogy()
	case "mix":
		runMix()
	case "between":
		runBetween()
	case "leaders":
		runLeaders()
	case "status":
		runStatus()
	case "repl":
		runREPL()
	case "version", "--version", "-v":
		fmt.Printf("alchemy version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds everything a direct (serverless) run needs.
type Components struct {
	Store     *vocab.Store
	Engine    *search.Engine
	Board     *storage.SQLiteLeaderboard
	Game      *game.Service
	Suggester *keyword.Suggester
}

// Close releases the components.
func (c *Components) Close() {
	if c.Suggester != nil {
		_ = c.Suggester.Close()
	}
	if c.Board != nil {
		_ = c.Board.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents wires the vocabulary, engine, leaderboard and game
// service. The vocabulary itself is loaded lazily on first use.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store := vocab.New(cfg.Storage.IndexPath, cfg.Storage.WordsPath,
		vocab.WithIndexType(cfg.Vector.IndexType),
		vocab.WithLogger(logger))

	engine := search.NewEngine(store,
		search.WithCache(cfg.Search.CacheSize),
		search.WithLogger(logger))

	var board *storage.SQLiteLeaderboard
	if cfg.Storage.DatabasePath != "" {
		b, err := storage.NewSQLiteLeaderboard(cfg.Storage.DatabasePath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize leaderboard: %w", err)
		}
		board = b
	}

	c := &Components{
		Store:     store,
		Engine:    engine,
		Board:     board,
		Suggester: keyword.NewSuggester(store, keyword.WithLogger(logger)),
	}
	settings := game.Settings{
		DefaultCount:    cfg.Search.DefaultCount,
		MaxCount:        cfg.Search.MaxCount,
		RewardThreshold: cfg.Game.RewardThreshold,
		LeaderboardSize: cfg.Game.LeaderboardSize,
	}
	// a nil *SQLiteLeaderboard must reach the service as a nil interface
	if board != nil {
		c.Game = game.NewService(engine, board, settings, logger)
	} else {
		c.Game = game.NewService(engine, nil, settings, logger)
	}
	return c, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", configPathDefault(), "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	preload := fs.Bool("preload", false, "load the vocabulary before accepting requests")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("index_path", cfg.Storage.IndexPath),
		zap.String("words_path", cfg.Storage.WordsPath),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if *preload {
		if err := components.Store.Load(context.Background()); err != nil {
			logger.Fatal("Failed to load vocabulary", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Game, components.Store, components.Suggester, cfg, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.EnabledOrDefault() {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(
			[]string{cfg.Storage.IndexPath, cfg.Storage.WordsPath},
			srv.ArtifactChanged,
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("artifact watcher not started", zap.Error(err))
		} else {
			defer watchSvc.Stop()
		}
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`alchemy - word embedding explorer

Usage:
  alchemy server [flags]                 Start the HTTP server
  alchemy similar [flags] <word>         Words nearest to a word
  alchemy analogy [flags] <a> <b> <c>    Solve a is to b as c is to ?
  alchemy mix [flags] <expression>       Combine words, e.g. "2 king - man + woman"
  alchemy between [flags] <a> <b>        Words near the line through a and b
  alchemy leaders [flags]                Show the leaderboard
  alchemy status [flags]                 Show vocabulary and storage status
  alchemy repl [flags]                   Interactive session
  alchemy version                        Show version
  alchemy help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/wordalchemy/config.yaml, or $ALCHEMY_CONFIG)
  --debug            Enable debug logging
  --preload          Load the vocabulary before serving

Query Flags (similar, analogy, mix, between, leaders):
  --config string    Config file path (direct mode)
  --server string    Server URL, e.g. http://localhost:8080. Empty (default) runs on the local artifacts.
  --count int        Number of results (default from config, 5)
  --format string    Output format: text, compact or json (default: text)
  --player string    Player id; discoveries are credited to it
  --name string      Player display name
  --min float        similar only: minimum similarity
  --max float        similar only: maximum similarity

Examples:
  alchemy server
  alchemy similar king
  alchemy similar --count 10 --min 0.2 queen
  alchemy analogy man king woman
  alchemy mix 2 king - man + woman
  alchemy between hot cold
  alchemy leaders --server http://localhost:8080
  alchemy status --format json`)
}
