// Package server provides the HTTP API for word alchemy.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/config"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/keyword"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/internal/watcher"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// Server is the HTTP server for the word alchemy API.
type Server struct {
	game      *game.Service
	store     *vocab.Store
	suggester *keyword.Suggester
	config    *config.Config
	logger    *zap.Logger
	limiter   *playerLimiter
	metrics   *metrics
	server    *http.Server

	// stale is set once an artifact changed on disk after startup.
	stale     atomic.Bool
	staleFile atomic.Value // string
}

// NewServer creates a server with the given dependencies. suggester may be nil.
func NewServer(
	svc *game.Service,
	store *vocab.Store,
	suggester *keyword.Suggester,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		game:      svc,
		store:     store,
		suggester: suggester,
		config:    cfg,
		logger:    utils.OrNop(logger),
		limiter:   newPlayerLimiter(cfg.Server.RateLimitOrDefault(), cfg.Server.Burst),
	}
	s.metrics = newMetrics(store)
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/similar", s.handleSimilar)
			r.Post("/analogy", s.handleAnalogy)
			r.Post("/mix", s.handleMix)
			r.Post("/between", s.handleBetween)
		})
		r.Get("/words/{word}", s.handleWord)
		r.Get("/leaders", s.handleLeaders)
		r.Post("/players", s.handleCreatePlayer)
		r.Get("/players/{id}", s.handleGetPlayer)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ArtifactChanged records that an artifact changed on disk. The loaded
// vocabulary stays in use until the process is restarted.
func (s *Server) ArtifactChanged(ev watcher.Event) {
	s.stale.Store(true)
	s.staleFile.Store(ev.Path)
	s.logger.Warn("vocabulary artifact changed on disk; restart to serve the new data",
		zap.String("path", ev.Path),
		zap.Bool("removed", ev.Removed))
}
