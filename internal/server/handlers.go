package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/command"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/internal/vocab"
)

const (
	headerPlayerID   = "X-Player-ID"
	headerPlayerName = "X-Player-Name"

	maxSuggestions = 5
)

type similarRequest struct {
	Word          string   `json:"word"`
	Count         int      `json:"count"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
	MaxSimilarity *float64 `json:"max_similarity,omitempty"`
}

type analogyRequest struct {
	A     string `json:"a"`
	B     string `json:"b"`
	C     string `json:"c"`
	Count int    `json:"count"`
}

type mixRequest struct {
	Expression  string    `json:"expression,omitempty"`
	Words       []string  `json:"words,omitempty"`
	Operators   []string  `json:"operators,omitempty"`
	Multipliers []float64 `json:"multipliers,omitempty"`
	Count       int       `json:"count"`
}

type betweenRequest struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Count int    `json:"count"`
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

func playerFrom(r *http.Request) game.Player {
	return game.Player{
		ID:   strings.TrimSpace(r.Header.Get(headerPlayerID)),
		Name: strings.TrimSpace(r.Header.Get(headerPlayerName)),
	}
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		s.respondError(w, http.StatusBadRequest, "word is required")
		return
	}
	s.logger.Debug("similar request", zap.String("word", req.Word), zap.Int("count", req.Count))
	bounds := models.Bounds{MinSimilarity: req.MinSimilarity, MaxSimilarity: req.MaxSimilarity}
	s.runQuery(w, r, models.OpSimilar, func(ctx context.Context, p game.Player) (*models.QueryResponse, error) {
		return s.game.Similar(ctx, p, req.Word, req.Count, bounds)
	})
}

func (s *Server) handleAnalogy(w http.ResponseWriter, r *http.Request) {
	var req analogyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.A == "" || req.B == "" || req.C == "" {
		s.respondError(w, http.StatusBadRequest, "a, b and c are required")
		return
	}
	s.logger.Debug("analogy request", zap.String("a", req.A), zap.String("b", req.B), zap.String("c", req.C))
	s.runQuery(w, r, models.OpAnalogy, func(ctx context.Context, p game.Player) (*models.QueryResponse, error) {
		return s.game.Analogy(ctx, p, req.A, req.B, req.C, req.Count)
	})
}

func (s *Server) handleMix(w http.ResponseWriter, r *http.Request) {
	var req mixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := models.MixQuery{Words: req.Words, Operators: req.Operators, Multipliers: req.Multipliers}
	if req.Expression != "" {
		if len(req.Words) > 0 {
			s.respondError(w, http.StatusBadRequest, "use either expression or words, not both")
			return
		}
		parsed, err := command.ParseMix(req.Expression)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		q = parsed
	}
	s.logger.Debug("mix request", zap.String("query", q.String()), zap.Int("count", req.Count))
	s.runQuery(w, r, models.OpMix, func(ctx context.Context, p game.Player) (*models.QueryResponse, error) {
		return s.game.Mix(ctx, p, q, req.Count)
	})
}

func (s *Server) handleBetween(w http.ResponseWriter, r *http.Request) {
	var req betweenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.A == "" || req.B == "" {
		s.respondError(w, http.StatusBadRequest, "a and b are required")
		return
	}
	s.logger.Debug("between request", zap.String("a", req.A), zap.String("b", req.B))
	s.runQuery(w, r, models.OpBetween, func(ctx context.Context, p game.Player) (*models.QueryResponse, error) {
		return s.game.Between(ctx, p, req.A, req.B, req.Count)
	})
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, op models.Operation, run func(context.Context, game.Player) (*models.QueryResponse, error)) {
	start := time.Now()
	resp, err := run(r.Context(), playerFrom(r))
	s.metrics.observe(op, start, resp, err)
	if err != nil {
		s.respondQueryError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	id, err := s.store.ID(r.Context(), word)
	if err != nil {
		s.respondQueryError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"word": word, "id": id})
}

func (s *Server) handleLeaders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	resp, err := s.game.Leaders(r.Context(), playerFrom(r), limit)
	if err != nil {
		s.respondQueryError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	board := s.game.Leaderboard()
	if board == nil {
		s.respondError(w, http.StatusNotImplemented, "leaderboard not enabled")
		return
	}
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	id := uuid.New().String()
	if _, err := board.CreatePlayer(r.Context(), id, name); err != nil {
		s.logger.Error("create player failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("player created", zap.String("id", id), zap.String("name", name))
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "name": name})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	board := s.game.Leaderboard()
	if board == nil {
		s.respondError(w, http.StatusNotImplemented, "leaderboard not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	p, err := board.GetPlayer(r.Context(), id)
	if errors.Is(err, storage.ErrPlayerNotFound) {
		s.respondError(w, http.StatusNotFound, "player not found")
		return
	}
	if err != nil {
		s.logger.Error("get player failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rank, err := board.Rank(r.Context(), id)
	if err != nil {
		s.logger.Error("rank failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.LeaderboardResponse{Player: p, Rank: rank})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]interface{}{
		"vocabulary":       s.store.Stats(),
		"restart_required": s.stale.Load(),
	}
	if f, ok := s.staleFile.Load().(string); ok && f != "" {
		resp["changed_artifact"] = f
	}
	if board := s.game.Leaderboard(); board != nil {
		n, err := board.CountPlayers(ctx)
		if err != nil {
			s.logger.Error("status: count players failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["players"] = n
	}
	if c := s.game.Engine().Cache(); c != nil {
		hits, misses := c.Stats()
		resp["cache"] = map[string]interface{}{
			"entries": c.Len(),
			"hits":    hits,
			"misses":  misses,
		}
	}

	indexPath, wordsPath := s.store.Paths()
	settings := s.game.Settings()
	resp["config"] = map[string]interface{}{
		"index_type":       s.config.Vector.IndexType,
		"faiss_available":  vector.IsFAISSAvailable(),
		"index_path":       indexPath,
		"words_path":       wordsPath,
		"database_path":    s.config.Storage.DatabasePath,
		"default_count":    settings.DefaultCount,
		"max_count":        settings.MaxCount,
		"reward_threshold": settings.RewardThreshold,
	}
	if usage, err := storage.DiskUsage(indexPath, wordsPath, s.config.Storage.DatabasePath); err == nil {
		var total int64
		for _, n := range usage {
			total += n
		}
		resp["disk_usage"] = usage
		resp["disk_usage_bytes"] = total
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case isNotFound(err):
		return http.StatusNotFound
	case search.IsInvalidQuery(err), command.IsSyntaxError(err):
		return http.StatusBadRequest
	case vocab.IsFatal(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrNoLeaderboard):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func isNotFound(err error) bool {
	_, ok := vocab.IsWordNotFound(err)
	return ok
}

func (s *Server) respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if word, ok := vocab.IsWordNotFound(err); ok {
		body := map[string]interface{}{
			"error":       err.Error(),
			"word":        word,
			"suggestions": s.suggestions(r.Context(), word),
		}
		s.respondJSON(w, status, body)
		return
	}
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("query failed", zap.Error(err))
	case http.StatusServiceUnavailable:
		s.logger.Warn("vocabulary unavailable", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) suggestions(ctx context.Context, word string) []string {
	if s.suggester == nil {
		return []string{}
	}
	words, err := s.suggester.Words(ctx, word, maxSuggestions)
	if err != nil {
		s.logger.Warn("suggestions failed", zap.String("word", word), zap.Error(err))
		return []string{}
	}
	return words
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
