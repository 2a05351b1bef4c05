// Package game runs queries on behalf of players and awards points for
// strong results.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// ErrNoLeaderboard is returned by Leaders when the service runs without persistence.
var ErrNoLeaderboard = errors.New("leaderboard is not configured")

// Player identifies who issued a query. The zero value is anonymous and is never rewarded.
type Player struct {
	ID   string
	Name string
}

// Anonymous reports whether p carries no id.
func (p Player) Anonymous() bool {
	return p.ID == ""
}

// Settings holds result counts and scoring rules.
type Settings struct {
	DefaultCount    int
	MaxCount        int
	RewardThreshold float64
	LeaderboardSize int
}

// Service wraps the engine with count normalization and rewards.
type Service struct {
	engine   *search.Engine
	board    storage.Leaderboard
	settings Settings
	logger   *zap.Logger
}

// NewService creates a service. board may be nil, in which case nothing is persisted.
func NewService(engine *search.Engine, board storage.Leaderboard, settings Settings, logger *zap.Logger) *Service {
	if settings.DefaultCount <= 0 {
		settings.DefaultCount = 5
	}
	if settings.MaxCount <= 0 {
		settings.MaxCount = 20
	}
	if settings.LeaderboardSize <= 0 {
		settings.LeaderboardSize = 10
	}
	return &Service{
		engine:   engine,
		board:    board,
		settings: settings,
		logger:   utils.OrNop(logger),
	}
}

// Count clamps a requested result count: values below 1 mean the default,
// values above the maximum are capped.
func (s *Service) Count(count int) int {
	switch {
	case count < 1:
		return s.settings.DefaultCount
	case count > s.settings.MaxCount:
		return s.settings.MaxCount
	default:
		return count
	}
}

// Similar returns the count nearest words to word, excluding word itself.
func (s *Service) Similar(ctx context.Context, p Player, word string, count int, bounds models.Bounds) (*models.QueryResponse, error) {
	start := time.Now()
	word = strings.TrimSpace(word)
	n := s.Count(count)
	results, err := s.engine.SimilarWords(ctx, word, n+1, bounds)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.WordScore, 0, n)
	for _, r := range results {
		if strings.EqualFold(r.Word, word) {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == n {
			break
		}
	}
	return s.finish(ctx, p, models.OpSimilar, word, filtered, word, start), nil
}

// Analogy solves a:b :: c:?.
func (s *Service) Analogy(ctx context.Context, p Player, a, b, c string, count int) (*models.QueryResponse, error) {
	start := time.Now()
	results, err := s.engine.Analogy(ctx, a, b, c, s.Count(count))
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s:%s :: %s:?", a, b, c)
	return s.finish(ctx, p, models.OpAnalogy, query, results, c, start), nil
}

// Mix blends the words of q.
func (s *Service) Mix(ctx context.Context, p Player, q models.MixQuery, count int) (*models.QueryResponse, error) {
	start := time.Now()
	results, err := s.engine.MixQuery(ctx, q, s.Count(count))
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, p, models.OpMix, q.String(), results, topWord(results), start), nil
}

// Between returns the words closest to the line through a and b.
func (s *Service) Between(ctx context.Context, p Player, a, b string, count int) (*models.QueryResponse, error) {
	start := time.Now()
	results, err := s.engine.BetweenLine(ctx, a, b, s.Count(count))
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s <-> %s", a, b)
	return s.finish(ctx, p, models.OpBetween, query, results, topWord(results), start), nil
}

func topWord(results []models.WordScore) string {
	if len(results) == 0 {
		return ""
	}
	return results[0].Word
}

func (s *Service) finish(ctx context.Context, p Player, op models.Operation, query string, results []models.WordScore, word string, start time.Time) *models.QueryResponse {
	resp := &models.QueryResponse{
		Operation: op,
		Query:     query,
		Results:   results,
		MaxScore:  search.MaxScore(results),
		QueryTime: time.Since(start).Milliseconds(),
	}
	if len(results) == 0 {
		return resp
	}
	discovered, err := s.reward(ctx, p, word, resp.MaxScore)
	if err != nil {
		// The query succeeded; a scoring failure only costs the point.
		s.logger.Warn("reward failed",
			zap.String("player", p.ID),
			zap.String("word", word),
			zap.Error(err))
		return resp
	}
	if discovered {
		resp.Discovery = true
		resp.Word = word
		s.logger.Info("discovery",
			zap.String("player", p.ID),
			zap.String("operation", string(op)),
			zap.String("word", word),
			zap.Float64("max_score", resp.MaxScore))
	}
	return resp
}

// reward registers the player and, when maxScore beats the threshold, adds a
// point and records word.
func (s *Service) reward(ctx context.Context, p Player, word string, maxScore float64) (bool, error) {
	if s.board == nil || p.Anonymous() {
		return false, nil
	}
	if err := s.EnsurePlayer(ctx, p); err != nil {
		return false, err
	}
	if maxScore <= s.settings.RewardThreshold {
		return false, nil
	}
	if _, err := s.board.IncrementScore(ctx, p.ID, 1); err != nil {
		return false, fmt.Errorf("increment score: %w", err)
	}
	if _, err := s.board.AddWords(ctx, p.ID, []string{word}); err != nil {
		return false, fmt.Errorf("add word: %w", err)
	}
	return true, nil
}

// EnsurePlayer creates the player if it does not exist yet.
func (s *Service) EnsurePlayer(ctx context.Context, p Player) error {
	if s.board == nil || p.Anonymous() {
		return nil
	}
	name := p.Name
	if name == "" {
		name = p.ID
	}
	if _, err := s.board.CreatePlayer(ctx, p.ID, name); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// Leaders returns the top limit players and, when p is known, its rank.
// A limit below 1 uses the configured leaderboard size.
func (s *Service) Leaders(ctx context.Context, p Player, limit int) (*models.LeaderboardResponse, error) {
	if s.board == nil {
		return nil, ErrNoLeaderboard
	}
	if limit < 1 {
		limit = s.settings.LeaderboardSize
	}
	players, err := s.board.Leaders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaders: %w", err)
	}
	resp := &models.LeaderboardResponse{Players: players}
	if p.Anonymous() {
		return resp, nil
	}
	player, err := s.board.GetPlayer(ctx, p.ID)
	if errors.Is(err, storage.ErrPlayerNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	rank, err := s.board.Rank(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	resp.Player = player
	resp.Rank = rank
	return resp, nil
}

// Engine returns the underlying engine.
func (s *Service) Engine() *search.Engine {
	return s.engine
}

// Leaderboard returns the leaderboard, or nil when none is configured.
func (s *Service) Leaderboard() storage.Leaderboard {
	return s.board
}

// Settings returns the effective settings.
func (s *Service) Settings() Settings {
	return s.settings
}
