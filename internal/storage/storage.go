// Package storage persists players, their scores and the words they discovered.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// ErrPlayerNotFound is returned when a player id is unknown.
var ErrPlayerNotFound = errors.New("player not found")

// Leaderboard defines player and score persistence operations.
type Leaderboard interface {
	// CreatePlayer inserts a player; an existing id is left untouched and reported as not created.
	CreatePlayer(ctx context.Context, id, name string) (bool, error)
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	IncrementScore(ctx context.Context, id string, points int) (bool, error)
	// AddWords records discovered words with set semantics. It reports whether any word was new.
	AddWords(ctx context.Context, id string, words []string) (bool, error)
	// Leaders returns players by descending score; limit 0 returns everyone.
	Leaders(ctx context.Context, limit int) ([]*models.Player, error)
	// Rank returns the 1-based leaderboard position of id, or 0 if unknown.
	Rank(ctx context.Context, id string) (int, error)
	CountPlayers(ctx context.Context) (int64, error)
	Close() error
}
