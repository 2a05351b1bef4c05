// Package search implements similarity search and the semantic algebra
// (analogy, mix, between) over a loaded vocabulary.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// Vocabulary is the read-only view of the vocabulary the engine needs.
type Vocabulary interface {
	Exists(ctx context.Context, word string) (bool, error)
	VectorOf(ctx context.Context, word string) ([]float32, error)
	AllEntries(ctx context.Context) ([]vocab.Entry, error)
	Nearest(ctx context.Context, query []float32, k int) ([]vocab.Neighbor, error)
	Size(ctx context.Context) (int, error)
}

// Engine answers similarity and algebra queries. It holds no mutable state
// besides the optional result cache.
type Engine struct {
	vocab  Vocabulary
	cache  *QueryCache
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables an LRU cache of full-scan results holding up to size entries.
func WithCache(size int) Option {
	return func(e *Engine) {
		e.cache = NewQueryCache(size)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = utils.OrNop(l)
	}
}

// NewEngine creates an engine over v.
func NewEngine(v Vocabulary, opts ...Option) *Engine {
	e := &Engine{vocab: v, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the result cache, or nil when caching is disabled.
func (e *Engine) Cache() *QueryCache {
	return e.cache
}

// requireWords checks that every word exists, in order, and returns the
// first missing one as a WordNotFoundError.
func (e *Engine) requireWords(ctx context.Context, words ...string) error {
	for _, w := range words {
		ok, err := e.vocab.Exists(ctx, w)
		if err != nil {
			return err
		}
		if !ok {
			return &vocab.WordNotFoundError{Word: w}
		}
	}
	return nil
}

func (e *Engine) vectors(ctx context.Context, words ...string) ([][]float32, error) {
	out := make([][]float32, len(words))
	for i, w := range words {
		v, err := e.vocab.VectorOf(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("vector of %q: %w", w, err)
		}
		out[i] = v
	}
	return out, nil
}

func cacheKey(op models.Operation, k int, parts ...string) string {
	return fmt.Sprintf("%s\x00%d\x00%s", op, k, strings.Join(parts, "\x00"))
}

// MaxScore returns the highest score in results, or 0 for an empty set.
// This is the signal the reward logic is gated on.
func MaxScore(results []models.WordScore) float64 {
	if len(results) == 0 {
		return 0
	}
	max := results[0].Score
	for _, r := range results[1:] {
		if r.Score > max {
			max = r.Score
		}
	}
	return max
}
