package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// SimilarWords returns up to k words nearest to word, scored as
// similarity = 1 - distance and ordered by descending similarity.
//
// With bounds set the whole vocabulary is ranked first, then entries whose
// distance falls outside [1-max, 1-min] are dropped and the first k kept.
// The query word itself is part of the vocabulary and is not excluded.
func (e *Engine) SimilarWords(ctx context.Context, word string, k int, bounds models.Bounds) ([]models.WordScore, error) {
	if err := e.requireWords(ctx, word); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.WordScore{}, nil
	}

	key := cacheKey(models.OpSimilar, k, word, bounds.String())
	if bounds.IsSet() {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
	}

	vec, err := e.vocab.VectorOf(ctx, word)
	if err != nil {
		return nil, err
	}

	if !bounds.IsSet() {
		hits, err := e.vocab.Nearest(ctx, vec, k)
		if err != nil {
			return nil, fmt.Errorf("nearest: %w", err)
		}
		results := make([]models.WordScore, len(hits))
		for i, h := range hits {
			results[i] = models.WordScore{Word: h.Word, Score: 1 - h.Distance}
		}
		return results, nil
	}

	size, err := e.vocab.Size(ctx)
	if err != nil {
		return nil, err
	}
	hits, err := e.vocab.Nearest(ctx, vec, size)
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}
	lo, hi := bounds.DistanceRange()
	results := make([]models.WordScore, 0, k)
	for _, h := range hits {
		if h.Distance < lo || h.Distance > hi {
			continue
		}
		results = append(results, models.WordScore{Word: h.Word, Score: 1 - h.Distance})
		if len(results) == k {
			break
		}
	}

	e.cache.Set(key, results)
	e.logger.Debug("bounded similar search",
		zap.String("word", word),
		zap.String("bounds", bounds.String()),
		zap.Int("scanned", len(hits)),
		zap.Int("results", len(results)))
	return results, nil
}
