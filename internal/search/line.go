package search

import (
	"context"
	"sort"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/vector"
)

// BetweenLine ranks every word other than a and b by its perpendicular
// distance to the infinite line through a and b, nearest first.
// Identical a and b vectors fail with DegenerateVectorError.
func (e *Engine) BetweenLine(ctx context.Context, a, b string, k int) ([]models.WordScore, error) {
	if err := e.requireWords(ctx, a, b); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.WordScore{}, nil
	}

	key := cacheKey(models.OpBetween, k, a, b)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	vecs, err := e.vectors(ctx, a, b)
	if err != nil {
		return nil, err
	}
	diff := vector.Sub(vecs[1], vecs[0])
	if vector.IsZero(diff) {
		return nil, &DegenerateVectorError{From: a, To: b}
	}
	direction := vector.Normalized(diff)
	anchor := vecs[0]

	entries, err := e.vocab.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.WordScore, 0, len(entries))
	for _, en := range entries {
		if en.Word == a || en.Word == b {
			continue
		}
		results = append(results, models.WordScore{
			Word:  en.Word,
			Score: lineDistance(en.Vector, anchor, direction),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	e.cache.Set(key, results)
	return results, nil
}

// lineDistance is ||v - (anchor + dot(v-anchor, unit)*unit)||.
func lineDistance(v, anchor, unit []float32) float64 {
	d := vector.Sub(v, anchor)
	t := vector.InnerProduct(d, unit)
	vector.AddScaled(d, unit, float32(-t))
	return vector.L2Norm(d)
}
