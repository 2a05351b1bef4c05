package search

import (
	"context"
	"sort"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/vector"
)

// Analogy solves "a is to b as c is to ?". Every word other than a, b and c
// is scored by the cosine between normalize(b-a) and normalize(d-c); the k
// best are returned in descending order, ties in vocabulary order.
//
// Identical a and b vectors fail with DegenerateVectorError. Candidates whose
// vector equals c have no direction and are skipped.
func (e *Engine) Analogy(ctx context.Context, a, b, c string, k int) ([]models.WordScore, error) {
	if err := e.requireWords(ctx, a, b, c); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.WordScore{}, nil
	}

	key := cacheKey(models.OpAnalogy, k, a, b, c)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	vecs, err := e.vectors(ctx, a, b, c)
	if err != nil {
		return nil, err
	}
	diff := vector.Sub(vecs[1], vecs[0])
	if vector.IsZero(diff) {
		return nil, &DegenerateVectorError{From: a, To: b}
	}
	direction := vector.Normalized(diff)
	origin := vecs[2]

	entries, err := e.vocab.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.WordScore, 0, len(entries))
	for _, en := range entries {
		if en.Word == a || en.Word == b || en.Word == c {
			continue
		}
		score, ok := cosineFrom(direction, en.Vector, origin)
		if !ok {
			continue
		}
		results = append(results, models.WordScore{Word: en.Word, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	e.cache.Set(key, results)
	return results, nil
}

// cosineFrom returns dot(unit, normalize(v - origin)). It reports false when
// v equals origin.
func cosineFrom(unit, v, origin []float32) (float64, bool) {
	d := vector.Sub(v, origin)
	norm := vector.L2Norm(d)
	if norm == 0 {
		return 0, false
	}
	return vector.InnerProduct(unit, d) / norm, true
}
