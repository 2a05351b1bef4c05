package search

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// Mix combines the unit vectors of words and returns the k words nearest to
// the result, scored by raw squared distance, ascending.
//
// With operators the vectors are folded left as m[0]*n[0] ± m[i]*n[i].
// Without operators the weighted mean sum(m[i]*n[i]) / sum(m[i]) is used, the
// division skipped when the weights sum to zero. Missing multipliers are 1.
// Words are lower-cased before lookup.
func (e *Engine) Mix(ctx context.Context, words, operators []string, multipliers []float64, k int) ([]models.WordScore, error) {
	if len(words) == 0 {
		return nil, &ArityMismatchError{Field: "words", Want: 1, Got: 0}
	}
	if len(operators) > 0 && len(operators) != len(words)-1 {
		return nil, &ArityMismatchError{Field: "operators", Want: len(words) - 1, Got: len(operators)}
	}
	if len(multipliers) > 0 && len(multipliers) != len(words) {
		return nil, &ArityMismatchError{Field: "multipliers", Want: len(words), Got: len(multipliers)}
	}
	for _, m := range multipliers {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, &InvalidMultiplierError{Value: m}
		}
	}

	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = utils.NormalizeWord(w)
	}
	if err := e.requireWords(ctx, lower...); err != nil {
		return nil, err
	}
	for _, op := range operators {
		if op != "+" && op != "-" {
			return nil, &InvalidOperatorError{Operator: op}
		}
	}
	if k <= 0 {
		return []models.WordScore{}, nil
	}

	vecs, err := e.vectors(ctx, lower...)
	if err != nil {
		return nil, err
	}
	weights := multipliers
	if len(weights) == 0 {
		weights = make([]float64, len(words))
		for i := range weights {
			weights[i] = 1
		}
	}

	mixed := combine(vecs, operators, weights)
	hits, err := e.vocab.Nearest(ctx, mixed, k)
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}
	results := make([]models.WordScore, len(hits))
	for i, h := range hits {
		results[i] = models.WordScore{Word: h.Word, Score: h.Distance}
	}
	return results, nil
}

// MixQuery runs Mix on a parsed expression.
func (e *Engine) MixQuery(ctx context.Context, q models.MixQuery, k int) ([]models.WordScore, error) {
	return e.Mix(ctx, q.Words, q.Operators, q.Multipliers, k)
}

// combine works on weights scaled by the largest magnitude, which leaves the
// direction of the result unchanged and keeps float32 accumulation in range.
func combine(vecs [][]float32, operators []string, weights []float64) []float32 {
	acc := make([]float32, len(vecs[0]))
	var maxW float64
	for _, w := range weights {
		maxW = math.Max(maxW, math.Abs(w))
	}
	if maxW == 0 {
		return acc
	}
	add := func(v []float32, s float64) {
		vector.AddScaled(acc, vector.Normalized(v), float32(s/maxW))
	}

	if len(operators) > 0 {
		add(vecs[0], weights[0])
		for i, op := range operators {
			s := weights[i+1]
			if op == "-" {
				s = -s
			}
			add(vecs[i+1], s)
		}
		return vector.Normalized(acc)
	}

	var total float64
	for i, v := range vecs {
		add(v, weights[i])
		total += weights[i] / maxW
	}
	// Only the sign of the divisor survives normalization.
	if total < 0 {
		vector.Scale(acc, -1)
	}
	return vector.Normalized(acc)
}
