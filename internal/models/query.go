// Package models defines the data structures shared by the engine, the game
// service and the transports.
package models

import (
	"fmt"
	"strings"
)

// Bounds restricts a similar-words query to an inclusive similarity range.
// A nil bound is unset.
type Bounds struct {
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
	MaxSimilarity *float64 `json:"max_similarity,omitempty"`
}

// IsSet reports whether any bound is present.
func (b Bounds) IsSet() bool {
	return b.MinSimilarity != nil || b.MaxSimilarity != nil
}

// DistanceRange maps the similarity bounds to an inclusive distance range
// using distance = 1 - similarity. Missing bounds become ±Inf.
func (b Bounds) DistanceRange() (lo, hi float64) {
	lo, hi = negInf, posInf
	if b.MaxSimilarity != nil {
		lo = 1 - *b.MaxSimilarity
	}
	if b.MinSimilarity != nil {
		hi = 1 - *b.MinSimilarity
	}
	return lo, hi
}

// String renders the bounds for cache keys and logs.
func (b Bounds) String() string {
	f := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *p)
	}
	return f(b.MinSimilarity) + ".." + f(b.MaxSimilarity)
}

// MixQuery is a tokenized mix expression.
// Operators and Multipliers are optional; empty means absent.
type MixQuery struct {
	Words       []string  `json:"words"`
	Operators   []string  `json:"operators,omitempty"`
	Multipliers []float64 `json:"multipliers,omitempty"`
}

// String renders the query back into expression syntax.
func (q MixQuery) String() string {
	var sb strings.Builder
	for i, w := range q.Words {
		if i > 0 {
			op := "+"
			if i-1 < len(q.Operators) {
				op = q.Operators[i-1]
			}
			sb.WriteString(" " + op + " ")
		}
		if i < len(q.Multipliers) && q.Multipliers[i] != 1 {
			sb.WriteString(fmt.Sprintf("%g ", q.Multipliers[i]))
		}
		sb.WriteString(w)
	}
	return sb.String()
}
