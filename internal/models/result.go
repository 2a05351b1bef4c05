package models

import "math"

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// WordScore is a ranked result. Score is a similarity for similar and
// analogy queries and a distance for mix and between queries.
type WordScore struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Operation names a query kind.
type Operation string

const (
	OpSimilar Operation = "similar"
	OpAnalogy Operation = "analogy"
	OpMix     Operation = "mix"
	OpBetween Operation = "between"
)

// HigherIsBetter reports whether scores of op rank descending.
func (op Operation) HigherIsBetter() bool {
	return op == OpSimilar || op == OpAnalogy
}

// QueryResponse is the outcome of a front-end query.
type QueryResponse struct {
	Operation Operation   `json:"operation"`
	Query     string      `json:"query"`
	Results   []WordScore `json:"results"`
	MaxScore  float64     `json:"max_score"`
	Discovery bool        `json:"discovery"`
	Word      string      `json:"discovered_word,omitempty"`
	QueryTime int64       `json:"query_time_ms"`
}
