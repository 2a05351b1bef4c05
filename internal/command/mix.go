package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hyperjump/wordalchemy/internal/models"
)

var (
	// ErrNoWords is returned for an expression without any word.
	ErrNoWords = errors.New("no words to mix")
	// ErrDanglingOperator is returned for an operator not preceded by a word.
	ErrDanglingOperator = errors.New("operator without a preceding word")
	// ErrOperatorCount is returned when operators do not sit between words.
	ErrOperatorCount = errors.New("operators must sit between words")
)

// ParseMix tokenizes a mix expression such as "0.5 cow + 0.1 bull - 0.2 udder".
//
// Tokens are separated by whitespace. "+" and "-" are operators; a finite
// number sets the multiplier of the word that follows it; any other token
// is appended to the current word, so multi-token words are allowed. Every
// word gets a multiplier, 1 when none was given.
func ParseMix(expr string) (models.MixQuery, error) {
	var (
		q          models.MixQuery
		current    []string
		multiplier = 1.0
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		q.Words = append(q.Words, strings.Join(current, " "))
		q.Multipliers = append(q.Multipliers, multiplier)
		current = current[:0]
		multiplier = 1
	}

	for i, tok := range strings.Fields(expr) {
		switch tok {
		case "+", "-":
			if len(current) == 0 && i > 0 {
				return models.MixQuery{}, fmt.Errorf("%w at token %d", ErrDanglingOperator, i+1)
			}
			q.Operators = append(q.Operators, tok)
			flush()
		default:
			if m, ok := parseMultiplier(tok); ok {
				multiplier = m
				continue
			}
			current = append(current, tok)
		}
	}
	flush()

	if len(q.Words) == 0 {
		return models.MixQuery{}, ErrNoWords
	}
	if len(q.Operators) > 0 && len(q.Operators) != len(q.Words)-1 {
		return models.MixQuery{}, fmt.Errorf("%w: %d words, %d operators", ErrOperatorCount, len(q.Words), len(q.Operators))
	}
	return q, nil
}

// parseMultiplier accepts finite numbers only, so words like "nan" or "inf"
// stay words.
func parseMultiplier(tok string) (float64, bool) {
	m, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return m, true
}

// IsSyntaxError reports whether err comes from parsing a command or mix expression.
func IsSyntaxError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue) ||
		errors.Is(err, ErrNoWords) ||
		errors.Is(err, ErrDanglingOperator) ||
		errors.Is(err, ErrOperatorCount)
}
