package search

import (
	"errors"
	"fmt"
)

// ArityMismatchError reports mix arguments whose lengths disagree.
type ArityMismatchError struct {
	Field string // "words", "operators" or "multipliers"
	Want  int
	Got   int
}

func (e *ArityMismatchError) Error() string {
	if e.Field == "words" {
		return "mix needs at least one word"
	}
	return fmt.Sprintf("expected %d %s, got %d", e.Want, e.Field, e.Got)
}

// InvalidOperatorError reports a mix operator other than "+" or "-".
type InvalidOperatorError struct {
	Operator string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q (expected + or -)", e.Operator)
}

// DegenerateVectorError reports two words with identical vectors, for which
// no direction between them exists.
type DegenerateVectorError struct {
	From string
	To   string
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("%q and %q have identical vectors", e.From, e.To)
}

// IsInvalidQuery reports whether err is a rejected query (as opposed to a
// lookup or load failure).
func IsInvalidQuery(err error) bool {
	var am *ArityMismatchError
	var op *InvalidOperatorError
	var dv *DegenerateVectorError
	var im *InvalidMultiplierError
	return errors.As(err, &am) || errors.As(err, &op) || errors.As(err, &dv) || errors.As(err, &im)
}

// InvalidMultiplierError reports a mix multiplier that is NaN or infinite.
type InvalidMultiplierError struct {
	Value float64
}

func (e *InvalidMultiplierError) Error() string {
	return fmt.Sprintf("invalid multiplier %g (must be finite)", e.Value)
}
