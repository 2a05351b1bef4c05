package vocab

import (
	"errors"
	"fmt"
)

// LoadError reports an artifact that could not be read. It is fatal for the
// lifetime of the store.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CorruptIndexError reports that the index and the word list disagree on the
// vocabulary size.
type CorruptIndexError struct {
	Vectors int
	Words   int
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index: %d vectors but %d words", e.Vectors, e.Words)
}

// WordNotFoundError is returned when a queried word is not in the vocabulary.
type WordNotFoundError struct {
	Word string
}

func (e *WordNotFoundError) Error() string {
	return fmt.Sprintf("word %q not found", e.Word)
}

// IsFatal reports whether err is a load-time failure that no later call can recover from.
func IsFatal(err error) bool {
	var le *LoadError
	var ce *CorruptIndexError
	return errors.As(err, &le) || errors.As(err, &ce)
}

// IsWordNotFound reports whether err is a WordNotFoundError and returns the missing word.
func IsWordNotFound(err error) (string, bool) {
	var nf *WordNotFoundError
	if errors.As(err, &nf) {
		return nf.Word, true
	}
	return "", false
}
