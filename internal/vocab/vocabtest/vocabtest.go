// Package vocabtest writes small vocabulary artifacts for tests.
package vocabtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/internal/vocab"
)

// ToyWords and ToyVectors form a 2-d vocabulary small enough to check every
// distance by hand.
var (
	ToyWords = []string{"king", "queen", "man", "woman", "apple", "mid"}

	ToyVectors = [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
		{0, 2},
		{5, 5},
		{0.5, 0.5},
	}
)

// WriteFiles writes a FAISS flat index and a word list into dir.
func WriteFiles(tb testing.TB, dir string, words []string, vectors [][]float32) (indexPath, wordsPath string) {
	tb.Helper()
	idx, err := vector.NewMemoryIndex(len(vectors[0]))
	if err != nil {
		tb.Fatal(err)
	}
	if err := idx.Add(vectors); err != nil {
		tb.Fatal(err)
	}
	indexPath = filepath.Join(dir, "words.faiss")
	if err := idx.Save(indexPath); err != nil {
		tb.Fatal(err)
	}
	wordsPath = filepath.Join(dir, "words.list")
	if err := os.WriteFile(wordsPath, []byte(strings.Join(words, "\n")+"\n"), 0644); err != nil {
		tb.Fatal(err)
	}
	return indexPath, wordsPath
}

// NewStore writes the artifacts into a temp dir and returns an unloaded store
// over them, closed at test cleanup.
func NewStore(tb testing.TB, words []string, vectors [][]float32, opts ...vocab.Option) *vocab.Store {
	tb.Helper()
	indexPath, wordsPath := WriteFiles(tb, tb.TempDir(), words, vectors)
	s := vocab.New(indexPath, wordsPath, opts...)
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// NewToyStore returns a store over ToyWords and ToyVectors.
func NewToyStore(tb testing.TB, opts ...vocab.Option) *vocab.Store {
	tb.Helper()
	return NewStore(tb, ToyWords, ToyVectors, opts...)
}
