package benchmark

import (
	"context"
	"testing"

	"github.com/hyperjump/wordalchemy/internal/command"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/test/e2e"
)

const benchFillers = 20000

func benchEngine(b *testing.B, opts ...search.Option) *search.Engine {
	b.Helper()
	indexPath, wordsPath, err := e2e.WriteArtifacts(b.TempDir(), e2e.BuildVocabulary(benchFillers, 1), "")
	if err != nil {
		b.Fatal(err)
	}
	store := vocab.New(indexPath, wordsPath)
	b.Cleanup(func() { _ = store.Close() })
	if err := store.Load(context.Background()); err != nil {
		b.Fatal(err)
	}
	if _, err := store.AllEntries(context.Background()); err != nil {
		b.Fatal(err)
	}
	return search.NewEngine(store, opts...)
}

func BenchmarkMemoryIndexSearch(b *testing.B) {
	idx, _ := vector.NewMemoryIndex(300)
	ctx := context.Background()
	vecs := make([][]float32, 10000)
	for i := range vecs {
		vecs[i] = make([]float32, 300)
		vecs[i][i%300] = float32(i) / 10000
	}
	_ = idx.Add(vecs)
	query := make([]float32, 300)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 10)
	}
}

func BenchmarkSimilarWords(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.SimilarWords(ctx, "king", 10, models.Bounds{})
	}
}

func BenchmarkSimilarWords_bounded(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	lo := 0.5
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.SimilarWords(ctx, "king", 10, models.Bounds{MinSimilarity: &lo})
	}
}

func BenchmarkAnalogy(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Analogy(ctx, "man", "woman", "king", 10)
	}
}

func BenchmarkAnalogy_cached(b *testing.B) {
	e := benchEngine(b, search.WithCache(16))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Analogy(ctx, "man", "woman", "king", 10)
	}
}

func BenchmarkMix(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	q, err := command.ParseMix("2 king - man + woman")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.MixQuery(ctx, q, 10)
	}
}

func BenchmarkBetweenLine(b *testing.B) {
	e := benchEngine(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.BetweenLine(ctx, "king", "queen", 10)
	}
}

func BenchmarkParseMix(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = command.ParseMix("0.5 royal family + 2 king - man + woman")
	}
}
