// Package integration loads real artifacts from disk and runs the engine on them.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/test/e2e"
)

func TestIntegration_CompressedWordLists(t *testing.T) {
	v := e2e.BuildVocabulary(50, 3)
	for _, ext := range e2e.WordListExtensions {
		ext := ext
		t.Run("words.list"+ext, func(t *testing.T) {
			indexPath, wordsPath, err := e2e.WriteArtifacts(t.TempDir(), v, ext)
			require.NoError(t, err)

			store := vocab.New(indexPath, wordsPath, vocab.WithIndexType(string(vector.IndexTypeMemory)))
			defer store.Close()
			engine := search.NewEngine(store)
			ctx := context.Background()

			n, err := store.Size(ctx)
			require.NoError(t, err)
			assert.Equal(t, len(v.Words), n)

			id, err := store.ID(ctx, "queen")
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)

			res, err := engine.SimilarWords(ctx, "queen", 1, models.Bounds{})
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, "queen", res[0].Word)
			assert.InDelta(t, 1, res[0].Score, 1e-6)

			res, err = engine.Analogy(ctx, "uncle", "aunt", "nephew", 1)
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, "niece", res[0].Word)
		})
	}
}

func TestIntegration_MismatchedArtifactsAreFatal(t *testing.T) {
	dir := t.TempDir()
	v := e2e.BuildVocabulary(10, 3)
	indexPath, _, err := e2e.WriteArtifacts(dir, v, "")
	require.NoError(t, err)

	short := filepath.Join(dir, "short.list")
	require.NoError(t, os.WriteFile(short, []byte("king\nqueen\n"), 0644))

	store := vocab.New(indexPath, short)
	defer store.Close()
	engine := search.NewEngine(store)
	ctx := context.Background()

	_, err = engine.SimilarWords(ctx, "king", 3, models.Bounds{})
	require.Error(t, err)
	assert.True(t, vocab.IsFatal(err))

	// The failure sticks; a second call does not retry the load.
	_, err = engine.BetweenLine(ctx, "king", "queen", 3)
	assert.True(t, vocab.IsFatal(err))
	assert.False(t, store.Stats().Loaded)
	assert.NotEmpty(t, store.Stats().Error)
}

func TestIntegration_MissingArtifact(t *testing.T) {
	dir := t.TempDir()
	store := vocab.New(filepath.Join(dir, "missing.faiss"), filepath.Join(dir, "missing.list"))
	defer store.Close()

	_, err := store.Size(context.Background())
	require.Error(t, err)
	var le *vocab.LoadError
	assert.ErrorAs(t, err, &le)
}
