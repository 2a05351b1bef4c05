package e2e

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/wordalchemy/internal/cli"
	"github.com/hyperjump/wordalchemy/internal/config"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/keyword"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/server"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/internal/vocab"
)

const e2eFillers = 2000

// startServer serves the synthetic vocabulary over HTTP with rate limiting off.
func startServer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	indexPath, wordsPath, err := WriteArtifacts(dir, BuildVocabulary(e2eFillers, 42), ".zst")
	require.NoError(t, err)

	noLimit := 0.0
	cfg := &config.Config{}
	cfg.Server.RateLimit = &noLimit
	cfg.Storage.IndexPath = indexPath
	cfg.Storage.WordsPath = wordsPath
	cfg.Storage.DatabasePath = filepath.Join(dir, "db", "leaderboard.db")
	config.ApplyDefaults(cfg)

	store := vocab.New(indexPath, wordsPath)
	t.Cleanup(func() { _ = store.Close() })
	board, err := storage.NewSQLiteLeaderboard(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = board.Close() })

	engine := search.NewEngine(store, search.WithCache(cfg.Search.CacheSize))
	svc := game.NewService(engine, board, game.Settings{
		DefaultCount:    cfg.Search.DefaultCount,
		MaxCount:        cfg.Search.MaxCount,
		RewardThreshold: cfg.Game.RewardThreshold,
		LeaderboardSize: cfg.Game.LeaderboardSize,
	}, nil)
	sugg := keyword.NewSuggester(store)
	t.Cleanup(func() { _ = sugg.Close() })

	ts := httptest.NewServer(server.NewServer(svc, store, sugg, cfg, nil).Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestE2E_AnalogiesResolveToCounterpart(t *testing.T) {
	client := cli.NewClient(startServer(t), "", "")
	ctx := context.Background()

	cases := AnalogyCases()
	t.Logf("running %d analogy cases", len(cases))
	for _, tc := range cases {
		tc := tc
		t.Run(tc.Name(), func(t *testing.T) {
			resp, err := client.Analogy(ctx, tc.A, tc.B, tc.C, 3)
			require.NoError(t, err)
			require.NotEmpty(t, resp.Results)
			assert.Equal(t, tc.Want, resp.Results[0].Word)
			assert.InDelta(t, 1, resp.Results[0].Score, 1e-6)
			assert.Less(t, resp.Results[1].Score, resp.Results[0].Score)
			assert.False(t, resp.Discovery, "anonymous players are never rewarded")
		})
	}
}

func TestE2E_QueriesAndLeaderboard(t *testing.T) {
	url := startServer(t)
	ctx := context.Background()
	ada := cli.NewClient(url, "p-ada", "ada")

	// monarch sits between king and queen; distances 0.128 and 0.4.
	resp, err := ada.Similar(ctx, "king", 2, models.Bounds{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "monarch", resp.Results[0].Word)
	assert.Equal(t, "queen", resp.Results[1].Word)
	assert.InDelta(t, 0.6, resp.Results[1].Score, 1e-5)
	assert.True(t, resp.Discovery)
	assert.Equal(t, "king", resp.Word)

	// Mix and between score distances: a single near hit stays under the threshold.
	resp, err = ada.Mix(ctx, "king - man + woman", 1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "queen", resp.Results[0].Word)
	assert.InDelta(t, 0, resp.Results[0].Score, 1e-5)
	assert.False(t, resp.Discovery)

	resp, err = ada.Between(ctx, "king", "queen", 1)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "monarch", resp.Results[0].Word)
	assert.False(t, resp.Discovery)

	resp, err = ada.Analogy(ctx, "man", "woman", "prince", 1)
	require.NoError(t, err)
	assert.Equal(t, "princess", resp.Results[0].Word)
	assert.True(t, resp.Discovery)
	assert.Equal(t, "prince", resp.Word)

	bob := cli.NewClient(url, "p-bob", "bob")
	_, err = bob.Between(ctx, "boy", "girl", 1)
	require.NoError(t, err)

	leaders, err := ada.Leaders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leaders.Players, 2)
	assert.Equal(t, "p-ada", leaders.Players[0].ID)
	assert.Equal(t, 2, leaders.Players[0].Score)
	assert.Equal(t, 0, leaders.Players[1].Score)
	assert.Equal(t, 1, leaders.Rank)
}

func TestE2E_UnknownWordSuggestsNeighbours(t *testing.T) {
	client := cli.NewClient(startServer(t), "", "")
	_, err := client.Similar(context.Background(), "quen", 3, models.Bounds{})

	var apiErr *cli.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "quen", apiErr.Word)
	assert.Contains(t, apiErr.Suggestions, "queen")
}

func TestE2E_InvalidQueries(t *testing.T) {
	client := cli.NewClient(startServer(t), "", "")
	ctx := context.Background()

	_, err := client.Mix(ctx, "king +", 3)
	var apiErr *cli.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = client.Between(ctx, "king", "king", 3)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestE2E_Status(t *testing.T) {
	client := cli.NewClient(startServer(t), "", "")
	ctx := context.Background()
	_, err := client.Similar(ctx, "girl", 1, models.Bounds{})
	require.NoError(t, err)

	status, err := client.Status(ctx)
	require.NoError(t, err)
	v, ok := status["vocabulary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, v["loaded"])
	assert.Equal(t, float64(3*len(Triplets)+e2eFillers), v["words"])
	assert.Equal(t, float64(Dimensions), v["dimensions"])
	assert.Equal(t, false, status["restart_required"])
}
