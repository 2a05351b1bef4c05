package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/wordalchemy/internal/config"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/keyword"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/server"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/internal/vocab/vocabtest"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	unlimited := 0.0
	cfg.Server.RateLimit = &unlimited
	config.ApplyDefaults(cfg)

	store := vocabtest.NewToyStore(t)
	board, err := storage.NewSQLiteLeaderboard(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = board.Close() })
	svc := game.NewService(search.NewEngine(store), board, game.Settings{RewardThreshold: 0.8}, nil)
	sugg := keyword.NewSuggester(store)
	t.Cleanup(func() { _ = sugg.Close() })

	ts := httptest.NewServer(server.NewServer(svc, store, sugg, cfg, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Queries(t *testing.T) {
	ctx := context.Background()
	c := NewClient(newAPI(t).URL+"/", "p1", "Ada")

	resp, err := c.Similar(ctx, "king", 2, models.Bounds{})
	require.NoError(t, err)
	assert.Equal(t, "mid", resp.Results[0].Word)

	resp, err = c.Analogy(ctx, "king", "man", "queen", 1)
	require.NoError(t, err)
	assert.Equal(t, "woman", resp.Results[0].Word)
	assert.True(t, resp.Discovery)

	resp, err = c.Mix(ctx, "woman", 1)
	require.NoError(t, err)
	assert.Equal(t, "queen", resp.Results[0].Word)

	resp, err = c.Between(ctx, "king", "queen", 1)
	require.NoError(t, err)
	assert.Equal(t, "mid", resp.Results[0].Word)

	lb, err := c.Leaders(ctx, 5)
	require.NoError(t, err)
	require.Len(t, lb.Players, 1)
	assert.Equal(t, 1, lb.Rank)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Contains(t, status, "vocabulary")
}

func TestClient_APIError(t *testing.T) {
	c := NewClient(newAPI(t).URL, "", "")

	_, err := c.Similar(context.Background(), "quen", 3, models.Bounds{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "quen", apiErr.Word)
	assert.Contains(t, apiErr.Suggestions, "queen")
	assert.Contains(t, apiErr.Error(), "did you mean")

	_, err = c.Mix(context.Background(), "cow + - bull", 3)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}
