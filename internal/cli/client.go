package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status      int
	Message     string
	Word        string
	Suggestions []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Client talks to a running alchemy server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	playerID   string
	playerName string
}

// NewClient creates a client for baseURL. Player id and name are sent with
// every request when set.
func NewClient(baseURL, playerID, playerName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
		playerID:   playerID,
		playerName: playerName,
	}
}

// Similar calls POST /api/v1/similar.
func (c *Client) Similar(ctx context.Context, word string, count int, bounds models.Bounds) (*models.QueryResponse, error) {
	body := map[string]interface{}{"word": word, "count": count}
	if bounds.MinSimilarity != nil {
		body["min_similarity"] = *bounds.MinSimilarity
	}
	if bounds.MaxSimilarity != nil {
		body["max_similarity"] = *bounds.MaxSimilarity
	}
	var resp models.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/similar", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analogy calls POST /api/v1/analogy.
func (c *Client) Analogy(ctx context.Context, a, b, cw string, count int) (*models.QueryResponse, error) {
	body := map[string]interface{}{"a": a, "b": b, "c": cw, "count": count}
	var resp models.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/analogy", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Mix calls POST /api/v1/mix with an expression.
func (c *Client) Mix(ctx context.Context, expression string, count int) (*models.QueryResponse, error) {
	body := map[string]interface{}{"expression": expression, "count": count}
	var resp models.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/mix", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Between calls POST /api/v1/between.
func (c *Client) Between(ctx context.Context, a, b string, count int) (*models.QueryResponse, error) {
	body := map[string]interface{}{"a": a, "b": b, "count": count}
	var resp models.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/between", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Leaders calls GET /api/v1/leaders.
func (c *Client) Leaders(ctx context.Context, limit int) (*models.LeaderboardResponse, error) {
	path := "/api/v1/leaders"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var resp models.LeaderboardResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status calls GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	var resp map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.playerID != "" {
		req.Header.Set("X-Player-ID", c.playerID)
	}
	if c.playerName != "" {
		req.Header.Set("X-Player-Name", c.playerName)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error       string   `json:"error"`
			Word        string   `json:"word"`
			Suggestions []string `json:"suggestions"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error, Word: e.Word, Suggestions: e.Suggestions}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
