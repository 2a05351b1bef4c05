package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/search"
	"github.com/hyperjump/wordalchemy/internal/vocab/vocabtest"
)

type fakeBackend struct {
	calls []string
	err   error
}

func (f *fakeBackend) answer(op models.Operation, query string) (*models.QueryResponse, error) {
	f.calls = append(f.calls, string(op)+" "+query)
	if f.err != nil {
		return nil, f.err
	}
	return &models.QueryResponse{
		Operation: op,
		Query:     query,
		Results:   []models.WordScore{{Word: "kitten", Score: 0.91}},
		Discovery: true,
		Word:      "cat",
	}, nil
}

func (f *fakeBackend) Similar(_ context.Context, word string, count int) (*models.QueryResponse, error) {
	return f.answer(models.OpSimilar, word)
}

func (f *fakeBackend) Analogy(_ context.Context, a, b, c string, _ int) (*models.QueryResponse, error) {
	return f.answer(models.OpAnalogy, a+" "+b+" "+c)
}

func (f *fakeBackend) Mix(_ context.Context, q models.MixQuery, _ int) (*models.QueryResponse, error) {
	return f.answer(models.OpMix, q.String())
}

func (f *fakeBackend) Between(_ context.Context, a, b string, _ int) (*models.QueryResponse, error) {
	return f.answer(models.OpBetween, a+" "+b)
}

func (f *fakeBackend) Leaders(context.Context, int) (*models.LeaderboardResponse, error) {
	f.calls = append(f.calls, "leaders")
	return &models.LeaderboardResponse{
		Players: []*models.Player{{Name: "Ada", Score: 4}},
		Rank:    1,
	}, nil
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

// submit types line, presses enter and feeds the command's result back.
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		return m
	}
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestModel_RunsCommands(t *testing.T) {
	fb := &fakeBackend{}
	m := sized(New(fb, "6 words"))

	m = submit(t, m, "/similar cat 3")
	if len(fb.calls) != 1 || fb.calls[0] != "similar cat" {
		t.Fatalf("calls = %v", fb.calls)
	}
	if !strings.Contains(m.content, "kitten") || !strings.Contains(m.content, "Discovery") {
		t.Errorf("content:\n%s", m.content)
	}
	if m.busy {
		t.Error("model should not be busy after the result arrived")
	}

	m = submit(t, m, "/mix 0.5 cow + bull")
	m = submit(t, m, "/between hot cold")
	m = submit(t, m, "/analogy king man woman")
	m = submit(t, m, "/leaders")
	want := []string{"similar cat", "mix 0.5 cow + bull", "between hot cold", "analogy king man woman", "leaders"}
	if strings.Join(fb.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", fb.calls, want)
	}
	if !strings.Contains(m.content, "Ada - 4 points") {
		t.Errorf("leaders content:\n%s", m.content)
	}
	if !strings.Contains(m.View(), "Word Alchemy") {
		t.Error("view should render the header")
	}
}

func TestModel_ParseErrorsStayLocal(t *testing.T) {
	fb := &fakeBackend{}
	m := sized(New(fb, ""))
	m = submit(t, m, "/analogy king")
	if len(fb.calls) != 0 {
		t.Errorf("backend should not be called, got %v", fb.calls)
	}
	if !strings.HasPrefix(m.status, "Error: ") {
		t.Errorf("status = %q", m.status)
	}

	m = submit(t, m, "/help")
	if !strings.Contains(m.content, "/between a b") {
		t.Errorf("help content:\n%s", m.content)
	}
}

func TestModel_BackendErrors(t *testing.T) {
	fb := &fakeBackend{err: errors.New("word \"dragon\" not found")}
	m := sized(New(fb, ""))
	m = submit(t, m, "/similar dragon")
	if !strings.Contains(m.status, "dragon") || !strings.Contains(m.content, "not found") {
		t.Errorf("status = %q content = %q", m.status, m.content)
	}
}

func TestModel_History(t *testing.T) {
	m := sized(New(&fakeBackend{}, ""))
	m = submit(t, m, "/similar a")
	m = submit(t, m, "/similar b")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.input.Value() != "/similar b" {
		t.Errorf("first recall = %q", m.input.Value())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.input.Value() != "/similar a" {
		t.Errorf("second recall = %q", m.input.Value())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.input.Value() != "" {
		t.Errorf("past the newest entry input should be empty, got %q", m.input.Value())
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(&fakeBackend{}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestServiceBackend(t *testing.T) {
	svc := game.NewService(search.NewEngine(vocabtest.NewToyStore(t)), nil, game.Settings{}, nil)
	b := ServiceBackend{Service: svc}
	resp, err := b.Analogy(context.Background(), "king", "man", "queen", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Word != "woman" {
		t.Errorf("results = %+v", resp.Results)
	}
	if _, err := b.Leaders(context.Background(), 0); !errors.Is(err, game.ErrNoLeaderboard) {
		t.Errorf("Leaders without a board: %v", err)
	}
}
