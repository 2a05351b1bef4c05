// Package tui is the interactive front-end of "alchemy repl".
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/wordalchemy/internal/command"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/models"
)

const queryTimeout = 2 * time.Minute

// Backend is the TUI-facing subset of the game service.
type Backend interface {
	Similar(ctx context.Context, word string, count int) (*models.QueryResponse, error)
	Analogy(ctx context.Context, a, b, c string, count int) (*models.QueryResponse, error)
	Mix(ctx context.Context, q models.MixQuery, count int) (*models.QueryResponse, error)
	Between(ctx context.Context, a, b string, count int) (*models.QueryResponse, error)
	Leaders(ctx context.Context, limit int) (*models.LeaderboardResponse, error)
}

// ServiceBackend runs commands on a game service as one player.
type ServiceBackend struct {
	Service *game.Service
	Player  game.Player
}

func (b ServiceBackend) Similar(ctx context.Context, word string, count int) (*models.QueryResponse, error) {
	return b.Service.Similar(ctx, b.Player, word, count, models.Bounds{})
}

func (b ServiceBackend) Analogy(ctx context.Context, a, bw, c string, count int) (*models.QueryResponse, error) {
	return b.Service.Analogy(ctx, b.Player, a, bw, c, count)
}

func (b ServiceBackend) Mix(ctx context.Context, q models.MixQuery, count int) (*models.QueryResponse, error) {
	return b.Service.Mix(ctx, b.Player, q, count)
}

func (b ServiceBackend) Between(ctx context.Context, a, bw string, count int) (*models.QueryResponse, error) {
	return b.Service.Between(ctx, b.Player, a, bw, count)
}

func (b ServiceBackend) Leaders(ctx context.Context, limit int) (*models.LeaderboardResponse, error) {
	return b.Service.Leaders(ctx, b.Player, limit)
}

// resultMsg carries the outcome of a command run off the UI goroutine.
type resultMsg struct {
	line    string
	query   *models.QueryResponse
	leaders *models.LeaderboardResponse
	err     error
}

// Model is the Bubble Tea model for the REPL.
type Model struct {
	backend  Backend
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	content  string
	history  []string
	histPos  int
	busy     bool
	ready    bool
}

// New creates a REPL model. summary is shown under the header.
func New(backend Backend, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "/similar cat 10, /analogy king man woman, /help"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		backend:  backend,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Type a command and press Enter. Ctrl+C quits.",
		content:  command.HelpText(),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-rh)
		m.viewport.SetContent(m.content)
		return m, nil
	case resultMsg:
		m.busy = false
		m.setContent(render(msg))
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Done: %s", msg.line)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			m.recall(-1)
			return m, nil
		case tea.KeyDown:
			m.recall(1)
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.busy {
		return m, nil
	}
	m.history = append(m.history, line)
	m.histPos = len(m.history)
	m.input.SetValue("")

	cmd, err := command.Parse(line)
	if err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	if cmd.Name == command.Help {
		m.setContent(command.HelpText())
		m.status = "Commands"
		return m, nil
	}
	m.busy = true
	m.status = "Thinking..."
	return m, m.run(line, cmd)
}

func (m Model) run(line string, cmd command.Command) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		out := resultMsg{line: line}
		switch cmd.Name {
		case command.Similar:
			out.query, out.err = backend.Similar(ctx, cmd.Args[0], cmd.Count)
		case command.Analogy:
			out.query, out.err = backend.Analogy(ctx, cmd.Args[0], cmd.Args[1], cmd.Args[2], 0)
		case command.Mix:
			out.query, out.err = backend.Mix(ctx, cmd.Mix, 0)
		case command.Between:
			out.query, out.err = backend.Between(ctx, cmd.Args[0], cmd.Args[1], 0)
		case command.Leaders:
			out.leaders, out.err = backend.Leaders(ctx, 0)
		}
		return out
	}
}

func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos += delta
	if m.histPos < 0 {
		m.histPos = 0
	}
	if m.histPos >= len(m.history) {
		m.histPos = len(m.history)
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[m.histPos])
	m.input.CursorEnd()
}

func (m *Model) setContent(s string) {
	m.content = s
	m.viewport.SetContent(s)
	m.viewport.GotoTop()
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Word Alchemy")
	summary := summaryStyle.Render(m.summary)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func render(msg resultMsg) string {
	var sb strings.Builder
	switch {
	case msg.err != nil:
		sb.WriteString(errorStyle.Render(msg.err.Error()))
	case msg.leaders != nil:
		sb.WriteString(headerStyle.Render("Top alchemists") + "\n\n")
		if len(msg.leaders.Players) == 0 {
			sb.WriteString("nobody has scored yet\n")
		}
		for i, p := range msg.leaders.Players {
			fmt.Fprintf(&sb, "%3d. %s - %d points\n", i+1, p.Name, p.Score)
		}
		if msg.leaders.Rank > 0 {
			fmt.Fprintf(&sb, "\nYour position: %d\n", msg.leaders.Rank)
		}
	case msg.query != nil:
		q := msg.query
		fmt.Fprintf(&sb, "%s  %s\n\n", headerStyle.Render(string(q.Operation)), q.Query)
		if len(q.Results) == 0 {
			sb.WriteString("no results\n")
		}
		for i, r := range q.Results {
			fmt.Fprintf(&sb, "%3d. %s (%.2f)\n", i+1, wordStyle.Render(r.Word), r.Score)
		}
		if q.Discovery {
			sb.WriteString("\n" + discoveryStyle.Render(fmt.Sprintf("Discovery! %q joins your collection.", q.Word)) + "\n")
		}
	}
	return sb.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	wordStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	discoveryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
