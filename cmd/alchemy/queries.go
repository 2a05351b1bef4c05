package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/internal/cli"
	"github.com/hyperjump/wordalchemy/internal/command"
	"github.com/hyperjump/wordalchemy/internal/game"
	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/internal/storage"
	"github.com/hyperjump/wordalchemy/internal/tui"
	"github.com/hyperjump/wordalchemy/internal/vocab"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// backend answers query subcommands, either over HTTP or on local artifacts.
type backend interface {
	Similar(ctx context.Context, word string, count int, bounds models.Bounds) (*models.QueryResponse, error)
	Analogy(ctx context.Context, a, b, c string, count int) (*models.QueryResponse, error)
	Mix(ctx context.Context, expression string, count int) (*models.QueryResponse, error)
	Between(ctx context.Context, a, b string, count int) (*models.QueryResponse, error)
	Leaders(ctx context.Context, limit int) (*models.LeaderboardResponse, error)
	Status(ctx context.Context) (map[string]interface{}, error)
}

// directBackend runs queries in-process as one player.
type directBackend struct {
	c      *Components
	player game.Player
	paths  []string
}

func (d *directBackend) Similar(ctx context.Context, word string, count int, bounds models.Bounds) (*models.QueryResponse, error) {
	return d.c.Game.Similar(ctx, d.player, word, count, bounds)
}

func (d *directBackend) Analogy(ctx context.Context, a, b, c string, count int) (*models.QueryResponse, error) {
	return d.c.Game.Analogy(ctx, d.player, a, b, c, count)
}

func (d *directBackend) Mix(ctx context.Context, expression string, count int) (*models.QueryResponse, error) {
	q, err := command.ParseMix(expression)
	if err != nil {
		return nil, err
	}
	return d.c.Game.Mix(ctx, d.player, q, count)
}

func (d *directBackend) Between(ctx context.Context, a, b string, count int) (*models.QueryResponse, error) {
	return d.c.Game.Between(ctx, d.player, a, b, count)
}

func (d *directBackend) Leaders(ctx context.Context, limit int) (*models.LeaderboardResponse, error) {
	return d.c.Game.Leaders(ctx, d.player, limit)
}

func (d *directBackend) Status(ctx context.Context) (map[string]interface{}, error) {
	if err := d.c.Store.Load(ctx); err != nil {
		return nil, err
	}
	out := map[string]interface{}{
		"vocabulary": d.c.Store.Stats(),
	}
	if board := d.c.Game.Leaderboard(); board != nil {
		n, err := board.CountPlayers(ctx)
		if err != nil {
			return nil, err
		}
		out["players"] = n
	}
	if n, err := storage.DiskUsageBytes(d.paths...); err == nil {
		out["disk_usage_bytes"] = n
	}
	return out, nil
}

// queryFlags are shared by every query subcommand.
type queryFlags struct {
	fs         *flag.FlagSet
	configPath *string
	serverURL  *string
	format     *string
	count      *int
	player     *string
	name       *string
	debug      *bool
}

func newQueryFlags(name string) *queryFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &queryFlags{
		fs:         fs,
		configPath: fs.String("config", configPathDefault(), "config file path (direct mode)"),
		serverURL:  fs.String("server", os.Getenv("ALCHEMY_SERVER"), "server URL (empty = run on local artifacts)"),
		format:     fs.String("format", "text", "output format: text, compact or json"),
		count:      fs.Int("count", 0, "number of results (0 = configured default)"),
		player:     fs.String("player", os.Getenv("ALCHEMY_PLAYER"), "player id credited with discoveries"),
		name:       fs.String("name", "", "player display name"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// argsReorder moves flags that follow positional arguments to the front so
// flag.Parse sees them ("alchemy similar king --count 3").
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' && !isNumber(a) {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// isNumber keeps negative multipliers such as "-0.5" positional.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parse parses args and opens the backend. The returned close func is never nil.
func (q *queryFlags) parse(args []string) (backend, func(), cli.OutputFormat) {
	_ = q.fs.Parse(argsReorder(args))
	format, err := cli.ParseFormat(*q.format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *q.serverURL != "" {
		return cli.NewClient(*q.serverURL, *q.player, *q.name), func() {}, format
	}
	c, logger := openDirect(*q.configPath, *q.debug)
	b := &directBackend{
		c:      c,
		player: game.Player{ID: *q.player, Name: *q.name},
		paths:  directPaths(c),
	}
	return b, func() {
		c.Close()
		_ = logger.Sync()
	}, format
}

func directPaths(c *Components) []string {
	index, words := c.Store.Paths()
	return []string{index, words}
}

// openDirect loads config and wires components for a run without a server.
func openDirect(configPath string, debug bool) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	if cfg.Debug || debug {
		if logger, err = utils.NewLogger(true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	c, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return c, logger
}

// fail prints err with suggestions for unknown words and exits.
func fail(b backend, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if d, ok := b.(*directBackend); ok && d.c.Suggester != nil {
		if word, nf := vocab.IsWordNotFound(err); nf {
			if sugg, sErr := d.c.Suggester.Words(context.Background(), word, 5); sErr == nil && len(sugg) > 0 {
				fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", strings.Join(sugg, ", "))
			}
		}
	}
	os.Exit(1)
}

func writeOrExit(resp *models.QueryResponse, format cli.OutputFormat) {
	if err := cli.WriteResults(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSimilar() {
	q := newQueryFlags("similar")
	minSim := q.fs.Float64("min", 0, "minimum similarity")
	maxSim := q.fs.Float64("max", 0, "maximum similarity")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	if q.fs.NArg() < 1 {
		fmt.Println("Usage: alchemy similar [flags] <word>")
		closeFn()
		os.Exit(1)
	}
	word := strings.TrimSpace(strings.Join(q.fs.Args(), " "))
	bounds := boundsFromFlags(q.fs, *minSim, *maxSim)

	resp, err := b.Similar(context.Background(), word, *q.count, bounds)
	if err != nil {
		fail(b, err)
	}
	writeOrExit(resp, format)
}

// boundsFromFlags sets only the bounds given on the command line.
func boundsFromFlags(fs *flag.FlagSet, minSim, maxSim float64) models.Bounds {
	var bounds models.Bounds
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min":
			v := minSim
			bounds.MinSimilarity = &v
		case "max":
			v := maxSim
			bounds.MaxSimilarity = &v
		}
	})
	return bounds
}

func runAnalogy() {
	q := newQueryFlags("analogy")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	if q.fs.NArg() != 3 {
		fmt.Println("Usage: alchemy analogy [flags] <a> <b> <c>")
		closeFn()
		os.Exit(1)
	}
	args := q.fs.Args()
	resp, err := b.Analogy(context.Background(), args[0], args[1], args[2], *q.count)
	if err != nil {
		fail(b, err)
	}
	writeOrExit(resp, format)
}

func runMix() {
	q := newQueryFlags("mix")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	expr := strings.TrimSpace(strings.Join(q.fs.Args(), " "))
	if expr == "" {
		fmt.Println(`Usage: alchemy mix [flags] <expression>   e.g. alchemy mix "2 king - man + woman"`)
		closeFn()
		os.Exit(1)
	}
	resp, err := b.Mix(context.Background(), expr, *q.count)
	if err != nil {
		fail(b, err)
	}
	writeOrExit(resp, format)
}

func runBetween() {
	q := newQueryFlags("between")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	if q.fs.NArg() != 2 {
		fmt.Println("Usage: alchemy between [flags] <a> <b>")
		closeFn()
		os.Exit(1)
	}
	args := q.fs.Args()
	resp, err := b.Between(context.Background(), args[0], args[1], *q.count)
	if err != nil {
		fail(b, err)
	}
	writeOrExit(resp, format)
}

func runLeaders() {
	q := newQueryFlags("leaders")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	resp, err := b.Leaders(context.Background(), *q.count)
	if err != nil {
		fail(b, err)
	}
	if err := cli.WriteLeaders(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	q := newQueryFlags("status")
	b, closeFn, format := q.parse(os.Args[2:])
	defer closeFn()
	status, err := b.Status(context.Background())
	if err != nil {
		fail(b, err)
	}
	if format == cli.OutputJSON {
		if err := cli.WriteJSON(os.Stdout, status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, status)
}

// writeStatusText prints status as sorted "key: value" lines, flattening
// nested objects with dotted keys.
func writeStatusText(w io.Writer, status map[string]interface{}) {
	flat := map[string]interface{}{}
	flatten("", toMap(status), flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := flat[k]
		// JSON numbers decode as float64
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			v = int64(f)
		}
		fmt.Fprintf(w, "%-28s %v\n", k+":", v)
	}
}

func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m := toMap(v); m != nil {
			flatten(key, m, out)
			continue
		}
		out[key] = v
	}
}

// toMap returns v as a map when it is one, converting vocabulary stats too.
func toMap(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return t
	case vocab.Stats:
		m := map[string]interface{}{
			"loaded":     t.Loaded,
			"words":      t.Words,
			"dimensions": t.Dimensions,
			"duplicates": t.Duplicates,
		}
		if t.IndexType != "" {
			m["index_type"] = t.IndexType
		}
		if t.Error != "" {
			m["error"] = t.Error
		}
		return m
	default:
		return nil
	}
}

func runREPL() {
	q := newQueryFlags("repl")
	_ = q.fs.Parse(argsReorder(os.Args[2:]))
	c, logger := openDirect(*q.configPath, *q.debug)
	defer c.Close()
	defer logger.Sync()

	ctx := context.Background()
	if err := c.Store.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load vocabulary: %v\n", err)
		os.Exit(1)
	}
	stats := c.Store.Stats()
	summary := fmt.Sprintf("%d words, %d dimensions", stats.Words, stats.Dimensions)

	player := game.Player{ID: *q.player, Name: *q.name}
	m := tui.New(tui.ServiceBackend{Service: c.Game, Player: player}, summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "repl failed: %v\n", err)
		os.Exit(1)
	}
}
