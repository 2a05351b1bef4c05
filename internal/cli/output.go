// Package cli provides output formatting and an HTTP client for the alchemy CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/wordalchemy/internal/models"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// OutputFormat is the format for result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one "word<TAB>score" line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, compact or json)", s)
	}
}

const maxWordWidth = 32

// WriteResults writes a query response to w in the given format.
func WriteResults(w io.Writer, resp *models.QueryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		for _, r := range resp.Results {
			if _, err := fmt.Fprintf(w, "%s\t%.4f\n", r.Word, r.Score); err != nil {
				return err
			}
		}
		return nil
	default:
		writeResultsText(w, resp)
		return nil
	}
}

func writeResultsText(w io.Writer, resp *models.QueryResponse) {
	label := "distance"
	if resp.Operation.HigherIsBetter() {
		label = "similarity"
	}
	fmt.Fprintf(w, "\n%s: %s\n", resp.Operation, resp.Query)
	fmt.Fprintf(w, "Found %d results in %dms\n\n", len(resp.Results), resp.QueryTime)
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "  (no results)")
		return
	}
	width := 4
	for _, r := range resp.Results {
		if n := len([]rune(r.Word)); n > width {
			width = n
		}
	}
	if width > maxWordWidth {
		width = maxWordWidth
	}
	fmt.Fprintf(w, "  %3s  %-*s  %s\n", "#", width, "word", label)
	for i, r := range resp.Results {
		fmt.Fprintf(w, "  %3d  %-*s  %.4f\n", i+1, width, utils.Truncate(r.Word, maxWordWidth), r.Score)
	}
	if resp.Discovery {
		fmt.Fprintf(w, "\nDiscovery! %q joins your collection (+1 point).\n", resp.Word)
	}
	fmt.Fprintln(w)
}

// WriteLeaders writes a leaderboard to w in the given format.
func WriteLeaders(w io.Writer, resp *models.LeaderboardResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		for _, p := range resp.Players {
			if _, err := fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Score); err != nil {
				return err
			}
		}
		return nil
	default:
		fmt.Fprintln(w, "\nTop alchemists")
		fmt.Fprintln(w)
		if len(resp.Players) == 0 {
			fmt.Fprintln(w, "  (nobody has scored yet)")
		}
		for i, p := range resp.Players {
			fmt.Fprintf(w, "  %3d. %s - %d points\n", i+1, p.Name, p.Score)
		}
		if resp.Rank > 0 {
			fmt.Fprintf(w, "\nYour position: %d\n", resp.Rank)
		}
		fmt.Fprintln(w)
		return nil
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
