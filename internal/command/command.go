// Package command parses the slash commands of the interactive front-ends.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/wordalchemy/internal/models"
)

// Name identifies a command.
type Name string

const (
	Similar Name = "similar"
	Analogy Name = "analogy"
	Mix     Name = "mix"
	Between Name = "between"
	Leaders Name = "leaders"
	Help    Name = "help"
)

// ErrUnknownCommand is returned for a line that names no known command.
var ErrUnknownCommand = errors.New("unknown command")

// UsageError reports a known command with bad arguments.
type UsageError struct {
	Command Name
	Err     error
}

func (e *UsageError) Error() string {
	msg := "usage: " + Usage(e.Command)
	if e.Err != nil {
		msg = e.Err.Error() + "; " + msg
	}
	return msg
}

func (e *UsageError) Unwrap() error { return e.Err }

// Command is a parsed line. Count is 0 when not given.
type Command struct {
	Name  Name
	Args  []string
	Count int
	Mix   models.MixQuery
}

type syntax struct {
	usage   string
	example string
	desc    string
}

var commands = map[Name]syntax{
	Similar: {"/similar word [count]", "/similar cat 10", "find semantically similar words"},
	Analogy: {"/analogy a b c", "/analogy king man woman", "solve a is to b as c is to ?"},
	Mix:     {"/mix [mult] word [op] [mult] word ...", "/mix 0.5 cow + 0.1 bull - 0.2 udder", "blend words with operators and multipliers"},
	Between: {"/between a b", "/between hot cold", "find words on the line between two words"},
	Leaders: {"/leaders", "/leaders", "show the best alchemists"},
	Help:    {"/help", "/help", "show this help"},
}

var order = []Name{Similar, Analogy, Mix, Between, Leaders, Help}

// Usage returns the usage line of a command.
func Usage(n Name) string {
	return commands[n].usage
}

// HelpText lists every command with an example.
func HelpText() string {
	var sb strings.Builder
	for _, n := range order {
		c := commands[n]
		fmt.Fprintf(&sb, "%-40s %s\n", c.usage, c.desc)
		fmt.Fprintf(&sb, "%-40s example: %s\n", "", c.example)
	}
	return sb.String()
}

// Parse parses a line such as "/similar cat 10". The leading slash is optional.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}
	name := Name(strings.ToLower(strings.TrimPrefix(fields[0], "/")))
	if _, ok := commands[name]; !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	args := fields[1:]
	cmd := Command{Name: name, Args: args}

	switch name {
	case Similar:
		if len(args) < 1 || len(args) > 2 {
			return Command{}, &UsageError{Command: name}
		}
		if len(args) == 2 {
			// An unreadable count falls back to the default.
			if n, err := strconv.Atoi(args[1]); err == nil {
				cmd.Count = n
			}
		}
	case Analogy:
		if len(args) != 3 {
			return Command{}, &UsageError{Command: name}
		}
	case Between:
		if len(args) != 2 {
			return Command{}, &UsageError{Command: name}
		}
	case Mix:
		expr := strings.TrimSpace(line)
		expr = strings.TrimSpace(expr[len(fields[0]):])
		q, err := ParseMix(expr)
		if err != nil {
			return Command{}, &UsageError{Command: name, Err: err}
		}
		cmd.Mix = q
	}
	return cmd, nil
}
