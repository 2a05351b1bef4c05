package command

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line      string
		wantName  Name
		wantArgs  []string
		wantCount int
	}{
		{"/similar cat", Similar, []string{"cat"}, 0},
		{"/similar cat 10", Similar, []string{"cat", "10"}, 10},
		{"/similar cat ten", Similar, []string{"cat", "ten"}, 0},
		{"similar cat 3", Similar, []string{"cat", "3"}, 3},
		{"/SIMILAR cat", Similar, []string{"cat"}, 0},
		{"/analogy king man woman", Analogy, []string{"king", "man", "woman"}, 0},
		{"/between hot cold", Between, []string{"hot", "cold"}, 0},
		{"/leaders", Leaders, []string{}, 0},
		{"/help", Help, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			if cmd.Name != tt.wantName {
				t.Errorf("name = %s, want %s", cmd.Name, tt.wantName)
			}
			if !reflect.DeepEqual(cmd.Args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", cmd.Args, tt.wantArgs)
			}
			if cmd.Count != tt.wantCount {
				t.Errorf("count = %d, want %d", cmd.Count, tt.wantCount)
			}
		})
	}
}

func TestParse_Mix(t *testing.T) {
	cmd, err := Parse("/mix 0.5 cow + bull")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Name != Mix {
		t.Fatalf("name = %s", cmd.Name)
	}
	if !reflect.DeepEqual(cmd.Mix.Words, []string{"cow", "bull"}) {
		t.Errorf("words = %v", cmd.Mix.Words)
	}
	if !reflect.DeepEqual(cmd.Mix.Multipliers, []float64{0.5, 1}) {
		t.Errorf("multipliers = %v", cmd.Mix.Multipliers)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, line := range []string{"", "   ", "/teleport here", "/similarx cat"} {
		if _, err := Parse(line); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Parse(%q) error = %v, want ErrUnknownCommand", line, err)
		}
	}

	usage := []string{"/similar", "/similar a 1 2", "/analogy a b", "/between a", "/mix", "/mix cow + - bull"}
	for _, line := range usage {
		_, err := Parse(line)
		var ue *UsageError
		if !errors.As(err, &ue) {
			t.Errorf("Parse(%q) error = %v, want UsageError", line, err)
			continue
		}
		if !strings.Contains(err.Error(), "usage: /") {
			t.Errorf("Parse(%q) error %q should carry usage", line, err)
		}
	}

	_, err := Parse("/mix cow + - bull")
	if !errors.Is(err, ErrDanglingOperator) {
		t.Errorf("mix parse error should unwrap to ErrDanglingOperator, got %v", err)
	}
}

func TestHelpText(t *testing.T) {
	text := HelpText()
	for _, n := range order {
		if !strings.Contains(text, Usage(n)) {
			t.Errorf("help text missing %s", n)
		}
	}
}
