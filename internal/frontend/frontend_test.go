package frontend

import (
	"strings"
	"testing"

	"github.com/hailam/chessplay/internal/engine"
)

// collectLines builds a Frontend whose protocol output is captured into
// the returned slice instead of written to stdout.
func collectLines(t *testing.T) (*Frontend, *[]string) {
	t.Helper()
	var out []string
	f := NewLineSession(engine.NewEngine(1), func(line string) error {
		out = append(out, line)
		return nil
	})
	return f, &out
}

// TestPositionMovesBareCoordinatePromotion drives a bare four-character
// promotion move through the same path a GUI uses ("position ... moves"),
// checking it is applied as a queen promotion rather than rejected or
// resolved to some other piece.
func TestPositionMovesBareCoordinatePromotion(t *testing.T) {
	f, out := collectLines(t)

	f.HandleLine("position fen 8/P7/8/8/8/7k/8/7K w - - 0 1 moves a7a8")
	f.HandleLine("d")

	if len(*out) == 0 {
		t.Fatal("no output from d command")
	}
	fen := (*out)[len(*out)-1]
	if !strings.HasPrefix(fen, "Q7/") {
		t.Errorf("FEN after bare a7a8 = %q, want a queen on a8", fen)
	}
	if !strings.Contains(fen, " b ") {
		t.Errorf("FEN after a7a8 = %q, want black to move", fen)
	}
}

// TestPositionMovesExplicitUnderpromotion checks that an explicit
// promotion letter is honored rather than overridden by the queen default.
func TestPositionMovesExplicitUnderpromotion(t *testing.T) {
	f, out := collectLines(t)

	f.HandleLine("position fen 8/P7/8/8/8/7k/8/7K w - - 0 1 moves a7a8n")
	f.HandleLine("d")

	fen := (*out)[len(*out)-1]
	if !strings.HasPrefix(fen, "N7/") {
		t.Errorf("FEN after a7a8n = %q, want a knight on a8", fen)
	}
}

// TestPositionRejectsIllegalMove checks that an illegal move in a
// "position ... moves" list surfaces as an info string and stops the
// sequence without corrupting the installed position.
func TestPositionRejectsIllegalMove(t *testing.T) {
	f, out := collectLines(t)

	f.HandleLine("position startpos moves e2e5")

	found := false
	for _, line := range *out {
		if strings.Contains(line, "illegal move") && strings.Contains(line, "e2e5") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected an illegal-move info line for e2e5, got %v", *out)
	}

	*out = (*out)[:0]
	f.HandleLine("d")
	fen := (*out)[len(*out)-1]
	if !strings.HasPrefix(fen, "rnbqkbnr/pppppppp/") {
		t.Errorf("position after rejected move = %q, want the untouched starting position", fen)
	}
}
