package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

// TestEvalFuncAdapter checks that EvalFunc satisfies Evaluator and that an
// engine built on it reports exactly the scripted score, independent of the
// position passed in: the seam pluggable evaluation relies on.
func TestEvalFuncAdapter(t *testing.T) {
	const fixedScore = 123
	stub := EvalFunc(func(pos *board.Position) int { return fixedScore })

	var _ Evaluator = stub

	eng := NewEngineWithEvaluator(1, stub)

	if got := eng.Evaluate(board.NewPosition()); got != fixedScore {
		t.Errorf("Evaluate() = %d, want %d", got, fixedScore)
	}

	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got := eng.Evaluate(pos); got != fixedScore {
		t.Errorf("Evaluate() on a different position = %d, want %d (stub ignores position)", got, fixedScore)
	}
}
