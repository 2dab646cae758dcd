package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionTableReplacement(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.NewSearch()

	key := uint64(0xDEADBEEFCAFE1234)
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	tt.Store(key, 5, 100, TTExact, m1, false)
	entry, ok := tt.Probe(key)
	if !ok || entry.Depth != 5 || entry.BestMove != m1 {
		t.Fatalf("Probe after store = %+v, ok=%v; want depth 5, move %s", entry, ok, m1)
	}

	// A shallower entry from the same search must not displace a deeper one.
	tt.Store(key, 3, 50, TTExact, m2, false)
	entry, ok = tt.Probe(key)
	if !ok || entry.Depth != 5 || entry.BestMove != m1 {
		t.Errorf("shallower same-generation store replaced occupant: %+v", entry)
	}

	// A deeper entry always replaces.
	tt.Store(key, 7, 75, TTLowerBound, m2, false)
	entry, ok = tt.Probe(key)
	if !ok || entry.Depth != 7 || entry.BestMove != m2 || entry.Flag != TTLowerBound {
		t.Errorf("deeper store did not replace occupant: %+v", entry)
	}

	// After a generation bump the old entry is still probeable...
	tt.NewSearch()
	if _, ok := tt.Probe(key); !ok {
		t.Error("NewSearch invalidated a live entry; it should only affect replacement")
	}

	// ...but loses its seat to any entry from the current search, even a
	// shallower one.
	tt.Store(key, 2, 10, TTUpperBound, m1, false)
	entry, ok = tt.Probe(key)
	if !ok || entry.Depth != 2 || entry.BestMove != m1 {
		t.Errorf("old-generation occupant survived a current-generation store: %+v", entry)
	}
}

func TestTranspositionTableZeroCapacity(t *testing.T) {
	tt := NewTranspositionTable(0)
	if tt.Size() == 0 {
		t.Fatal("NewTranspositionTable(0) built an unusable table; want minimum viable size")
	}

	key := uint64(0x1234)
	tt.Store(key, 4, 30, TTExact, board.NewMove(board.G1, board.F3), false)
	if _, ok := tt.Probe(key); !ok {
		t.Error("store/probe on the fallback-sized table failed")
	}
}

func TestMateScorePlyAdjustmentRoundTrips(t *testing.T) {
	// A mate-in-3 found at ply 4 is stored relative to the node and must
	// read back as the same mate distance when probed at a different ply.
	score := MateScore - 7
	stored := AdjustScoreToTT(score, 4)
	if got := AdjustScoreFromTT(stored, 4); got != score {
		t.Errorf("round trip at same ply = %d, want %d", got, score)
	}

	// Probing the same entry two plies deeper sees a mate two plies farther
	// from the root.
	if got := AdjustScoreFromTT(stored, 6); got != score-2 {
		t.Errorf("probe at deeper ply = %d, want %d", got, score-2)
	}

	// Negative (getting mated) scores adjust symmetrically.
	mated := -MateScore + 5
	if got := AdjustScoreFromTT(AdjustScoreToTT(mated, 3), 3); got != mated {
		t.Errorf("mated-score round trip = %d, want %d", got, mated)
	}

	// Ordinary scores pass through untouched.
	if got := AdjustScoreFromTT(AdjustScoreToTT(137, 9), 2); got != 137 {
		t.Errorf("ordinary score was adjusted: got %d, want 137", got)
	}
}
