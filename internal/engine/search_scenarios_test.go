package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/chessplay/internal/board"
)

// TestFindsMateInOne checks that a one-move back-rank mate is found at a
// shallow depth and reported with a mate score, not just a large
// centipawn advantage.
func TestFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(4)
	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 4})

	want := board.NewMove(board.A1, board.A8)
	if move != want {
		t.Errorf("SearchWithLimits() move = %s, want %s (Ra8#)", move, want)
	}
	if eng.lastScore < MateScore-100 {
		t.Errorf("SearchWithLimits() score = %d, want a mate score (> %d)", eng.lastScore, MateScore-100)
	}
}

// TestAvoidsStalemateFromOverEagerPromotion checks that the search never
// throws away a won position by queening into an immediate stalemate.
//
// Position: White king a3, pawns b7 and h2; black king a1 alone. Queening
// or promoting to a rook on b8 covers the entire b-file, taking both of
// the black king's remaining flight squares (b1, b2) while the white king
// already covers a2 — stalemate, since the new piece isn't aligned with a1
// and so gives no check. Every other move (underpromoting, pushing the
// h-pawn, a king move) keeps the position completely winning, so the
// search must score the queen/rook promotions as draws and pick something
// else.
func TestAvoidsStalemateFromOverEagerPromotion(t *testing.T) {
	pos, err := board.ParseFEN("8/1P6/8/8/8/K7/7P/k7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	for _, depth := range []int{3, 5} {
		eng := NewEngine(4)
		move := eng.SearchWithLimits(pos.Copy(), SearchLimits{Depth: depth})

		if move == board.NoMove {
			t.Fatalf("depth %d: SearchWithLimits() returned NoMove", depth)
		}
		if move.IsPromotion() {
			switch move.Promotion() {
			case board.Queen, board.Rook:
				t.Errorf("depth %d: SearchWithLimits() promoted to %v, which stalemates black",
					depth, move.Promotion())
			}
		}
		if eng.lastScore <= 0 {
			t.Errorf("depth %d: lastScore = %d, want > 0 (white is winning)", depth, eng.lastScore)
		}
	}
}

// TestStalemateRootHasNoMove checks that a stalemated root position comes
// back with no best move and a draw score rather than a fabricated move.
func TestStalemateRootHasNoMove(t *testing.T) {
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(1)
	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 3})

	if move != board.NoMove {
		t.Errorf("SearchWithLimits() in stalemate = %s, want no move", move)
	}
	if eng.lastScore != 0 {
		t.Errorf("lastScore in stalemate = %d, want 0", eng.lastScore)
	}
}

// TestFiftyMoveRuleDrawsAtRoot checks that a root position whose halfmove
// clock has already reached 100 plies scores 0 even though white is a rook
// up — the draw has to be claimed before any move is weighed.
func TestFiftyMoveRuleDrawsAtRoot(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4R3/4K3 w - - 100 80")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(1)
	eng.SearchWithLimits(pos, SearchLimits{Depth: 2})

	if eng.lastScore != 0 {
		t.Errorf("lastScore with halfmove clock at 100 = %d, want 0", eng.lastScore)
	}
}

// TestThreefoldRepetitionDrawsAtRoot checks that a root position already
// seen twice in the game history scores 0.
func TestThreefoldRepetitionDrawsAtRoot(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/4R3/4K3 w - - 10 40")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(1)
	eng.SetPositionHistory([]uint64{pos.Hash, pos.Hash})
	eng.SearchWithLimits(pos, SearchLimits{Depth: 2})

	if eng.lastScore != 0 {
		t.Errorf("lastScore with position repeated twice before = %d, want 0", eng.lastScore)
	}
}

// TestStableCaptureAcrossDepths checks that an unambiguous, materially
// decisive capture is chosen at both a shallow depth (where most of the
// pruning heuristics' depth guards are barely active) and a deep depth
// (where razoring, futility, SEE, and late-move pruning are all live),
// so the aggressive pruning added at higher depths never discards the one
// objectively winning move a shallower search already sees.
func TestStableCaptureAcrossDepths(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/3q4/8/3R4/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	want := board.NewMove(board.D2, board.D4)

	for _, depth := range []int{2, 4, 6} {
		eng := NewEngine(4)
		move := eng.SearchWithLimits(pos.Copy(), SearchLimits{Depth: depth})
		if move != want {
			t.Errorf("depth %d: SearchWithLimits() move = %s, want %s (Rxd4)", depth, move, want)
		}
	}
}

// TestAspirationReSearchConverges checks that iterative deepening past
// depth 5, where the engine narrows the search window around the previous
// iteration's score, still returns a legal move and a completed (not
// aborted) search — i.e. a failed aspiration window's widen-and-re-search
// loop terminates with a usable result rather than returning early with a
// bound instead of an exact score.
func TestAspirationReSearchConverges(t *testing.T) {
	pos, err := board.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := NewEngine(8)
	move := eng.SearchWithLimits(pos, SearchLimits{Depth: 6})

	if move == board.NoMove {
		t.Fatal("SearchWithLimits() returned NoMove")
	}
	if err := eng.LastSearchErr(); err != nil {
		t.Errorf("LastSearchErr() = %v, want nil (search should run to completion)", err)
	}
	if eng.lastDepth < 5 {
		t.Errorf("lastDepth = %d, want >= 5 so the aspiration-window code path actually ran", eng.lastDepth)
	}
	if eng.lastScore < -MateScore || eng.lastScore > MateScore {
		t.Errorf("lastScore = %d, out of representable range", eng.lastScore)
	}

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == move {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("SearchWithLimits() returned %s, which is not a legal move in this position", move)
	}
}

// TestAspirationWindowDoublesThenOpensOnFailLow pins the widening schedule
// itself by scripting the per-window search callback: the first window is
// the depth-scaled base centered on the previous score, the first fail-low
// doubles the half-width on the low side only, and the second consecutive
// fail opens the window fully, where the score must finally land.
func TestAspirationWindowDoublesThenOpensOnFailLow(t *testing.T) {
	const (
		depth = 6
		prev  = 100
	)
	base := aspirationBase + depth*aspirationSlope
	wantMove := board.NewMove(board.E2, board.E4)

	var windows [][2]int
	search := func(alpha, beta int) (board.Move, int) {
		windows = append(windows, [2]int{alpha, beta})
		if alpha > -Infinity {
			return wantMove, alpha - 10 // fail low until the window is open
		}
		return wantMove, -700
	}

	move, score := aspirationSearch(search, prev, depth, func() bool { return false })

	if move != wantMove || score != -700 {
		t.Errorf("aspirationSearch() = (%s, %d), want (%s, -700)", move, score, wantMove)
	}

	wantWindows := [][2]int{
		{prev - base, prev + base},
		{prev - 2*base, prev + base},
		{-Infinity, Infinity},
	}
	if diff := cmp.Diff(wantWindows, windows); diff != "" {
		t.Errorf("window sequence mismatch (-want +got):\n%s", diff)
	}
}

// TestAspirationWindowDoublesThenOpensOnFailHigh mirrors the fail-low case:
// a first fail-high doubles the half-width on the high side only, and the
// second consecutive fail opens the window fully.
func TestAspirationWindowDoublesThenOpensOnFailHigh(t *testing.T) {
	const (
		depth = 8
		prev  = -50
	)
	base := aspirationBase + depth*aspirationSlope
	wantMove := board.NewMove(board.G1, board.F3)

	var windows [][2]int
	search := func(alpha, beta int) (board.Move, int) {
		windows = append(windows, [2]int{alpha, beta})
		if beta < Infinity {
			return wantMove, beta + 25 // fail high until the window is open
		}
		return wantMove, 900
	}

	move, score := aspirationSearch(search, prev, depth, func() bool { return false })

	if move != wantMove || score != 900 {
		t.Errorf("aspirationSearch() = (%s, %d), want (%s, 900)", move, score, wantMove)
	}

	wantWindows := [][2]int{
		{prev - base, prev + base},
		{prev - base, prev + 2*base},
		{-Infinity, Infinity},
	}
	if diff := cmp.Diff(wantWindows, windows); diff != "" {
		t.Errorf("window sequence mismatch (-want +got):\n%s", diff)
	}
}

// TestAspirationSearchStopsReSearching checks that a raised stop flag ends
// the widening loop after the in-flight call instead of burning re-searches
// whose results the caller will discard anyway.
func TestAspirationSearchStopsReSearching(t *testing.T) {
	calls := 0
	search := func(alpha, beta int) (board.Move, int) {
		calls++
		return board.NoMove, alpha - 1 // would fail low forever
	}

	aspirationSearch(search, 0, 6, func() bool { return true })

	if calls != 1 {
		t.Errorf("search called %d times after stop, want 1", calls)
	}
}
