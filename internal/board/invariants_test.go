package board

import "testing"

// TestMakeUnmakeRestoresPosition checks that every legal move from a
// handful of positions round-trips through MakeMove/UnmakeMove back to the
// exact same Hash, PawnKey, and side to move — the invariant every search
// reduction (null move, LMR re-search, singular exclusion) leans on when it
// walks into a subtree and back out.
func TestMakeUnmakeRestoresPosition(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		wantHash := pos.Hash
		wantPawnKey := pos.PawnKey
		wantSide := pos.SideToMove

		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			if !undo.Valid {
				continue
			}
			pos.UnmakeMove(m, undo)

			if pos.Hash != wantHash {
				t.Errorf("%s: move %s: Hash after unmake = %016x, want %016x", fen, m, pos.Hash, wantHash)
			}
			if pos.PawnKey != wantPawnKey {
				t.Errorf("%s: move %s: PawnKey after unmake = %016x, want %016x", fen, m, pos.PawnKey, wantPawnKey)
			}
			if pos.SideToMove != wantSide {
				t.Errorf("%s: move %s: SideToMove after unmake = %v, want %v", fen, m, pos.SideToMove, wantSide)
			}
		}
	}
}

// TestZobristIncrementalMatchesScratch checks that the incrementally
// maintained Hash stays in sync with ComputeHash's from-scratch recompute
// across a short line of played moves, including castling, captures, and a
// promotion.
func TestZobristIncrementalMatchesScratch(t *testing.T) {
	pos := NewPosition()

	if got, want := pos.Hash, pos.ComputeHash(); got != want {
		t.Fatalf("starting position: incremental Hash = %016x, scratch = %016x", got, want)
	}

	moves := []Move{
		NewMove(E2, E4),
		NewMove(E7, E5),
		NewMove(G1, F3),
		NewMove(B8, C6),
		NewMove(F1, B5),
	}

	for _, m := range moves {
		undo := pos.MakeMove(m)
		if !undo.Valid {
			t.Fatalf("move %s was not valid from this line", m)
		}
		if got, want := pos.Hash, pos.ComputeHash(); got != want {
			t.Errorf("after %s: incremental Hash = %016x, scratch recompute = %016x", m, got, want)
		}
	}

	// Castling and a promotion onto the h8 rook's square exercise the
	// castling-rights and promotion terms the plain piece moves above
	// never touch.
	pos2, err := ParseFEN("4k2r/7P/8/8/8/8/8/4K3 w k - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	promo := NewPromotion(H7, H8, Queen)
	undo := pos2.MakeMove(promo)
	if !undo.Valid {
		t.Fatalf("promotion move was not valid")
	}
	if got, want := pos2.Hash, pos2.ComputeHash(); got != want {
		t.Errorf("after promotion: incremental Hash = %016x, scratch recompute = %016x", got, want)
	}

	pos3, err := ParseFEN("4k2r/8/8/8/8/8/8/4K3 b k - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	castle := NewCastling(E8, G8)
	undo = pos3.MakeMove(castle)
	if !undo.Valid {
		t.Fatalf("castling move was not valid")
	}
	if got, want := pos3.Hash, pos3.ComputeHash(); got != want {
		t.Errorf("after castling: incremental Hash = %016x, scratch recompute = %016x", got, want)
	}
}

// TestLegalMovesMatchMakeUnmakeTrial checks that the pin-bitboard fast
// path used by GenerateLegalMoves accepts exactly the pseudo-legal moves
// that survive a make/unmake trial — the agreement that lets the fast path
// skip make/unmake for most moves in the first place. Compared as
// multisets since generation order is not part of the contract.
func TestLegalMovesMatchMakeUnmakeTrial(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		fast := map[Move]int{}
		legal := pos.GenerateLegalMoves()
		for i := 0; i < legal.Len(); i++ {
			fast[legal.Get(i)]++
		}

		slow := map[Move]int{}
		pseudo := pos.GeneratePseudoLegalMoves()
		for i := 0; i < pseudo.Len(); i++ {
			m := pseudo.Get(i)
			undo := pos.MakeMove(m)
			if undo.Valid {
				pos.UnmakeMove(m, undo)
				slow[m]++
			}
		}

		for m, n := range slow {
			if fast[m] != n {
				t.Errorf("%s: move %s survives make/unmake %d time(s) but fast path emits it %d time(s)", fen, m, n, fast[m])
			}
		}
		for m, n := range fast {
			if slow[m] != n {
				t.Errorf("%s: fast path emits %s %d time(s) but make/unmake accepts it %d time(s)", fen, m, n, slow[m])
			}
		}
	}
}

// TestNullMoveTwiceIsIdentity checks that making a null move twice and
// unmaking it twice restores the exact starting Hash and en passant state —
// the property null-move pruning's caller in negamax relies on when it
// hands control back after a single null-move probe, and that a doubled
// null move (as can happen across adjacent plies in different recursion
// branches) never drifts the position.
func TestNullMoveTwiceIsIdentity(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	wantHash := pos.Hash
	wantEnPassant := pos.EnPassant
	wantSide := pos.SideToMove

	u1 := pos.MakeNullMove()
	u2 := pos.MakeNullMove()

	if pos.SideToMove != wantSide {
		t.Errorf("side to move after two null moves = %v, want %v (back to original)", pos.SideToMove, wantSide)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant target after null move = %v, want cleared", pos.EnPassant)
	}

	pos.UnmakeNullMove(u2)
	pos.UnmakeNullMove(u1)

	if pos.Hash != wantHash {
		t.Errorf("Hash after null-move-twice round trip = %016x, want %016x", pos.Hash, wantHash)
	}
	if pos.EnPassant != wantEnPassant {
		t.Errorf("EnPassant after null-move-twice round trip = %v, want %v", pos.EnPassant, wantEnPassant)
	}
	if pos.SideToMove != wantSide {
		t.Errorf("SideToMove after null-move-twice round trip = %v, want %v", pos.SideToMove, wantSide)
	}
}
