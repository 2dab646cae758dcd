package board

import "testing"

func TestToSANBasicMoves(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		move Move
		want string
	}{
		{NewMove(E2, E4), "e4"},
		{NewMove(G1, F3), "Nf3"},
	}

	for _, tc := range tests {
		if got := tc.move.ToSAN(pos); got != tc.want {
			t.Errorf("ToSAN(%s) = %q, want %q", tc.move, got, tc.want)
		}
	}
}

func TestToSANDisambiguatesAndFlagsCheckmate(t *testing.T) {
	// Two white knights can both reach b3; the disambiguating file is
	// required for the move to round-trip through ParseSAN unambiguously.
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/N1N1K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	san := NewMove(A1, B3).ToSAN(pos)
	if san != "Nab3" {
		t.Errorf("ToSAN(Na1-b3) = %q, want %q", san, "Nab3")
	}

	mate, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	moves := mate.GenerateLegalMoves()
	if moves.Len() != 0 {
		t.Fatalf("expected no legal moves in this checkmate position, got %d", moves.Len())
	}

	checkPos, err := ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	sanMate := NewMove(A1, A8).ToSAN(checkPos)
	if sanMate != "Ra8#" {
		t.Errorf("ToSAN(Ra1-a8) = %q, want %q", sanMate, "Ra8#")
	}
}

func TestParseSANRoundTripsAllLegalMoves(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		legal := pos.GenerateLegalMoves()
		for i := 0; i < legal.Len(); i++ {
			want := legal.Get(i)
			san := want.ToSAN(pos)

			got, err := ParseSAN(san, pos)
			if err != nil {
				t.Errorf("%s: ParseSAN(%q) error: %v", fen, san, err)
				continue
			}
			if got != want {
				t.Errorf("%s: ParseSAN(%q) = %s, want %s", fen, san, got, want)
			}
		}
	}
}

func TestParseSANCastling(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	move, err := ParseSAN("O-O", pos)
	if err != nil {
		t.Fatalf("ParseSAN(O-O): %v", err)
	}
	if want := NewCastling(E1, G1); move != want {
		t.Errorf("ParseSAN(O-O) = %s, want %s", move, want)
	}

	move, err = ParseSAN("O-O-O", pos)
	if err != nil {
		t.Fatalf("ParseSAN(O-O-O): %v", err)
	}
	if want := NewCastling(E1, C1); move != want {
		t.Errorf("ParseSAN(O-O-O) = %s, want %s", move, want)
	}
}

func TestMovesToSANSequence(t *testing.T) {
	pos := NewPosition()
	line := []Move{
		NewMove(E2, E4),
		NewMove(E7, E5),
		NewMove(G1, F3),
	}

	got := MovesToSAN(pos, line)
	want := []string{"e4", "e5", "Nf3"}

	if len(got) != len(want) {
		t.Fatalf("MovesToSAN returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovesToSAN()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
