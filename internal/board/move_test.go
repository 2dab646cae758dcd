package board

import "testing"

func TestParseMoveCoordinateForms(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/3Pp3/8/8/8/R3K2R w KQkq e6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	tests := []struct {
		in   string
		want Move
	}{
		{"a1a8", NewMove(A1, A8)},
		{"d5d6", NewMove(D5, D6)},
		{"e1g1", NewCastling(E1, G1)},
		{"e1c1", NewCastling(E1, C1)},
		{"d5e6", NewEnPassant(D5, E6)},
	}

	for _, tc := range tests {
		got, err := ParseMove(tc.in, pos)
		if err != nil {
			t.Errorf("ParseMove(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMove(%q) = %s (flag %x), want %s (flag %x)", tc.in, got, got.Flag(), tc.want, tc.want.Flag())
		}
	}

	for _, bad := range []string{"", "e2", "e2e", "e2e4q5", "i1a1", "a0a1"} {
		if got, err := ParseMove(bad, pos); err == nil {
			t.Errorf("ParseMove(%q) = %s, want error", bad, got)
		}
	}
}

func TestParseMoveBarePromotionDefaultsToQueen(t *testing.T) {
	pos, err := ParseFEN("8/P7/8/8/8/7k/8/7K w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	m, err := ParseMove("a7a8", pos)
	if err != nil {
		t.Fatalf("ParseMove(a7a8): %v", err)
	}
	if want := NewPromotion(A7, A8, Queen); m != want {
		t.Fatalf("ParseMove(a7a8) = %s (flag %x), want queen promotion %s", m, m.Flag(), want)
	}

	// An explicit promotion letter still wins over the default.
	n, err := ParseMove("a7a8n", pos)
	if err != nil {
		t.Fatalf("ParseMove(a7a8n): %v", err)
	}
	if want := NewPromotion(A7, A8, Knight); n != want {
		t.Errorf("ParseMove(a7a8n) = %s, want knight promotion %s", n, want)
	}

	// End to end: making the parsed bare move leaves a queen on a8.
	undo := pos.MakeMove(m)
	if !undo.Valid {
		t.Fatal("parsed promotion move was rejected by MakeMove")
	}
	if got := pos.PieceAt(A8); got != WhiteQueen {
		t.Errorf("piece on a8 after bare a7a8 = %v, want white queen", got)
	}
	pos.UnmakeMove(m, undo)

	// Same default from black's side, promoting on rank 1.
	bpos, err := ParseFEN("7k/8/8/8/8/8/p7/7K b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	bm, err := ParseMove("a2a1", bpos)
	if err != nil {
		t.Fatalf("ParseMove(a2a1): %v", err)
	}
	if want := NewPromotion(A2, A1, Queen); bm != want {
		t.Errorf("ParseMove(a2a1) = %s, want queen promotion %s", bm, want)
	}
}
