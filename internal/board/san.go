package board

import (
	"strings"
)

// ToSAN renders m in Standard Algebraic Notation, playing it out on a
// scratch copy of pos to determine the trailing +/# marker.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String() // no piece to describe; fall back to UCI
	}

	if m.IsCastling() {
		if to > from {
			return "O-O"
		}
		return "O-O-O"
	}

	pt := piece.Type()
	var sb strings.Builder

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(sanDisambiguation(pos, m, pt))
	}

	if m.IsCapture(pos) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promotion()])
	}

	next := pos.Copy()
	next.MakeMove(m)
	switch {
	case next.IsCheckmate():
		sb.WriteByte('#')
	case next.InCheck():
		sb.WriteByte('+')
	}

	return sb.String()
}

// sanDisambiguation returns the minimal file/rank/square prefix needed to
// tell m apart from other legal moves of the same piece type landing on
// the same square.
func sanDisambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	sameType := pos.Pieces[pos.SideToMove][pt]

	var rivals []Square
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		cand := legal.Get(i)
		if cand.To() != to || cand.From() == from {
			continue
		}
		if sameType.IsSet(cand.From()) {
			rivals = append(rivals, cand.From())
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	fileClash, rankClash := false, false
	for _, sq := range rivals {
		if sq.File() == from.File() {
			fileClash = true
		}
		if sq.Rank() == from.Rank() {
			rankClash = true
		}
	}

	switch {
	case !fileClash:
		return string('a' + byte(from.File()))
	case !rankClash:
		return string('1' + byte(from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN parses a single SAN token against pos and returns the matching
// legal move. Returns NoMove (with a nil error) when nothing matches.
func ParseSAN(s string, pos *Position) (Move, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "O-O", "0-0", "O-O-O", "0-0-0":
		kingSide := s == "O-O" || s == "0-0"
		var m Move
		if pos.SideToMove == White {
			if kingSide {
				m = NewCastling(E1, G1)
			} else {
				m = NewCastling(E1, C1)
			}
		} else {
			if kingSide {
				m = NewCastling(E8, G8)
			} else {
				m = NewCastling(E8, C8)
			}
		}
		if pos.GenerateLegalMoves().Contains(m) {
			return m, nil
		}
		return NoMove, nil
	}

	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSuffix(s, "#")

	promoPiece := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 {
		switch s[idx+1] {
		case 'N':
			promoPiece = Knight
		case 'B':
			promoPiece = Bishop
		case 'R':
			promoPiece = Rook
		case 'Q':
			promoPiece = Queen
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.Replace(s, "x", "", -1)

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = Knight
		case 'B':
			pt = Bishop
		case 'R':
			pt = Rook
		case 'Q':
			pt = Queen
		case 'K':
			pt = King
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, nil
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		}
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.To() != dest {
			continue
		}

		from := m.From()
		if pos.PieceAt(from).Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if promoPiece != NoPieceType && (!m.IsPromotion() || m.Promotion() != promoPiece) {
			continue
		}

		return m, nil
	}

	return NoMove, nil
}

// MovesToSAN renders a sequence of moves in SAN, playing each one on a
// scratch copy of pos so later moves see the resulting position.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	scratch := pos.Copy()

	for i, m := range moves {
		result[i] = m.ToSAN(scratch)
		scratch.MakeMove(m)
	}

	return result
}
