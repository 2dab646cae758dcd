package board

import (
	"fmt"
	"log"
)

// DebugMoveValidation turns on the extra consistency assertions scattered
// through move generation and MakeMove (king-bitboard desync, illegal
// king captures). Off by default; "setoption name Debug value true" flips it.
var DebugMoveValidation bool

// GenerateLegalMoves returns every legal move for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.genPseudoMoves(ml)
	return p.filterLegal(ml)
}

// GeneratePseudoLegalMoves returns every pseudo-legal move, i.e. moves
// that may leave the mover's own king in check.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.genPseudoMoves(ml)
	return ml
}

// GenerateCaptures returns every legal capture (and capture-promotion),
// plus the non-capturing promotion pushes.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.genCaptureMoves(ml)
	return p.filterLegal(ml)
}

// genPseudoMoves generates all pseudo-legal moves for the side to move.
func (p *Position) genPseudoMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	if DebugMoveValidation {
		kingBB := p.Pieces[us][King]
		if kingBB == 0 {
			log.Printf("MOVEGEN FATAL: %v King bitboard empty! KingSquare=%v AllOcc=%x Hash=%x",
				us, p.KingSquare[us], uint64(p.AllOccupied), p.Hash)
		} else if p.KingSquare[us] != kingBB.LSB() {
			log.Printf("MOVEGEN FATAL: %v KingSquare=%v but King bitboard says %v! Hash=%x",
				us, p.KingSquare[us], kingBB.LSB(), p.Hash)
		}
	}

	p.genPawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		reach := KnightAttacks(from) & ^p.Occupied[us]
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		reach := BishopAttacks(from, occupied) & ^p.Occupied[us]
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		reach := RookAttacks(from, occupied) & ^p.Occupied[us]
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		reach := QueenAttacks(from, occupied) & ^p.Occupied[us]
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	p.genKingMoves(ml, us)
	p.genCastlingMoves(ml, us)
}

// genPawnMoves generates pushes, captures, promotions, and en passant for
// the given side.
func (p *Position) genPawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, captureLeft, captureRight Bitboard
	var promoRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		captureLeft = pawns.NorthWest() & enemies
		captureRight = pawns.NorthEast() & enemies
		promoRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		captureLeft = pawns.SouthWest() & enemies
		captureRight = pawns.SouthEast() & enemies
		promoRank = Rank1
		pushDir = -8
	}

	quietPush := push1 & ^promoRank
	for quietPush != 0 {
		to := quietPush.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*pushDir), to))
	}

	quietLeft := captureLeft & ^promoRank
	for quietLeft != 0 {
		to := quietLeft.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir+1), to))
	}

	quietRight := captureRight & ^promoRank
	for quietRight != 0 {
		to := quietRight.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir-1), to))
	}

	promoPush := push1 & promoRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir), to)
	}

	promoLeft := captureLeft & promoRank
	for promoLeft != 0 {
		to := promoLeft.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir+1), to)
	}

	promoRight := captureRight & promoRank
	for promoRight != 0 {
		to := promoRight.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir-1), to)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var attackers Bitboard
		if us == White {
			attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}
}

// appendPromotions adds all four promotion choices for a single pawn move.
func appendPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// genKingMoves generates the king's one-step moves, excluding castling.
func (p *Position) genKingMoves(ml *MoveList, us Color) {
	kingBB := p.Pieces[us][King]
	if kingBB == 0 {
		return
	}
	from := kingBB.LSB()
	reach := KingAttacks(from) & ^p.Occupied[us]
	for reach != 0 {
		ml.Add(NewMove(from, reach.PopLSB()))
	}
}

// genCastlingMoves generates any castle still available: rights intact,
// the path empty, and the king not moving through or into check.
func (p *Position) genCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 &&
			p.AllOccupied&((1<<F1)|(1<<G1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			ml.Add(NewCastling(E1, G1))
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 &&
			p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			ml.Add(NewCastling(E1, C1))
		}
		return
	}

	if p.CastlingRights&BlackKingSideCastle != 0 &&
		p.AllOccupied&((1<<F8)|(1<<G8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
		ml.Add(NewCastling(E8, G8))
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 &&
		p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 &&
		!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
		ml.Add(NewCastling(E8, C8))
	}
}

// genCaptureMoves generates every pseudo-legal capture, en-passant
// capture, and capture/push promotion — the move set quiescence search
// walks instead of the full move list.
func (p *Position) genCaptureMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	pawns := p.Pieces[us][Pawn]
	var captureLeft, captureRight Bitboard
	var promoRank Bitboard
	var pushDir int

	if us == White {
		captureLeft = pawns.NorthWest() & enemies
		captureRight = pawns.NorthEast() & enemies
		promoRank = Rank8
		pushDir = 8
	} else {
		captureLeft = pawns.SouthWest() & enemies
		captureRight = pawns.SouthEast() & enemies
		promoRank = Rank1
		pushDir = -8
	}

	quietLeft := captureLeft & ^promoRank
	for quietLeft != 0 {
		to := quietLeft.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir+1), to))
	}
	quietRight := captureRight & ^promoRank
	for quietRight != 0 {
		to := quietRight.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir-1), to))
	}

	promoLeft := captureLeft & promoRank
	for promoLeft != 0 {
		to := promoLeft.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir+1), to)
	}
	promoRight := captureRight & promoRank
	for promoRight != 0 {
		to := promoRight.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir-1), to)
	}

	// Queening pushes aren't captures, but quiescence treats them as
	// forcing moves in the same way.
	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		appendPromotions(ml, Square(int(to)-pushDir), to)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var attackers Bitboard
		if us == White {
			attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		reach := KnightAttacks(from) & enemies
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		reach := BishopAttacks(from, occupied) & enemies
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		reach := RookAttacks(from, occupied) & enemies
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		reach := QueenAttacks(from, occupied) & enemies
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	from := p.KingSquare[us]
	reach := KingAttacks(from) & enemies
	for reach != 0 {
		ml.Add(NewMove(from, reach.PopLSB()))
	}
}

// DebugLegalMoveVerification cross-checks the fast pin-based legality
// filter against the slow make/unmake path in filterLegal; enable during
// development to catch a fast-path bug rather than trusting it blind.
var DebugLegalMoveVerification = false

// filterLegal reduces a pseudo-legal move list down to legal moves. Most
// moves never touch make/unmake: a piece that isn't pinned and isn't the
// king can't expose its own king to check, so it's accepted on sight.
func (p *Position) filterLegal(ml *MoveList) *MoveList {
	result := NewMoveList()
	pinned := p.ComputePinned()
	ksq := p.KingSquare[p.SideToMove]
	inCheck := p.Checkers != 0

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		from := m.From()

		if inCheck {
			if p.IsLegalFast(m, pinned) {
				result.Add(m)
			}
			continue
		}

		if from != ksq && !m.IsEnPassant() && pinned&SquareBB(from) == 0 {
			if DebugLegalMoveVerification && !p.IsLegal(m) {
				fmt.Printf("DEBUG MISMATCH: fast path accepted move %v but slow path rejected it\n", m)
				fmt.Printf("DEBUG: pinned=%v from=%v ksq=%v\n", pinned, from, ksq)
				continue
			}
			result.Add(m)
			continue
		}

		if p.IsLegalFast(m, pinned) {
			if DebugLegalMoveVerification && !p.IsLegal(m) {
				fmt.Printf("DEBUG MISMATCH: IsLegalFast accepted move %v but IsLegal rejected it\n", m)
				continue
			}
			result.Add(m)
		} else if DebugLegalMoveVerification && p.IsLegal(m) {
			fmt.Printf("DEBUG MISMATCH: IsLegalFast rejected move %v but IsLegal accepted it\n", m)
			result.Add(m)
		}
	}

	return result
}

// IsLegalFast reports whether m is legal without make/unmake, using the
// same pinned-piece shortcut as filterLegal: a non-pinned, non-king,
// non-en-passant move can never expose its own king.
func (p *Position) IsLegalFast(m Move, pinned Bitboard) bool {
	from := m.From()
	to := m.To()
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	checkers := p.Checkers

	if from == ksq {
		if m.IsCastling() {
			return checkers == 0
		}
		occWithoutKing := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(to, them, occWithoutKing) == 0
	}

	if checkers != 0 {
		if checkers.PopCount() > 1 {
			return false // double check: only the king can move
		}

		checker := checkers.LSB()
		validTargets := SquareBB(checker) | Between(checker, ksq)

		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			if capturedSq == checker {
				return p.isLegalEnPassant(m)
			}
			return false
		}

		if validTargets&SquareBB(to) == 0 {
			return false
		}
		if pinned&SquareBB(from) != 0 && !Aligned(from, to, ksq) {
			return false
		}
		return true
	}

	if m.IsEnPassant() {
		// Removing two pawns from the same rank can expose a horizontal
		// attack the ordinary pin mask never models, so fall back to
		// make/unmake for this one case.
		return p.isLegalEnPassant(m)
	}

	if pinned&SquareBB(from) == 0 {
		return true
	}
	return Aligned(from, to, ksq)
}

// isLegalEnPassant is the make/unmake fallback IsLegalFast calls for
// en-passant moves. MakeMove itself rejects (and rolls back) a capture
// that would expose the king, so a valid make is all the proof needed.
func (p *Position) isLegalEnPassant(m Move) bool {
	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	p.UnmakeMove(m, undo)
	return true
}

// IsLegal checks legality the slow way, via make/unmake. Exported for
// filterLegal's debug cross-checks and for callers that only need to
// validate a single candidate move.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true // already validated during generation
		}
		occWithoutKing := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occWithoutKing) == 0
	}

	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	p.UnmakeMove(m, undo)
	return true
}

// GenerateChecks returns legal non-capture knight, bishop, rook and queen
// moves that give direct check, used by quiescence search to extend past
// captures into forcing check sequences. Pawn checks, king moves and
// discovered checks are not generated.
func (p *Position) GenerateChecks() *MoveList {
	ml := NewMoveList()
	p.genCheckMoves(ml)
	return p.filterLegal(ml)
}

// genCheckMoves generates pseudo-legal non-capture moves that attack the
// enemy king.
func (p *Position) genCheckMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemyKing := p.KingSquare[them]
	occupied := p.AllOccupied
	empty := ^occupied

	knightTargets := KnightAttacks(enemyKing) & empty
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		reach := KnightAttacks(from) & knightTargets
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	bishopTargets := BishopAttacks(enemyKing, occupied) & empty
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		reach := BishopAttacks(from, occupied) & bishopTargets
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	rookTargets := RookAttacks(enemyKing, occupied) & empty
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		reach := RookAttacks(from, occupied) & rookTargets
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}

	queenTargets := bishopTargets | rookTargets
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		reach := QueenAttacks(from, occupied) & queenTargets
		for reach != 0 {
			ml.Add(NewMove(from, reach.PopLSB()))
		}
	}
}

// MakeMove applies m, mutating the position in place, and returns an
// UndoInfo snapshot that restores everything MakeMove touched. UndoInfo's
// Valid field is false if m turned out to be pseudo-legal but not legal
// (left its own king in check); the position is rolled back before
// returning in that case, so the caller must only UnmakeMove after a
// valid make.
func (p *Position) MakeMove(m Move) UndoInfo {
	if DebugMoveValidation {
		us := p.SideToMove
		them := us.Other()
		if p.Pieces[us][King] == 0 {
			log.Printf("MAKEMOVE ENTRY: %v King bitboard empty! move=%v hash=%x", us, m, p.Hash)
		}
		if p.Pieces[them][King] == 0 {
			log.Printf("MAKEMOVE ENTRY: %v (opponent) King bitboard empty! move=%v hash=%x", them, m, p.Hash)
		}
		to := m.To()
		if captured := p.PieceAt(to); captured != NoPiece && captured.Type() == King {
			log.Printf("MAKEMOVE ILLEGAL: Trying to capture %v King at %v! move=%v hash=%x",
				captured.Color(), to, m, p.Hash)
		}
	}

	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		KingSquare:     p.KingSquare,
		Pieces:         p.Pieces,
		Occupied:       p.Occupied,
		AllOccupied:    p.AllOccupied,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}
	if piece.Color() != us {
		if DebugMoveValidation {
			log.Printf("DEBUG: MakeMove - trying to move %v piece when %v to move! Move: %v (from=%v to=%v)",
				piece.Color(), us, m, from, to)
		}
		return undo
	}

	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= sideToMoveKey
	p.Hash ^= castlingKeys[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= enPassantKeys[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.takePiece(capturedSq)
		p.Hash ^= pieceKeys[them][Pawn][capturedSq]
		p.PawnKey ^= pieceKeys[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.takePiece(to)
		p.Hash ^= pieceKeys[them][captured.Type()][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= pieceKeys[them][Pawn][to]
		}
	}

	p.relocatePiece(from, to)
	p.Hash ^= pieceKeys[us][pt][from]
	p.Hash ^= pieceKeys[us][pt][to]
	if pt == Pawn {
		p.PawnKey ^= pieceKeys[us][Pawn][from]
		p.PawnKey ^= pieceKeys[us][Pawn][to]
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= pieceKeys[us][Pawn][to]
		p.Hash ^= pieceKeys[us][promoPt][to]
		p.PawnKey ^= pieceKeys[us][Pawn][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.relocatePiece(rookFrom, rookTo)
		p.Hash ^= pieceKeys[us][Rook][rookFrom]
		p.Hash ^= pieceKeys[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= castlingKeys[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= enPassantKeys[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()

	// A pseudo-legal move can still leave the mover's own king in check
	// (e.g. a pinned piece moved off its ray); catch that here and roll
	// the move back rather than trusting move generation alone.
	usKingSq := p.KingSquare[us]
	if p.IsSquareAttacked(usKingSq, them) {
		if DebugMoveValidation {
			log.Printf("MAKEMOVE ILLEGAL: %v left King at %v in check! move=%v hash=%x",
				us, usKingSq, m, p.Hash)
		}
		p.UnmakeMove(m, undo)
		undo.Valid = false
	}

	return undo
}

// UnmakeMove restores the position to what it was before MakeMove(m),
// using the saved undo snapshot rather than reversing the move's effects
// piecemeal.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.SideToMove.Other()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}
}

// HasLegalMoves reports whether the side to move has at least one legal
// move, stopping at the first one found rather than building a full list.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	pinned := p.ComputePinned()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegalFast(ml.Get(i), pinned) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal
// reply.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move has no legal move and is
// not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw reports stalemate, the 50-move rule, or insufficient material.
// It does not check threefold repetition, which needs history beyond a
// single Position (see the search worker's own repetition tracking).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial reports whether neither side retains enough
// material to force checkmate (K vs K, or K+minor vs K).
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wMinors := p.Pieces[White][Knight].PopCount() + p.Pieces[White][Bishop].PopCount()
	bMinors := p.Pieces[Black][Knight].PopCount() + p.Pieces[Black][Bishop].PopCount()

	if wMinors+bMinors == 0 {
		return true
	}
	if wMinors <= 1 && bMinors == 0 {
		return true
	}
	if bMinors <= 1 && wMinors == 0 {
		return true
	}
	return false
}
