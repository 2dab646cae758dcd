package board

import "fmt"

// Move packs a move into 16 bits:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-13: promotion piece, 0=Knight 1=Bishop 2=Rook 3=Queen
//	bits 14-15: flag, 0=normal 1=promotion 2=en passant 3=castling
type Move uint16

const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove is the zero value, used as a sentinel for "no move found/played".
const NoMove Move = 0

// NewMove builds a plain, non-special move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a pawn promotion to promo (Knight/Bishop/Rook/Queen).
func NewPromotion(from, to Square, promo PieceType) Move {
	rank := promo - Knight // Knight=0 ... Queen=3 within the 2-bit field
	return Move(from) | Move(to)<<6 | Move(rank)<<12 | Move(FlagPromotion)
}

// NewEnPassant builds an en-passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling builds a castling move, encoded as the king's own travel
// (e1->g1, e1->c1, ...).
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

// From is the move's origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To is the move's destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag is one of the Flag* constants.
func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion is the promoted-to piece type; only meaningful when
// IsPromotion is true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

// IsCastling reports whether the move is a castle.
func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

// IsEnPassant reports whether the move is an en-passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture reports whether playing m against pos removes an enemy piece,
// counting en passant even though the captured pawn isn't on m.To().
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String renders UCI long algebraic notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	out := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoLetters := []byte{'n', 'b', 'r', 'q'}
		out += string(promoLetters[m.Promotion()-Knight])
	}
	return out
}

// ParseMove reads a UCI long algebraic move string against pos, which
// supplies the context (piece on `from`, current en-passant square)
// needed to tell a plain move from a castle or en-passant capture. A
// pawn move onto the last rank with no trailing promotion letter
// promotes to a queen.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}
	if pt == Pawn {
		if to == pos.EnPassant {
			return NewEnPassant(from, to), nil
		}
		if to.Rank() == 0 || to.Rank() == 7 {
			return NewPromotion(from, to, Queen), nil
		}
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-capacity, allocation-free list of moves, sized for
// the largest plausible legal move count in a single position.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList returns an empty list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends m.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len is the number of moves currently stored.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges the moves at i and j, used by move-ordering sorts.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m is present in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice exposes the stored moves as a slice, valid until the next Add.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo captures everything MakeMove changed so UnmakeMove can restore
// the position exactly, including a full snapshot of the piece bitboards
// rather than a computed delta.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool // false if the pseudo-legal move was rejected (left king in check)
}
