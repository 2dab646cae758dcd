package board

// Color identifies which side a piece or player belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other flips White<->Black. It is not defined for NoColor, which it maps
// to 3 (callers never call Other on NoColor).
func (c Color) Other() Color {
	return c ^ 1
}

// String names the color, for logging and debug output.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is a chess piece kind, independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String names the piece type.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char is the lowercase FEN letter for the piece type.
func (pt PieceType) Char() byte {
	fenLetters := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return fenLetters[pt]
}

// PieceValue holds the material worth of each piece type in centipawns,
// indexed by PieceType; the trailing 0 covers NoPieceType.
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and a Color into one value: pieceType + color*6.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece combines a type and color into a Piece, or NoPiece if either
// input is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type extracts the PieceType half of the encoding.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color extracts the Color half of the encoding.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String is the FEN letter for the piece: uppercase for white, lowercase
// for black.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	letters := "PNBRQKpnbrqk"
	return string(letters[p])
}

// PieceFromChar maps a single FEN letter to its Piece, or NoPiece if the
// letter isn't a recognized piece character.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// Value looks up the piece's material worth in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
