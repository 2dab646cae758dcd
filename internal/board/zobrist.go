package board

// Zobrist keys, one random 64-bit value per (piece, square) pair plus one
// for each en-passant file, each castling-rights combination, and side to
// move. Position.Hash and Position.PawnKey are the XOR of the keys for
// whatever pieces/state currently apply, kept incremental in MakeMove.
var (
	pieceKeys     [2][7][64]uint64 // color x piece type x square; 7 slots so NoPieceType indexes safely
	enPassantKeys [8]uint64
	castlingKeys  [16]uint64
	sideToMoveKey uint64
)

func init() {
	seedZobristKeys()
}

// splitMix64 is a small deterministic generator; a fixed seed keeps hash
// values (and therefore transposition table behavior) reproducible across
// runs and machines.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

func (g *splitMix64) next() uint64 {
	g.state ^= g.state >> 12
	g.state ^= g.state << 25
	g.state ^= g.state >> 27
	return g.state * 0x2545F4914F6CDD1D
}

func seedZobristKeys() {
	gen := newSplitMix64(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				pieceKeys[c][pt][sq] = gen.next()
			}
		}
	}

	for file := 0; file < 8; file++ {
		enPassantKeys[file] = gen.next()
	}

	for i := 0; i < 16; i++ {
		castlingKeys[i] = gen.next()
	}

	sideToMoveKey = gen.next()
}

// ZobristPiece looks up the key for a piece of type pt and color c sitting
// on sq.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return pieceKeys[c][pt][sq]
}

// ZobristEnPassant looks up the key for an en-passant target on the given
// file.
func ZobristEnPassant(file int) uint64 {
	return enPassantKeys[file]
}

// ZobristCastling looks up the key for a full castling-rights bitmask.
func ZobristCastling(cr CastlingRights) uint64 {
	return castlingKeys[cr]
}

// ZobristSideToMove is the key XORed in whenever it is black's turn.
func ZobristSideToMove() uint64 {
	return sideToMoveKey
}
