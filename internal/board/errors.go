package board

import "errors"

// ErrBadFEN is returned by ParseFEN for any malformed FEN string; the
// caller's position is left unchanged.
var ErrBadFEN = errors.New("malformed FEN")

// ErrIllegalMove is returned when a proposed move is not in the legal set
// of the current position; the position is left unchanged.
var ErrIllegalMove = errors.New("illegal move")
