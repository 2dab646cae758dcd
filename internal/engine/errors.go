package engine

import "errors"

// Sentinel errors for the closed set of recoverable conditions. Callers
// test with errors.Is rather than matching message text.
var (
	// ErrAbortedSearch marks a search that returned early because the stop
	// flag was observed; its score/move are not meaningful and callers
	// should fall back to the last completed iteration.
	ErrAbortedSearch = errors.New("search aborted")

	// ErrCapacityExceeded is returned when a transposition table is asked
	// to initialize with zero or negative capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)
