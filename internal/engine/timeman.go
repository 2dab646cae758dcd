package engine

import (
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// UCILimits holds the time-control parameters a UCI "go" command supplies.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // moves left until the next control, 0 = sudden death
	MoveTime  time.Duration    // fixed per-move budget, overrides everything else
	Depth     int
	Nodes     uint64
	Infinite  bool
	Ponder    bool
}

// TimeManager decides how long the current search should run, and is
// re-initialized at the start of every move.
type TimeManager struct {
	optimum time.Duration
	maximum time.Duration
	started time.Time
}

// NewTimeManager returns an unconfigured manager; call Init before use.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init derives the optimum/maximum time budget for a move at the given
// ply from the UCI limits, using a simple moves-to-go estimate when the
// GUI doesn't supply one.
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.started = time.Now()

	if limits.MoveTime > 0 {
		tm.optimum = limits.MoveTime
		tm.maximum = limits.MoveTime
		return
	}

	if limits.Infinite || (limits.Time[us] == 0 && limits.MoveTime == 0) {
		tm.optimum = time.Hour
		tm.maximum = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: assume more moves remain early in the game, fewer
		// as it goes on.
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	base := timeLeft / time.Duration(mtg)
	base += inc * 9 / 10
	tm.optimum = base

	if ply < 8 {
		tm.optimum = base * 85 / 100 // hold back a little in the opening
	}

	fromOptimum := tm.optimum * 5
	fromRemaining := timeLeft * 8 / 10
	if fromOptimum < fromRemaining {
		tm.maximum = fromOptimum
	} else {
		tm.maximum = fromRemaining
	}

	if safety := timeLeft * 95 / 100; tm.maximum > safety {
		tm.maximum = safety
	}

	if tm.optimum < 10*time.Millisecond {
		tm.optimum = 10 * time.Millisecond
	}
	if tm.maximum < 50*time.Millisecond {
		tm.maximum = 50 * time.Millisecond
	}
}

// Elapsed is the time since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.started)
}

// OptimumTime is the target time for the current move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimum
}

// MaximumTime is the hard ceiling for the current move.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximum
}

// ShouldStop reports whether the maximum time has elapsed.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximum
}

// PastOptimum reports whether the optimum time has elapsed.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimum
}

// AdjustForStability shrinks the optimum time when the best move has held
// steady for several consecutive depths, since further search is unlikely
// to change the answer.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimum = tm.optimum * 40 / 100
	case stability >= 4:
		tm.optimum = tm.optimum * 60 / 100
	case stability >= 2:
		tm.optimum = tm.optimum * 80 / 100
	}
}

// AdjustForInstability grows the optimum time (capped at maximum) when the
// best move keeps flipping between depths.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimum = tm.optimum * 200 / 100
	case changes >= 2:
		tm.optimum = tm.optimum * 150 / 100
	}
	if tm.optimum > tm.maximum {
		tm.optimum = tm.maximum
	}
}
