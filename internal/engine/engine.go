package engine

import (
	"context"
	"sort"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
	MultiPV  int           // Number of principal variations to report (0 or 1 = single PV)

	// TimeManager, when set, replaces the plain MoveTime deadline with
	// stability-aware clock management: a hard stop at MaximumTime, a
	// soft "don't start another iteration" line at OptimumTime, and
	// OptimumTime itself shrinking or growing as the best move across
	// iterations stays put or keeps changing.
	TimeManager *TimeManager
}

// PVResult is one principal variation returned by SearchMultiPV.
type PVResult struct {
	Move  board.Move
	Score int
	Depth int
	PV    []board.Move
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // ~2-3 ply, 500ms
	Medium                   // ~4-5 ply, 2s
	Hard                     // ~6+ ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 5, MoveTime: 2 * time.Second},
	Hard:   {Depth: 7, MoveTime: 5 * time.Second},
}

// Engine is the chess AI engine.
type Engine struct {
	searcher   *Searcher
	tt         *TranspositionTable
	evaluator  Evaluator
	difficulty Difficulty

	// pool is non-nil once SetWorkers has requested more than one worker;
	// SearchWithLimits then runs the root-parallel search instead of
	// the single-threaded searcher.
	pool    *Pool
	workers int

	// Result of the most recently completed SearchWithLimits call, used by
	// SearchMultiPV to assemble each line's score/depth.
	lastScore   int
	lastDepth   int
	lastAborted bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	return NewEngineWithEvaluator(ttSizeMB, NewStaticEvaluator(1))
}

// NewEngineWithEvaluator creates a new chess engine backed by a
// caller-supplied Evaluator in place of the default static evaluator; the
// engine's search, time management, and reporting are otherwise identical
// regardless of evaluation source.
func NewEngineWithEvaluator(ttSizeMB int, evaluator Evaluator) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher:   NewSearcherWithEvaluator(tt, evaluator),
		tt:         tt,
		evaluator:  evaluator,
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// SetWorkers configures the engine to search with n concurrent lazy-SMP
// workers instead of the single-threaded searcher. n <= 1 reverts to
// single-threaded search.
func (e *Engine) SetWorkers(n int) {
	e.workers = n
	if n <= 1 {
		e.pool = nil
		return
	}
	e.pool = NewPool(n, e.tt, e.evaluator)
}

// Search finds the best move for the given position.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.SearchWithLimits(pos, limits)
}

// SearchWithLimits finds the best move with specific search limits. When
// SetWorkers has configured a Pool, it runs the root-parallel search
// instead of the single-threaded searcher.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	if e.pool != nil {
		return e.searchWithPool(pos, limits)
	}

	e.searcher.Reset()
	e.searcher.SetNodeCap(limits.Nodes)
	e.tt.NewSearch()

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int

	// Determine maximum depth
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	// Determine deadline
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	tm := limits.TimeManager
	if tm != nil {
		// A hard-stop watcher: negamax/quiescence only poll the stop flag
		// periodically, so a mid-iteration abort at MaximumTime needs
		// something outside the search loop raising it.
		watchDone := make(chan struct{})
		defer close(watchDone)
		go func() {
			ticker := time.NewTicker(5 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-watchDone:
					return
				case <-ticker.C:
					if tm.ShouldStop() {
						e.searcher.Stop()
						return
					}
				}
			}
		}()
	}

	stableDepths := 0
	unstableChanges := 0

	// Iterative deepening
	for depth := 1; depth <= maxDepth; depth++ {
		// Check time before starting new iteration
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if tm != nil && tm.ShouldStop() {
			break
		}

		var move board.Move
		var score int

		// Use aspiration windows after depth 4 and when we have a previous score
		if depth >= 5 && bestMove != board.NoMove {
			move, score = aspirationSearch(
				func(alpha, beta int) (board.Move, int) {
					return e.searcher.SearchWithBounds(pos, depth, alpha, beta)
				},
				bestScore, depth, e.searcher.IsStopped)
		} else {
			// Full window search for early depths
			move, score = e.searcher.Search(pos, depth)
		}

		// Check if search was stopped
		if e.searcher.stopFlag.Load() {
			break
		}

		// Update best move
		if move != board.NoMove {
			if tm != nil && bestMove != board.NoMove {
				if move == bestMove {
					stableDepths++
					unstableChanges = 0
					tm.AdjustForStability(stableDepths)
				} else {
					unstableChanges++
					stableDepths = 0
					tm.AdjustForInstability(unstableChanges)
				}
			}
			bestMove = move
			bestScore = score
			e.lastScore = score
			e.lastDepth = depth
		}

		// Report info
		if e.OnInfo != nil {
			elapsed := time.Since(startTime)
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    e.searcher.Nodes(),
				Time:     elapsed,
				PV:       e.searcher.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		// Early termination: found mate
		if score > MateScore-100 || score < -MateScore+100 {
			break
		}

		// Check time after iteration: don't start another once past the
		// optimum/high-water mark, whichever time source is in play.
		if tm != nil {
			if tm.PastOptimum() {
				break
			}
		} else if !deadline.IsZero() {
			elapsed := time.Since(startTime)
			remaining := limits.MoveTime - elapsed

			// If we've used more than half the time, don't start another iteration
			if remaining < elapsed {
				break
			}
		}
	}

	e.lastAborted = e.searcher.IsStopped()
	return bestMove
}

// Aspiration window half-width: aspirationBase plus aspirationSlope per
// ply of target depth, so deeper iterations (whose scores drift more
// between depths) start with a wider window.
const (
	aspirationBase  = 30
	aspirationSlope = 4
)

// aspirationSearch re-runs search at a single depth until the score lands
// strictly inside the window. The window starts centered on the previous
// iteration's score; the first fail doubles the half-width on the failed
// side and re-searches, and a second consecutive fail opens the window
// fully. stopped short-circuits the loop once the search has been
// aborted, handing back whatever the interrupted call returned (the
// caller discards results from a stopped search).
func aspirationSearch(search func(alpha, beta int) (board.Move, int), prevScore, depth int, stopped func() bool) (board.Move, int) {
	window := aspirationBase + depth*aspirationSlope
	alpha := prevScore - window
	beta := prevScore + window
	fails := 0

	for {
		move, score := search(alpha, beta)

		if stopped() {
			return move, score
		}
		if score > alpha && score < beta {
			return move, score
		}

		fails++
		if fails >= 2 {
			alpha, beta = -Infinity, Infinity
			continue
		}

		window *= 2
		if score <= alpha {
			alpha = prevScore - window
		} else {
			beta = prevScore + window
		}
	}
}

// LastSearchErr reports whether the most recently completed
// single-threaded SearchWithLimits call ended with the stop flag raised:
// by Stop, by the node cap, or by the TimeManager's hard limit. A plain
// MoveTime deadline is checked only between iterations and leaves it nil,
// as do reaching the depth limit and finding a mate. A pooled search
// reports an error only when it could not start.
func (e *Engine) LastSearchErr() error {
	if e.lastAborted {
		return ErrAbortedSearch
	}
	return nil
}

// searchWithPool runs the root-parallel search via e.pool, reporting a
// single OnInfo callback for the winning worker's deepest iteration.
func (e *Engine) searchWithPool(pos *board.Position, limits SearchLimits) board.Move {
	e.pool.Reset()
	e.tt.NewSearch()

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if limits.MoveTime > 0 {
		ctx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}

	startTime := time.Now()
	result, err := e.pool.Search(ctx, pos, maxDepth, nil)
	if err != nil {
		e.lastAborted = true
		return board.NoMove
	}

	e.lastAborted = false
	e.lastScore = result.Score
	e.lastDepth = result.Depth

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth:    result.Depth,
			Score:    result.Score,
			Nodes:    e.pool.Nodes(),
			Time:     time.Since(startTime),
			PV:       result.PV,
			HashFull: e.tt.HashFull(),
		})
	}

	return result.Move
}

// SearchMultiPV finds the top limits.MultiPV principal variations, best
// first. It runs one full SearchWithLimits pass per requested line,
// excluding every root move already reported so each later pass is forced
// onto the next-best line (the single-PV contract generalized via the
// worker's existing root-move exclusion).
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits) []PVResult {
	n := limits.MultiPV
	if n < 1 {
		n = 1
	}

	singleLimits := limits
	singleLimits.MultiPV = 0

	var results []PVResult
	var excluded []board.Move

	for i := 0; i < n; i++ {
		e.searcher.SetExcludedMoves(excluded)

		move := e.SearchWithLimits(pos, singleLimits)
		if move == board.NoMove {
			break
		}

		results = append(results, PVResult{
			Move:  move,
			Score: e.lastScore,
			Depth: e.lastDepth,
			PV:    e.searcher.GetPV(),
		})
		excluded = append(excluded, move)
	}

	e.searcher.SetExcludedMoves(nil)

	// Later passes search a warmer transposition table, so a weaker line can
	// come back a few centipawns above the line found before it; present the
	// results best-first regardless. Stable, so equal scores keep discovery
	// order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
	if e.pool != nil {
		e.pool.Stop()
	}
}

// SetPositionHistory records the position hashes seen earlier in the game,
// so the search's draw detection can see threefold repetition across the
// root boundary, not just within the current search tree.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.searcher.SetRootHistory(hashes)
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position from the engine's
// configured Evaluator.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.evaluator.Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
