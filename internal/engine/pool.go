package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/board"
)

// Pool is a fixed-size root-parallel (lazy-SMP) search pool. Every
// worker runs its own iterative-deepening loop against the same position,
// sharing only the transposition table and a stop flag; the best move
// reported is the one from the deepest-completed, highest-scoring worker.
type Pool struct {
	tt        *TranspositionTable
	evaluator Evaluator
	workers   []*Worker
	stopFlag  atomic.Bool
}

// NewPool creates a Pool of numWorkers workers sharing tt and evaluator.
// numWorkers is clamped to at least 1.
func NewPool(numWorkers int, tt *TranspositionTable, evaluator Evaluator) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}

	p := &Pool{tt: tt, evaluator: evaluator}
	shared := NewSharedHistory()
	p.workers = make([]*Worker, numWorkers)
	for i := range p.workers {
		p.workers[i] = NewWorker(i, tt, evaluator, shared, &p.stopFlag)
	}
	return p
}

// Stop raises the shared stop flag; every worker observes it at its next
// polling point and returns.
func (p *Pool) Stop() {
	p.stopFlag.Store(true)
}

// Reset clears per-worker search state ahead of a new search.
func (p *Pool) Reset() {
	p.stopFlag.Store(false)
	for _, w := range p.workers {
		w.Reset()
	}
}

// Nodes returns the total node count across all workers in the pool.
func (p *Pool) Nodes() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.Nodes()
	}
	return total
}

// PoolResult is the outcome of one worker's deepest completed iteration.
type PoolResult struct {
	WorkerID int
	Depth    int
	Score    int
	Move     board.Move
	PV       []board.Move
}

// Search runs every worker's iterative-deepening loop up to maxDepth
// concurrently via an errgroup, returning the move/score/PV from the
// worker that completed the greatest depth (ties broken by the highest
// score, then lowest worker ID for determinism when workers agree). It
// returns immediately with ctx's error if ctx is already done.
func (p *Pool) Search(ctx context.Context, pos *board.Position, maxDepth int, rootHistory []uint64) (PoolResult, error) {
	if err := ctx.Err(); err != nil {
		return PoolResult{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]PoolResult, len(p.workers))

	// Bridge the context deadline to the stop flag every worker already
	// polls inside negamax/quiescence. Without this, gctx.Err() is only
	// checked between depth iterations, so a single deep iteration can run
	// arbitrarily far past the requested movetime budget.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-gctx.Done():
			p.stopFlag.Store(true)
		case <-watchDone:
		}
	}()

	for i, w := range p.workers {
		i, w := i, w
		g.Go(func() error {
			w.SetRootHistory(rootHistory)
			w.InitSearch(pos)

			var best PoolResult
			best.WorkerID = i

			for depth := 1; depth <= maxDepth; depth++ {
				if p.stopFlag.Load() || gctx.Err() != nil {
					break
				}
				move, score := w.SearchDepth(depth, -Infinity, Infinity)
				if p.stopFlag.Load() {
					break
				}
				if move != board.NoMove {
					best.Depth = depth
					best.Score = score
					best.Move = move
					best.PV = w.GetPV()
				}
			}

			results[i] = best
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return PoolResult{}, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Depth > best.Depth || (r.Depth == best.Depth && r.Score > best.Score) {
			best = r
		}
	}
	return best, nil
}
