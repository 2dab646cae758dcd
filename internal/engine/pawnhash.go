package engine

import (
	"log"

	"github.com/dgraph-io/ristretto/v2"
)

// PawnEntry stores cached pawn structure evaluation.
type PawnEntry struct {
	MgScore int16 // Middlegame score
	EgScore int16 // Endgame score
}

// PawnTable is an in-memory cache of pawn-structure evaluations, keyed by
// the pawn-only Zobrist key. Positions sharing a pawn skeleton
// reuse the same entry regardless of where the pieces sit. Backed by
// ristretto rather than a hand-rolled fixed array so the cache can hold
// more live entries than its configured cost budget would allow a naive
// direct-mapped table to keep resident, at the price of losing entries
// under admission pressure — which the Searcher already tolerates, since a
// miss just recomputes the pawn terms.
type PawnTable struct {
	cache *ristretto.Cache[uint64, PawnEntry]
}

// NewPawnTable creates a new pawn hash cache sized in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, PawnEntry]{
		NumCounters: int64(sizeMB) * 1024 * 10, // ~10 keys tracked per KB of budget
		MaxCost:     int64(sizeMB) * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		// A cache we cannot construct is a startup-time bug (bad size), not
		// a condition the Searcher can recover from mid-search.
		log.Fatalf("pawn cache: %v", err)
	}
	return &PawnTable{cache: cache}
}

// Probe looks up a pawn structure evaluation in the cache.
// Returns the middlegame and endgame scores if found.
func (pt *PawnTable) Probe(key uint64) (mg, eg int, found bool) {
	entry, ok := pt.cache.Get(key)
	if !ok {
		return 0, 0, false
	}
	return int(entry.MgScore), int(entry.EgScore), true
}

// Store saves a pawn structure evaluation in the cache. ristretto buffers
// Set calls, so flush before returning: the Searcher probes the same key
// again within a few nodes and an invisible entry would mean recomputing
// the pawn terms on every visit.
func (pt *PawnTable) Store(key uint64, mg, eg int) {
	pt.cache.Set(key, PawnEntry{MgScore: int16(mg), EgScore: int16(eg)}, 1)
	pt.cache.Wait()
}

// Clear empties the pawn cache, for example between unrelated games.
func (pt *PawnTable) Clear() {
	pt.cache.Clear()
}
