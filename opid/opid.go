// Package opid implements OpId: the (counter, actor) pair that totally
// orders every operation in the document engine.
package opid

import (
	"fmt"

	"weave/actor"
)

// OpID is the pair (counter, actor). Counters start at 1; 0 is reserved for
// the sentinel Nil value (used as the "no reference" elemId, e.g. the head
// of a list).
type OpID struct {
	Counter uint64
	Actor   actor.ID
}

// Nil is the zero OpID, used as the reference elemId meaning "insert at the
// head of the list" (§4.2 policy 2).
var Nil = OpID{}

// IsNil reports whether id is the Nil sentinel.
func (id OpID) IsNil() bool {
	return id.Counter == 0 && len(id.Actor) == 0
}

// Compare orders OpIds by (counter, actor), per spec invariant: OpIds are
// totally ordered by (counter, actor) — counter first, actor only as a
// tiebreaker. This is the opposite priority from a vector-clock-style
// (actor, counter) compare; getting the order backwards silently breaks
// insertion convergence (§4.2 policy 3) and the driver loop's tie-break
// rule (§4.4).
func (id OpID) Compare(other OpID) int {
	switch {
	case id.Counter < other.Counter:
		return -1
	case id.Counter > other.Counter:
		return 1
	}
	return id.Actor.Compare(other.Actor)
}

// Equal reports whether id and other name the same operation.
func (id OpID) Equal(other OpID) bool {
	return id.Counter == other.Counter && id.Actor.Equal(other.Actor)
}

// Less reports whether id sorts strictly before other.
func (id OpID) Less(other OpID) bool {
	return id.Compare(other) < 0
}

// String renders the OpId in the "ctr@actor" textual notation.
func (id OpID) String() string {
	if id.IsNil() {
		return "0@_head"
	}
	return fmt.Sprintf("%d@%s", id.Counter, id.Actor.String())
}

// Next returns the OpID that is span positions after id, on the same
// actor — used to step through a multi-op run (e.g. a chained insertion)
// without reconsulting the originating change.
func (id OpID) Next(span uint64) OpID {
	return OpID{Counter: id.Counter + span, Actor: id.Actor}
}

// SortOpIDs sorts a slice of OpIDs ascending in place using Compare. It is
// used wherever a succ list must be kept sorted by (ctr, actor) (§3
// invariant 4, §4.4 "merges change ops into the succ list").
func SortOpIDs(ids []OpID) {
	// Simple insertion sort: succ lists are short in practice (the number
	// of concurrent overwrites of one op), so an O(n^2) sort with no
	// allocation beats pulling in sort.Slice's closure overhead.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j].Less(ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// InsertSorted inserts id into an already-sorted (ascending) slice,
// preserving order, and returns the resulting slice. Used to add a single
// new successor into a doc op's succ list in O(n).
func InsertSorted(ids []OpID, id OpID) []OpID {
	i := 0
	for i < len(ids) && ids[i].Less(id) {
		i++
	}
	ids = append(ids, OpID{})
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
