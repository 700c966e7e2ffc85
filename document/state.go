// Package document implements the engine API (§6.3): the immutable-feeling
// State value and the operations that transform it (init/load/save/
// applyChanges/applyLocalChange/getChanges/getChangesAdded/getMissingDeps/
// getPatch/clone).
package document

import (
	"io"

	"weave/actor"
	"weave/columnar"
	"weave/graph"
	"weave/objmeta"
	"weave/opset"
)

// State is the document state (§3 "Document state"): the merged op columns
// plus the indices the engine needs to apply further changes without
// re-scanning history.
type State struct {
	Actors *actor.Table
	Ops    []columnar.Column
	NumOps int

	// Clock maps an actor's hex string (actor.ID.String()) to the highest
	// seq applied for that actor, enforcing invariant 3 (per-actor
	// monotonicity).
	Clock map[string]uint64

	// MaxOp is the highest op counter assigned anywhere in the document,
	// used to pick startOp for the next locally-authored change.
	MaxOp uint64

	Graph *graph.Graph
	Meta  *objmeta.Store
}

// Init returns an empty document: a bare root map, no ops, no history.
func Init() State {
	return State{
		Actors: actor.NewTable(),
		Clock:  make(map[string]uint64),
		Graph:  graph.New(),
		Meta:   objmeta.NewStore(),
	}
}

// Reader returns an opset.Reader over the document's current columns,
// resolving succ lists (document encoding uses Xref as succ, §3 Operation).
func (s State) Reader() *opset.Reader {
	return opset.NewReader(s.Ops, s.Actors)
}

// Rows decodes every row currently in the document.
func (s State) Rows() ([]opset.Row, error) {
	return decodeAll(s.Reader())
}

// decodeAll drains r into a slice, treating io.EOF as the expected
// end-of-stream marker and propagating every other error.
func decodeAll(r *opset.Reader) ([]opset.Row, error) {
	var rows []opset.Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Heads returns the document's current causal frontier, sorted ascending.
func (s State) Heads() []graph.ChangeHash {
	return s.Graph.Heads()
}

// Stats is a cheap introspection snapshot (op count, object count, clock),
// supplementing §6.3 for CLI/test use; it adds no new engine semantics.
type Stats struct {
	NumOps    int
	NumActors int
	NumHeads  int
	Clock     map[string]uint64
}

// Stats reports a snapshot of the document's size and per-actor progress.
func (s State) Stats() Stats {
	clock := make(map[string]uint64, len(s.Clock))
	for k, v := range s.Clock {
		clock[k] = v
	}
	return Stats{
		NumOps:    s.NumOps,
		NumActors: s.Actors.Len(),
		NumHeads:  len(s.Graph.Heads()),
		Clock:     clock,
	}
}

// Clone returns an independent snapshot of state (§5 "Clone"). The op
// columns themselves are never mutated in place once published (every
// merge writes a fresh column set and swaps it in atomically), so Clone
// shares that slice rather than copying it; every index structure that
// later calls could mutate is deep-copied.
func (s State) Clone() State {
	clock := make(map[string]uint64, len(s.Clock))
	for k, v := range s.Clock {
		clock[k] = v
	}
	return State{
		Actors: s.Actors.Clone(),
		Ops:    s.Ops,
		NumOps: s.NumOps,
		Clock:  clock,
		MaxOp:  s.MaxOp,
		Graph:  s.Graph.Clone(),
		Meta:   s.Meta.Clone(),
	}
}
