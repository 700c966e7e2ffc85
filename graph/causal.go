package graph

import "weave/docerr"

// Graph tracks the causal relationships between applied changes, keyed by
// ChangeHash (§4.6). It holds no mutex: the engine is single-threaded and
// single-owner per document (§5), so the only concurrency discipline it
// needs is copy-on-write via Clone.
type Graph struct {
	changeByHash       map[ChangeHash][]byte
	dependenciesByHash map[ChangeHash]map[ChangeHash]struct{}
	dependentsByHash   map[ChangeHash]map[ChangeHash]struct{}
	hashesByActor      map[string][]ChangeHash
	heads              map[ChangeHash]struct{}
}

// New creates an empty causal graph.
func New() *Graph {
	return &Graph{
		changeByHash:       make(map[ChangeHash][]byte),
		dependenciesByHash: make(map[ChangeHash]map[ChangeHash]struct{}),
		dependentsByHash:   make(map[ChangeHash]map[ChangeHash]struct{}),
		hashesByActor:      make(map[string][]ChangeHash),
		heads:              make(map[ChangeHash]struct{}),
	}
}

// Has reports whether hash is already present in the graph.
func (g *Graph) Has(hash ChangeHash) bool {
	_, ok := g.changeByHash[hash]
	return ok
}

// Change returns the raw bytes stored for hash.
func (g *Graph) Change(hash ChangeHash) ([]byte, bool) {
	b, ok := g.changeByHash[hash]
	return b, ok
}

// Add records a new change into the graph. deps must all already be present
// (the caller is responsible for causal-closure ordering within a batch);
// Add returns MissingDependency otherwise.
func (g *Graph) Add(hash ChangeHash, actorKey string, deps []ChangeHash, raw []byte) error {
	if g.Has(hash) {
		return nil
	}
	depSet := make(map[ChangeHash]struct{}, len(deps))
	for _, d := range deps {
		if !g.Has(d) {
			return docerr.MissingDependency{Hash: d.String()}
		}
		depSet[d] = struct{}{}
	}

	g.changeByHash[hash] = raw
	g.dependenciesByHash[hash] = depSet
	if _, ok := g.dependentsByHash[hash]; !ok {
		g.dependentsByHash[hash] = make(map[ChangeHash]struct{})
	}
	for d := range depSet {
		if g.dependentsByHash[d] == nil {
			g.dependentsByHash[d] = make(map[ChangeHash]struct{})
		}
		g.dependentsByHash[d][hash] = struct{}{}
		delete(g.heads, d)
	}
	g.hashesByActor[actorKey] = append(g.hashesByActor[actorKey], hash)
	g.heads[hash] = struct{}{}
	return nil
}

// Heads returns the current set of tip hashes, sorted ascending.
func (g *Graph) Heads() []ChangeHash {
	out := make([]ChangeHash, 0, len(g.heads))
	for h := range g.heads {
		out = append(out, h)
	}
	SortHashes(out)
	return out
}

// HashesByActor returns the sequence of hashes actorKey has contributed, in
// seq order. The returned slice must not be mutated.
func (g *Graph) HashesByActor(actorKey string) []ChangeHash {
	return g.hashesByActor[actorKey]
}

// Dependencies returns a copy of hash's deps set.
func (g *Graph) Dependencies(hash ChangeHash) []ChangeHash {
	deps := g.dependenciesByHash[hash]
	out := make([]ChangeHash, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	SortHashes(out)
	return out
}

// GetChanges returns every applied change not transitively implied by
// haveDeps, in a topologically-consistent order (§4.6).
func (g *Graph) GetChanges(haveDeps []ChangeHash) []ChangeHash {
	if out, ok := g.fastPath(haveDeps); ok {
		return out
	}
	return g.slowPath(haveDeps)
}

// fastPath walks forward from haveDeps through dependents; it succeeds only
// when every visited node's deps are themselves in the visited set and the
// walk reaches every head.
func (g *Graph) fastPath(haveDeps []ChangeHash) ([]ChangeHash, bool) {
	visited := make(map[ChangeHash]struct{}, len(haveDeps))
	var order []ChangeHash
	var stack []ChangeHash
	for _, h := range haveDeps {
		if !g.Has(h) {
			return nil, false
		}
		visited[h] = struct{}{}
		stack = append(stack, h)
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range g.dependentsByHash[cur] {
			if _, ok := visited[dep]; ok {
				continue
			}
			for d := range g.dependenciesByHash[dep] {
				if _, ok := visited[d]; !ok {
					return nil, false
				}
			}
			visited[dep] = struct{}{}
			order = append(order, dep)
			stack = append(stack, dep)
		}
	}

	for h := range g.heads {
		if _, ok := visited[h]; !ok {
			return nil, false
		}
	}
	return order, true
}

// slowPath computes the ancestor set of haveDeps by walking dependencies,
// then returns every applied change not in that set, each after its
// dependencies.
func (g *Graph) slowPath(haveDeps []ChangeHash) []ChangeHash {
	ancestors := make(map[ChangeHash]struct{})
	var stack []ChangeHash
	for _, h := range haveDeps {
		if _, ok := ancestors[h]; ok {
			continue
		}
		ancestors[h] = struct{}{}
		stack = append(stack, h)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range g.dependenciesByHash[cur] {
			if _, ok := ancestors[dep]; ok {
				continue
			}
			ancestors[dep] = struct{}{}
			stack = append(stack, dep)
		}
	}

	var out []ChangeHash
	var visit func(h ChangeHash)
	visit = func(h ChangeHash) {
		if _, ok := ancestors[h]; ok {
			return
		}
		ancestors[h] = struct{}{}
		for _, d := range g.Dependencies(h) {
			visit(d)
		}
		out = append(out, h)
	}
	for _, h := range g.Heads() {
		visit(h)
	}
	return out
}

// GetChangesAdded returns the difference self \ other: every hash reachable
// from self's heads through the dependency graph that stops at any hash
// present in other (§4.6).
func (g *Graph) GetChangesAdded(other *Graph) []ChangeHash {
	seen := make(map[ChangeHash]struct{})
	var order []ChangeHash
	var stack []ChangeHash
	stack = append(stack, g.Heads()...)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		if other.Has(cur) {
			continue
		}
		order = append(order, cur)
		for d := range g.dependenciesByHash[cur] {
			stack = append(stack, d)
		}
	}
	SortHashes(order)
	return order
}

// GetMissingDeps returns the hashes referenced by deps that are not present.
// Out-of-order application raises MissingDependency from Add instead of
// being tolerated, so in the current engine this is always empty (§4.6,
// §9 open question).
func (g *Graph) GetMissingDeps() []ChangeHash {
	return nil
}

// Clone returns an independent copy of the graph, sharing no backing maps
// with the original (§5 "snapshots").
func (g *Graph) Clone() *Graph {
	out := New()
	for h, b := range g.changeByHash {
		out.changeByHash[h] = b
	}
	for h, deps := range g.dependenciesByHash {
		cp := make(map[ChangeHash]struct{}, len(deps))
		for d := range deps {
			cp[d] = struct{}{}
		}
		out.dependenciesByHash[h] = cp
	}
	for h, deps := range g.dependentsByHash {
		cp := make(map[ChangeHash]struct{}, len(deps))
		for d := range deps {
			cp[d] = struct{}{}
		}
		out.dependentsByHash[h] = cp
	}
	for actorKey, hashes := range g.hashesByActor {
		out.hashesByActor[actorKey] = append([]ChangeHash(nil), hashes...)
	}
	for h := range g.heads {
		out.heads[h] = struct{}{}
	}
	return out
}
