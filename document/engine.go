package document

import (
	"bytes"
	"io"

	"weave/action"
	"weave/actor"
	"weave/change"
	"weave/columnar"
	"weave/docerr"
	"weave/graph"
	"weave/merge"
	"weave/objid"
	"weave/objmeta"
	"weave/opid"
	"weave/opset"
	"weave/patch"
	"weave/seek"
	"weave/value"
)

var docMagic = [4]byte{'w', 'v', 'd', '1'}

const docFormatVersion = 1

// Save emits the §6.2 document blob: magic+version, the actor table, the
// ordered heads set, the merged columns, and every change's raw bytes in
// topological order.
func Save(s State) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(docMagic[:])
	buf.WriteByte(docFormatVersion)

	ids := s.Actors.IDs()
	columnar.PutUvarint(&buf, uint64(len(ids)))
	for _, a := range ids {
		columnar.PutLengthPrefixed(&buf, a)
	}

	heads := s.Heads()
	columnar.PutUvarint(&buf, uint64(len(heads)))
	for _, h := range heads {
		buf.Write(h[:])
	}

	colBytes, err := columnar.EncodeGroup(s.Ops)
	if err != nil {
		return nil, err
	}
	columnar.PutUvarint(&buf, uint64(len(colBytes)))
	buf.Write(colBytes)

	order := topoOrder(s.Graph)
	columnar.PutUvarint(&buf, uint64(len(order)))
	for _, h := range order {
		raw, _ := s.Graph.Change(h)
		columnar.PutLengthPrefixed(&buf, raw)
	}

	return buf.Bytes(), nil
}

// Load rehydrates a State from a blob produced by Save. ObjectMeta is not
// stored separately: every make* row already names its own parent object
// and key, so the index is rebuilt by a single scan of the merged columns.
// The heads set on the wire is consumed only to keep the format
// self-describing; the authoritative heads are rederived from the trailing
// change section's dependency edges.
func Load(data []byte) (State, error) {
	if len(data) < 5 || [4]byte(data[:4]) != docMagic {
		return State{}, docerr.StructuralDecode{Column: "document", Message: "bad magic"}
	}
	if data[4] != docFormatVersion {
		return State{}, docerr.StructuralDecode{Column: "document", Message: "unsupported version"}
	}
	r := bytes.NewReader(data[5:])

	actorCount, err := columnar.ReadUvarint(r)
	if err != nil {
		return State{}, err
	}
	table := actor.NewTable()
	for i := uint64(0); i < actorCount; i++ {
		a, err := columnar.ReadLengthPrefixed(r)
		if err != nil {
			return State{}, err
		}
		table.Intern(actor.ID(a))
	}

	headCount, err := columnar.ReadUvarint(r)
	if err != nil {
		return State{}, err
	}
	for i := uint64(0); i < headCount; i++ {
		var h graph.ChangeHash
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return State{}, docerr.StructuralDecode{Column: "document.heads", Message: "truncated hash"}
		}
	}

	colLen, err := columnar.ReadUvarint(r)
	if err != nil {
		return State{}, err
	}
	colBytes := make([]byte, colLen)
	if _, err := io.ReadFull(r, colBytes); err != nil {
		return State{}, docerr.StructuralDecode{Column: "document.ops", Message: "truncated column group"}
	}
	cols, err := columnar.DecodeGroup(colBytes)
	if err != nil {
		return State{}, err
	}

	changeCount, err := columnar.ReadUvarint(r)
	if err != nil {
		return State{}, err
	}
	pending := make([]*change.Change, 0, changeCount)
	for i := uint64(0); i < changeCount; i++ {
		raw, err := columnar.ReadLengthPrefixed(r)
		if err != nil {
			return State{}, err
		}
		c, err := change.Decode(raw)
		if err != nil {
			return State{}, err
		}
		pending = append(pending, c)
	}

	s := State{
		Actors: table,
		Ops:    cols,
		Clock:  make(map[string]uint64),
		Graph:  graph.New(),
	}

	rows, err := s.Rows()
	if err != nil {
		return State{}, err
	}
	s.Meta = rebuildMeta(rows)
	s.NumOps = len(rows)

	if err := addChangesToGraph(&s, pending); err != nil {
		return State{}, err
	}
	s.MaxOp = maxOpFromChanges(pending)
	return s, nil
}

// rebuildMeta reconstructs the ObjectMeta index by scanning every make*
// row: its own Obj/key name the parent, and its own ID names the child.
func rebuildMeta(rows []opset.Row) *objmeta.Store {
	meta := objmeta.NewStore()
	for _, row := range rows {
		if !row.Action.IsMake() {
			continue
		}
		key := objmeta.StrKey(row.KeyStr)
		if !row.IsStrKey {
			key = objmeta.ElemKey(row.KeyElem)
		}
		meta.Register(objid.New(row.ID), row.Obj, key, action.ForAction(row.Action))
	}
	return meta
}

func maxOpFromChanges(cs []*change.Change) uint64 {
	var max uint64
	for _, c := range cs {
		n := countRows(c.Reader())
		if n == 0 {
			continue
		}
		if top := c.StartOp + uint64(n) - 1; top > max {
			max = top
		}
	}
	return max
}

func countRows(r *opset.Reader) int {
	n := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		n++
	}
	return n
}

// topoOrder returns every change hash in the graph, parents before
// children, by walking the dependency DAG from the heads.
func topoOrder(g *graph.Graph) []graph.ChangeHash {
	var order []graph.ChangeHash
	visited := map[graph.ChangeHash]bool{}
	var visit func(h graph.ChangeHash)
	visit = func(h graph.ChangeHash) {
		if visited[h] {
			return
		}
		visited[h] = true
		for _, d := range g.Dependencies(h) {
			visit(d)
		}
		order = append(order, h)
	}
	for _, h := range g.Heads() {
		visit(h)
	}
	return order
}

func addChangesToGraph(s *State, pending []*change.Change) error {
	remaining := pending
	for len(remaining) > 0 {
		progressed := false
		var next []*change.Change
		for _, c := range remaining {
			if !depsReady(s.Graph, c.Deps) {
				next = append(next, c)
				continue
			}
			raw, err := change.Encode(c)
			if err != nil {
				return err
			}
			actorKey := c.Actor.String()
			if err := s.Graph.Add(c.Hash, actorKey, c.Deps, raw); err != nil {
				return err
			}
			if c.Seq > s.Clock[actorKey] {
				s.Clock[actorKey] = c.Seq
			}
			progressed = true
		}
		if !progressed {
			return docerr.MissingDependency{Hash: remaining[0].Deps[0].String()}
		}
		remaining = next
	}
	return nil
}

func depsReady(g *graph.Graph, deps []graph.ChangeHash) bool {
	for _, d := range deps {
		if !g.Has(d) {
			return false
		}
	}
	return true
}

// ApplyChanges is the core operation (§6.3): it merges each change's ops
// into the document in causal order and returns the new state plus the
// combined patch.
func ApplyChanges(s State, changeBytes [][]byte) (State, *patch.ObjectPatch, error) {
	next := s.Clone()
	acc := patch.New(next.Meta)

	decoded := make([]*change.Change, 0, len(changeBytes))
	for _, b := range changeBytes {
		c, err := change.Decode(b)
		if err != nil {
			return s, nil, err
		}
		decoded = append(decoded, c)
	}

	remaining := decoded
	for len(remaining) > 0 {
		progressed := false
		var deferred []*change.Change
		for _, c := range remaining {
			if next.Graph.Has(c.Hash) {
				// already applied: a repeated change is a no-op
				progressed = true
				continue
			}
			if !depsReady(next.Graph, c.Deps) {
				deferred = append(deferred, c)
				continue
			}
			if err := applyOneChange(&next, acc, c); err != nil {
				return s, nil, err
			}
			progressed = true
		}
		if !progressed {
			return s, nil, docerr.MissingDependency{Hash: remaining[0].Deps[0].String()}
		}
		remaining = deferred
	}

	p, err := acc.Finalize(childIndexFunc(&next))
	if err != nil {
		return s, nil, err
	}
	return next, p, nil
}

func applyOneChange(s *State, acc *patch.Accumulator, c *change.Change) error {
	actorKey := c.Actor.String()
	expected := s.Clock[actorKey] + 1
	if c.Seq != expected {
		return docerr.BadSequence{Actor: actorKey, Expected: expected, Got: c.Seq}
	}

	docRows, err := s.Rows()
	if err != nil {
		return err
	}
	changeRows, err := decodeAll(c.Reader())
	if err != nil {
		return err
	}

	merged, err := merge.Apply(docRows, changeRows, acc, s.Meta)
	if err != nil {
		return err
	}

	table := actor.NewTable()
	w := opset.NewWriter(table)
	for _, row := range merged {
		w.Append(row)
	}

	raw, err := change.Encode(c)
	if err != nil {
		return err
	}
	if err := s.Graph.Add(c.Hash, actorKey, c.Deps, raw); err != nil {
		return err
	}

	s.Actors = table
	s.Ops = w.Columns()
	s.NumOps = w.Len()
	s.Clock[actorKey] = c.Seq
	if n := len(changeRows); n > 0 {
		if top := c.StartOp + uint64(n) - 1; top > s.MaxOp {
			s.MaxOp = top
		}
	}
	return nil
}

// ApplyLocalChange signs and applies a locally-authored change (§6.3): it
// assigns OpIds and pred lists from the current document, encodes the
// change, and merges it exactly as ApplyChanges would.
func ApplyLocalChange(s State, req LocalChangeRequest) (State, *patch.ObjectPatch, []byte, error) {
	rows, err := s.Rows()
	if err != nil {
		return s, nil, nil, err
	}

	startOp := s.MaxOp + 1
	actorSet := map[string]actor.ID{req.Actor.String(): req.Actor}
	changeRows := make([]opset.Row, 0, len(req.Ops))

	for i, intent := range req.Ops {
		id := opid.OpID{Counter: startOp + uint64(i), Actor: req.Actor}

		var preds []opid.OpID
		if !intent.Insert {
			preds = visibleAt(rows, intent.Obj, intent.IsStrKey, intent.KeyStr, intent.KeyElem)
		}
		for _, p := range preds {
			actorSet[p.Actor.String()] = p.Actor
		}
		if !intent.IsStrKey {
			actorSet[intent.KeyElem.Actor.String()] = intent.KeyElem.Actor
		}

		row := opset.Row{
			Obj:      intent.Obj,
			Insert:   intent.Insert,
			IsStrKey: intent.IsStrKey,
			KeyStr:   intent.KeyStr,
			KeyElem:  intent.KeyElem,
			ID:       id,
			Action:   intent.Action,
			Value:    intent.Value,
			Xref:     preds,
		}
		changeRows = append(changeRows, row)
		// Thread this op into the scratch view so a later op in the same
		// request (scenario 4: insert then delete in one change) resolves
		// its preds against it.
		rows = threadLocalRow(rows, row)
	}

	actorIDs := []actor.ID{req.Actor}
	for k, a := range actorSet {
		if k == req.Actor.String() {
			continue
		}
		actorIDs = append(actorIDs, a)
	}

	table := actor.NewTable()
	for _, a := range actorIDs {
		table.Intern(a)
	}
	w := opset.NewWriter(table)
	for _, row := range changeRows {
		w.Append(row)
	}

	c := &change.Change{
		Actor:    req.Actor,
		Seq:      s.Clock[req.Actor.String()] + 1,
		StartOp:  startOp,
		Time:     req.Time,
		Message:  req.Message,
		Deps:     s.Heads(),
		ActorIDs: actorIDs,
		Ops:      w.Columns(),
	}
	raw, err := change.Encode(c)
	if err != nil {
		return s, nil, nil, err
	}

	next, p, err := ApplyChanges(s, [][]byte{raw})
	if err != nil {
		return s, nil, nil, err
	}
	return next, p, raw, nil
}

// GetChanges returns every change not implied by haveDeps, encoded (§4.6).
func GetChanges(s State, haveDeps []graph.ChangeHash) ([][]byte, error) {
	return collectChanges(s.Graph, s.Graph.GetChanges(haveDeps))
}

// GetChangesAdded returns every change present in s but not in other.
func GetChangesAdded(s, other State) ([][]byte, error) {
	return collectChanges(s.Graph, s.Graph.GetChangesAdded(other.Graph))
}

func collectChanges(g *graph.Graph, hashes []graph.ChangeHash) ([][]byte, error) {
	out := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		raw, ok := g.Change(h)
		if !ok {
			return nil, docerr.MissingDependency{Hash: h.String()}
		}
		out = append(out, raw)
	}
	return out, nil
}

// GetMissingDeps reports dependencies referenced but not present (§4.6);
// always empty in this engine, since Add rejects out-of-order application
// outright rather than tolerating it.
func GetMissingDeps(s State) []graph.ChangeHash {
	return s.Graph.GetMissingDeps()
}

// GetPatch synthesizes a patch as if the entire document were being sent
// to a fresh frontend (§6.3): every visible op is replayed into a fresh
// accumulator with no pred/succ bookkeeping, since nothing in a from-
// scratch view is being overwritten.
func GetPatch(s State) (*patch.ObjectPatch, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	acc := patch.New(s.Meta.Clone())

	for i, row := range rows {
		// An inc op never surfaces as its own property: its value is folded
		// into the counter it targets and read off the set row below.
		if row.Action == action.Increment {
			continue
		}

		if !visible(rows, i) {
			continue
		}
		ot := objType(s.Meta, row.Obj)

		if row.IsStrKey {
			switch {
			case row.Action.IsMake():
				childID := objid.New(row.ID)
				acc.RecordMake(childID, row.Obj, objmeta.StrKey(row.KeyStr), action.ForAction(row.Action))
				child, _ := acc.Object(childID)
				acc.RecordProp(row.Obj, ot, row.KeyStr, row.ID, row.Value, child)
			case row.Value.IsCounter():
				acc.RecordProp(row.Obj, ot, row.KeyStr, row.ID, value.CounterValue(opset.CounterValue(rows, i)), nil)
			default:
				acc.RecordProp(row.Obj, ot, row.KeyStr, row.ID, row.Value, nil)
			}
			continue
		}

		if !row.Insert {
			continue
		}
		idx := seek.VisibleBefore(rows, row.Obj, i)
		if row.Value.IsCounter() {
			acc.RecordListInsert(row.Obj, ot, idx, row.ID, row.ID, value.CounterValue(opset.CounterValue(rows, i)))
		} else {
			acc.RecordListInsert(row.Obj, ot, idx, row.ID, row.ID, row.Value)
		}
		if row.Action.IsMake() {
			childID := objid.New(row.ID)
			acc.RecordMake(childID, row.Obj, objmeta.ElemKey(row.ID), action.ForAction(row.Action))
		}
	}

	return acc.Finalize(childIndexFunc(&s))
}

func objType(meta *objmeta.Store, obj objid.ID) action.ObjType {
	if obj.IsRoot() {
		return action.Map
	}
	e, ok := meta.Get(obj)
	if !ok {
		return action.Map
	}
	return e.Type
}

func childIndexFunc(s *State) patch.ChildIndexFunc {
	return func(obj objid.ID, elemID opid.OpID) (int, error) {
		rows, err := s.Rows()
		if err != nil {
			return 0, err
		}
		for i, r := range rows {
			if r.Obj.Equal(obj) && r.Insert && r.ID.Equal(elemID) {
				return seek.VisibleBefore(rows, obj, i), nil
			}
		}
		return 0, docerr.ReferenceNotFound{Op: elemID.String()}
	}
}
