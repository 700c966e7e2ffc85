// Package patch implements the patch accumulator (§4.5): the per-call
// record of every ObjectPatch touched while applying a batch of changes,
// keyed by objectId.
package patch

import (
	"weave/action"
	"weave/objid"
	"weave/objmeta"
	"weave/opid"
	"weave/value"
)

// EditKind tags the kind of list/text edit.
type EditKind uint8

const (
	Insert EditKind = iota
	MultiInsert
	Update
	Remove
)

// Edit is one entry in a list/text ObjectPatch's ordered edit log.
type Edit struct {
	Kind EditKind

	Index  int
	ElemID opid.OpID
	OpID   opid.OpID

	Value  value.Value   // Insert, Update
	Values []value.Value // MultiInsert: contiguous single-character values

	Count int // Remove: number of consecutive removed elements
}

// PropValue is one conflicting assignment to a map/table property: either a
// scalar or a nested object patch (when the value is a reference to a
// child object).
type PropValue struct {
	OpID  opid.OpID
	Value value.Value
	Child *ObjectPatch
}

// ObjectPatch is the diff recorded for one object touched during
// applyChanges (§4.5).
type ObjectPatch struct {
	Type action.ObjType

	// Props holds map/table property conflicts: propName -> opId.String()
	// -> value, matching the shape a frontend patch actually serializes
	// to. Text is modeled as a list of edits, not props.
	Props map[string]map[string]PropValue

	// Edits holds list/text insertions, updates and removals in order.
	Edits []Edit
}

func newObjectPatch(t action.ObjType) *ObjectPatch {
	return &ObjectPatch{Type: t, Props: make(map[string]map[string]PropValue)}
}

// Accumulator collects ObjectPatches across one applyChanges call.
type Accumulator struct {
	meta    *objmeta.Store
	objects map[string]*ObjectPatch
	touched []objid.ID // insertion order, for the final parent-link walk

	// counterTotals tracks the running value of every counter touched this
	// call, keyed by the originating set op's String(). Seeded either by
	// BeginCounter (the set op itself was processed this call) or by the
	// first ApplyIncrement for a setOpID not yet present (the set lives
	// earlier in the document; the caller supplies its already-materialized
	// value as seed).
	counterTotals map[string]int64
}

// New creates an empty accumulator over meta.
func New(meta *objmeta.Store) *Accumulator {
	return &Accumulator{
		meta:          meta,
		objects:       map[string]*ObjectPatch{},
		counterTotals: map[string]int64{},
	}
}

func (a *Accumulator) object(id objid.ID, t action.ObjType) *ObjectPatch {
	key := id.String()
	op, ok := a.objects[key]
	if !ok {
		op = newObjectPatch(t)
		a.objects[key] = op
		a.touched = append(a.touched, id)
	}
	return op
}

// RecordMake registers a new object with its parent in meta, and seeds an
// empty ObjectPatch for it (§4.3 "every make* op creates an ObjectMeta
// entry").
func (a *Accumulator) RecordMake(id, parentObj objid.ID, parentKey objmeta.Key, t action.ObjType) {
	a.meta.Register(id, parentObj, parentKey, t)
	a.object(id, t)
}

// RecordProp records a scalar or child-object assignment to a map/table
// property. Multiple calls at the same (obj, key) with different opIds
// accumulate as a conflict.
func (a *Accumulator) RecordProp(obj objid.ID, objType action.ObjType, key string, opID opid.OpID, v value.Value, child *ObjectPatch) {
	op := a.object(obj, objType)
	bucket, ok := op.Props[key]
	if !ok {
		bucket = map[string]PropValue{}
		op.Props[key] = bucket
	}
	bucket[opID.String()] = PropValue{OpID: opID, Value: v, Child: child}
}

// RemoveProp drops a property conflict entry for opID (the key's prior
// value was deleted).
func (a *Accumulator) RemoveProp(obj objid.ID, objType action.ObjType, key string, opID opid.OpID) {
	op := a.object(obj, objType)
	if bucket, ok := op.Props[key]; ok {
		delete(bucket, opID.String())
	}
}

// RecordListInsert appends an Insert edit at index for a freshly-inserted
// element (§4.5 rule 1: "first op on an elemId defaults to Insert").
func (a *Accumulator) RecordListInsert(obj objid.ID, objType action.ObjType, index int, elemID, opID opid.OpID, v value.Value) {
	op := a.object(obj, objType)
	op.Edits = append(op.Edits, Edit{Kind: Insert, Index: index, ElemID: elemID, OpID: opID, Value: v})
}

// RecordListMultiInsert appends a MultiInsert edit, or extends the
// trailing MultiInsert edit at the same position if the prior edit is
// already a contiguous MultiInsert (§4.5: "contiguous single-character
// inserts produced by one operation run").
func (a *Accumulator) RecordListMultiInsert(obj objid.ID, objType action.ObjType, index int, elemID opid.OpID, v value.Value) {
	op := a.object(obj, objType)
	if n := len(op.Edits); n > 0 {
		last := &op.Edits[n-1]
		if last.Kind == MultiInsert && last.Index+len(last.Values) == index {
			last.Values = append(last.Values, v)
			return
		}
	}
	op.Edits = append(op.Edits, Edit{Kind: MultiInsert, Index: index, ElemID: elemID, Values: []value.Value{v}})
}

// ConvertInsertToUpdate rewrites the pending Insert edit for elemID into an
// Update (§4.5 rule 1: the merge discovered this elemId already existed
// before the current change, so what looked like a fresh insertion is
// really a concurrent update).
func (a *Accumulator) ConvertInsertToUpdate(obj objid.ID, objType action.ObjType, elemID opid.OpID) {
	op := a.object(obj, objType)
	for i := range op.Edits {
		if op.Edits[i].Kind == Insert && op.Edits[i].ElemID.Equal(elemID) {
			op.Edits[i].Kind = Update
		}
	}
}

// RecordListUpdate appends an Update edit, first popping any prior edit
// this change made at the same index so that concurrent conflict lists
// from different changes do not merge together (§4.5 rule 2).
func (a *Accumulator) RecordListUpdate(obj objid.ID, objType action.ObjType, index int, opID opid.OpID, v value.Value) {
	op := a.object(obj, objType)
	if n := len(op.Edits); n > 0 && op.Edits[n-1].Kind == Update && op.Edits[n-1].Index == index {
		op.Edits = op.Edits[:n-1]
	}
	op.Edits = append(op.Edits, Edit{Kind: Update, Index: index, OpID: opID, Value: v})
}

// RecordListRemove appends a Remove edit, fusing it into the immediately
// preceding Remove at the same index if one exists (§4.5 rule 3).
func (a *Accumulator) RecordListRemove(obj objid.ID, objType action.ObjType, index int) {
	op := a.object(obj, objType)
	if n := len(op.Edits); n > 0 && op.Edits[n-1].Kind == Remove && op.Edits[n-1].Index == index {
		op.Edits[n-1].Count++
		return
	}
	op.Edits = append(op.Edits, Edit{Kind: Remove, Index: index, Count: 1})
}

// BeginCounter seeds the running total for a freshly-set counter value
// (§4.5 rule 4, §8 "Counter semantics": materialized value = s.value +
// Σ incs). A no-op if setOpID already has a total this call (an earlier
// ApplyIncrement already seeded it from the document).
func (a *Accumulator) BeginCounter(setOpID opid.OpID, initial int64) {
	if _, ok := a.counterTotals[setOpID.String()]; ok {
		return
	}
	a.counterTotals[setOpID.String()] = initial
}

// ApplyIncrement folds delta into setOpID's running total and returns the
// new total. If setOpID has no total yet this call — the set op was merged
// in an earlier batch, not this one — seed seeds it first; callers resolve
// seed from the already-materialized document value (opset.CounterValue).
func (a *Accumulator) ApplyIncrement(setOpID opid.OpID, delta, seed int64) int64 {
	key := setOpID.String()
	if _, ok := a.counterTotals[key]; !ok {
		a.counterTotals[key] = seed
	}
	a.counterTotals[key] += delta
	return a.counterTotals[key]
}

// ChildIndexFunc resolves the current visible index of elemID within a
// list object, used by the final parent-link walk to place a synthetic
// Update at the right position (§4.5, last paragraph).
type ChildIndexFunc func(obj objid.ID, elemID opid.OpID) (int, error)

// Finalize walks every touched object up to the root via meta, linking any
// parent that was not otherwise modified to its child through a synthetic
// Update edit, and returns the root ObjectPatch.
func (a *Accumulator) Finalize(childIndex ChildIndexFunc) (*ObjectPatch, error) {
	linked := map[string]bool{}
	for _, id := range a.touched {
		linked[id.String()] = true
	}

	for _, id := range append([]objid.ID(nil), a.touched...) {
		cur := id
		for {
			entry, ok := a.meta.Get(cur)
			if !ok || cur.IsRoot() {
				break
			}
			parent := entry.ParentObj
			if linked[parent.String()] {
				break
			}
			parentEntry, _ := a.meta.Get(parent)
			parentPatch := a.object(parent, parentEntry.Type)
			childPatch := a.objects[cur.String()]

			if entry.ParentKey.IsStr {
				bucket, ok := parentPatch.Props[entry.ParentKey.Str]
				if !ok {
					bucket = map[string]PropValue{}
					parentPatch.Props[entry.ParentKey.Str] = bucket
				}
				bucket[cur.OpID.String()] = PropValue{OpID: cur.OpID, Child: childPatch}
			} else if childIndex != nil {
				idx, err := childIndex(parent, entry.ParentKey.Elem)
				if err != nil {
					return nil, err
				}
				parentPatch.Edits = append(parentPatch.Edits, Edit{Kind: Update, Index: idx, OpID: cur.OpID, Value: value.Value{}})
			}

			linked[parent.String()] = true
			cur = parent
		}
	}

	root, ok := a.objects[objid.Root.String()]
	if !ok {
		root = newObjectPatch(action.Map)
		a.objects[objid.Root.String()] = root
	}
	return root, nil
}

// Object returns the patch recorded for id, if any.
func (a *Accumulator) Object(id objid.ID) (*ObjectPatch, bool) {
	op, ok := a.objects[id.String()]
	return op, ok
}
