// Package merge implements the streaming merge engine (§4.4): folding one
// change's grouped operation sequences into the current document's rows,
// updating succ lists, and feeding the patch accumulator (§4.5).
//
// The spec describes the engine operating directly over column decoders,
// positioned by seek (§4.2) into a region bounded by skipCount, so that a
// real implementation never materializes the whole document in memory.
// This package instead operates over already-decoded []opset.Row slices
// and splices new rows in place at the position the same seek policy would
// have found. Byte-level column streaming is a performance optimization
// orthogonal to the convergence and patch-correctness properties §8 asks
// for; materializing rows keeps the merge algorithm itself — the driver
// loop, the tie-break rules, the patch rules — faithful to §4.4/§4.5
// without threading a second seek-and-splice protocol through the raw
// columnar decoders. See DESIGN.md for the full rationale.
package merge

import (
	"weave/action"
	"weave/change"
	"weave/docerr"
	"weave/objid"
	"weave/objmeta"
	"weave/opid"
	"weave/opset"
	"weave/patch"
	"weave/seek"
	"weave/value"
)

// Apply merges one change's decoded rows into docRows, recording patch
// effects into acc, and returns the new document rows.
func Apply(docRows, changeRows []opset.Row, acc *patch.Accumulator, meta *objmeta.Store) ([]opset.Row, error) {
	rows := append([]opset.Row(nil), docRows...)
	sequences := change.Group(changeRows)
	insertedThisRound := map[string]bool{}

	for _, seq := range sequences {
		var err error
		if seq.Rows[0].IsStrKey {
			rows, err = applyPropSequence(rows, seq, acc, meta)
		} else if seq.Rows[0].Insert {
			rows, err = applyInsertSequence(rows, seq, acc, meta, insertedThisRound)
		} else {
			rows, err = applyUpdateSequence(rows, seq, acc, meta, insertedThisRound)
		}
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
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

// seedCounter resolves setID's already-materialized value from rows, for
// an inc op whose set op was merged in an earlier call (so the patch
// accumulator has no running total for it yet this round).
func seedCounter(rows []opset.Row, obj objid.ID, setID opid.OpID) int64 {
	idx, ok := opset.FindByID(rows, obj, setID)
	if !ok {
		return 0
	}
	return opset.CounterValue(rows, idx)
}

// linkPreds appends changeID into the succ (Xref) list of every row named
// by preds, returning docerr.UnmatchedPred if a pred has no matching row
// and docerr.DuplicateOperationID if changeID already exists in rows.
func linkPreds(rows []opset.Row, obj objid.ID, changeID opid.OpID, preds []opid.OpID) error {
	if _, dup := opset.FindByID(rows, obj, changeID); dup {
		return docerr.DuplicateOperationID{OpID: changeID.String()}
	}
	for _, pred := range preds {
		idx, ok := opset.FindByID(rows, obj, pred)
		if !ok {
			return docerr.UnmatchedPred{OpID: pred.String()}
		}
		rows[idx].Xref = opid.InsertSorted(rows[idx].Xref, changeID)
	}
	return nil
}

// applyPropSequence merges a run of ascending string-keyed ops (map/table
// property sets and deletes) into rows.
func applyPropSequence(rows []opset.Row, seq change.Sequence, acc *patch.Accumulator, meta *objmeta.Store) ([]opset.Row, error) {
	ot := objType(meta, seq.Obj)

	for _, row := range seq.Rows {
		var seed int64
		if row.Action == action.Increment && len(row.Xref) > 0 {
			seed = seedCounter(rows, row.Obj, row.Xref[0])
		}
		if err := linkPreds(rows, row.Obj, row.ID, row.Xref); err != nil {
			return nil, err
		}
		for _, pred := range row.Xref {
			acc.RemoveProp(row.Obj, ot, row.KeyStr, pred)
		}

		if row.Action == action.Delete {
			continue
		}

		newRow := row
		newRow.Xref = nil
		rows = insertPropRow(rows, newRow)

		switch {
		case row.Action.IsMake():
			childID := objid.New(row.ID)
			acc.RecordMake(childID, row.Obj, objmeta.StrKey(row.KeyStr), action.ForAction(row.Action))
			child, _ := acc.Object(childID)
			acc.RecordProp(row.Obj, ot, row.KeyStr, row.ID, value.Value{}, child)
		case row.Action == action.Increment:
			if len(row.Xref) == 0 {
				return nil, docerr.UnmatchedPred{OpID: row.ID.String()}
			}
			setID := row.Xref[0]
			v := acc.ApplyIncrement(setID, row.Value.I, seed)
			acc.RecordProp(row.Obj, ot, row.KeyStr, setID, value.CounterValue(v), nil)
		default: // Set
			if row.Value.IsCounter() {
				acc.BeginCounter(row.ID, row.Value.I)
			}
			acc.RecordProp(row.Obj, ot, row.KeyStr, row.ID, row.Value, nil)
		}
	}
	return rows, nil
}

// insertPropRow inserts row into rows at the position seek.MapKeyInsertPoint
// finds for string-keyed objects (invariant 1: ascending KeyStr, then
// ascending OpId among rows sharing a key).
func insertPropRow(rows []opset.Row, row opset.Row) []opset.Row {
	i := seek.MapKeyInsertPoint(rows, row.Obj, row.KeyStr, row.ID)
	rows = append(rows, opset.Row{})
	copy(rows[i+1:], rows[i:])
	rows[i] = row
	return rows
}

// applyInsertSequence merges a chain of list insertions sharing one
// reference point into rows (§4.2 insert policy, §3 invariant 5).
func applyInsertSequence(rows []opset.Row, seq change.Sequence, acc *patch.Accumulator, meta *objmeta.Store, insertedThisRound map[string]bool) ([]opset.Row, error) {
	ot := objType(meta, seq.Obj)

	insertAt := 0
	ref := seq.RefKey
	first := true

	for _, row := range seq.Rows {
		if _, dup := opset.FindByID(rows, row.Obj, row.ID); dup {
			return nil, docerr.DuplicateOperationID{OpID: row.ID.String()}
		}

		if first {
			idx, ok := seek.InsertPoint(rows, row.Obj, ref, row.ID)
			if !ok {
				return nil, docerr.ReferenceNotFound{Op: ref.String()}
			}
			insertAt = idx
			first = false
		}
		// subsequent chain members land immediately after the row we just
		// spliced in (a purely sequential chain, not a concurrent-sibling
		// scan).

		idx := seek.VisibleBefore(rows, row.Obj, insertAt)
		newRow := row
		newRow.Xref = nil
		rows = append(rows, opset.Row{})
		copy(rows[insertAt+1:], rows[insertAt:])
		rows[insertAt] = newRow
		insertAt++

		if isMultiInsertValue(row.Value) {
			acc.RecordListMultiInsert(row.Obj, ot, idx, row.ID, row.Value)
		} else {
			acc.RecordListInsert(row.Obj, ot, idx, row.ID, row.ID, row.Value)
		}
		insertedThisRound[row.ID.String()] = true

		if row.Action.IsMake() {
			childID := objid.New(row.ID)
			acc.RecordMake(childID, row.Obj, objmeta.ElemKey(row.ID), action.ForAction(row.Action))
		}
	}
	return rows, nil
}

func isMultiInsertValue(v value.Value) bool {
	return v.Type == value.Str && len(v.S) == 1
}

// applyUpdateSequence merges a run of non-insert list ops (set, del, inc
// on existing elements) into rows.
func applyUpdateSequence(rows []opset.Row, seq change.Sequence, acc *patch.Accumulator, meta *objmeta.Store, insertedThisRound map[string]bool) ([]opset.Row, error) {
	ot := objType(meta, seq.Obj)

	for _, row := range seq.Rows {
		insertIdx, ok := opset.FindByID(rows, row.Obj, row.KeyElem)
		if !ok || !rows[insertIdx].Insert {
			return nil, docerr.ReferenceNotFound{Op: row.KeyElem.String()}
		}

		last := insertIdx
		for last+1 < len(rows) && rows[last+1].Obj.Equal(row.Obj) && !rows[last+1].Insert && rows[last+1].KeyElem.Equal(row.KeyElem) {
			last++
		}

		wasVisible := len(rows[insertIdx].Xref) == 0 || opset.IsLiveCounter(rows, insertIdx)
		var seed int64
		if row.Action == action.Increment && len(row.Xref) > 0 {
			seed = seedCounter(rows, row.Obj, row.Xref[0])
		}
		if err := linkPreds(rows, row.Obj, row.ID, row.Xref); err != nil {
			return nil, err
		}
		nowInvisible := wasVisible && !(len(rows[insertIdx].Xref) == 0 || opset.IsLiveCounter(rows, insertIdx))

		index := seek.VisibleBefore(rows, row.Obj, insertIdx)

		// Only rewrite the pending edit to an Update when the element
		// being touched already existed before this change (§4.5 rule 1);
		// an element this same change just inserted must keep its Insert.
		if !insertedThisRound[row.KeyElem.String()] {
			acc.ConvertInsertToUpdate(row.Obj, ot, row.KeyElem)
		}

		if row.Action == action.Delete {
			if nowInvisible {
				acc.RecordListRemove(row.Obj, ot, index)
			}
			continue
		}

		newRow := row
		newRow.Xref = nil
		rows = append(rows, opset.Row{})
		copy(rows[last+2:], rows[last+1:])
		rows[last+1] = newRow

		switch {
		case row.Action == action.Increment:
			if len(row.Xref) == 0 {
				return nil, docerr.UnmatchedPred{OpID: row.ID.String()}
			}
			setID := row.Xref[0]
			v := acc.ApplyIncrement(setID, row.Value.I, seed)
			acc.RecordListUpdate(row.Obj, ot, index, setID, value.CounterValue(v))
		default:
			if row.Value.IsCounter() {
				acc.BeginCounter(row.ID, row.Value.I)
			}
			acc.RecordListUpdate(row.Obj, ot, index, row.ID, row.Value)
		}
	}
	return rows, nil
}
