package document

import (
	"weave/action"
	"weave/actor"
	"weave/objid"
	"weave/opid"
	"weave/opset"
	"weave/seek"
	"weave/value"
)

// OpIntent is one operation a frontend wants to author, before the engine
// assigns it an OpId and resolves its pred list. Insert ops need no pred
// (a freshly-inserted element never overwrites anything); Set/Delete/
// Increment ops targeting an existing map key or list element have their
// pred filled in by the engine from whatever is currently visible there.
type OpIntent struct {
	Obj objid.ID

	IsStrKey bool
	KeyStr   string

	Insert  bool
	KeyElem opid.OpID // update/insert reference; opid.Nil means insert-at-head

	Action action.OpAction
	Value  value.Value
}

// LocalChangeRequest is the frontend's request to author one change (§6.3
// "applyLocalChange(state, requestFromFrontend)").
type LocalChangeRequest struct {
	Actor   actor.ID
	Message string
	Time    int64
	Ops     []OpIntent
}

// visible reports whether row i is visible for pred-resolution purposes:
// either untouched by any successor, or a counter overridden only by its
// own Increment chain (still live, just incremented).
func visible(rows []opset.Row, i int) bool {
	return len(rows[i].Xref) == 0 || opset.IsLiveCounter(rows, i)
}

// threadLocalRow splices row into rows the way merge would, purely so a
// later op in the same LocalChangeRequest (e.g. inserting an element and
// deleting it within one change) resolves its preds against an op this
// request already authored. The real merge — with patch and ObjectMeta
// bookkeeping — happens once ApplyChanges decodes and applies the
// finished, encoded change; this is a scratch view local to authoring.
func threadLocalRow(rows []opset.Row, row opset.Row) []opset.Row {
	for _, pred := range row.Xref {
		if idx, ok := opset.FindByID(rows, row.Obj, pred); ok {
			rows[idx].Xref = opid.InsertSorted(rows[idx].Xref, row.ID)
		}
	}
	if row.Action == action.Delete {
		return rows
	}

	newRow := row
	newRow.Xref = nil

	if row.Insert {
		idx, ok := seek.InsertPoint(rows, row.Obj, row.KeyElem, row.ID)
		if !ok {
			idx = len(rows)
		}
		rows = append(rows, opset.Row{})
		copy(rows[idx+1:], rows[idx:])
		rows[idx] = newRow
		return rows
	}

	if row.IsStrKey {
		idx := seek.MapKeyInsertPoint(rows, row.Obj, row.KeyStr, row.ID)
		rows = append(rows, opset.Row{})
		copy(rows[idx+1:], rows[idx:])
		rows[idx] = newRow
		return rows
	}

	idx, ok := opset.FindByID(rows, row.Obj, row.KeyElem)
	if !ok {
		return rows
	}
	last := idx
	for last+1 < len(rows) && rows[last+1].Obj.Equal(row.Obj) && !rows[last+1].Insert && rows[last+1].KeyElem.Equal(row.KeyElem) {
		last++
	}
	rows = append(rows, opset.Row{})
	copy(rows[last+2:], rows[last+1:])
	rows[last+1] = newRow
	return rows
}

func visibleAt(rows []opset.Row, obj objid.ID, isStrKey bool, keyStr string, keyElem opid.OpID) []opid.OpID {
	var out []opid.OpID
	if isStrKey {
		for i, r := range rows {
			if r.Obj.Equal(obj) && r.IsStrKey && r.KeyStr == keyStr && visible(rows, i) {
				out = append(out, r.ID)
			}
		}
		return out
	}

	for i, r := range rows {
		if !r.Obj.Equal(obj) || !r.Insert || !r.ID.Equal(keyElem) {
			continue
		}
		if visible(rows, i) {
			out = append(out, r.ID)
		}
		for j := i + 1; j < len(rows); j++ {
			if !rows[j].Obj.Equal(obj) || rows[j].Insert || !rows[j].KeyElem.Equal(keyElem) {
				break
			}
			if visible(rows, j) {
				out = append(out, rows[j].ID)
			}
		}
		break
	}
	return out
}
