package seek

import (
	"weave/objid"
	"weave/opid"
	"weave/opset"
)

// The Reader-based Seek in seek.go matches the spec's literal streaming-decoder
// framing (§9 "Streaming decoders"). merge and document instead hold the
// document as an already-decoded []opset.Row slice (see merge package doc
// comment), so the functions below re-express the same §4.2 policy as
// slice-index lookups. They are the single positioning implementation both
// packages call into, rather than each carrying its own copy.

// ObjectStart returns the index where obj's rows begin in rows (global
// objid order, invariant 1), or where they would begin if obj has none yet.
func ObjectStart(rows []opset.Row, obj objid.ID) int {
	for i, r := range rows {
		if r.Obj.Equal(obj) || obj.Compare(r.Obj) < 0 {
			return i
		}
	}
	return len(rows)
}

// MapKeyInsertPoint returns the index at which a new string-keyed row
// (obj, keyStr, newID) should be spliced in: ascending KeyStr, then
// ascending OpId among rows sharing a key (invariant 1).
func MapKeyInsertPoint(rows []opset.Row, obj objid.ID, keyStr string, newID opid.OpID) int {
	i := ObjectStart(rows, obj)
	for ; i < len(rows) && rows[i].Obj.Equal(obj); i++ {
		if rows[i].KeyStr > keyStr {
			break
		}
		if rows[i].KeyStr == keyStr && rows[i].ID.Compare(newID) > 0 {
			break
		}
	}
	return i
}

// VisibleBefore counts visible list elements among rows[:idx] that belong
// to obj: ones with an empty succ list, plus counters whose only
// successors are their own Increment chain (§4.2 policy 3, still live,
// just incremented).
func VisibleBefore(rows []opset.Row, obj objid.ID, idx int) int {
	n := 0
	for i := 0; i < idx; i++ {
		if rows[i].Obj.Equal(obj) && rows[i].Insert && (len(rows[i].Xref) == 0 || opset.IsLiveCounter(rows, i)) {
			n++
		}
	}
	return n
}

// InsertPoint locates where a new list element referencing ref should land
// (§4.2 policy 2, invariant 5): at the object start when ref is opid.Nil
// (insert at head), or after ref's row and any existing concurrent sibling
// inserts whose OpId is greater than newID. The bool return is false when
// ref does not name an existing insert row in obj.
func InsertPoint(rows []opset.Row, obj objid.ID, ref, newID opid.OpID) (int, bool) {
	start := 0
	if !ref.IsNil() {
		idx, ok := opset.FindByID(rows, obj, ref)
		if !ok || !rows[idx].Insert {
			return 0, false
		}
		start = idx + 1
	} else {
		start = ObjectStart(rows, obj)
	}

	i := start
	for i < len(rows) && rows[i].Obj.Equal(obj) {
		if rows[i].Insert && rows[i].ID.Less(newID) {
			break
		}
		i++
	}
	return i, true
}
