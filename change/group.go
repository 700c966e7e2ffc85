package change

import (
	"weave/objid"
	"weave/opid"
	"weave/opset"
)

// Sequence is a run of consecutive ops from a change that all touch "the
// same region" (§4.3), so the merge engine can stream it without
// re-decoding: same object, and either all string keys in non-decreasing
// order, all non-insert list updates on opId keys, or a chain of list
// insertions each keyed on the previous op's OpId.
type Sequence struct {
	Obj objid.ID

	// Insert is the kind of this sequence's list access, if any; both
	// fields are zero for a string-keyed (map/table) sequence.
	Insert bool
	RefKey opid.OpID

	Rows []opset.Row
}

// Group partitions a change's decoded rows into sequences (§4.3). It returns
// only the sequences; make-ops are registered in ObjectMeta by the merge
// engine, not here.
func Group(rows []opset.Row) []Sequence {
	var seqs []Sequence
	var cur *Sequence

	for _, row := range rows {
		if cur != nil && continuesSequence(cur, row) {
			cur.Rows = append(cur.Rows, row)
			continue
		}
		if cur != nil {
			seqs = append(seqs, *cur)
		}
		cur = &Sequence{
			Obj:    row.Obj,
			Insert: row.Insert,
			RefKey: row.KeyElem,
			Rows:   []opset.Row{row},
		}
	}
	if cur != nil {
		seqs = append(seqs, *cur)
	}
	return seqs
}

func continuesSequence(cur *Sequence, row opset.Row) bool {
	if !cur.Obj.Equal(row.Obj) {
		return false
	}

	last := cur.Rows[len(cur.Rows)-1]

	if row.IsStrKey {
		if !last.IsStrKey {
			return false
		}
		return last.KeyStr <= row.KeyStr
	}

	if row.Insert {
		if !last.Insert {
			return false
		}
		// chained inserts: each op's key equals the prior op's own OpId.
		return row.KeyElem.Equal(last.ID)
	}

	// non-insert list update: optimistically grouped by opId keys; the
	// merge engine validates the reference as it seeks.
	return !last.IsStrKey && !last.Insert
}
