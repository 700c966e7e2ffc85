// Package seek implements the document-cursor positioning algorithm of
// §4.2: given a target (object, key), advance a Reader over the document's
// ops to the row where a merge should begin.
package seek

import (
	"io"

	"weave/docerr"
	"weave/objid"
	"weave/opid"
	"weave/opset"
)

// Target describes the merge point to seek to.
type Target struct {
	Obj objid.ID

	// IsStrKey selects a map/table/text property lookup.
	IsStrKey bool
	KeyStr   string

	// List-update lookups reference an existing elemId (Ref). List-insert
	// lookups also reference an elemId (the insertion point) but set
	// Insert, and carry the new op's own OpId so concurrent siblings can
	// be ordered (§4.2 policy 2, invariant 5).
	Insert bool
	Ref    opid.OpID // opid.Nil means "insert at head of list"
	NewID  opid.OpID
}

// Result is the position seek found, expressed as counts so the merge
// engine and patch accumulator can compute indices without re-walking.
type Result struct {
	SkipCount    int
	VisibleCount int
}

// Seek advances r (consuming rows as it goes — callers that still need
// those rows should have taken their own look-ahead copy first) until it
// reaches the position described by t, per the §4.2 policy.
func Seek(r *opset.Reader, t Target) (Result, error) {
	var res Result

	// Policy 1: advance past rows whose (objCtr, objActor) sorts before
	// the target object.
	for {
		row, err := peek(r)
		if err == io.EOF {
			if t.IsStrKey || (t.Insert && t.Ref.IsNil()) {
				return res, nil
			}
			return res, docerr.ReferenceNotFound{Op: t.Ref.String()}
		}
		if err != nil {
			return res, err
		}
		if row.Obj.Equal(t.Obj) {
			break
		}
		if t.Obj.Compare(row.Obj) < 0 {
			// document has nothing at this object yet.
			if t.IsStrKey || (t.Insert && t.Ref.IsNil()) {
				return res, nil
			}
			return res, docerr.ReferenceNotFound{Op: t.Ref.String()}
		}
		if _, err := r.Next(); err != nil {
			return res, err
		}
		res.SkipCount++
	}

	if t.IsStrKey {
		return seekMapKey(r, t, res)
	}
	return seekListKey(r, t, res)
}

func seekMapKey(r *opset.Reader, t Target, res Result) (Result, error) {
	for {
		row, err := peek(r)
		if err == io.EOF || !row.Obj.Equal(t.Obj) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		if !row.IsStrKey || row.KeyStr >= t.KeyStr {
			return res, nil
		}
		if _, err := r.Next(); err != nil {
			return res, err
		}
		res.SkipCount++
	}
}

func seekListKey(r *opset.Reader, t Target, res Result) (Result, error) {
	if !t.Insert {
		// advance until the row's opId equals Ref *and* the row is an
		// insert; fail if the object ends first.
		for {
			row, err := peek(r)
			if err == io.EOF || !row.Obj.Equal(t.Obj) {
				return res, docerr.ReferenceNotFound{Op: t.Ref.String()}
			}
			if err != nil {
				return res, err
			}
			if row.Insert && row.ID.Equal(t.Ref) {
				countVisible(row, &res)
				return res, nil
			}
			countVisible(row, &res)
			if _, err := r.Next(); err != nil {
				return res, err
			}
			res.SkipCount++
		}
	}

	// Insert at head: Ref == opid.Nil, merge point is before the object's
	// first row.
	if t.Ref.IsNil() {
		return seekInsertAmongSiblings(r, t, res)
	}

	// Advance past the reference row itself, then past any insert with a
	// greater OpId (descending-OpId placement among concurrent siblings)
	// and any non-insert on intervening elements.
	for {
		row, err := peek(r)
		if err == io.EOF || !row.Obj.Equal(t.Obj) {
			return res, docerr.ReferenceNotFound{Op: t.Ref.String()}
		}
		if err != nil {
			return res, err
		}
		if row.Insert && row.ID.Equal(t.Ref) {
			countVisible(row, &res)
			if _, err := r.Next(); err != nil {
				return res, err
			}
			res.SkipCount++
			break
		}
		countVisible(row, &res)
		if _, err := r.Next(); err != nil {
			return res, err
		}
		res.SkipCount++
	}

	return seekInsertAmongSiblings(r, t, res)
}

// seekInsertAmongSiblings advances past any insert row whose OpId is
// greater than t.NewID, and past any non-insert row on an already-passed
// element, so the new op lands in strictly descending OpId order among
// concurrent inserts at the same reference point.
func seekInsertAmongSiblings(r *opset.Reader, t Target, res Result) (Result, error) {
	for {
		row, err := peek(r)
		if err == io.EOF || !row.Obj.Equal(t.Obj) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		if row.Insert && row.ID.Less(t.NewID) {
			return res, nil
		}
		countVisible(row, &res)
		if _, err := r.Next(); err != nil {
			return res, err
		}
		res.SkipCount++
	}
}

func countVisible(row opset.Row, res *Result) {
	if row.Insert && len(row.Xref) == 0 {
		res.VisibleCount++
	}
}

// peek returns the row r.Next() would return, without consuming it.
func peek(r *opset.Reader) (opset.Row, error) {
	return r.Peek()
}
