package seek

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/action"
	"weave/actor"
	"weave/objid"
	"weave/opid"
	"weave/opset"
	"weave/value"
)

func rowsToReader(t *testing.T, rows []opset.Row) *opset.Reader {
	t.Helper()
	table := actor.NewTable()
	for _, r := range rows {
		table.Intern(r.ID.Actor)
	}
	w := opset.NewWriter(table)
	for _, r := range rows {
		w.Append(r)
	}
	return opset.NewReader(w.Columns(), table)
}

func TestSeekMapKeyFindsInsertionPoint(t *testing.T) {
	a := actor.ID{1}
	rows := []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "a", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.Int64(1)},
		{Obj: objid.Root, IsStrKey: true, KeyStr: "c", ID: opid.OpID{Counter: 2, Actor: a}, Action: action.Set, Value: value.Int64(2)},
	}
	r := rowsToReader(t, rows)
	res, err := Seek(r, Target{Obj: objid.Root, IsStrKey: true, KeyStr: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SkipCount)
}

func TestSeekMapKeyOnEmptyDocument(t *testing.T) {
	r := rowsToReader(t, nil)
	res, err := Seek(r, Target{Obj: objid.Root, IsStrKey: true, KeyStr: "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SkipCount)
}

func TestSeekListUpdateMissingRefErrors(t *testing.T) {
	r := rowsToReader(t, nil)
	_, err := Seek(r, Target{Obj: objid.Root, Insert: false, Ref: opid.OpID{Counter: 1, Actor: actor.ID{1}}})
	assert.Error(t, err)
}

func TestSeekInsertAtHeadOfEmptyList(t *testing.T) {
	a := actor.ID{1}
	listID := opid.OpID{Counter: 1, Actor: a}
	obj := objid.New(listID)

	r := rowsToReader(t, nil)
	res, err := Seek(r, Target{Obj: obj, Insert: true, Ref: opid.Nil, NewID: opid.OpID{Counter: 2, Actor: a}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SkipCount)
	assert.Equal(t, 0, res.VisibleCount)
}

func TestSeekInsertAmongSiblingsOrdersDescending(t *testing.T) {
	a := actor.ID{1}
	listID := opid.OpID{Counter: 1, Actor: a}
	obj := objid.New(listID)
	existing := opid.OpID{Counter: 5, Actor: a}

	rows := []opset.Row{
		{Obj: obj, Insert: true, KeyElem: opid.Nil, ID: existing, Action: action.Set, Value: value.Int64(1)},
	}
	r := rowsToReader(t, rows)

	// A new sibling insert with a smaller OpId must land after the existing one.
	smaller := opid.OpID{Counter: 3, Actor: a}
	res, err := Seek(r, Target{Obj: obj, Insert: true, Ref: opid.Nil, NewID: smaller})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SkipCount)
	assert.Equal(t, 1, res.VisibleCount)
}
