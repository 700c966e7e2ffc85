package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/action"
	"weave/actor"
	"weave/objid"
	"weave/objmeta"
	"weave/opid"
	"weave/opset"
	"weave/patch"
	"weave/value"
)

func TestApplySetOnEmptyDocument(t *testing.T) {
	a := actor.ID{1}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	changeRows := []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.String("hi")},
	}

	rows, err := Apply(nil, changeRows, acc, meta)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	bucket, ok := root.Props["title"]
	require.True(t, ok)
	require.Len(t, bucket, 1)
}

func TestApplyConcurrentSetsConflict(t *testing.T) {
	a := actor.ID{1}
	b := actor.ID{2}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	docRows, err := Apply(nil, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.String("alice wins")},
	}, acc, meta)
	require.NoError(t, err)

	docRows, err = Apply(docRows, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: opid.OpID{Counter: 1, Actor: b}, Action: action.Set, Value: value.String("bob wins")},
	}, acc, meta)
	require.NoError(t, err)
	require.Len(t, docRows, 2)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	assert.Len(t, root.Props["title"], 2)
}

func TestApplySetThenDeleteRemovesProp(t *testing.T) {
	a := actor.ID{1}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	setID := opid.OpID{Counter: 1, Actor: a}
	docRows, err := Apply(nil, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: setID, Action: action.Set, Value: value.String("hi")},
	}, acc, meta)
	require.NoError(t, err)

	delID := opid.OpID{Counter: 2, Actor: a}
	docRows, err = Apply(docRows, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: delID, Action: action.Delete, Xref: []opid.OpID{setID}},
	}, acc, meta)
	require.NoError(t, err)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	assert.Empty(t, root.Props["title"])
	require.Len(t, docRows, 1)
	assert.NotEmpty(t, docRows[0].Xref)
}

func TestApplyListInsertAtHead(t *testing.T) {
	a := actor.ID{1}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	listMakeID := opid.OpID{Counter: 1, Actor: a}
	listObj := objid.New(listMakeID)

	elem1 := opid.OpID{Counter: 2, Actor: a}
	elem2 := opid.OpID{Counter: 3, Actor: a}

	rows, err := Apply(nil, []opset.Row{
		{Obj: listObj, Insert: true, KeyElem: opid.Nil, ID: elem1, Action: action.Set, Value: value.Int64(1)},
	}, acc, meta)
	require.NoError(t, err)

	rows, err = Apply(rows, []opset.Row{
		{Obj: listObj, Insert: true, KeyElem: opid.Nil, ID: elem2, Action: action.Set, Value: value.Int64(2)},
	}, acc, meta)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// elem2 has a higher counter than elem1, so it should sort first
	// (descending-OpId placement among concurrent head-inserts).
	assert.True(t, rows[0].ID.Equal(elem2))
	assert.True(t, rows[1].ID.Equal(elem1))
}

func TestApplyInsertThenDeleteSameChangeKeepsInsertEdit(t *testing.T) {
	a := actor.ID{1}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	listMakeID := opid.OpID{Counter: 1, Actor: a}
	listObj := objid.New(listMakeID)
	elem := opid.OpID{Counter: 2, Actor: a}
	delID := opid.OpID{Counter: 3, Actor: a}

	// One change inserts an element at head and immediately deletes it
	// (spec scenario 4). Edits must read Insert+Remove, never Update+Remove,
	// since the element never existed before this change.
	rows, err := Apply(nil, []opset.Row{
		{Obj: listObj, Insert: true, KeyElem: opid.Nil, ID: elem, Action: action.Set, Value: value.Int64(1)},
		{Obj: listObj, Insert: false, KeyElem: elem, ID: delID, Action: action.Delete, Xref: []opid.OpID{elem}},
	}, acc, meta)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = acc.Finalize(nil)
	require.NoError(t, err)
	list, ok := acc.Object(listObj)
	require.True(t, ok)
	require.Len(t, list.Edits, 2)
	assert.Equal(t, patch.Insert, list.Edits[0].Kind)
	assert.Equal(t, patch.Remove, list.Edits[1].Kind)
}

func TestApplyIncrementAcrossSeparateCallsSeedsFromDocument(t *testing.T) {
	a := actor.ID{1}
	b := actor.ID{2}
	meta := objmeta.NewStore()

	// The set is merged (and its patch finalized) in its own call, exactly
	// as document.ApplyChanges would do with a fresh *patch.Accumulator per
	// call (spec scenario 5, applied as two batches).
	setID := opid.OpID{Counter: 1, Actor: a}
	setAcc := patch.New(meta)
	rows, err := Apply(nil, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "counter", ID: setID, Action: action.Set, Value: value.CounterValue(10)},
	}, setAcc, meta)
	require.NoError(t, err)
	_, err = setAcc.Finalize(nil)
	require.NoError(t, err)

	// A second, independent call processes the inc with a brand new
	// accumulator that has never seen this counter.
	incAcc := patch.New(meta)
	incID := opid.OpID{Counter: 1, Actor: b}
	rows, err = Apply(rows, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "counter", ID: incID, Action: action.Increment, Value: value.Int64(5), Xref: []opid.OpID{setID}},
	}, incAcc, meta)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	root, err := incAcc.Finalize(nil)
	require.NoError(t, err)
	bucket, ok := root.Props["counter"]
	require.True(t, ok)
	require.Len(t, bucket, 1)
	for _, pv := range bucket {
		assert.Equal(t, int64(15), pv.Value.I)
	}
}

func TestApplyRejectsDuplicateOperationID(t *testing.T) {
	a := actor.ID{1}
	meta := objmeta.NewStore()
	acc := patch.New(meta)

	id := opid.OpID{Counter: 1, Actor: a}
	rows, err := Apply(nil, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "title", ID: id, Action: action.Set, Value: value.String("hi")},
	}, acc, meta)
	require.NoError(t, err)

	_, err = Apply(rows, []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "other", ID: id, Action: action.Set, Value: value.String("dup")},
	}, acc, meta)
	assert.Error(t, err)
}
