package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/action"
	"weave/actor"
	"weave/objid"
	"weave/objmeta"
	"weave/opid"
	"weave/value"
)

func TestRecordPropAccumulatesConflicts(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	b := actor.ID{2}

	acc.RecordProp(objid.Root, action.Map, "title", opid.OpID{Counter: 1, Actor: a}, value.String("x"), nil)
	acc.RecordProp(objid.Root, action.Map, "title", opid.OpID{Counter: 2, Actor: b}, value.String("y"), nil)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	require.Len(t, root.Props["title"], 2)
}

func TestRemoveProp(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	id := opid.OpID{Counter: 1, Actor: a}

	acc.RecordProp(objid.Root, action.Map, "title", id, value.String("x"), nil)
	acc.RemoveProp(objid.Root, action.Map, "title", id)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	assert.Empty(t, root.Props["title"])
}

func TestRecordListMultiInsertMergesContiguous(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}

	acc.RecordListMultiInsert(objid.Root, action.Text, 0, opid.OpID{Counter: 1, Actor: a}, value.String("h"))
	acc.RecordListMultiInsert(objid.Root, action.Text, 1, opid.OpID{Counter: 2, Actor: a}, value.String("i"))

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	require.Len(t, root.Edits, 1)
	assert.Equal(t, MultiInsert, root.Edits[0].Kind)
	assert.Equal(t, []value.Value{value.String("h"), value.String("i")}, root.Edits[0].Values)
}

func TestConvertInsertToUpdate(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	elem := opid.OpID{Counter: 1, Actor: a}

	acc.RecordListInsert(objid.Root, action.List, 0, elem, elem, value.Int64(1))
	acc.ConvertInsertToUpdate(objid.Root, action.List, elem)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	require.Len(t, root.Edits, 1)
	assert.Equal(t, Update, root.Edits[0].Kind)
}

func TestRecordListUpdateReplacesSameIndex(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}

	acc.RecordListUpdate(objid.Root, action.List, 0, opid.OpID{Counter: 1, Actor: a}, value.Int64(1))
	acc.RecordListUpdate(objid.Root, action.List, 0, opid.OpID{Counter: 2, Actor: a}, value.Int64(2))

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	require.Len(t, root.Edits, 1)
	assert.Equal(t, value.Int64(2), root.Edits[0].Value)
}

func TestRecordListRemoveFusesRun(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)

	acc.RecordListRemove(objid.Root, action.List, 3)
	acc.RecordListRemove(objid.Root, action.List, 3)

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	require.Len(t, root.Edits, 1)
	assert.Equal(t, 2, root.Edits[0].Count)
}

func TestCounterLifecycle(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	setID := opid.OpID{Counter: 1, Actor: a}

	acc.BeginCounter(setID, 10)

	v := acc.ApplyIncrement(setID, 5, 0)
	assert.Equal(t, int64(15), v)

	v = acc.ApplyIncrement(setID, 3, 0)
	assert.Equal(t, int64(18), v)
}

func TestApplyIncrementSeedsFromDocumentWhenSetNotPendingThisCall(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	setID := opid.OpID{Counter: 1, Actor: a}

	// No BeginCounter this call: the set op lives in an earlier batch, so
	// the accumulator must seed from the caller-supplied document value.
	v := acc.ApplyIncrement(setID, 5, 10)
	assert.Equal(t, int64(15), v)

	// A second increment in the same call reuses the already-seeded total.
	v = acc.ApplyIncrement(setID, 1, 999)
	assert.Equal(t, int64(16), v)
}

func TestFinalizeLinksTouchedChildUpToRoot(t *testing.T) {
	meta := objmeta.NewStore()
	acc := New(meta)
	a := actor.ID{1}
	childID := objid.New(opid.OpID{Counter: 1, Actor: a})

	acc.RecordMake(childID, objid.Root, objmeta.StrKey("widgets"), action.List)
	acc.RecordListInsert(childID, action.List, 0, opid.OpID{Counter: 2, Actor: a}, opid.OpID{Counter: 2, Actor: a}, value.Int64(1))

	root, err := acc.Finalize(nil)
	require.NoError(t, err)
	bucket, ok := root.Props["widgets"]
	require.True(t, ok)
	require.Len(t, bucket, 1)
	for _, pv := range bucket {
		require.NotNil(t, pv.Child)
		assert.Len(t, pv.Child.Edits, 1)
	}
}
