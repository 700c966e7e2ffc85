package change

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

func TestGroupMapKeysInOneSequence(t *testing.T) {
	a := actor.ID{1}
	rows := []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "a", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.Int64(1)},
		{Obj: objid.Root, IsStrKey: true, KeyStr: "b", ID: opid.OpID{Counter: 2, Actor: a}, Action: action.Set, Value: value.Int64(2)},
	}
	seqs := Group(rows)
	require.Len(t, seqs, 1)
	assert.Len(t, seqs[0].Rows, 2)
}

func TestGroupSplitsOnDecreasingKey(t *testing.T) {
	a := actor.ID{1}
	rows := []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "b", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.Int64(1)},
		{Obj: objid.Root, IsStrKey: true, KeyStr: "a", ID: opid.OpID{Counter: 2, Actor: a}, Action: action.Set, Value: value.Int64(2)},
	}
	seqs := Group(rows)
	require.Len(t, seqs, 2)
}

func TestGroupChainedInserts(t *testing.T) {
	a := actor.ID{1}
	listID := opid.OpID{Counter: 1, Actor: a}
	obj := objid.New(listID)
	first := opid.OpID{Counter: 2, Actor: a}
	second := opid.OpID{Counter: 3, Actor: a}

	rows := []opset.Row{
		{Obj: obj, Insert: true, KeyElem: opid.Nil, ID: first, Action: action.Set, Value: value.Int64(1)},
		{Obj: obj, Insert: true, KeyElem: first, ID: second, Action: action.Set, Value: value.Int64(2)},
	}
	seqs := Group(rows)
	require.Len(t, seqs, 1)
	assert.True(t, seqs[0].Insert)
	assert.Len(t, seqs[0].Rows, 2)
}

func TestGroupSplitsOnDifferentObject(t *testing.T) {
	a := actor.ID{1}
	rows := []opset.Row{
		{Obj: objid.Root, IsStrKey: true, KeyStr: "a", ID: opid.OpID{Counter: 1, Actor: a}, Action: action.Set, Value: value.Int64(1)},
		{Obj: objid.New(opid.OpID{Counter: 1, Actor: a}), IsStrKey: true, KeyStr: "x", ID: opid.OpID{Counter: 2, Actor: a}, Action: action.Set, Value: value.Int64(2)},
	}
	seqs := Group(rows)
	require.Len(t, seqs, 2)
}
