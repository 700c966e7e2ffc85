package objmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/action"
	"weave/actor"
	"weave/objid"
	"weave/opid"
)

func TestNewStoreRegistersRoot(t *testing.T) {
	s := NewStore()
	e, ok := s.Get(objid.Root)
	require.True(t, ok)
	assert.Equal(t, action.Map, e.Type)
}

func TestRegisterAndGet(t *testing.T) {
	s := NewStore()
	childID := objid.New(opid.OpID{Counter: 1, Actor: actor.ID{1}})
	s.Register(childID, objid.Root, StrKey("widgets"), action.List)

	e, ok := s.Get(childID)
	require.True(t, ok)
	assert.Equal(t, action.List, e.Type)
	assert.True(t, e.ParentObj.Equal(objid.Root))
	assert.Equal(t, StrKey("widgets"), e.ParentKey)
}

func TestElemKey(t *testing.T) {
	id := opid.OpID{Counter: 3, Actor: actor.ID{2}}
	k := ElemKey(id)
	assert.False(t, k.IsStr)
	assert.True(t, k.Elem.Equal(id))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewStore()
	clone := s.Clone()

	childID := objid.New(opid.OpID{Counter: 1, Actor: actor.ID{1}})
	clone.Register(childID, objid.Root, StrKey("x"), action.Map)

	_, ok := s.Get(childID)
	assert.False(t, ok)
	_, ok = clone.Get(childID)
	assert.True(t, ok)
}
