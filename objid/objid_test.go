package objid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"weave/actor"
	"weave/opid"
)

func TestRootSentinel(t *testing.T) {
	assert.True(t, Root.IsRoot())
	assert.Equal(t, "_root", Root.String())
}

func TestNewIsNotRoot(t *testing.T) {
	id := New(opid.OpID{Counter: 1, Actor: actor.ID{1}})
	assert.False(t, id.IsRoot())
}

func TestEqual(t *testing.T) {
	a := actor.ID{1}
	id1 := New(opid.OpID{Counter: 5, Actor: a})
	id2 := New(opid.OpID{Counter: 5, Actor: a})
	id3 := New(opid.OpID{Counter: 6, Actor: a})

	assert.True(t, id1.Equal(id2))
	assert.False(t, id1.Equal(id3))
	assert.False(t, id1.Equal(Root))
	assert.True(t, Root.Equal(Root))
}

func TestCompareRootSortsFirst(t *testing.T) {
	id := New(opid.OpID{Counter: 1, Actor: actor.ID{1}})
	assert.Negative(t, Root.Compare(id))
	assert.Positive(t, id.Compare(Root))
	assert.Equal(t, 0, Root.Compare(Root))
}
