package opid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"weave/actor"
)

func TestCompareOrdersByCounterThenActor(t *testing.T) {
	a1 := actor.ID{1}
	a2 := actor.ID{2}

	low := OpID{Counter: 1, Actor: a2}
	high := OpID{Counter: 2, Actor: a1}
	assert.Negative(t, low.Compare(high))

	sameCounterA := OpID{Counter: 5, Actor: a1}
	sameCounterB := OpID{Counter: 5, Actor: a2}
	assert.Negative(t, sameCounterA.Compare(sameCounterB))
	assert.Positive(t, sameCounterB.Compare(sameCounterA))
}

func TestNilSentinel(t *testing.T) {
	assert.True(t, Nil.IsNil())
	assert.False(t, (OpID{Counter: 1}).IsNil())
	assert.Equal(t, "0@_head", Nil.String())
}

func TestNext(t *testing.T) {
	id := OpID{Counter: 3, Actor: actor.ID{9}}
	next := id.Next(2)
	assert.Equal(t, uint64(5), next.Counter)
	assert.True(t, next.Actor.Equal(id.Actor))
}

func TestSortOpIDs(t *testing.T) {
	a := actor.ID{1}
	b := actor.ID{2}
	ids := []OpID{
		{Counter: 3, Actor: a},
		{Counter: 1, Actor: b},
		{Counter: 2, Actor: a},
	}
	SortOpIDs(ids)
	for i := 1; i < len(ids); i++ {
		assert.True(t, ids[i-1].Less(ids[i]) || ids[i-1].Equal(ids[i]))
	}
}

func TestInsertSorted(t *testing.T) {
	a := actor.ID{1}
	ids := []OpID{{Counter: 1, Actor: a}, {Counter: 3, Actor: a}}
	ids = InsertSorted(ids, OpID{Counter: 2, Actor: a})
	require := []uint64{1, 2, 3}
	for i, want := range require {
		assert.Equal(t, want, ids[i].Counter)
	}
}
