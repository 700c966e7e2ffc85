package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableReservesZeroIndex(t *testing.T) {
	tbl := NewTable()
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, ID{}, tbl.At(0))
}

func TestInternIsStableAndDeduplicates(t *testing.T) {
	tbl := NewTable()
	a := New()
	b := New()

	ia1 := tbl.Intern(a)
	ib := tbl.Intern(b)
	ia2 := tbl.Intern(a)

	assert.Equal(t, ia1, ia2)
	assert.NotEqual(t, ia1, ib)
	assert.True(t, tbl.At(ia1).Equal(a))
	assert.True(t, tbl.At(ib).Equal(b))
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := NewTable()
	a := New()
	tbl.Intern(a)

	clone := tbl.Clone()
	b := New()
	clone.Intern(b)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 3, clone.Len())
}
