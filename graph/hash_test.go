package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashChangeDeterministic(t *testing.T) {
	h1 := HashChange([]byte("hello"))
	h2 := HashChange([]byte("hello"))
	h3 := HashChange([]byte("world"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.False(t, h1.IsZero())
	assert.True(t, ZeroHash.IsZero())
}

func TestMultihashAndCID(t *testing.T) {
	h := HashChange([]byte("payload"))
	mh, err := h.Multihash()
	require.NoError(t, err)
	assert.NotEmpty(t, mh)

	c, err := h.CID()
	require.NoError(t, err)
	assert.True(t, c.Defined())
}

func TestSortHashes(t *testing.T) {
	a := HashChange([]byte("a"))
	b := HashChange([]byte("b"))
	c := HashChange([]byte("c"))
	hs := []ChangeHash{c, a, b}
	SortHashes(hs)
	for i := 1; i < len(hs); i++ {
		assert.False(t, hs[i].Less(hs[i-1]))
	}
}
