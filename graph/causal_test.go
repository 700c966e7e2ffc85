package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkHash(b byte) ChangeHash {
	var h ChangeHash
	h[0] = b
	return h
}

func TestAddRejectsMissingDeps(t *testing.T) {
	g := New()
	err := g.Add(mkHash(1), "alice", []ChangeHash{mkHash(9)}, []byte("x"))
	assert.Error(t, err)
}

func TestAddAndHeads(t *testing.T) {
	g := New()
	h1 := mkHash(1)
	h2 := mkHash(2)

	require.NoError(t, g.Add(h1, "alice", nil, []byte("c1")))
	assert.Equal(t, []ChangeHash{h1}, g.Heads())

	require.NoError(t, g.Add(h2, "alice", []ChangeHash{h1}, []byte("c2")))
	assert.Equal(t, []ChangeHash{h2}, g.Heads())

	raw, ok := g.Change(h1)
	require.True(t, ok)
	assert.Equal(t, []byte("c1"), raw)
}

func TestAddIsIdempotent(t *testing.T) {
	g := New()
	h1 := mkHash(1)
	require.NoError(t, g.Add(h1, "alice", nil, []byte("c1")))
	require.NoError(t, g.Add(h1, "alice", nil, []byte("c1")))
	assert.Equal(t, []ChangeHash{h1}, g.Heads())
}

func TestDependenciesAndHashesByActor(t *testing.T) {
	g := New()
	h1 := mkHash(1)
	h2 := mkHash(2)
	require.NoError(t, g.Add(h1, "alice", nil, []byte("c1")))
	require.NoError(t, g.Add(h2, "bob", []ChangeHash{h1}, []byte("c2")))

	assert.Equal(t, []ChangeHash{h1}, g.Dependencies(h2))
	assert.Equal(t, []ChangeHash{h1}, g.HashesByActor("alice"))
	assert.Equal(t, []ChangeHash{h2}, g.HashesByActor("bob"))
}

func buildDiamond(t *testing.T) (*Graph, ChangeHash, ChangeHash, ChangeHash, ChangeHash) {
	t.Helper()
	g := New()
	root := mkHash(1)
	left := mkHash(2)
	right := mkHash(3)
	tip := mkHash(4)

	require.NoError(t, g.Add(root, "alice", nil, []byte("root")))
	require.NoError(t, g.Add(left, "alice", []ChangeHash{root}, []byte("left")))
	require.NoError(t, g.Add(right, "bob", []ChangeHash{root}, []byte("right")))
	require.NoError(t, g.Add(tip, "alice", []ChangeHash{left, right}, []byte("tip")))
	return g, root, left, right, tip
}

func TestGetChangesFromEmpty(t *testing.T) {
	g, root, left, right, tip := buildDiamond(t)
	got := g.GetChanges(nil)
	assert.ElementsMatch(t, []ChangeHash{root, left, right, tip}, got)
}

func TestGetChangesFromPartial(t *testing.T) {
	g, _, left, right, tip := buildDiamond(t)
	got := g.GetChanges([]ChangeHash{left})
	assert.ElementsMatch(t, []ChangeHash{right, tip}, got)
}

func TestGetChangesAdded(t *testing.T) {
	g, root, left, _, _ := buildDiamond(t)

	other := New()
	require.NoError(t, other.Add(root, "alice", nil, []byte("root")))
	require.NoError(t, other.Add(left, "alice", []ChangeHash{root}, []byte("left")))

	added := g.GetChangesAdded(other)
	assert.Len(t, added, 2)
}

func TestGetMissingDepsAlwaysEmpty(t *testing.T) {
	g, _, _, _, _ := buildDiamond(t)
	assert.Empty(t, g.GetMissingDeps())
}

func TestCloneIsIndependent(t *testing.T) {
	g, _, _, _, tip := buildDiamond(t)
	clone := g.Clone()

	extra := mkHash(5)
	require.NoError(t, clone.Add(extra, "carol", []ChangeHash{tip}, []byte("extra")))

	assert.False(t, g.Has(extra))
	assert.True(t, clone.Has(extra))
}
