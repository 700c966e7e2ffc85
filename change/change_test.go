package change

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weave/action"
	"weave/actor"
	"weave/graph"
	"weave/objid"
	"weave/opid"
	"weave/opset"
	"weave/value"
)

func buildChange(t *testing.T, a actor.ID) *Change {
	t.Helper()
	table := actor.NewTable()
	table.Intern(a)
	w := opset.NewWriter(table)
	w.Append(opset.Row{
		Obj:      objid.Root,
		IsStrKey: true,
		KeyStr:   "title",
		ID:       opid.OpID{Counter: 1, Actor: a},
		Action:   action.Set,
		Value:    value.String("hello"),
	})
	return &Change{
		Actor:    a,
		Seq:      1,
		StartOp:  1,
		Time:     1000,
		Message:  "set title",
		Deps:     nil,
		ActorIDs: []actor.ID{a},
		Ops:      w.Columns(),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := actor.New()
	c := buildChange(t, a)

	raw, err := Encode(c)
	require.NoError(t, err)
	assert.False(t, c.Hash.IsZero())

	decoded, err := Decode(raw)
	require.NoError(t, err)

	assert.True(t, decoded.Actor.Equal(c.Actor))
	assert.Equal(t, c.Seq, decoded.Seq)
	assert.Equal(t, c.StartOp, decoded.StartOp)
	assert.Equal(t, c.Time, decoded.Time)
	assert.Equal(t, c.Message, decoded.Message)
	assert.Equal(t, c.Hash, decoded.Hash)

	r := decoded.Reader()
	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "title", row.KeyStr)
	assert.Equal(t, value.String("hello"), row.Value)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEncodeHashIsDeterministic(t *testing.T) {
	a := actor.New()
	c1 := buildChange(t, a)
	c2 := buildChange(t, a)

	_, err := Encode(c1)
	require.NoError(t, err)
	_, err = Encode(c2)
	require.NoError(t, err)

	assert.Equal(t, c1.Hash, c2.Hash)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("not a change at all"))
	assert.Error(t, err)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	a := actor.New()
	c := buildChange(t, a)
	raw, err := Encode(c)
	require.NoError(t, err)
	raw[4] = 99
	_, err = Decode(raw)
	assert.Error(t, err)
}

func TestDepsSortedCanonically(t *testing.T) {
	a := actor.New()
	c := buildChange(t, a)
	h1 := graph.HashChange([]byte("b"))
	h2 := graph.HashChange([]byte("a"))
	c.Deps = []graph.ChangeHash{h1, h2}

	raw, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(raw)
	require.NoError(t, err)

	require.Len(t, decoded.Deps, 2)
	assert.False(t, decoded.Deps[1].Less(decoded.Deps[0]))
}
