package actor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducesDistinctRoughlySortedIDs(t *testing.T) {
	a := New()
	b := New()
	assert.False(t, a.Equal(b))
	assert.LessOrEqual(t, a.Compare(b), 0)
}

func TestCompareAndEqual(t *testing.T) {
	a := ID{1, 2, 3}
	b := ID{1, 2, 3}
	c := ID{1, 2, 4}

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(a))
}

func TestStringRoundTripsThroughJSON(t *testing.T) {
	a := ID{0xde, 0xad, 0xbe, 0xef}
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"deadbeef"`, string(raw))

	var got ID
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, a.Equal(got))
}

func TestUnmarshalJSONRejectsBadHex(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`"zz"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
}
