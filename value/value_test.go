package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNativeConversions(t *testing.T) {
	assert.Nil(t, Value{Type: Null}.Native())
	assert.Equal(t, false, Bool(false).Native())
	assert.Equal(t, true, Bool(true).Native())
	assert.Equal(t, int64(42), Int64(42).Native())
	assert.Equal(t, 3.5, Float64(3.5).Native())
	assert.Equal(t, "hi", String("hi").Native())
	assert.Equal(t, []byte("x"), Bin([]byte("x")).Native())
	assert.Equal(t, int64(7), CounterValue(7).Native())
}

func TestIsCounter(t *testing.T) {
	assert.True(t, CounterValue(1).IsCounter())
	assert.False(t, Int64(1).IsCounter())
}

func TestEncodeDecodeRawRoundTrip(t *testing.T) {
	cases := []Value{
		Int64(-9001),
		Float64(2.71828),
		String("round trip me"),
		Bin([]byte{1, 2, 3, 4}),
		CounterValue(100),
	}
	for _, v := range cases {
		raw := EncodeRaw(v)
		got := DecodeRaw(v.Type, raw)
		assert.Equal(t, v, got)
	}
}

func TestDecodeRawNullAndBool(t *testing.T) {
	assert.Equal(t, Value{Type: Null}, DecodeRaw(Null, nil))
	assert.Equal(t, Value{Type: True}, DecodeRaw(True, nil))
}
