// Package value implements the scalar Value carried by Set operations,
// including the counter datatype tag (§3 invariant 6, §4.5 rule 4).
package value

import (
	"encoding/binary"
	"math"
)

// Type tags the kind of a scalar value.
type Type uint8

const (
	// Null is the JSON null value.
	Null Type = iota
	// False is the JSON boolean false.
	False
	// True is the JSON boolean true.
	True
	// Int is a signed integer.
	Int
	// Float is an IEEE-754 double.
	Float
	// Str is a UTF-8 string.
	Str
	// Bytes is an opaque binary blob.
	Bytes
	// Counter marks an Int value as the counter datatype (§3 invariant 6):
	// a set op with Type Counter establishes a counter whose value later
	// Increment ops accumulate into.
	Counter
)

// Value is a scalar carried by a Set (or counter-establishing Set) op.
type Value struct {
	Type Type
	I    int64
	F    float64
	S    string
	B    []byte
}

// Bool constructs a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Type: True}
	}
	return Value{Type: False}
}

// Int64 constructs an integer value.
func Int64(i int64) Value { return Value{Type: Int, I: i} }

// Float64 constructs a float value.
func Float64(f float64) Value { return Value{Type: Float, F: f} }

// String constructs a string value.
func String(s string) Value { return Value{Type: Str, S: s} }

// Bin constructs a binary value.
func Bin(b []byte) Value { return Value{Type: Bytes, B: b} }

// Counter constructs a counter-datatype integer value.
func CounterValue(i int64) Value { return Value{Type: Counter, I: i} }

// IsCounter reports whether v carries the counter datatype.
func (v Value) IsCounter() bool {
	return v.Type == Counter
}

// Native returns the value as a plain Go interface{}, suitable for JSON
// marshaling or the patch diff payload.
func (v Value) Native() interface{} {
	switch v.Type {
	case Null:
		return nil
	case False:
		return false
	case True:
		return true
	case Int, Counter:
		return v.I
	case Float:
		return v.F
	case Str:
		return v.S
	case Bytes:
		return v.B
	default:
		return nil
	}
}

// EncodeRaw serializes v's payload for the value-raw column. The type tag
// itself travels in a separate valueType column, so EncodeRaw only needs to
// cover the types with a nonempty payload.
func EncodeRaw(v Value) []byte {
	switch v.Type {
	case Int, Counter:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.I))
		return b
	case Float:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.F))
		return b
	case Str:
		return []byte(v.S)
	case Bytes:
		return v.B
	default:
		return nil
	}
}

// DecodeRaw reconstructs a Value of the given type from its value-raw
// payload.
func DecodeRaw(t Type, raw []byte) Value {
	switch t {
	case Int, Counter:
		var i int64
		if len(raw) == 8 {
			i = int64(binary.LittleEndian.Uint64(raw))
		}
		return Value{Type: t, I: i}
	case Float:
		var f float64
		if len(raw) == 8 {
			f = math.Float64frombits(binary.LittleEndian.Uint64(raw))
		}
		return Value{Type: Float, F: f}
	case Str:
		return Value{Type: Str, S: string(raw)}
	case Bytes:
		return Value{Type: Bytes, B: raw}
	default:
		return Value{Type: t}
	}
}
