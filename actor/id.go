// Package actor implements ActorId: the opaque, immutable replica identity
// used as the tiebreaker component of an OpId (see package opid).
package actor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque immutable byte string identifying a replica. It is
// compared lexicographically when used as a tiebreaker. Every replica has
// exactly one ID.
type ID []byte

// New creates a new ActorId using UUID v7, which sorts roughly in creation
// order. This is the default generator; callers that need a different
// identity scheme (e.g. a stable name) can construct an ID directly.
func New() ID {
	u, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Sprintf("actor: failed to create id: %v", err))
	}
	b := make([]byte, 16)
	copy(b, u[:])
	return ID(b)
}

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b,
// using plain lexicographic byte comparison.
func (a ID) Compare(b ID) int {
	return bytes.Compare(a, b)
}

// Equal reports whether a and b identify the same actor.
func (a ID) Equal(b ID) bool {
	return bytes.Equal(a, b)
}

// String returns a hex representation of the actor id, used for logging,
// map keys, and the textual OpId notation "ctr@actor".
func (a ID) String() string {
	return fmt.Sprintf("%x", []byte(a))
}

// MarshalJSON implements json.Marshaler.
func (a ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := decodeHex(s)
	if err != nil {
		return err
	}
	*a = b
	return nil
}

func decodeHex(s string) (ID, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("actor: odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexVal(s[2*i])
		lo, ok2 := hexVal(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("actor: invalid hex string %q", s)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
