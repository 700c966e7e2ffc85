// Package graph implements the causal graph over applied changes (§4.6):
// changeByHash/dependenciesByHash/dependentsByHash/hashesByActor/heads, and
// the getChanges/getChangesAdded/getMissingDeps queries built on them.
package graph

import (
	"encoding/hex"

	"github.com/multiformats/go-multihash"
	"lukechampine.com/blake3"

	"github.com/ipfs/go-cid"
)

// ChangeHash is a fixed-width digest over a change's canonical encoding
// (§3 "ChangeHash"), treated as opaque by the engine except for equality
// and use as a dictionary key.
type ChangeHash [32]byte

// ZeroHash is the hash value used for "no such change".
var ZeroHash ChangeHash

// HashChange computes the ChangeHash of a change's canonical serialization
// (§6.1 item 6: computed over items 2-5, i.e. everything but the hash
// itself and the leading magic/version).
func HashChange(canonical []byte) ChangeHash {
	return ChangeHash(blake3.Sum256(canonical))
}

// IsZero reports whether h is the zero hash.
func (h ChangeHash) IsZero() bool {
	return h == ZeroHash
}

// Less orders hashes by their raw bytes, used wherever the spec calls for
// a deterministic "sorted ascending" order over ChangeHashes (§6.1 item 3,
// §4.6 heads).
func (h ChangeHash) Less(other ChangeHash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// String renders the hash as lowercase hex.
func (h ChangeHash) String() string {
	return hex.EncodeToString(h[:])
}

// Multihash wraps h as a self-describing blake3 multihash, for interop with
// content-addressed storage layers that expect one.
func (h ChangeHash) Multihash() (multihash.Multihash, error) {
	raw, err := multihash.Encode(h[:], multihash.BLAKE3)
	if err != nil {
		return nil, err
	}
	return multihash.Cast(raw)
}

// CID returns an optional CID view of h (raw codec over its multihash), for
// callers that bridge into IPFS-style content addressing. The engine itself
// never needs this; it exists purely as an interop escape hatch.
func (h ChangeHash) CID() (cid.Cid, error) {
	mh, err := h.Multihash()
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// SortHashes sorts a slice of ChangeHashes ascending in place.
func SortHashes(hs []ChangeHash) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j].Less(hs[j-1]); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
}
