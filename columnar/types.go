// Package columnar implements the column codec (§4.1): the byte-level
// encoding of a single column of a document or change's operation table.
//
// A columnId packs three fields into a single byte: the low 3 bits are the
// ColumnType, bit 3 is the "grouped" flag (set when this column is a member
// of a cardinality-prefixed group rather than a flat column), and the high
// 4 bits are the column's kind within its group (an application-defined
// small integer — e.g. "this is the objActor column" vs "this is the
// keyStr column"). A group-cardinality column must have a lower columnId
// than every other member of its group, so that it precedes them.
package columnar

import "weave/docerr"

// ColumnType is the 3-bit type tag of a column.
type ColumnType uint8

const (
	// TypeRLEActor run-length-encodes small non-negative integers that
	// index into the document's actor table.
	TypeRLEActor ColumnType = iota
	// TypeRLEInt run-length-encodes arbitrary signed/unsigned integers.
	TypeRLEInt
	// TypeDeltaInt delta-encodes a monotonic-ish integer sequence (each
	// value stored as the signed difference from the previous one), then
	// run-length-encodes the deltas.
	TypeDeltaInt
	// TypeBoolean run-length-encodes a boolean column as alternating
	// true/false run lengths, starting with a (possibly zero-length)
	// false run.
	TypeBoolean
	// TypeRLEString run-length-encodes repeated strings.
	TypeRLEString
	// TypeValueLen stores, for each row, the byte length of the
	// corresponding value in the paired TypeValueRaw column.
	TypeValueLen
	// TypeValueRaw stores raw value bytes back-to-back; a decoder can
	// only consume it by first reading a count from the paired
	// TypeValueLen column.
	TypeValueRaw
	// TypeGroupCard stores, for each row, how many values the other
	// columns in its group contribute for that row (§4.1: "a group is a
	// set of columns with matching group id, in which the
	// group-cardinality column in each row announces how many values the
	// other members of the group contribute").
	TypeGroupCard
)

const (
	columnTypeBits = 3
	columnTypeMask = (1 << columnTypeBits) - 1
	groupFlagBit   = 1 << columnTypeBits
	columnKindShift = columnTypeBits + 1
)

// ColumnID is the packed (kind, grouped, type) identifier of a column, as
// it appears on the wire (§6.1: "for each column, (columnId: ULEB128,
// byteLength: ULEB128, bytes)").
type ColumnID uint32

// MakeColumnID packs a column kind, its group membership, and its type into
// a single ColumnID.
func MakeColumnID(kind uint32, grouped bool, typ ColumnType) ColumnID {
	id := uint32(typ) & columnTypeMask
	if grouped {
		id |= groupFlagBit
	}
	id |= kind << columnKindShift
	return ColumnID(id)
}

// Type extracts the ColumnType from a columnId.
func (c ColumnID) Type() ColumnType {
	return ColumnType(uint32(c) & columnTypeMask)
}

// Grouped reports whether the column is a member of a cardinality group.
func (c ColumnID) Grouped() bool {
	return uint32(c)&groupFlagBit != 0
}

// Kind returns the application-defined column kind (which logical field —
// objActor, keyStr, valueRaw, etc. — this column holds).
func (c ColumnID) Kind() uint32 {
	return uint32(c) >> columnKindShift
}

// Less orders ColumnIDs for the "columns appear in ascending columnId
// order" wire rule (§6.1 item 5), and for the value-len/value-raw adjacency
// check below.
func (c ColumnID) Less(other ColumnID) bool {
	return c < other
}

// CheckAdjacency verifies the §4.1 constraint that a value-len column must
// be immediately followed by its value-raw column (columnId differs by
// exactly 1 — value-len is type 5, value-raw is type 6, and every other
// packed field must match). ids must already be sorted ascending.
func CheckAdjacency(ids []ColumnID) error {
	for i, id := range ids {
		if id.Type() != TypeValueLen {
			continue
		}
		if i+1 >= len(ids) {
			return docerr.StructuralDecode{
				Column:  "value-len",
				Message: "value-len column has no following column",
			}
		}
		next := ids[i+1]
		if uint32(next)-uint32(id) != 1 || next.Type() != TypeValueRaw {
			return docerr.StructuralDecode{
				Column:  "value-len",
				Message: "value-len column not immediately followed by its value-raw column",
			}
		}
	}
	return nil
}
