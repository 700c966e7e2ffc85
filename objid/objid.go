// Package objid implements ObjectId: either the sentinel root object or the
// OpId of the operation that created the object.
package objid

import "weave/opid"

// ID identifies an object in the document: the root map, or the make*
// operation that created a nested map/list/text/table.
type ID struct {
	// isRoot is true for the sentinel root object, in which case OpID is
	// the zero value and must not be read.
	isRoot bool
	OpID   opid.OpID
}

// Root is the sentinel identifying the document's root object, which is
// always a map.
var Root = ID{isRoot: true}

// New wraps the OpId of a make* operation as an ObjectId.
func New(id opid.OpID) ID {
	return ID{OpID: id}
}

// IsRoot reports whether id is the root sentinel.
func (id ID) IsRoot() bool {
	return id.isRoot
}

// Equal reports whether id and other name the same object.
func (id ID) Equal(other ID) bool {
	if id.isRoot || other.isRoot {
		return id.isRoot == other.isRoot
	}
	return id.OpID.Equal(other.OpID)
}

// Compare orders ObjectIds for use as the primary key of document op
// ordering (§3 invariant 1: "ordered lexicographically by (objCtr,
// objActor)"). Root sorts before every non-root object.
func (id ID) Compare(other ID) int {
	switch {
	case id.isRoot && other.isRoot:
		return 0
	case id.isRoot:
		return -1
	case other.isRoot:
		return 1
	}
	return id.OpID.Compare(other.OpID)
}

// String renders the ObjectId for logging and map keys.
func (id ID) String() string {
	if id.isRoot {
		return "_root"
	}
	return id.OpID.String()
}
