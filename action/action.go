// Package action defines OpAction, the tagged variant of operation kinds
// the document engine understands (§3 Operation entity, §9 "Polymorphism
// over op actions").
package action

// OpAction tags what an operation row does. The even-numbered tags are
// exactly the make-* variants (§9): the change-grouping rule (§4.3) tests
// "is this a make* op" with a single bitwise-and, rather than a multi-way
// switch, by checking Action&1 == 0.
type OpAction uint8

const (
	// MakeMap creates a new map object.
	MakeMap OpAction = 0
	// Set assigns a scalar (or a reference created by a prior make*) to a
	// map key, list element, or the counter slot of a pending counter.
	Set OpAction = 1
	// MakeList creates a new list object.
	MakeList OpAction = 2
	// Delete tombstones a prior operation (it never survives into the
	// document; it is recorded only via the target's succ list, §4.4).
	Delete OpAction = 3
	// MakeText creates a new text object (a list of single-character
	// string elements).
	MakeText OpAction = 4
	// Increment adds a delta to a counter's accumulated value (§3
	// invariant 6, §4.5 rule 4).
	Increment OpAction = 5
	// MakeTable creates a new table object.
	MakeTable OpAction = 6
)

// IsMake reports whether the action creates a new object.
func (a OpAction) IsMake() bool {
	return a&1 == 0
}

// String renders the action for logs and errors.
func (a OpAction) String() string {
	switch a {
	case MakeMap:
		return "makeMap"
	case Set:
		return "set"
	case MakeList:
		return "makeList"
	case Delete:
		return "del"
	case MakeText:
		return "makeText"
	case Increment:
		return "inc"
	case MakeTable:
		return "makeTable"
	default:
		return "unknown"
	}
}

// ObjType is the datatype of an object created by a make* op.
type ObjType uint8

const (
	// Map is a JSON-object-like keyed container.
	Map ObjType = iota
	// List is an ordered CRDT sequence container.
	List
	// Text is a List specialized to single-character string elements.
	Text
	// Table is a keyed container of row objects (treated as an opaque
	// opcode/datatype tag by the backend, per spec.md §1 scope note).
	Table
)

// ForAction maps a make* OpAction to the ObjType it creates. Only valid
// when action.IsMake() is true.
func ForAction(a OpAction) ObjType {
	switch a {
	case MakeMap:
		return Map
	case MakeList:
		return List
	case MakeText:
		return Text
	case MakeTable:
		return Table
	default:
		return Map
	}
}
