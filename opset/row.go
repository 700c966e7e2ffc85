package opset

import (
	"weave/action"
	"weave/objid"
	"weave/opid"
	"weave/value"
)

// Row is one fully-resolved operation: a row of the columnar block,
// translated from actor-table indices back to actor.ID/opid.OpID/objid.ID
// (§3 Operation entity).
type Row struct {
	Obj objid.ID

	// Insert is true for a list-insertion op (only meaningful when the key
	// is an elemId rather than a string).
	Insert bool

	// IsStrKey selects which of KeyStr/KeyElem is populated.
	IsStrKey bool
	KeyStr   string
	KeyElem  opid.OpID // opid.Nil means "insert at head" when Insert is true

	ID     opid.OpID
	Action action.OpAction

	Value value.Value

	// Xref is this row's pred list (change encoding) or succ list
	// (document encoding); the caller knows which, from context.
	Xref []opid.OpID
}

// ObjSortKey returns the (objCtr, objActor) pair used to order rows by
// object (§3 invariant 1). Root sorts before everything.
func (r Row) ObjSortKey() objid.ID {
	return r.Obj
}
