// Package objmeta implements ObjectMeta (§3 "ObjectMeta[ObjectId]"): the
// index of parent/child relationships created by every make* operation,
// used by the patch accumulator to link a touched nested object back to
// its parent property (§4.5, last paragraph).
package objmeta

import (
	"weave/action"
	"weave/objid"
	"weave/opid"
)

// Key identifies the property under which a child object was created:
// either a map/table/text string key or a list elemId.
type Key struct {
	IsStr bool
	Str   string
	Elem  opid.OpID
}

// StrKey builds a map/table string key.
func StrKey(s string) Key { return Key{IsStr: true, Str: s} }

// ElemKey builds a list elemId key.
func ElemKey(id opid.OpID) Key { return Key{Elem: id} }

// Entry records one object's place in the document tree.
type Entry struct {
	ParentObj objid.ID
	ParentKey Key
	Type      action.ObjType
}

// Store is the document-wide ObjectMeta index, copy-on-write at the
// whole-map granularity (§5 treats it as an immutable-after-publication
// substructure; this implementation clones the whole index on Clone rather
// than the finer per-path sharing the spec describes, since the index is
// small relative to the op columns it accompanies).
type Store struct {
	entries map[string]Entry
}

// NewStore creates a store with only the root object registered.
func NewStore() *Store {
	s := &Store{entries: make(map[string]Entry)}
	s.entries[objid.Root.String()] = Entry{Type: action.Map}
	return s
}

// Register records a make* operation's object as a child of parentObj at
// parentKey.
func (s *Store) Register(id objid.ID, parentObj objid.ID, parentKey Key, typ action.ObjType) {
	s.entries[id.String()] = Entry{ParentObj: parentObj, ParentKey: parentKey, Type: typ}
}

// Get returns the entry for id.
func (s *Store) Get(id objid.ID) (Entry, bool) {
	e, ok := s.entries[id.String()]
	return e, ok
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	out := &Store{entries: make(map[string]Entry, len(s.entries))}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	return out
}
