package actor

// Table is a document-local, ordered sequence of actor ids. Its position
// (the "actor index") is what columns actually store, so that a repeated
// actor across many ops costs a small integer rather than a full id.
// Indices are reused across every column in the document.
type Table struct {
	ids     []ID
	indexOf map[string]int
}

// NewTable creates an actor table with index 0 reserved for the empty
// (zero-value) actor id — the actor half of opid.Nil, the sentinel
// "insert at head of list" reference. Real actors are interned starting
// at index 1.
func NewTable() *Table {
	t := &Table{indexOf: make(map[string]int)}
	t.Intern(ID{})
	return t
}

// Intern returns the index of id, appending it to the table if it is not
// already present. The returned index is stable for the lifetime of the
// table.
func (t *Table) Intern(id ID) int {
	key := id.String()
	if idx, ok := t.indexOf[key]; ok {
		return idx
	}
	idx := len(t.ids)
	t.ids = append(t.ids, append(ID(nil), id...))
	t.indexOf[key] = idx
	return idx
}

// At returns the actor id stored at index idx.
func (t *Table) At(idx int) ID {
	return t.ids[idx]
}

// Len returns the number of actors interned in the table.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns the table's actor ids in index order. The returned slice must
// not be mutated by the caller.
func (t *Table) IDs() []ID {
	return t.ids
}

// Clone returns an independent copy of the table. Clone is used by
// document.State.Clone (§5): the cloned table shares no backing array with
// the original, so later Intern calls on either handle cannot be observed
// by the other.
func (t *Table) Clone() *Table {
	out := &Table{
		ids:     make([]ID, len(t.ids)),
		indexOf: make(map[string]int, len(t.indexOf)),
	}
	copy(out.ids, t.ids)
	for k, v := range t.indexOf {
		out.indexOf[k] = v
	}
	return out
}
