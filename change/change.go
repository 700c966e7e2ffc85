// Package change implements the change codec (§6.1): the binary framing of
// one change's header plus its columnar operation block, and the §4.3
// grouping of a change's ops into mergeable sequences.
package change

import (
	"bytes"
	"io"

	"weave/actor"
	"weave/columnar"
	"weave/docerr"
	"weave/graph"
	"weave/opset"
)

var magic = [4]byte{'w', 'v', 'c', '1'}

const formatVersion = 1

// Change is one immutable, causally-dependent unit of document history
// (§3 "Change").
type Change struct {
	Actor    actor.ID
	Seq      uint64 // 1-based per actor, monotonic
	StartOp  uint64
	Time     int64 // seconds since epoch
	Message  string
	Deps     []graph.ChangeHash
	ActorIDs []actor.ID // element 0 is this change's own actor
	Ops      []columnar.Column

	Hash graph.ChangeHash
}

// Encode serializes c to its binary form and fills in c.Hash.
func Encode(c *Change) ([]byte, error) {
	canonical, err := canonicalBytes(c)
	if err != nil {
		return nil, err
	}
	c.Hash = graph.HashChange(canonical)

	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)
	buf.Write(canonical)
	return buf.Bytes(), nil
}

// canonicalBytes serializes items 2-5 of §6.1: actor/seq/startOp/time/
// message, deps, actorIds, and the column group, in that order.
func canonicalBytes(c *Change) ([]byte, error) {
	var buf bytes.Buffer

	columnar.PutLengthPrefixed(&buf, c.Actor)
	columnar.PutUvarint(&buf, c.Seq)
	columnar.PutUvarint(&buf, c.StartOp)
	columnar.PutSvarint(&buf, c.Time)
	columnar.PutLengthPrefixed(&buf, []byte(c.Message))

	deps := append([]graph.ChangeHash(nil), c.Deps...)
	graph.SortHashes(deps)
	columnar.PutUvarint(&buf, uint64(len(deps)))
	for _, d := range deps {
		buf.Write(d[:])
	}

	columnar.PutUvarint(&buf, uint64(len(c.ActorIDs)))
	for _, a := range c.ActorIDs {
		columnar.PutLengthPrefixed(&buf, a)
	}

	colBytes, err := columnar.EncodeGroup(c.Ops)
	if err != nil {
		return nil, err
	}
	buf.Write(colBytes)

	return buf.Bytes(), nil
}

// Decode parses a change blob produced by Encode.
func Decode(data []byte) (*Change, error) {
	if len(data) < 5 || [4]byte(data[:4]) != magic {
		return nil, docerr.StructuralDecode{Column: "change", Message: "bad magic"}
	}
	if data[4] != formatVersion {
		return nil, docerr.StructuralDecode{Column: "change", Message: "unsupported version"}
	}
	canonical := data[5:]

	r := bytes.NewReader(canonical)

	actorBytes, err := columnar.ReadLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	seq, err := columnar.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	startOp, err := columnar.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	t, err := columnar.ReadSvarint(r)
	if err != nil {
		return nil, err
	}
	msgBytes, err := columnar.ReadLengthPrefixed(r)
	if err != nil {
		return nil, err
	}

	depCount, err := columnar.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	deps := make([]graph.ChangeHash, depCount)
	for i := range deps {
		var h graph.ChangeHash
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return nil, docerr.StructuralDecode{Column: "change.deps", Message: "truncated hash"}
		}
		deps[i] = h
	}

	actorCount, err := columnar.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	actorIDs := make([]actor.ID, actorCount)
	for i := range actorIDs {
		a, err := columnar.ReadLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		actorIDs[i] = actor.ID(a)
	}

	remaining := make([]byte, r.Len())
	if _, err := io.ReadFull(r, remaining); err != nil {
		return nil, docerr.StructuralDecode{Column: "change.ops", Message: "truncated column group"}
	}
	cols, err := columnar.DecodeGroup(remaining)
	if err != nil {
		return nil, err
	}

	c := &Change{
		Actor:    actor.ID(actorBytes),
		Seq:      seq,
		StartOp:  startOp,
		Time:     t,
		Message:  string(msgBytes),
		Deps:     deps,
		ActorIDs: actorIDs,
		Ops:      cols,
	}
	c.Hash = graph.HashChange(canonical)
	return c, nil
}

// Table builds an actor.Table pre-interned in the change's own actorIds
// order, so that opset.NewReader can resolve the change's columns.
func (c *Change) Table() *actor.Table {
	t := actor.NewTable()
	for _, a := range c.ActorIDs {
		t.Intern(a)
	}
	return t
}

// Reader returns an opset.Reader over this change's ops, with Xref meaning
// each row's pred list (§2 "the same column layout... pred in change
// encoding").
func (c *Change) Reader() *opset.Reader {
	return opset.NewReader(c.Ops, c.Table())
}
