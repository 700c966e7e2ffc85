// Package docerr defines the distinguishable error kinds the document
// engine can return. Every kind is a typed struct so a caller can recover
// it with errors.As even after it has been wrapped with github.com/pkg/errors
// for a stack trace.
package docerr

import "fmt"

// StructuralDecode is returned when a column buffer is malformed: a
// truncated varint, a value-len column without its value-raw neighbor, or
// a group-cardinality column that does not precede its members.
type StructuralDecode struct {
	Column  string
	Message string
}

func (e StructuralDecode) Error() string {
	return fmt.Sprintf("structural decode error in column %s: %s", e.Column, e.Message)
}

// MissingDependency is returned when a change references a hash that is
// neither already applied nor present in the same batch.
type MissingDependency struct {
	Hash string
}

func (e MissingDependency) Error() string {
	return fmt.Sprintf("missing dependency: %s", e.Hash)
}

// BadSequence is returned when a change's (actor, seq) violates per-actor
// monotonicity: seq must be exactly one greater than the highest seq
// already applied for that actor.
type BadSequence struct {
	Actor    string
	Expected uint64
	Got      uint64
}

func (e BadSequence) Error() string {
	return fmt.Sprintf("bad sequence for actor %s: expected %d, got %d", e.Actor, e.Expected, e.Got)
}

// ReferenceNotFound is returned when a list update or insert references an
// elemId that does not exist in the target object.
type ReferenceNotFound struct {
	Op string
}

func (e ReferenceNotFound) Error() string {
	return fmt.Sprintf("reference not found: %s", e.Op)
}

// OutOfOrderListAccess is returned when a change accesses list elements out
// of monotonic visible-index order within a single merge.
type OutOfOrderListAccess struct {
	Object string
}

func (e OutOfOrderListAccess) Error() string {
	return fmt.Sprintf("out-of-order list access on object %s", e.Object)
}

// DuplicateOperationID is returned when two distinct operations in the
// merged stream carry the same OpId.
type DuplicateOperationID struct {
	OpID string
}

func (e DuplicateOperationID) Error() string {
	return fmt.Sprintf("duplicate operation id: %s", e.OpID)
}

// UnmatchedPred is returned when a change op's pred entry has no matching
// operation in the current merge region.
type UnmatchedPred struct {
	OpID string
}

func (e UnmatchedPred) Error() string {
	return fmt.Sprintf("unmatched pred: %s", e.OpID)
}

// ExcessOps is returned by the merge engine's post-merge integrity check
// when a column decoder still has rows left after the driver loop exited.
type ExcessOps struct {
	Column string
	Remain int
}

func (e ExcessOps) Error() string {
	return fmt.Sprintf("excess ops in column %s: %d rows left unread", e.Column, e.Remain)
}
