package docerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	pkgerrors "github.com/pkg/errors"
)

func TestErrorMessagesIncludeContext(t *testing.T) {
	assert.Contains(t, StructuralDecode{Column: "valueLen", Message: "truncated varint"}.Error(), "valueLen")
	assert.Contains(t, MissingDependency{Hash: "abcd"}.Error(), "abcd")
	assert.Contains(t, BadSequence{Actor: "alice", Expected: 2, Got: 4}.Error(), "expected 2, got 4")
	assert.Contains(t, ReferenceNotFound{Op: "insert"}.Error(), "insert")
	assert.Contains(t, OutOfOrderListAccess{Object: "items"}.Error(), "items")
	assert.Contains(t, DuplicateOperationID{OpID: "3@ab"}.Error(), "3@ab")
	assert.Contains(t, UnmatchedPred{OpID: "5@cd"}.Error(), "5@cd")
	assert.Contains(t, ExcessOps{Column: "action", Remain: 3}.Error(), "3 rows left unread")
}

func TestErrorsAsRecoversKindThroughWrap(t *testing.T) {
	wrapped := pkgerrors.Wrap(MissingDependency{Hash: "deadbeef"}, "apply change")

	var md MissingDependency
	ok := errors.As(wrapped, &md)
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", md.Hash)
}
