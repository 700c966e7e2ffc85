// Package opset implements the operation cursor (§2 "Operation cursor"):
// a forward-reading (and resettable) sequence of operation rows over a parallel set of
// column decoders, shared by both change encoding (pred) and document
// encoding (succ).
package opset

import "weave/columnar"

// Column kinds. These are the application-defined "kind" nibble packed
// into each columnId (see columnar.MakeColumnID); their numeric values
// only need to be internally consistent, since a column group is always
// decoded with the same kind table that encoded it.
const (
	KindObjIsRoot = iota
	KindObjActor
	KindObjCtr
	KindKeyIsStr
	KindKeyStr
	KindKeyActor
	KindKeyCtr
	KindIDActor
	KindIDCtr
	KindInsert
	KindAction
	KindValueType
	KindValueLen
	KindXrefNum
	KindXrefCtr
	KindXrefActor
)

// Column IDs for every field of an operation row. xref is pred in change
// encoding and succ in document encoding — the two never coexist in the
// same block, so they share one column layout.
var (
	ColObjIsRoot = columnar.MakeColumnID(KindObjIsRoot, false, columnar.TypeBoolean)
	ColObjActor  = columnar.MakeColumnID(KindObjActor, false, columnar.TypeRLEActor)
	ColObjCtr    = columnar.MakeColumnID(KindObjCtr, false, columnar.TypeDeltaInt)

	ColKeyIsStr = columnar.MakeColumnID(KindKeyIsStr, false, columnar.TypeBoolean)
	ColKeyStr   = columnar.MakeColumnID(KindKeyStr, false, columnar.TypeRLEString)
	ColKeyActor = columnar.MakeColumnID(KindKeyActor, false, columnar.TypeRLEActor)
	ColKeyCtr   = columnar.MakeColumnID(KindKeyCtr, false, columnar.TypeDeltaInt)

	ColIDActor = columnar.MakeColumnID(KindIDActor, false, columnar.TypeRLEActor)
	ColIDCtr   = columnar.MakeColumnID(KindIDCtr, false, columnar.TypeDeltaInt)

	ColInsert = columnar.MakeColumnID(KindInsert, false, columnar.TypeBoolean)
	ColAction = columnar.MakeColumnID(KindAction, false, columnar.TypeRLEInt)

	ColValueType = columnar.MakeColumnID(KindValueType, false, columnar.TypeRLEInt)
	ColValueLen  = columnar.MakeColumnID(KindValueLen, false, columnar.TypeValueLen)
	ColValueRaw  = columnar.MakeColumnID(KindValueLen, false, columnar.TypeValueRaw)

	ColXrefNum   = columnar.MakeColumnID(KindXrefNum, true, columnar.TypeGroupCard)
	ColXrefCtr   = columnar.MakeColumnID(KindXrefCtr, true, columnar.TypeDeltaInt)
	ColXrefActor = columnar.MakeColumnID(KindXrefActor, true, columnar.TypeRLEActor)
)

// AllColumnIDs lists every column kind an operation block may carry, in a
// stable order convenient for building a Writer.
func AllColumnIDs() []columnar.ColumnID {
	return []columnar.ColumnID{
		ColObjIsRoot, ColObjActor, ColObjCtr,
		ColKeyIsStr, ColKeyStr, ColKeyActor, ColKeyCtr,
		ColIDActor, ColIDCtr,
		ColInsert, ColAction,
		ColValueType, ColValueLen, ColValueRaw,
		ColXrefNum, ColXrefCtr, ColXrefActor,
	}
}
