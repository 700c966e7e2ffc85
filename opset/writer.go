package opset

import (
	"weave/actor"
	"weave/columnar"
	"weave/value"
)

// Writer builds a fresh column group one Row at a time, interning actor ids
// into table as it goes. The merge engine always writes to a fresh Writer
// and only swaps it in on success (§4.4 "Atomicity"), never mutating
// columns in place.
type Writer struct {
	table *actor.Table

	objIsRoot *columnar.BoolEncoder
	objActor  *columnar.IntEncoder
	objCtr    *columnar.IntEncoder

	keyIsStr *columnar.BoolEncoder
	keyStr   *columnar.StringEncoder
	keyActor *columnar.IntEncoder
	keyCtr   *columnar.IntEncoder

	idActor *columnar.IntEncoder
	idCtr   *columnar.IntEncoder

	insert *columnar.BoolEncoder
	action *columnar.IntEncoder

	valueType *columnar.IntEncoder
	valueLen  *columnar.IntEncoder
	valueRaw  *columnar.RawEncoder

	xrefNum   *columnar.IntEncoder
	xrefCtr   *columnar.IntEncoder
	xrefActor *columnar.IntEncoder

	count int
}

// NewWriter creates a Writer whose actor columns intern against table.
func NewWriter(table *actor.Table) *Writer {
	return &Writer{
		table:     table,
		objIsRoot: columnar.NewBoolEncoder(),
		objActor:  columnar.NewIntEncoder(columnar.TypeRLEActor),
		objCtr:    columnar.NewIntEncoder(columnar.TypeDeltaInt),
		keyIsStr:  columnar.NewBoolEncoder(),
		keyStr:    columnar.NewStringEncoder(),
		keyActor:  columnar.NewIntEncoder(columnar.TypeRLEActor),
		keyCtr:    columnar.NewIntEncoder(columnar.TypeDeltaInt),
		idActor:   columnar.NewIntEncoder(columnar.TypeRLEActor),
		idCtr:     columnar.NewIntEncoder(columnar.TypeDeltaInt),
		insert:    columnar.NewBoolEncoder(),
		action:    columnar.NewIntEncoder(columnar.TypeRLEInt),
		valueType: columnar.NewIntEncoder(columnar.TypeRLEInt),
		valueLen:  columnar.NewIntEncoder(columnar.TypeValueLen),
		valueRaw:  columnar.NewRawEncoder(),
		xrefNum:   columnar.NewIntEncoder(columnar.TypeGroupCard),
		xrefCtr:   columnar.NewIntEncoder(columnar.TypeDeltaInt),
		xrefActor: columnar.NewIntEncoder(columnar.TypeRLEActor),
	}
}

// Append writes one row to the output columns.
func (w *Writer) Append(row Row) {
	w.count++

	isRoot := row.Obj.IsRoot()
	w.objIsRoot.Append(isRoot, 1)
	if isRoot {
		w.objActor.Append(0, 1)
		w.objCtr.Append(0, 1)
	} else {
		w.objActor.Append(int64(w.table.Intern(row.Obj.OpID.Actor)), 1)
		w.objCtr.Append(int64(row.Obj.OpID.Counter), 1)
	}

	w.keyIsStr.Append(row.IsStrKey, 1)
	if row.IsStrKey {
		w.keyStr.Append(row.KeyStr, 1)
		w.keyActor.Append(0, 1)
		w.keyCtr.Append(0, 1)
	} else {
		w.keyStr.Append("", 1)
		w.keyActor.Append(int64(w.table.Intern(row.KeyElem.Actor)), 1)
		w.keyCtr.Append(int64(row.KeyElem.Counter), 1)
	}

	w.idActor.Append(int64(w.table.Intern(row.ID.Actor)), 1)
	w.idCtr.Append(int64(row.ID.Counter), 1)

	w.insert.Append(row.Insert, 1)
	w.action.Append(int64(row.Action), 1)

	w.valueType.Append(int64(row.Value.Type), 1)
	raw := value.EncodeRaw(row.Value)
	w.valueLen.Append(int64(len(raw)), 1)
	w.valueRaw.AppendRawBytes(raw)

	w.xrefNum.Append(int64(len(row.Xref)), 1)
	for _, x := range row.Xref {
		w.xrefCtr.Append(int64(x.Counter), 1)
		w.xrefActor.Append(int64(w.table.Intern(x.Actor)), 1)
	}
}

// Len returns the number of rows appended so far.
func (w *Writer) Len() int {
	return w.count
}

// Columns finalizes every column encoder and returns the resulting column
// group, ready for columnar.EncodeGroup or direct use by a fresh Reader.
func (w *Writer) Columns() []columnar.Column {
	return []columnar.Column{
		{ID: ColObjIsRoot, Data: w.objIsRoot.Bytes()},
		{ID: ColObjActor, Data: w.objActor.Bytes()},
		{ID: ColObjCtr, Data: w.objCtr.Bytes()},
		{ID: ColKeyIsStr, Data: w.keyIsStr.Bytes()},
		{ID: ColKeyStr, Data: w.keyStr.Bytes()},
		{ID: ColKeyActor, Data: w.keyActor.Bytes()},
		{ID: ColKeyCtr, Data: w.keyCtr.Bytes()},
		{ID: ColIDActor, Data: w.idActor.Bytes()},
		{ID: ColIDCtr, Data: w.idCtr.Bytes()},
		{ID: ColInsert, Data: w.insert.Bytes()},
		{ID: ColAction, Data: w.action.Bytes()},
		{ID: ColValueType, Data: w.valueType.Bytes()},
		{ID: ColValueLen, Data: w.valueLen.Bytes()},
		{ID: ColValueRaw, Data: w.valueRaw.Bytes()},
		{ID: ColXrefNum, Data: w.xrefNum.Bytes()},
		{ID: ColXrefCtr, Data: w.xrefCtr.Bytes()},
		{ID: ColXrefActor, Data: w.xrefActor.Bytes()},
	}
}
