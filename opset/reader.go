package opset

import (
	"io"

	"weave/action"
	"weave/actor"
	"weave/columnar"
	"weave/objid"
	"weave/opid"
	"weave/value"
)

// Reader decodes a column group into a sequence of Rows, resolving actor
// indices against table. A Reader is restartable via Reset (§9 "Streaming
// decoders": "the merge resets all of them once at the top of applyOps and
// once after the seek").
type Reader struct {
	table *actor.Table

	objIsRoot *columnar.BoolDecoder
	objActor  *columnar.IntDecoder
	objCtr    *columnar.IntDecoder

	keyIsStr *columnar.BoolDecoder
	keyStr   *columnar.StringDecoder
	keyActor *columnar.IntDecoder
	keyCtr   *columnar.IntDecoder

	idActor *columnar.IntDecoder
	idCtr   *columnar.IntDecoder

	insert *columnar.BoolDecoder
	action *columnar.IntDecoder

	valueType *columnar.IntDecoder
	valueLen  *columnar.IntDecoder
	valueRaw  *columnar.RawDecoder

	xrefNum   *columnar.IntDecoder
	xrefCtr   *columnar.IntDecoder
	xrefActor *columnar.IntDecoder

	peeked    *Row
	peekedErr error
}

// NewReader builds a Reader over cols, resolving actor indices against
// table. A column missing from cols is read as an empty column: reading a
// row that needs a value from it fails with io.EOF.
func NewReader(cols []columnar.Column, table *actor.Table) *Reader {
	get := func(id columnar.ColumnID) []byte {
		if c, ok := columnar.Find(cols, id); ok {
			return c.Data
		}
		return nil
	}
	r := &Reader{table: table}
	r.objIsRoot = columnar.NewBoolDecoder(get(ColObjIsRoot))
	r.objActor = columnar.NewIntDecoder(columnar.TypeRLEActor, get(ColObjActor))
	r.objCtr = columnar.NewIntDecoder(columnar.TypeDeltaInt, get(ColObjCtr))
	r.keyIsStr = columnar.NewBoolDecoder(get(ColKeyIsStr))
	r.keyStr = columnar.NewStringDecoder(get(ColKeyStr))
	r.keyActor = columnar.NewIntDecoder(columnar.TypeRLEActor, get(ColKeyActor))
	r.keyCtr = columnar.NewIntDecoder(columnar.TypeDeltaInt, get(ColKeyCtr))
	r.idActor = columnar.NewIntDecoder(columnar.TypeRLEActor, get(ColIDActor))
	r.idCtr = columnar.NewIntDecoder(columnar.TypeDeltaInt, get(ColIDCtr))
	r.insert = columnar.NewBoolDecoder(get(ColInsert))
	r.action = columnar.NewIntDecoder(columnar.TypeRLEInt, get(ColAction))
	r.valueType = columnar.NewIntDecoder(columnar.TypeRLEInt, get(ColValueType))
	r.valueLen = columnar.NewIntDecoder(columnar.TypeValueLen, get(ColValueLen))
	r.valueRaw = columnar.NewRawDecoder(get(ColValueRaw))
	r.xrefNum = columnar.NewIntDecoder(columnar.TypeGroupCard, get(ColXrefNum))
	r.xrefCtr = columnar.NewIntDecoder(columnar.TypeDeltaInt, get(ColXrefCtr))
	r.xrefActor = columnar.NewIntDecoder(columnar.TypeRLEActor, get(ColXrefActor))
	return r
}

// Done reports whether every row column is exhausted and no peeked row is
// buffered.
func (r *Reader) Done() bool {
	if r.peeked != nil {
		return false
	}
	if r.peekedErr != nil {
		return true
	}
	return r.objIsRoot.Done()
}

// Peek returns the row the next call to Next will return, without
// consuming it. Seek (§4.2) relies on this to inspect a row before
// deciding whether to advance past it.
func (r *Reader) Peek() (Row, error) {
	if r.peeked != nil {
		return *r.peeked, nil
	}
	if r.peekedErr != nil {
		return Row{}, r.peekedErr
	}
	row, err := r.decodeNext()
	if err != nil {
		r.peekedErr = err
		return Row{}, err
	}
	r.peeked = &row
	return row, nil
}

// Reset rewinds every column decoder to the start of its buffer.
func (r *Reader) Reset() {
	r.peeked = nil
	r.peekedErr = nil
	r.objIsRoot.Reset()
	r.objActor.Reset()
	r.objCtr.Reset()
	r.keyIsStr.Reset()
	r.keyStr.Reset()
	r.keyActor.Reset()
	r.keyCtr.Reset()
	r.idActor.Reset()
	r.idCtr.Reset()
	r.insert.Reset()
	r.action.Reset()
	r.valueType.Reset()
	r.valueLen.Reset()
	r.valueRaw.Reset()
	r.xrefNum.Reset()
	r.xrefCtr.Reset()
	r.xrefActor.Reset()
}

// Next decodes and returns the next Row. It returns io.EOF when the block
// is exhausted.
func (r *Reader) Next() (Row, error) {
	if r.peeked != nil {
		row := *r.peeked
		r.peeked = nil
		return row, nil
	}
	if r.peekedErr != nil {
		err := r.peekedErr
		r.peekedErr = nil
		return Row{}, err
	}
	return r.decodeNext()
}

// decodeNext performs the actual column-by-column row decode.
func (r *Reader) decodeNext() (Row, error) {
	if r.objIsRoot.Done() {
		return Row{}, io.EOF
	}

	isRoot, err := r.objIsRoot.ReadValue()
	if err != nil {
		return Row{}, err
	}
	objActorIdx, err := r.objActor.ReadValue()
	if err != nil {
		return Row{}, err
	}
	objCtr, err := r.objCtr.ReadValue()
	if err != nil {
		return Row{}, err
	}

	var obj objid.ID
	if isRoot {
		obj = objid.Root
	} else {
		obj = objid.New(opid.OpID{Counter: uint64(objCtr), Actor: r.table.At(int(objActorIdx))})
	}

	isStrKey, err := r.keyIsStr.ReadValue()
	if err != nil {
		return Row{}, err
	}
	keyStr, err := r.keyStr.ReadValue()
	if err != nil {
		return Row{}, err
	}
	keyActorIdx, err := r.keyActor.ReadValue()
	if err != nil {
		return Row{}, err
	}
	keyCtr, err := r.keyCtr.ReadValue()
	if err != nil {
		return Row{}, err
	}

	var keyElem opid.OpID
	if !isStrKey {
		keyElem = opid.OpID{Counter: uint64(keyCtr), Actor: r.table.At(int(keyActorIdx))}
	}

	idActorIdx, err := r.idActor.ReadValue()
	if err != nil {
		return Row{}, err
	}
	idCtr, err := r.idCtr.ReadValue()
	if err != nil {
		return Row{}, err
	}
	id := opid.OpID{Counter: uint64(idCtr), Actor: r.table.At(int(idActorIdx))}

	insert, err := r.insert.ReadValue()
	if err != nil {
		return Row{}, err
	}
	actionVal, err := r.action.ReadValue()
	if err != nil {
		return Row{}, err
	}

	valueType, err := r.valueType.ReadValue()
	if err != nil {
		return Row{}, err
	}
	valueLen, err := r.valueLen.ReadValue()
	if err != nil {
		return Row{}, err
	}
	raw, err := r.valueRaw.ReadRawBytes(int(valueLen))
	if err != nil {
		return Row{}, err
	}

	xrefNum, err := r.xrefNum.ReadValue()
	if err != nil {
		return Row{}, err
	}
	xref := make([]opid.OpID, 0, xrefNum)
	for i := int64(0); i < xrefNum; i++ {
		ctr, err := r.xrefCtr.ReadValue()
		if err != nil {
			return Row{}, err
		}
		actorIdx, err := r.xrefActor.ReadValue()
		if err != nil {
			return Row{}, err
		}
		xref = append(xref, opid.OpID{Counter: uint64(ctr), Actor: r.table.At(int(actorIdx))})
	}

	return Row{
		Obj:      obj,
		Insert:   insert,
		IsStrKey: isStrKey,
		KeyStr:   keyStr,
		KeyElem:  keyElem,
		ID:       id,
		Action:   action.OpAction(actionVal),
		Value:    value.DecodeRaw(value.Type(valueType), raw),
		Xref:     xref,
	}, nil
}
