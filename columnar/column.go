package columnar

import (
	"bytes"
	"io"

	"weave/docerr"
)

// CopyFrom reads count logical values from d and appends them to e,
// optionally summing the values after right-shifting each by sumShift
// (used to propagate group cardinalities and value-length totals, per
// §4.1 "Encoder.copyFrom ... sumShift right-shifting before summation").
func (e *IntEncoder) CopyFrom(d *IntDecoder, count int, sumValues bool, sumShift uint) (int64, error) {
	var sum int64
	for i := 0; i < count; i++ {
		v, err := d.ReadValue()
		if err != nil {
			return sum, err
		}
		e.Append(v, 1)
		if sumValues {
			sum += v >> sumShift
		}
	}
	return sum, nil
}

// CopyFrom copies count logical string values from d to e.
func (e *StringEncoder) CopyFrom(d *StringDecoder, count int) error {
	for i := 0; i < count; i++ {
		v, err := d.ReadValue()
		if err != nil {
			return err
		}
		e.Append(v, 1)
	}
	return nil
}

// CopyFrom copies count logical boolean values from d to e.
func (e *BoolEncoder) CopyFrom(d *BoolDecoder, count int) error {
	for i := 0; i < count; i++ {
		v, err := d.ReadValue()
		if err != nil {
			return err
		}
		e.Append(v, 1)
	}
	return nil
}

// CopyRawBytes copies n raw bytes from d to e.
func (e *RawEncoder) CopyRawBytes(d *RawDecoder, n int) error {
	b, err := d.ReadRawBytes(n)
	if err != nil {
		return err
	}
	e.AppendRawBytes(b)
	return nil
}

// Column pairs a wire ColumnID with its encoded bytes, the unit the change
// and document blob formats exchange (§6.1 item 5, §6.2).
type Column struct {
	ID   ColumnID
	Data []byte
}

// EncodeGroup serializes a set of columns in ascending columnId order, each
// framed as (columnId uvarint, byteLength uvarint, bytes). Columns need not
// be pre-sorted; EncodeGroup sorts a copy.
func EncodeGroup(cols []Column) ([]byte, error) {
	sorted := make([]Column, len(cols))
	copy(sorted, cols)
	// insertion sort: column counts per op-group are small (a few dozen).
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].ID.Less(sorted[j-1].ID); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	ids := make([]ColumnID, len(sorted))
	for i, c := range sorted {
		ids[i] = c.ID
	}
	if err := CheckAdjacency(ids); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, c := range sorted {
		putUvarint(&buf, uint64(c.ID))
		putUvarint(&buf, uint64(len(c.Data)))
		buf.Write(c.Data)
	}
	return buf.Bytes(), nil
}

// DecodeGroup parses a column group previously produced by EncodeGroup. It
// validates that columnIds are strictly ascending and that the
// value-len/value-raw adjacency constraint holds.
func DecodeGroup(data []byte) ([]Column, error) {
	r := bytes.NewReader(data)
	var cols []Column
	var lastID ColumnID
	first := true
	for r.Len() > 0 {
		rawID, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		id := ColumnID(rawID)
		if !first && !lastID.Less(id) {
			return nil, docerr.StructuralDecode{
				Column:  "group",
				Message: "columns are not in strictly ascending columnId order",
			}
		}
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		body := make([]byte, n)
		if nRead, err := io.ReadFull(r, body); err != nil || uint64(nRead) != n {
			return nil, docerr.StructuralDecode{Column: "group", Message: "truncated column body"}
		}
		cols = append(cols, Column{ID: id, Data: body})
		lastID = id
		first = false
	}

	ids := make([]ColumnID, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	if err := CheckAdjacency(ids); err != nil {
		return nil, err
	}
	return cols, nil
}

// Find returns the column with the given ID, or ok=false if absent.
func Find(cols []Column, id ColumnID) (Column, bool) {
	for _, c := range cols {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}
