package columnar

import (
	"bytes"
	"io"
)

// IntEncoder run-length-encodes a stream of integers: each run is written
// as (runLength uvarint, value svarint). TypeDeltaInt additionally stores
// the signed difference from the previous raw value instead of the value
// itself; TypeRLEActor and TypeGroupCard store the value verbatim, as does
// plain TypeRLEInt.
type IntEncoder struct {
	typ ColumnType
	buf bytes.Buffer

	hasPending bool
	pendingVal int64
	pendingRun uint64

	prevRaw int64 // for delta encoding
}

// NewIntEncoder creates an encoder for one of the integer column types.
func NewIntEncoder(typ ColumnType) *IntEncoder {
	return &IntEncoder{typ: typ}
}

// Append adds count repetitions of value to the column.
func (e *IntEncoder) Append(value int64, count int) {
	if e.typ == TypeDeltaInt && count > 1 {
		// repeats of value after the first have a delta of zero
		e.Append(value, 1)
		e.Append(value, count-1)
		return
	}
	stored := value
	if e.typ == TypeDeltaInt {
		stored = value - e.prevRaw
		e.prevRaw = value
	}
	if e.hasPending && e.pendingVal == stored {
		e.pendingRun += uint64(count)
		return
	}
	e.flushPending()
	e.pendingVal = stored
	e.pendingRun = uint64(count)
	e.hasPending = true
}

func (e *IntEncoder) flushPending() {
	if !e.hasPending {
		return
	}
	putUvarint(&e.buf, e.pendingRun)
	putSvarint(&e.buf, e.pendingVal)
	e.hasPending = false
}

// Bytes finalizes and returns the encoded column. Must be called once, after
// all Append calls are complete.
func (e *IntEncoder) Bytes() []byte {
	e.flushPending()
	return e.buf.Bytes()
}

// IntDecoder reads an IntEncoder's output back out, one logical value at a
// time, transparently expanding runs and (for delta columns) reconstructing
// the absolute value.
type IntDecoder struct {
	typ ColumnType
	r   *bytes.Reader

	runLeft uint64
	current int64

	prevRaw int64
	primed  bool
}

// NewIntDecoder wraps data for reading as the given integer column type.
func NewIntDecoder(typ ColumnType, data []byte) *IntDecoder {
	return &IntDecoder{typ: typ, r: bytes.NewReader(data)}
}

func (d *IntDecoder) fill() error {
	for d.runLeft == 0 {
		if d.r.Len() == 0 {
			return io.EOF
		}
		run, err := readUvarint(d.r)
		if err != nil {
			return err
		}
		val, err := readSvarint(d.r)
		if err != nil {
			return err
		}
		d.runLeft = run
		d.current = val
	}
	return nil
}

// ReadValue returns the next logical value, expanding the absolute value
// from the stored delta when typ is TypeDeltaInt.
func (d *IntDecoder) ReadValue() (int64, error) {
	if err := d.fill(); err != nil {
		return 0, err
	}
	d.runLeft--
	out := d.current
	if d.typ == TypeDeltaInt {
		if !d.primed {
			out = d.current
		} else {
			out = d.prevRaw + d.current
		}
		d.prevRaw = out
		d.primed = true
	}
	return out, nil
}

// SkipValues advances past n logical values without materializing them
// (still needed for delta columns, to keep prevRaw correct).
func (d *IntDecoder) SkipValues(n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether every encoded value has been consumed.
func (d *IntDecoder) Done() bool {
	return d.runLeft == 0 && d.r.Len() == 0
}

// Reset rewinds the decoder to the start of its buffer, as required so the
// merge engine can restart a column decoder set at the top of applyOps and
// again after the seek (§9 "Streaming decoders").
func (d *IntDecoder) Reset() {
	d.r.Seek(0, io.SeekStart)
	d.runLeft = 0
	d.current = 0
	d.prevRaw = 0
	d.primed = false
}

// StringEncoder run-length-encodes a stream of strings as (runLength
// uvarint, byteLen uvarint, bytes).
type StringEncoder struct {
	buf bytes.Buffer

	hasPending bool
	pendingVal string
	pendingRun uint64
}

// NewStringEncoder creates a string RLE encoder.
func NewStringEncoder() *StringEncoder {
	return &StringEncoder{}
}

// Append adds count repetitions of value.
func (e *StringEncoder) Append(value string, count int) {
	if e.hasPending && e.pendingVal == value {
		e.pendingRun += uint64(count)
		return
	}
	e.flushPending()
	e.pendingVal = value
	e.pendingRun = uint64(count)
	e.hasPending = true
}

func (e *StringEncoder) flushPending() {
	if !e.hasPending {
		return
	}
	putUvarint(&e.buf, e.pendingRun)
	putUvarint(&e.buf, uint64(len(e.pendingVal)))
	e.buf.WriteString(e.pendingVal)
	e.hasPending = false
}

// Bytes finalizes and returns the encoded column.
func (e *StringEncoder) Bytes() []byte {
	e.flushPending()
	return e.buf.Bytes()
}

// StringDecoder reads a StringEncoder's output.
type StringDecoder struct {
	r *bytes.Reader

	runLeft uint64
	current string
}

// NewStringDecoder wraps data for reading.
func NewStringDecoder(data []byte) *StringDecoder {
	return &StringDecoder{r: bytes.NewReader(data)}
}

func (d *StringDecoder) fill() error {
	for d.runLeft == 0 {
		if d.r.Len() == 0 {
			return io.EOF
		}
		run, err := readUvarint(d.r)
		if err != nil {
			return err
		}
		n, err := readUvarint(d.r)
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return err
		}
		d.runLeft = run
		d.current = string(buf)
	}
	return nil
}

// ReadValue returns the next logical string value.
func (d *StringDecoder) ReadValue() (string, error) {
	if err := d.fill(); err != nil {
		return "", err
	}
	d.runLeft--
	return d.current, nil
}

// SkipValues advances past n logical values.
func (d *StringDecoder) SkipValues(n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether every value has been consumed.
func (d *StringDecoder) Done() bool {
	return d.runLeft == 0 && d.r.Len() == 0
}

// Reset rewinds the decoder.
func (d *StringDecoder) Reset() {
	d.r.Seek(0, io.SeekStart)
	d.runLeft = 0
	d.current = ""
}

// BoolEncoder run-length-encodes a boolean column as alternating run
// lengths, starting with a (possibly zero-length) false run: the first run
// written is always the count of leading false values (0 if the column
// starts with true), the next is the following true run, and so on.
type BoolEncoder struct {
	buf     bytes.Buffer
	current bool
	run     uint64
}

// NewBoolEncoder creates a boolean RLE encoder.
func NewBoolEncoder() *BoolEncoder {
	return &BoolEncoder{}
}

// Append adds count repetitions of value.
func (e *BoolEncoder) Append(value bool, count int) {
	if value == e.current {
		e.run += uint64(count)
		return
	}
	putUvarint(&e.buf, e.run)
	e.current = value
	e.run = uint64(count)
}

// Bytes finalizes and returns the encoded column.
func (e *BoolEncoder) Bytes() []byte {
	putUvarint(&e.buf, e.run)
	return e.buf.Bytes()
}

// BoolDecoder reads a BoolEncoder's output.
type BoolDecoder struct {
	r       *bytes.Reader
	current bool
	runLeft uint64
}

// NewBoolDecoder wraps data for reading.
func NewBoolDecoder(data []byte) *BoolDecoder {
	return &BoolDecoder{r: bytes.NewReader(data), current: false}
}

func (d *BoolDecoder) fill() error {
	for d.runLeft == 0 {
		if d.r.Len() == 0 {
			return io.EOF
		}
		run, err := readUvarint(d.r)
		if err != nil {
			return err
		}
		d.runLeft = run
		if d.runLeft == 0 {
			d.current = !d.current
		}
	}
	return nil
}

// ReadValue returns the next logical boolean value.
func (d *BoolDecoder) ReadValue() (bool, error) {
	if err := d.fill(); err != nil {
		return false, err
	}
	result := d.current
	d.runLeft--
	if d.runLeft == 0 {
		d.current = !d.current
	}
	return result, nil
}

// SkipValues advances past n logical values.
func (d *BoolDecoder) SkipValues(n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.ReadValue(); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether every value has been consumed.
func (d *BoolDecoder) Done() bool {
	return d.runLeft == 0 && d.r.Len() == 0
}

// Reset rewinds the decoder.
func (d *BoolDecoder) Reset() {
	d.r.Seek(0, io.SeekStart)
	d.runLeft = 0
	d.current = false
}
