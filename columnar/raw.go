package columnar

import (
	"bytes"
	"io"
)

// RawEncoder accumulates raw bytes back-to-back with no framing of its own;
// callers (normally paired with a TypeValueLen column) are responsible for
// knowing how many bytes each logical value occupies.
type RawEncoder struct {
	buf bytes.Buffer
}

// NewRawEncoder creates a raw byte encoder.
func NewRawEncoder() *RawEncoder {
	return &RawEncoder{}
}

// AppendRawBytes appends b to the column verbatim.
func (e *RawEncoder) AppendRawBytes(b []byte) {
	e.buf.Write(b)
}

// Bytes returns the encoded column.
func (e *RawEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// RawDecoder reads a RawEncoder's output n bytes at a time.
type RawDecoder struct {
	r *bytes.Reader
}

// NewRawDecoder wraps data for reading.
func NewRawDecoder(data []byte) *RawDecoder {
	return &RawDecoder{r: bytes.NewReader(data)}
}

// ReadRawBytes reads exactly n bytes.
func (d *RawDecoder) ReadRawBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SkipValues skips n bytes.
func (d *RawDecoder) SkipValues(n int) error {
	_, err := d.r.Seek(int64(n), io.SeekCurrent)
	return err
}

// Done reports whether every byte has been consumed.
func (d *RawDecoder) Done() bool {
	return d.r.Len() == 0
}

// Reset rewinds the decoder.
func (d *RawDecoder) Reset() {
	d.r.Seek(0, io.SeekStart)
}
