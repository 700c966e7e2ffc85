package columnar

import (
	"bytes"
	"io"

	"github.com/multiformats/go-varint"
	"weave/docerr"
)

// putUvarint appends x to buf as an unsigned LEB128 varint.
func putUvarint(buf *bytes.Buffer, x uint64) {
	buf.Write(varint.ToUvarint(x))
}

// readUvarint reads an unsigned LEB128 varint from r.
func readUvarint(r io.ByteReader) (uint64, error) {
	v, err := varint.ReadUvarint(r)
	if err != nil {
		return 0, docerr.StructuralDecode{Column: "varint", Message: err.Error()}
	}
	return v, nil
}

// zigZagEncode maps a signed integer to an unsigned one so that small
// magnitude values (positive or negative) both encode to a short varint:
// 0, -1, 1, -2, 2, ... -> 0, 1, 2, 3, 4, ...
func zigZagEncode(x int64) uint64 {
	return uint64((x << 1) ^ (x >> 63))
}

// zigZagDecode is the inverse of zigZagEncode.
func zigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// putSvarint appends x to buf as a zig-zag-encoded signed varint.
func putSvarint(buf *bytes.Buffer, x int64) {
	putUvarint(buf, zigZagEncode(x))
}

// readSvarint reads a zig-zag-encoded signed varint from r.
func readSvarint(r io.ByteReader) (int64, error) {
	u, err := readUvarint(r)
	if err != nil {
		return 0, err
	}
	return zigZagDecode(u), nil
}

// PutUvarint is the exported form of putUvarint, for packages outside
// columnar that need to write the same header field encoding (change and
// document headers, §6.1/§6.2).
func PutUvarint(buf *bytes.Buffer, x uint64) { putUvarint(buf, x) }

// ReadUvarint is the exported form of readUvarint.
func ReadUvarint(r io.ByteReader) (uint64, error) { return readUvarint(r) }

// PutSvarint is the exported form of putSvarint.
func PutSvarint(buf *bytes.Buffer, x int64) { putSvarint(buf, x) }

// ReadSvarint is the exported form of readSvarint.
func ReadSvarint(r io.ByteReader) (int64, error) { return readSvarint(r) }

// PutLengthPrefixed writes b as a ULEB128 length followed by its raw bytes.
func PutLengthPrefixed(buf *bytes.Buffer, b []byte) {
	putUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

// ReadLengthPrefixed reads a ULEB128 length followed by that many raw
// bytes.
func ReadLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, docerr.StructuralDecode{Column: "length-prefixed", Message: err.Error()}
	}
	return buf, nil
}
