package storage

import (
	"context"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compressed wraps a Store with a transparent zstd envelope around every
// blob: Save compresses before handing bytes to the inner Store, Load
// decompresses what it gets back. The in-memory applyChanges/merge path
// never sees this — only bytes that cross into a backend do.
//
// Grounded on the teacher pack's mnohosten-laura-db/pkg/compression
// Compressor: one long-lived encoder/decoder pair reused across calls
// rather than rebuilt per blob.
type Compressed struct {
	inner Store
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCompressed wraps inner so every blob it stores is zstd-compressed.
func NewCompressed(inner Store) (*Compressed, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	return &Compressed{inner: inner, enc: enc, dec: dec}, nil
}

func (c *Compressed) Save(ctx context.Context, id string, data []byte) error {
	return c.inner.Save(ctx, id, c.enc.EncodeAll(data, nil))
}

func (c *Compressed) Load(ctx context.Context, id string) ([]byte, error) {
	raw, err := c.inner.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress document %s", id)
	}
	return data, nil
}

func (c *Compressed) List(ctx context.Context) ([]string, error) {
	return c.inner.List(ctx)
}

func (c *Compressed) Delete(ctx context.Context, id string) error {
	return c.inner.Delete(ctx, id)
}

// Close releases the decoder's background goroutines in addition to
// closing the wrapped Store.
func (c *Compressed) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.inner.Close()
}
