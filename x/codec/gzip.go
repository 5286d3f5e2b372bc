package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec compresses the output of an inner codec. It reports the inner
// content type with the "gzip" content encoding, so the plain and compressed
// variants of a format share a content type and differ only by encoding.
type GzipCodec struct {
	inner Codec
	level int

	// Pools of readers/writers reused across calls
	readers sync.Pool
	writers sync.Pool
}

// NewGzip wraps inner with gzip compression at the default level
func NewGzip(inner Codec) *GzipCodec {
	c, _ := NewGzipLevel(inner, gzip.DefaultCompression) // default level is always valid
	return c
}

// NewGzipLevel wraps inner with gzip compression at the given level
func NewGzipLevel(inner Codec, level int) (*GzipCodec, error) {
	if IsNil(inner) {
		return nil, fmt.Errorf("%w: inner codec is nil", ErrInvalidArgument)
	}
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	c := &GzipCodec{inner: inner, level: level}
	c.writers.New = func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, c.level)
		return w
	}
	return c, nil
}

func (c *GzipCodec) ContentType() string     { return c.inner.ContentType() }
func (c *GzipCodec) ContentEncoding() string { return EncodingGzip }

// Inner returns the wrapped codec
func (c *GzipCodec) Inner() Codec { return c.inner }

// Level returns the compression level
func (c *GzipCodec) Level() int { return c.level }

// Marshal encodes v with the inner codec and compresses the result
func (c *GzipCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil || raw == nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := c.getWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	c.putWriter(w)

	return buf.Bytes(), nil
}

// Unmarshal decompresses data and decodes it with the inner codec
func (c *GzipCodec) Unmarshal(data []byte, v any) error {
	r, err := c.getReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	c.putReader(r)

	return c.inner.Unmarshal(raw, v)
}

func (c *GzipCodec) getWriter(dst io.Writer) *gzip.Writer {
	w, ok := c.writers.Get().(*gzip.Writer)
	if !ok || w == nil {
		w, _ = gzip.NewWriterLevel(dst, c.level)
		return w
	}
	w.Reset(dst)
	return w
}

func (c *GzipCodec) putWriter(w *gzip.Writer) {
	w.Reset(io.Discard) // don't keep references
	c.writers.Put(w)
}

func (c *GzipCodec) getReader(src io.Reader) (*gzip.Reader, error) {
	r, ok := c.readers.Get().(*gzip.Reader)
	if !ok || r == nil {
		return gzip.NewReader(src)
	}
	if err := r.Reset(src); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *GzipCodec) putReader(r *gzip.Reader) {
	if err := r.Close(); err != nil {
		return
	}
	c.readers.Put(r)
}
