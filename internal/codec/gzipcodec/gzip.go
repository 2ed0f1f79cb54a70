// Package gzipcodec provides the gzip codec on klauspost/compress.
package gzipcodec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/davidparry/widgets/internal/codec"
)

var _ codec.Codec = (*Codec)(nil)

// Codec reads and writes gzip members.
type Codec struct {
	level int
}

// New returns a gzip codec writing at level, or gzip.DefaultCompression
// when level is omitted. Levels outside the gzip range fall back to the
// default.
func New(level ...int) *Codec {
	c := &Codec{level: gzip.DefaultCompression}
	if len(level) > 0 && level[0] >= gzip.HuffmanOnly && level[0] <= gzip.BestCompression {
		c.level = level[0]
	}
	return c
}

// Level returns the compression level used by Writer.
func (c *Codec) Level() int { return c.level }

// Reader decodes a gzip stream, including concatenated members.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return zr, nil
}

// Writer encodes to w.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, c.level)
}

// Name returns the content coding token.
func (c *Codec) Name() string { return "gzip" }

// Extension returns "gz".
func (c *Codec) Extension() string { return "gz" }
