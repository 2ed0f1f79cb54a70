// Package zstdcodec provides the zstd codec.
package zstdcodec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/davidparry/widgets/internal/codec"
)

// DefaultMaxMemory caps the memory a single decoder may allocate for
// its window and output. Remote payloads are untrusted.
const DefaultMaxMemory = 64 << 20

var _ codec.Codec = (*Codec)(nil)

// Codec decodes zstd streams one payload at a time.
type Codec struct {
	maxMemory uint64
	level     zstd.EncoderLevel
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxMemory caps decoder memory at n bytes. Non-positive values keep
// the default.
func WithMaxMemory(n int64) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxMemory = uint64(n)
		}
	}
}

// WithLevel sets the encoder level on the zstd 1-22 scale.
func WithLevel(level int) Option {
	return func(c *Codec) { c.level = zstd.EncoderLevelFromZstd(level) }
}

// New returns a zstd codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		maxMemory: DefaultMaxMemory,
		level:     zstd.SpeedDefault,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reader decodes r on the calling goroutine. Closing the result releases
// the decoder but leaves r open.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(c.maxMemory),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return d.IOReadCloser(), nil
}

// Writer encodes to w at the configured level.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
}

// Name returns the content coding token.
func (c *Codec) Name() string { return "zstd" }

// Extension returns "zst".
func (c *Codec) Extension() string { return "zst" }
