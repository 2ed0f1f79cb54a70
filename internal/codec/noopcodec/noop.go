// Package noopcodec provides the identity content coding: payloads that
// were sent or stored uncompressed.
package noopcodec

import (
	"io"

	"github.com/davidparry/widgets/internal/codec"
)

var _ codec.Codec = Codec{}

// Codec passes bytes through. It never takes ownership of the wrapped
// reader or writer: closing what it returns leaves them open.
type Codec struct{}

// New returns the identity codec.
func New() Codec { return Codec{} }

func (Codec) Reader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }

func (Codec) Writer(w io.Writer) (io.WriteCloser, error) { return writer{w}, nil }

// Name returns "identity", which codec.Set never selects by name.
func (Codec) Name() string { return "identity" }

// Extension is empty: uncompressed files keep their own suffix.
func (Codec) Extension() string { return "" }

type writer struct{ io.Writer }

func (writer) Close() error { return nil }
