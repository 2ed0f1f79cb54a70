// Package codec decodes (and encodes) compressed image payloads, either as
// an HTTP content coding or as a file suffix.
package codec

import (
	"io"
	"path"
	"strings"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Name returns the HTTP content-coding token (e.g., "gzip", "zstd").
	Name() string
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// Set is an ordered list of codecs a source understands.
type Set []Codec

// ByName returns the codec for a Content-Encoding value. Empty and
// "identity" encodings are reported as not found.
func (s Set) ByName(encoding string) (Codec, bool) {
	encoding = strings.ToLower(strings.TrimSpace(encoding))
	if encoding == "" || encoding == "identity" {
		return nil, false
	}
	for _, c := range s {
		if c.Name() == encoding {
			return c, true
		}
	}
	return nil, false
}

// ByExtension returns the codec whose extension matches the suffix of name.
func (s Set) ByExtension(name string) (Codec, bool) {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return nil, false
	}
	for _, c := range s {
		if c.Extension() != "" && strings.EqualFold(c.Extension(), ext) {
			return c, true
		}
	}
	return nil, false
}

// AcceptEncoding formats the set as an Accept-Encoding header value.
func (s Set) AcceptEncoding() string {
	names := make([]string, 0, len(s))
	for _, c := range s {
		if c.Name() != "" && c.Name() != "identity" {
			names = append(names, c.Name())
		}
	}
	return strings.Join(names, ", ")
}
