// Package source defines how raw image bytes are read from a URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/davidparry/widgets/internal/codec"
)

var (
	// ErrNotFound is returned when the URL names no object.
	ErrNotFound = errors.New("source: object not found")

	// ErrUnsupportedScheme is returned when no source handles the URL scheme.
	ErrUnsupportedScheme = errors.New("source: unsupported URL scheme")

	// ErrTooLarge is returned when a decoded payload exceeds its limit.
	ErrTooLarge = errors.New("source: payload too large")
)

// Object is the raw, already decompressed payload read from a source.
type Object struct {
	Data        []byte
	Name        string // last path element, without any compression suffix
	ContentType string
}

// Source defines the interface for image byte sources.
type Source interface {
	// Read fetches the object addressed by rawURL.
	Read(ctx context.Context, rawURL string) (*Object, error)

	// Close releases any resources held by the source.
	Close() error
}

// Name returns the last element of a URL or object path, the way the
// original file name of an image is recovered from its location.
func Name(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Decode reads r through c (when non-nil) and returns the payload.
// A positive limit caps the decoded size.
func Decode(r io.Reader, c codec.Codec, limit int64) ([]byte, error) {
	if c != nil {
		decompressor, err := c.Reader(r)
		if err != nil {
			return nil, fmt.Errorf("creating %s decompressor: %w", c.Name(), err)
		}
		defer decompressor.Close()
		r = decompressor
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		if c != nil {
			return nil, fmt.Errorf("decompressing %s: %w", c.Name(), err)
		}
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// TrimExtension drops the codec suffix from name, if any.
func TrimExtension(name string, c codec.Codec) string {
	if c == nil || c.Extension() == "" {
		return name
	}
	return strings.TrimSuffix(name, "."+c.Extension())
}

// Location splits a bucket URL such as s3://bucket/a/b.png into bucket and key.
func Location(rawURL, scheme string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return "", "", fmt.Errorf("%w: %q is not a %s URL", ErrUnsupportedScheme, rawURL, scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%s URL %q needs a bucket and a key", scheme, rawURL)
	}
	return u.Host, key, nil
}
