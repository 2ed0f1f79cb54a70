// Package filesource reads images from the local filesystem.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidparry/widgets/internal/codec"
	"github.com/davidparry/widgets/internal/codec/gzipcodec"
	"github.com/davidparry/widgets/internal/codec/zstdcodec"
	"github.com/davidparry/widgets/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// ErrOutsideRoot is returned for paths that escape the configured root.
var ErrOutsideRoot = errors.New("filesource: path outside root")

// Source reads files addressed by plain paths or file:// URLs.
type Source struct {
	root   string
	codecs codec.Set
}

// Option configures a Source.
type Option func(*Source) error

// WithRoot confines reads to dir. Relative paths resolve against it.
// The directory must exist.
func WithRoot(dir string) Option {
	return func(s *Source) error {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("stat root directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving root: %w", err)
		}
		s.root = abs
		return nil
	}
}

// WithCodecs sets the codecs recognized by file suffix.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(s *Source) error {
		s.codecs = codecs
		return nil
	}
}

// New creates a file source. Compressed files ending in .gz or .zst are
// decompressed by default.
func New(opts ...Option) (*Source, error) {
	s := &Source{
		codecs: codec.Set{zstdcodec.New(), gzipcodec.New()},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Read reads and decompresses the file at rawURL.
func (s *Source) Read(ctx context.Context, rawURL string) (*source.Object, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path, err := s.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	c, _ := s.codecs.ByExtension(path)
	data, err := source.Decode(f, c, 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	name := source.TrimExtension(filepath.Base(path), c)
	return &source.Object{
		Data:        data,
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
	}, nil
}

// Close releases any resources held by the source.
func (s *Source) Close() error {
	return nil
}

// resolve turns a plain path or file:// URL into a filesystem path.
func (s *Source) resolve(rawURL string) (string, error) {
	p := rawURL
	if strings.HasPrefix(rawURL, "file:") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("parsing %q: %w", rawURL, err)
		}
		p = u.Path
		if p == "" {
			p = u.Opaque
		}
	}
	if p == "" {
		return "", fmt.Errorf("empty path in %q", rawURL)
	}
	p = filepath.FromSlash(p)

	if s.root == "" {
		return filepath.Clean(p), nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rawURL)
	}
	return p, nil
}
