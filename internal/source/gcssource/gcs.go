// Package gcssource reads images from Google Cloud Storage.
package gcssource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/davidparry/widgets/internal/codec"
	"github.com/davidparry/widgets/internal/codec/gzipcodec"
	"github.com/davidparry/widgets/internal/codec/zstdcodec"
	"github.com/davidparry/widgets/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Scheme is the URL scheme handled by this source.
const Scheme = "gs"

// objectOpener opens a GCS object. It is satisfied by the storage client
// adapter and by test fakes.
type objectOpener interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, string, error)
	Close() error
}

// clientOpener adapts *storage.Client to objectOpener.
type clientOpener struct {
	client *storage.Client
}

func (o clientOpener) Open(ctx context.Context, bucket, object string) (io.ReadCloser, string, error) {
	r, err := o.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, "", err
	}
	return r, r.Attrs.ContentType, nil
}

func (o clientOpener) Close() error {
	return o.client.Close()
}

// Source reads objects addressed as gs://bucket/object.
type Source struct {
	opener objectOpener
	prefix string
	codecs codec.Set
}

type settings struct {
	prefix        string
	codecs        codec.Set
	clientOptions []option.ClientOption
}

// Option configures a Source.
type Option func(*settings)

// WithPrefix sets an object prefix prepended to every object name.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// WithCodecs sets the codecs recognized by object suffix.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(s *settings) {
		s.codecs = codecs
	}
}

// WithClientOptions passes options (endpoint, credentials) to the GCS client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) {
		s.clientOptions = append(s.clientOptions, opts...)
	}
}

// New creates a new GCS source.
func New(ctx context.Context, opts ...Option) (*Source, error) {
	st := &settings{
		codecs: codec.Set{zstdcodec.New(), gzipcodec.New()},
	}
	for _, opt := range opts {
		opt(st)
	}

	client, err := storage.NewClient(ctx, st.clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	return &Source{
		opener: clientOpener{client: client},
		prefix: st.prefix,
		codecs: st.codecs,
	}, nil
}

// Read fetches the object named by rawURL. Objects stored with
// Content-Encoding: gzip are decompressed by the client library; other
// compressed objects are recognized by suffix.
func (s *Source) Read(ctx context.Context, rawURL string) (*source.Object, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bucket, object, err := source.Location(rawURL, Scheme)
	if err != nil {
		return nil, err
	}

	reader, contentType, err := s.opener.Open(ctx, bucket, s.objectName(object))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, rawURL)
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	c, _ := s.codecs.ByExtension(object)
	data, err := source.Decode(reader, c, 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	return &source.Object{
		Data:        data,
		Name:        source.TrimExtension(source.Name(object), c),
		ContentType: contentType,
	}, nil
}

// Close releases resources.
func (s *Source) Close() error {
	return s.opener.Close()
}

// objectName returns the full object name.
func (s *Source) objectName(object string) string {
	return s.prefix + object
}
