// Package s3source reads images from AWS S3 and S3-compatible services.
package s3source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/davidparry/widgets/internal/codec"
	"github.com/davidparry/widgets/internal/codec/gzipcodec"
	"github.com/davidparry/widgets/internal/codec/zstdcodec"
	"github.com/davidparry/widgets/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Scheme is the URL scheme handled by this source.
const Scheme = "s3"

// Source reads objects addressed as s3://bucket/key.
type Source struct {
	client *s3.Client
	prefix string
	codecs codec.Set
}

type settings struct {
	region      string
	endpoint    string
	credentials aws.CredentialsProvider
	prefix      string
	codecs      codec.Set
}

// Option configures a Source.
type Option func(*settings) error

// WithPrefix sets a key prefix prepended to every key.
func WithPrefix(prefix string) Option {
	return func(s *settings) error {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *settings) error {
		if region == "" {
			return errors.New("s3source: empty region")
		}
		s.region = region
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
// Path-style addressing is used with a custom endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) error {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			return fmt.Errorf("s3source: endpoint %q needs an http or https scheme", endpoint)
		}
		s.endpoint = endpoint
		return nil
	}
}

// WithCredentials overrides the default credential chain.
func WithCredentials(p aws.CredentialsProvider) Option {
	return func(s *settings) error {
		s.credentials = p
		return nil
	}
}

// WithCodecs sets the codecs used for Content-Encoding and key suffixes.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(s *settings) error {
		s.codecs = codecs
		return nil
	}
}

// New creates a new S3 source using the default AWS configuration chain.
func New(ctx context.Context, opts ...Option) (*Source, error) {
	st := &settings{
		codecs: codec.Set{zstdcodec.New(), gzipcodec.New()},
	}
	for _, opt := range opts {
		if err := opt(st); err != nil {
			return nil, err
		}
	}

	var loadOpts []func(*config.LoadOptions) error
	if st.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(st.region))
	}
	if st.credentials != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(st.credentials))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if st.endpoint != "" {
			o.BaseEndpoint = aws.String(st.endpoint)
			o.UsePathStyle = true
		}
	})

	return &Source{
		client: client,
		prefix: st.prefix,
		codecs: st.codecs,
	}, nil
}

// Read fetches and decompresses the object named by rawURL.
func (s *Source) Read(ctx context.Context, rawURL string) (*source.Object, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bucket, key, err := source.Location(rawURL, Scheme)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, rawURL)
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}
	defer result.Body.Close()

	c := s.codecFor(aws.ToString(result.ContentEncoding), key)
	data, err := source.Decode(result.Body, c, 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	return &source.Object{
		Data:        data,
		Name:        source.TrimExtension(source.Name(key), c),
		ContentType: aws.ToString(result.ContentType),
	}, nil
}

// Close releases resources.
func (s *Source) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// objectKey returns the full object key for key.
func (s *Source) objectKey(key string) string {
	return s.prefix + key
}

// codecFor prefers the stored Content-Encoding over the key suffix.
func (s *Source) codecFor(encoding, key string) codec.Codec {
	if c, ok := s.codecs.ByName(encoding); ok {
		return c
	}
	if c, ok := s.codecs.ByExtension(key); ok {
		return c
	}
	return nil
}
