// Package httpsource reads images over HTTP and HTTPS.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/davidparry/widgets/internal/codec"
	"github.com/davidparry/widgets/internal/codec/gzipcodec"
	"github.com/davidparry/widgets/internal/codec/zstdcodec"
	"github.com/davidparry/widgets/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

const (
	// DefaultDialTimeout is the default timeout for establishing connections.
	DefaultDialTimeout = 30 * time.Second

	// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
	DefaultResponseHeaderTimeout = 30 * time.Second

	// DefaultReadTimeout bounds reading the response body once headers arrived.
	DefaultReadTimeout = 30 * time.Second

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects = 10

	// DefaultMaxBytes caps a decoded payload.
	DefaultMaxBytes = 64 << 20

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "widgets-imageloader/1.0"
)

// ErrReadTimeout is returned when the body is not read within the read timeout.
var ErrReadTimeout = errors.New("httpsource: body read timed out")

// Source reads objects with HTTP GET.
type Source struct {
	client      *http.Client
	codecs      codec.Set
	readTimeout time.Duration
	maxBytes    int64
	userAgent   string
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets a custom HTTP client. The source uses a copy with
// its own redirect policy; client itself is not modified.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the dial, response header and body read timeouts at once.
// Non-positive values keep the defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		s.client = newClient(timeout)
		if timeout > 0 {
			s.readTimeout = timeout
		}
	}
}

// WithReadTimeout sets how long reading the body may take.
// Non-positive values keep DefaultReadTimeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.readTimeout = timeout
		}
	}
}

// WithCodecs sets the content codings advertised and decoded.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(s *Source) {
		s.codecs = codecs
	}
}

// WithMaxBytes caps the decoded payload size.
func WithMaxBytes(n int64) Option {
	return func(s *Source) {
		s.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Source) {
		s.userAgent = ua
	}
}

// New creates a Source with sensible defaults.
func New(opts ...Option) *Source {
	s := &Source{
		client:      newClient(DefaultDialTimeout),
		codecs:      codec.Set{zstdcodec.New(), gzipcodec.New()},
		readTimeout: DefaultReadTimeout,
		maxBytes:    DefaultMaxBytes,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	client := *s.client
	client.CheckRedirect = checkRedirect
	s.client = &client
	return s
}

// newClient builds a client with per-phase timeouts. Non-positive values
// use DefaultDialTimeout and DefaultResponseHeaderTimeout.
func newClient(timeout time.Duration) *http.Client {
	dial, header := timeout, timeout
	if timeout <= 0 {
		dial, header = DefaultDialTimeout, DefaultResponseHeaderTimeout
	}
	return &http.Client{
		Timeout: 0, // No overall timeout - we handle it per phase.
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: dial}).DialContext,
			ResponseHeaderTimeout: header,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	return nil
}

// Read downloads rawURL and decodes its Content-Encoding.
func (s *Source) Read(ctx context.Context, rawURL string) (*source.Object, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", source.ErrUnsupportedScheme, u.Scheme)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", s.userAgent)
	if accept := s.codecs.AcceptEncoding(); accept != "" {
		req.Header.Set("Accept-Encoding", accept)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, u.Redacted())
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var c codec.Codec
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		var ok bool
		if c, ok = s.codecs.ByName(enc); !ok {
			return nil, fmt.Errorf("unsupported content encoding %q", enc)
		}
	}

	// The read deadline starts once headers are in.
	var timedOut atomic.Bool
	timer := time.AfterFunc(s.readTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	data, err := source.Decode(resp.Body, c, s.maxBytes)
	timer.Stop()
	if err != nil {
		if timedOut.Load() {
			return nil, fmt.Errorf("%w after %v", ErrReadTimeout, s.readTimeout)
		}
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &source.Object{
		Data:        data,
		Name:        source.Name(u.Path),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
