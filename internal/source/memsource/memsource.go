// Package memsource provides an in-memory source for tests and demos.
package memsource

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/davidparry/widgets/internal/source"
)

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Source is an in-memory source keyed by the full URL string.
type Source struct {
	latency time.Duration

	mu      sync.RWMutex
	objects map[string][]byte
	errs    map[string]error
	reads   map[string]int
}

// Option configures a Source.
type Option func(*Source)

// WithLatency delays every read, which makes concurrent fetches overlap.
func WithLatency(d time.Duration) Option {
	return func(s *Source) { s.latency = d }
}

// New creates a new in-memory source.
func New(opts ...Option) *Source {
	s := &Source{
		objects: make(map[string][]byte),
		errs:    make(map[string]error),
		reads:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores data under rawURL (for test setup).
// The data is copied to prevent caller mutations from affecting the source.
func (s *Source) Set(rawURL string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[rawURL] = copied
	delete(s.errs, rawURL)
}

// Fail makes reads of rawURL return err.
func (s *Source) Fail(rawURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[rawURL] = err
}

// Reads returns how many times rawURL was read.
func (s *Source) Reads(rawURL string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[rawURL]
}

// Read returns the object stored under rawURL.
func (s *Source) Read(ctx context.Context, rawURL string) (*source.Object, error) {
	s.mu.Lock()
	s.reads[rawURL]++
	s.mu.Unlock()

	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	data, ok := s.objects[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, rawURL)
	}

	name := source.Name(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		name = source.Name(u.Path)
	}
	return &source.Object{
		Data:        data,
		Name:        name,
		ContentType: mime.TypeByExtension(path.Ext(name)),
	}, nil
}

// Close is a no-op for the memory source.
func (s *Source) Close() error {
	return nil
}
