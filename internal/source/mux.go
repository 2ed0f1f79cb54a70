package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Compile-time check that Mux implements Source.
var _ Source = (*Mux)(nil)

// Mux routes reads to a source by URL scheme. URLs without a scheme are
// routed to the "file" source.
type Mux struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewMux creates an empty mux.
func NewMux() *Mux {
	return &Mux{sources: make(map[string]Source)}
}

// Handle registers src for each of the given schemes, replacing any source
// registered before.
func (m *Mux) Handle(src Source, schemes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, scheme := range schemes {
		m.sources[strings.ToLower(scheme)] = src
	}
}

// Schemes returns the registered schemes.
func (m *Mux) Schemes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schemes := make([]string, 0, len(m.sources))
	for s := range m.sources {
		schemes = append(schemes, s)
	}
	return schemes
}

// Read dispatches to the source registered for the URL scheme.
func (m *Mux) Read(ctx context.Context, rawURL string) (*Object, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "file"
	}

	m.mu.RLock()
	src, ok := m.sources[scheme]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return src.Read(ctx, rawURL)
}

// Close closes every registered source once.
func (m *Mux) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed := make(map[Source]bool)
	var errs []error
	for _, src := range m.sources {
		if closed[src] {
			continue
		}
		closed[src] = true
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
