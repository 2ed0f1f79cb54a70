package widgets

import (
	"time"

	"go.uber.org/zap"

	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/pool"
	"github.com/davidparry/widgets/internal/source"
	"github.com/davidparry/widgets/internal/source/httpsource"
	"github.com/davidparry/widgets/internal/stats"
)

// Option configures a Loader.
type Option interface {
	apply(*options)
}

// options holds the loader configuration.
type options struct {
	cache           *imagecache.Cache
	source          source.Source
	workers         int
	availableMemory int64
	dedupe          bool
	httpTimeout     time.Duration
	stats           stats.Collector
	logger          *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		workers:     pool.DefaultSize,
		dedupe:      true,
		httpTimeout: httpsource.DefaultDialTimeout,
		stats:       stats.NewNoop(),
		logger:      zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithCache sets the image cache. If not set, a cache sized from
// WithAvailableMemory is created.
func WithCache(c *imagecache.Cache) Option {
	return optionFunc(func(o *options) {
		o.cache = c
	})
}

// WithSource sets where image bytes come from.
// If not set, http, https and file URLs are supported.
func WithSource(s source.Source) Option {
	return optionFunc(func(o *options) {
		o.source = s
	})
}

// WithWorkers sets the number of concurrent fetches.
// Default is 10.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithAvailableMemory sets the host's available memory in bytes. The
// created cache gets one sixth of it. Ignored when WithCache is used.
func WithAvailableMemory(bytes int64) Option {
	return optionFunc(func(o *options) {
		o.availableMemory = bytes
	})
}

// WithDeduplication controls whether concurrent fetches of one URL share a
// single retrieval. Enabled by default.
func WithDeduplication(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.dedupe = enabled
	})
}

// WithHTTPTimeout sets the connect and read timeouts of the default source.
// Ignored when WithSource is used. Non-positive values are logged and
// replaced by the 30s default.
func WithHTTPTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.httpTimeout = d
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
