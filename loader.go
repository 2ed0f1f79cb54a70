// Package widgets loads remote images for image-bearing views and keeps
// them in a byte-budgeted cache.
//
// Example usage:
//
//	loader, err := widgets.New(
//	    widgets.WithAvailableMemory(512 << 20),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer loader.Close()
//
//	view := widgets.NewImageView(loader, queue,
//	    widgets.WithOnImage(func(img *imagecache.Image) { invalidate() }),
//	)
//	view.LoadURL("https://example.com/cat.png")
package widgets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/pool"
	"github.com/davidparry/widgets/internal/source"
	"github.com/davidparry/widgets/internal/source/filesource"
	"github.com/davidparry/widgets/internal/source/httpsource"
	"github.com/davidparry/widgets/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the loader has been closed.
	ErrClosed = errors.New("widgets: loader closed")

	// ErrNotFound indicates the source has no image at the URL.
	ErrNotFound = source.ErrNotFound
)

// Loader fetches images on a bounded pool of workers and stores them in
// its cache. Fetches cannot be canceled once submitted.
// A Loader is safe for concurrent use by multiple goroutines.
type Loader struct {
	cache   *imagecache.Cache
	source  source.Source
	workers int
	dedupe  bool
	stats   stats.Collector
	logger  *zap.Logger

	poolOnce sync.Once
	pool     *pool.Pool
	group    singleflight.Group
	closed   atomic.Bool
}

// New creates a new Loader with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) (*Loader, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	l := &Loader{
		cache:   cfg.cache,
		source:  cfg.source,
		workers: cfg.workers,
		dedupe:  cfg.dedupe,
		stats:   cfg.stats,
		logger:  cfg.logger.Named("widgets.loader"),
	}

	if l.cache == nil {
		budget := imagecache.BudgetFromMemory(cfg.availableMemory)
		c, err := imagecache.New(budget,
			imagecache.WithStats(cfg.stats),
			imagecache.WithLogger(cfg.logger.Named("widgets.cache")),
		)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		l.cache = c
	}

	if l.source == nil && cfg.httpTimeout <= 0 {
		l.logger.Warn("invalid http timeout, using default",
			zap.Duration("http_timeout", cfg.httpTimeout),
			zap.Duration("default", httpsource.DefaultDialTimeout),
		)
		cfg.httpTimeout = httpsource.DefaultDialTimeout
	}

	if l.source == nil {
		src, err := DefaultSource(cfg.httpTimeout)
		if err != nil {
			return nil, fmt.Errorf("creating source: %w", err)
		}
		l.source = src
	}

	l.logger.Debug("loader initialized",
		zap.Int64("budget", l.cache.Budget()),
		zap.Int("workers", l.workers),
		zap.Bool("dedupe", l.dedupe),
	)

	return l, nil
}

// DefaultSource returns a mux serving http, https and file URLs.
func DefaultSource(httpTimeout time.Duration) (*source.Mux, error) {
	files, err := filesource.New()
	if err != nil {
		return nil, err
	}
	m := source.NewMux()
	m.Handle(httpsource.New(httpsource.WithTimeout(httpTimeout)), "http", "https")
	m.Handle(files, "file")
	return m, nil
}

// Cache returns the cache the loader fills.
func (l *Loader) Cache() *imagecache.Cache {
	return l.cache
}

// Source returns the source the loader reads from.
func (l *Loader) Source() source.Source {
	return l.source
}

// Fetch retrieves url in the background and stores the decoded image in
// the cache, which notifies the key's subscribers. Fetch never blocks.
// Failures are logged and counted; nothing is stored and nothing retried.
func (l *Loader) Fetch(url string) {
	if l.closed.Load() {
		l.logger.Debug("fetch after close ignored", zap.String("url", url))
		return
	}
	l.workerPool().Go(func() {
		_, _ = l.load(context.Background(), url)
	})
}

// Load returns the image for url, from the cache when present, otherwise by
// fetching it on the calling goroutine (still bounded by the worker pool).
func (l *Loader) Load(ctx context.Context, url string) (*imagecache.Image, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}
	return l.load(ctx, url)
}

// Wait blocks until every background fetch started so far has finished.
func (l *Loader) Wait() {
	l.workerPool().Wait()
}

// Close waits for in-flight fetches and releases the source.
// After Close, the loader should not be used.
func (l *Loader) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	l.Wait()

	if l.source != nil {
		if err := l.source.Close(); err != nil {
			return fmt.Errorf("closing source: %w", err)
		}
	}

	return nil
}

// workerPool creates the pool on first use.
func (l *Loader) workerPool() *pool.Pool {
	l.poolOnce.Do(func() {
		l.pool = pool.New(l.workers)
	})
	return l.pool
}

// load runs one retrieval in a pool slot. With de-duplication, concurrent
// callers for the same url wait for the first one's result instead.
func (l *Loader) load(ctx context.Context, url string) (*imagecache.Image, error) {
	if !l.dedupe {
		return l.retrieveInSlot(ctx, url)
	}

	led := false
	v, err, _ := l.group.Do(url, func() (any, error) {
		led = true
		return l.retrieveInSlot(ctx, url)
	})
	if !led {
		l.stats.IncCounter(stats.MetricFetchShared, 1)
	}
	if err != nil {
		return nil, err
	}
	return v.(*imagecache.Image), nil
}

func (l *Loader) retrieveInSlot(ctx context.Context, url string) (*imagecache.Image, error) {
	var img *imagecache.Image
	err := l.workerPool().Do(ctx, func(ctx context.Context) error {
		var err error
		img, err = l.retrieve(ctx, url)
		return err
	})
	return img, err
}

// retrieve reads, decodes and caches one image.
func (l *Loader) retrieve(ctx context.Context, url string) (*imagecache.Image, error) {
	start := time.Now()
	l.stats.IncCounter(stats.MetricFetches, 1)

	img, err := l.readAndDecode(ctx, url)
	if err != nil {
		l.stats.IncCounter(stats.MetricFetchFailures, 1)
		l.logger.Error("image fetch failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}

	l.cache.Put(url, img)

	elapsed := time.Since(start)
	l.stats.ObserveHistogram(stats.MetricFetchSeconds, elapsed.Seconds())
	l.stats.SetGauge(stats.MetricDecodedBytes, img.Bytes)
	l.logger.Debug("image fetched",
		zap.String("url", url),
		zap.String("format", img.Format),
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()),
		zap.Duration("elapsed", elapsed),
	)
	return img, nil
}

func (l *Loader) readAndDecode(ctx context.Context, url string) (*imagecache.Image, error) {
	obj, err := l.source.Read(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return decode(url, obj)
}
