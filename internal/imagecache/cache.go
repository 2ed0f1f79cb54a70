package imagecache

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"weak"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"

	"github.com/davidparry/widgets/internal/stats"
)

// ErrInvalidBudget indicates a non-positive byte budget.
var ErrInvalidBudget = errors.New("imagecache: budget must be positive")

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	SoftHits  int64
	Evictions int64
	Entries   int
	Bytes     int64
	Budget    int64
	Pending   int // Subscriptions waiting for a Put
}

// HitRate returns the cache hit rate as a percentage. Soft hits count as hits.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache is a byte-budgeted LRU cache of decoded images.
// A Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	collector stats.Collector
	logger    *zap.Logger

	mu     sync.Mutex
	lru    *simplelru.LRU[string, *Image]
	budget int64
	used   int64
	subs   map[string][]*Subscription

	// soft remembers evicted images that may still be reachable elsewhere.
	softEnabled bool
	soft        map[string]weak.Pointer[Image]

	hits      int64
	misses    int64
	softHits  int64
	evictions int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(cache *Cache) { cache.collector = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cache *Cache) { cache.logger = l }
}

// WithSoftReferences toggles the fallback to evicted images that are still
// alive. Enabled by default.
func WithSoftReferences(enabled bool) Option {
	return func(cache *Cache) { cache.softEnabled = enabled }
}

// New creates a cache holding at most budget decoded bytes.
func New(budget int64, opts ...Option) (*Cache, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBudget, budget)
	}

	c := &Cache{
		collector:   stats.NewNoop(),
		logger:      zap.NewNop(),
		budget:      budget,
		subs:        make(map[string][]*Subscription),
		softEnabled: true,
		soft:        make(map[string]weak.Pointer[Image]),
	}
	for _, opt := range opts {
		opt(c)
	}

	// The byte budget bounds the cache, not the entry count.
	l, err := simplelru.NewLRU[string, *Image](math.MaxInt32, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get returns the image stored under key and marks it recently used.
func (c *Cache) Get(key string) (*Image, bool) {
	c.mu.Lock()
	img, ok := c.lru.Get(key)
	soft, evicted := false, 0
	if !ok && c.softEnabled {
		img, evicted, ok = c.revive(key)
		soft = ok
	}
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	if soft {
		c.softHits++
	}
	c.mu.Unlock()

	switch {
	case soft:
		c.collector.IncCounter(stats.MetricCacheSoftHits, 1)
		c.collector.IncCounter(stats.MetricCacheHits, 1)
		if evicted > 0 {
			c.collector.IncCounter(stats.MetricCacheEvictions, int64(evicted))
		}
		c.reportSize()
	case ok:
		c.collector.IncCounter(stats.MetricCacheHits, 1)
	default:
		c.collector.IncCounter(stats.MetricCacheMisses, 1)
	}
	return img, ok
}

// Contains reports whether key is held by the LRU, without touching recency
// or the soft fallback.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Put stores img under key, evicts least recently used images until the
// cache is back under budget, then notifies every pending subscriber of key
// in registration order before returning. An image larger than the whole
// budget evicts itself.
func (c *Cache) Put(key string, img *Image) {
	if img == nil {
		c.logger.Warn("ignoring nil image", zap.String("key", key))
		return
	}

	c.mu.Lock()
	delete(c.soft, key)
	c.lru.Remove(key)
	c.lru.Add(key, img)
	c.used += img.Bytes
	evicted := c.evictOverBudget()
	subs := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()

	if evicted > 0 {
		c.collector.IncCounter(stats.MetricCacheEvictions, int64(evicted))
		c.logger.Debug("evicted images",
			zap.String("key", key),
			zap.Int("evicted", evicted),
		)
	}
	c.reportSize()

	for _, s := range subs {
		s.listener.Loaded(key)
	}
	if len(subs) > 0 {
		c.collector.IncCounter(stats.MetricCacheNotifications, int64(len(subs)))
	}
}

// EvictAll drops every image, including soft references.
// Pending subscriptions are kept.
func (c *Cache) EvictAll() {
	c.mu.Lock()
	c.lru.Purge()
	c.used = 0
	c.soft = make(map[string]weak.Pointer[Image])
	c.mu.Unlock()

	c.reportSize()
}

// Subscribe registers l to be notified once, on the next Put of key.
// Subscribe before checking the cache so a concurrent Put is not missed.
func (c *Cache) Subscribe(key string, l Listener) *Subscription {
	s := &Subscription{cache: c, key: key, listener: l}
	c.mu.Lock()
	c.subs[key] = append(c.subs[key], s)
	c.mu.Unlock()
	return s
}

// Keys returns the cached keys from least to most recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Len returns the number of images held by the LRU.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Used returns the decoded bytes held by the LRU.
func (c *Cache) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Budget returns the byte budget.
func (c *Cache) Budget() int64 {
	return c.budget
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := 0
	for _, list := range c.subs {
		pending += len(list)
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		SoftHits:  c.softHits,
		Evictions: c.evictions,
		Entries:   c.lru.Len(),
		Bytes:     c.used,
		Budget:    c.budget,
		Pending:   pending,
	}
}

// onEvict keeps the byte count in step with the LRU. Called with mu held.
func (c *Cache) onEvict(_ string, img *Image) {
	c.used -= img.Bytes
}

// evictOverBudget removes the oldest images until used <= budget and
// returns how many were removed. Called with mu held.
func (c *Cache) evictOverBudget() int {
	evicted := 0
	for c.used > c.budget {
		key, img, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		evicted++
		if c.softEnabled {
			c.remember(key, img)
		}
	}
	c.evictions += int64(evicted)
	return evicted
}

// remember keeps a weak reference to an evicted image. An image already
// remembered under key keeps its single cleanup. Called with mu held.
func (c *Cache) remember(key string, img *Image) {
	wp := weak.Make(img)
	if c.soft[key] == wp {
		return
	}
	c.soft[key] = wp
	runtime.AddCleanup(img, c.forget, key)
}

// revive serves an evicted image that is still alive and re-admits it when
// it fits the budget. The soft reference stays, so a later eviction does
// not register another cleanup. It returns how many images the
// re-admission evicted. Called with mu held.
func (c *Cache) revive(key string) (*Image, int, bool) {
	wp, ok := c.soft[key]
	if !ok {
		return nil, 0, false
	}
	img := wp.Value()
	if img == nil {
		delete(c.soft, key)
		return nil, 0, false
	}
	if img.Bytes > c.budget {
		return img, 0, true
	}
	c.lru.Add(key, img)
	c.used += img.Bytes
	return img, c.evictOverBudget(), true
}

// forget drops a soft reference once its image has been collected.
func (c *Cache) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wp, ok := c.soft[key]; ok && wp.Value() == nil {
		delete(c.soft, key)
	}
}

func (c *Cache) reportSize() {
	c.mu.Lock()
	entries, used := c.lru.Len(), c.used
	c.mu.Unlock()

	c.collector.SetGauge(stats.MetricCacheEntries, int64(entries))
	c.collector.SetGauge(stats.MetricCacheBytes, used)
}

func (c *Cache) unsubscribe(s *Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.subs[s.key]
	for i, candidate := range list {
		if candidate != s {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(c.subs, s.key)
		} else {
			c.subs[s.key] = list
		}
		return true
	}
	return false
}
