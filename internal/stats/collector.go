// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Image cache metrics.
	MetricCacheHits          = "widgets_image_cache_hits_total"
	MetricCacheMisses        = "widgets_image_cache_misses_total"
	MetricCacheSoftHits      = "widgets_image_cache_soft_hits_total"
	MetricCacheEvictions     = "widgets_image_cache_evictions_total"
	MetricCacheEntries       = "widgets_image_cache_entries"
	MetricCacheBytes         = "widgets_image_cache_bytes"
	MetricCacheNotifications = "widgets_image_cache_notifications_total"

	// Loader metrics.
	MetricFetches        = "widgets_image_fetches_total"
	MetricFetchFailures  = "widgets_image_fetch_failures_total"
	MetricFetchShared    = "widgets_image_fetch_shared_total"
	MetricFetchSeconds   = "widgets_image_fetch_seconds"
	MetricDecodedBytes   = "widgets_image_decoded_bytes"
	MetricViewDeliveries = "widgets_image_view_deliveries_total"
	MetricViewStaleDrops = "widgets_image_view_stale_deliveries_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

var help = map[string]string{
	MetricCacheHits:          "Image cache lookups served from the LRU.",
	MetricCacheMisses:        "Image cache lookups that found nothing.",
	MetricCacheSoftHits:      "Image cache lookups recovered from evicted but still reachable images.",
	MetricCacheEvictions:     "Images evicted to stay under the byte budget.",
	MetricCacheEntries:       "Images currently held by the LRU.",
	MetricCacheBytes:         "Decoded pixel bytes currently held by the LRU.",
	MetricCacheNotifications: "Subscribers notified that an image became available.",
	MetricFetches:            "Image retrievals started against a source.",
	MetricFetchFailures:      "Image retrievals that failed to read or decode.",
	MetricFetchShared:        "Fetch requests that joined an in-flight retrieval of the same key.",
	MetricFetchSeconds:       "Time spent reading and decoding one image.",
	MetricDecodedBytes:       "Decoded pixel bytes of the last fetched image.",
	MetricViewDeliveries:     "Images delivered to a live image view.",
	MetricViewStaleDrops:     "Deliveries dropped because the view was detached or changed URL.",
}

// Help returns the description of a metric, or the name itself when the
// metric is not one of the library's own.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
