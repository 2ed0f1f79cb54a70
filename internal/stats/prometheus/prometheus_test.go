package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/davidparry/widgets/internal/stats"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not found in registry", name)
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry != prometheus.DefaultRegisterer {
		t.Error("New(nil) should fall back to the default registerer")
	}
}

func TestCollector_CacheCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricCacheHits, 5)
	c.IncCounter(stats.MetricCacheHits, 3)

	f := gather(t, reg, stats.MetricCacheHits)
	if got := f.GetMetric()[0].GetCounter().GetValue(); got != 8 {
		t.Errorf("counter value = %v, want 8", got)
	}
	if got := f.GetHelp(); got != stats.Help(stats.MetricCacheHits) {
		t.Errorf("help = %q, want the library description", got)
	}
}

func TestCollector_BytesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge(stats.MetricCacheBytes, 4096)
	c.SetGauge(stats.MetricCacheBytes, 1024)

	f := gather(t, reg, stats.MetricCacheBytes)
	if got := f.GetMetric()[0].GetGauge().GetValue(); got != 1024 {
		t.Errorf("gauge value = %v, want 1024", got)
	}
}

func TestCollector_FetchHistogramBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricFetchSeconds, 0.02)
	c.ObserveHistogram(stats.MetricFetchSeconds, 1.5)

	h := gather(t, reg, stats.MetricFetchSeconds).GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if got, want := len(h.GetBucket()), 12; got != want {
		t.Errorf("bucket count = %d, want %d", got, want)
	}
}

func TestCollector_CustomBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithBuckets("custom_seconds", []float64{1, 2}))

	c.ObserveHistogram("custom_seconds", 1.5)

	h := gather(t, reg, "custom_seconds").GetMetric()[0].GetHistogram()
	if got := len(h.GetBucket()); got != 2 {
		t.Errorf("bucket count = %d, want 2", got)
	}
}

func TestCollector_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithConstLabels(prometheus.Labels{"host": "gallery"}))

	c.IncCounter(stats.MetricFetches, 1)

	labels := gather(t, reg, stats.MetricFetches).GetMetric()[0].GetLabel()
	if len(labels) != 1 || labels[0].GetName() != "host" || labels[0].GetValue() != "gallery" {
		t.Errorf("labels = %v, want host=gallery", labels)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: stats.MetricFetchFailures,
		Help: "registered by the host",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter(stats.MetricFetchFailures, 5)

	f := gather(t, reg, stats.MetricFetchFailures)
	if got := f.GetMetric()[0].GetCounter().GetValue(); got != 105 {
		t.Errorf("counter value = %v, want 105", got)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncCounter(stats.MetricCacheMisses, 1)
				c.SetGauge(stats.MetricCacheEntries, int64(j))
				c.ObserveHistogram(stats.MetricFetchSeconds, float64(j)/100)
			}
		}()
	}
	wg.Wait()

	if got := gather(t, reg, stats.MetricCacheMisses).GetMetric()[0].GetCounter().GetValue(); got != 1000 {
		t.Errorf("counter value = %v, want 1000", got)
	}
	if got := gather(t, reg, stats.MetricFetchSeconds).GetMetric()[0].GetHistogram().GetSampleCount(); got != 1000 {
		t.Errorf("histogram count = %v, want 1000", got)
	}
}
