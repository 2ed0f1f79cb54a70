package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidparry/widgets"
	"github.com/davidparry/widgets/fx/loaderfx"
	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/stats"
	"github.com/davidparry/widgets/internal/stats/logger"
	promstats "github.com/davidparry/widgets/internal/stats/prometheus"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL...",
	Short: "Fetch images through the cached loader",
	Long: `Fetch one or more images concurrently through the loader, the way image
views do, and report each result. Supported schemes are http, https and
file, plus s3 with --s3 and gs with --gcs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var (
	memoryMB     int64
	workers      int
	fetchTimeout time.Duration
	showMetrics  bool
	useS3        bool
	useGCS       bool
	noDedupe     bool
)

func init() {
	fetchCmd.Flags().Int64Var(&memoryMB, "memory-mb", 0, "available memory in MiB; the cache gets one sixth")
	fetchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent fetches (default from config, 10)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "HTTP connect and read timeout (default from config, 30s)")
	fetchCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print Prometheus metrics after fetching")
	fetchCmd.Flags().BoolVar(&useS3, "s3", false, "enable s3:// URLs")
	fetchCmd.Flags().BoolVar(&useGCS, "gcs", false, "enable gs:// URLs")
	fetchCmd.Flags().BoolVar(&noDedupe, "no-dedupe", false, "fetch duplicate URLs independently")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	lc := cfg.Loader
	if memoryMB > 0 {
		lc.AvailableMemoryMB = memoryMB
	}
	if workers > 0 {
		lc.Workers = workers
	}
	if fetchTimeout > 0 {
		lc.HTTPTimeout = fetchTimeout
	}

	var collector stats.Collector = logger.New(log.Named("widgets.stats"))
	registry := prometheus.NewRegistry()
	if showMetrics {
		collector = promstats.New(registry)
	}

	lc.S3.Enabled = lc.S3.Enabled || useS3
	lc.GCS.Enabled = lc.GCS.Enabled || useGCS
	src, err := loaderfx.NewSource(lc)
	if err != nil {
		return err
	}

	loader, err := widgets.New(
		widgets.WithSource(src),
		widgets.WithAvailableMemory(lc.AvailableMemory()),
		widgets.WithWorkers(lc.Workers),
		widgets.WithDeduplication(lc.Dedupe() && !noDedupe),
		widgets.WithStats(collector),
		widgets.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("creating loader: %w", err)
	}

	var (
		mu        sync.Mutex
		latencies []time.Duration
	)
	start := time.Now()
	views := make([]*widgets.ImageView, len(args))
	for i, url := range args {
		views[i] = widgets.NewImageView(loader, nil, widgets.WithOnImage(func(img *imagecache.Image) {
			elapsed := time.Since(start)
			mu.Lock()
			defer mu.Unlock()
			latencies = append(latencies, elapsed)
			fmt.Printf("ok    %-6s %5dx%-5d %8s  %s\n", img.Format, img.Width(), img.Height(),
				elapsed.Round(time.Millisecond), url)
		}))
		views[i].LoadURL(url)
	}
	loader.Wait()

	failed := 0
	for _, v := range views {
		if v.Image() == nil {
			failed++
			fmt.Printf("fail  %s\n", v.URL())
		}
	}

	mu.Lock()
	fmt.Printf("\n%s\n", summarize(latencies))
	mu.Unlock()

	st := loader.Cache().Stats()
	fmt.Printf("cache: %d images, %s of %s, hit rate %.1f%%\n",
		st.Entries, formatBytes(st.Bytes), formatBytes(st.Budget), st.HitRate())

	if err := loader.Close(); err != nil {
		log.Warn("closing loader", zap.Error(err))
	}

	if showMetrics {
		if err := printMetrics(registry); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(args))
	}
	return nil
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	fmt.Println()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
