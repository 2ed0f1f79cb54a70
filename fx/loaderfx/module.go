// Package loaderfx provides an fx module for an image loader reading from
// http, https, file and, when configured, s3 and gs URLs.
package loaderfx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/davidparry/widgets"
	"github.com/davidparry/widgets/internal/config"
	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/source"
	"github.com/davidparry/widgets/internal/source/gcssource"
	"github.com/davidparry/widgets/internal/source/s3source"
	"github.com/davidparry/widgets/internal/stats"
	"github.com/davidparry/widgets/internal/stats/logger"
)

// Module provides a *widgets.Loader and its *imagecache.Cache.
// Requires a *zap.Logger and a config.Loader to be provided.
var Module = fx.Module("loader",
	fx.Provide(
		newStatsCollector,
		newCache,
		NewSource,
		newLoader,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("widgets.stats"))
}

func newCache(cfg config.Loader, log *zap.Logger, collector stats.Collector) (*imagecache.Cache, error) {
	return imagecache.New(imagecache.BudgetFromMemory(cfg.AvailableMemory()),
		imagecache.WithStats(collector),
		imagecache.WithLogger(log.Named("widgets.cache")),
	)
}

// NewSource builds the scheme mux for cfg: http, https and file always,
// s3 and gs when enabled. The loader closes it.
func NewSource(cfg config.Loader) (source.Source, error) {
	mux, err := widgets.DefaultSource(cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	if cfg.S3.Enabled {
		var opts []s3source.Option
		if cfg.S3.Region != "" {
			opts = append(opts, s3source.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3source.WithEndpoint(cfg.S3.Endpoint))
		}
		s3src, err := s3source.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("creating s3 source: %w", err)
		}
		mux.Handle(s3src, s3source.Scheme)
	}

	if cfg.GCS.Enabled {
		var opts []gcssource.Option
		if cfg.GCS.Endpoint != "" {
			opts = append(opts, gcssource.WithClientOptions(option.WithEndpoint(cfg.GCS.Endpoint)))
		}
		gcsSrc, err := gcssource.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("creating gcs source: %w", err)
		}
		mux.Handle(gcsSrc, gcssource.Scheme)
	}

	return mux, nil
}

// Params holds dependencies for creating the loader.
type Params struct {
	fx.In

	Config    config.Loader
	Logger    *zap.Logger
	Collector stats.Collector
	Cache     *imagecache.Cache
	Source    source.Source
	Lifecycle fx.Lifecycle
}

// Result holds the provided loader.
type Result struct {
	fx.Out

	Loader *widgets.Loader
}

func newLoader(p Params) (Result, error) {
	loader, err := widgets.New(
		widgets.WithCache(p.Cache),
		widgets.WithSource(p.Source),
		widgets.WithWorkers(p.Config.Workers),
		widgets.WithDeduplication(p.Config.Dedupe()),
		widgets.WithStats(p.Collector),
		widgets.WithLogger(p.Logger),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return loader.Close()
		},
	})

	return Result{Loader: loader}, nil
}
