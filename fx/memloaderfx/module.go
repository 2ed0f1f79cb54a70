// Package memloaderfx provides an fx module for an image loader backed by
// an in-memory source. Useful for testing.
package memloaderfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/davidparry/widgets"
	"github.com/davidparry/widgets/internal/source/memsource"
	"github.com/davidparry/widgets/internal/stats"
	"github.com/davidparry/widgets/internal/stats/logger"
)

// Module provides an in-memory image loader for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memloader",
	fx.Provide(
		newStatsCollector,
		newMemSource,
		newLoader,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("widgets.stats"))
}

func newMemSource() *memsource.Source {
	return memsource.New()
}

// Params holds dependencies for creating the loader.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Source    *memsource.Source
	Lifecycle fx.Lifecycle
}

// Result holds the provided loader and source.
type Result struct {
	fx.Out

	Loader *widgets.Loader
	Source *memsource.Source // Exposed for test setup
}

func newLoader(p Params) (Result, error) {
	loader, err := widgets.New(
		widgets.WithSource(p.Source),
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

	return Result{
		Loader: loader,
		Source: p.Source,
	}, nil
}
