// Package simonfx provides an fx module for a Simon circle and its animator.
package simonfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/davidparry/widgets/dispatch"
	"github.com/davidparry/widgets/simon"
)

// Module provides a *simon.Circle and a *simon.Animator.
// Requires a *zap.Logger and a simon.Config to be provided. A
// dispatch.Dispatcher and a simon.AnimationListener are optional.
var Module = fx.Module("simon",
	fx.Provide(
		newCircle,
		newAnimator,
	),
)

// Params holds dependencies for creating the circle.
type Params struct {
	fx.In

	Config     simon.Config
	Logger     *zap.Logger
	Dispatcher dispatch.Dispatcher    `optional:"true"`
	OnClick    simon.SectionClickFunc `optional:"true"`
	Lifecycle  fx.Lifecycle
}

func newCircle(p Params) *simon.Circle {
	opts := []simon.Option{simon.WithLogger(p.Logger)}
	if p.Dispatcher != nil {
		opts = append(opts, simon.WithDispatcher(p.Dispatcher))
	}
	if p.OnClick != nil {
		opts = append(opts, simon.WithOnSectionClick(p.OnClick))
	}
	c := simon.New(p.Config, opts...)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Detach()
			return nil
		},
	})
	return c
}

// AnimatorParams holds dependencies for creating the animator.
type AnimatorParams struct {
	fx.In

	Circle   *simon.Circle
	Listener simon.AnimationListener `optional:"true"`
}

func newAnimator(p AnimatorParams) *simon.Animator {
	return simon.NewAnimator(p.Circle, p.Listener)
}
