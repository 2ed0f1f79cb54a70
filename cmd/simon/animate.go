package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidparry/widgets/dispatch"
	"github.com/davidparry/widgets/internal/colors"
	"github.com/davidparry/widgets/simon"
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Play a highlight sequence",
	Long: `Play a highlight sequence on a circle and print every visual update.
Each line shows the elapsed time and the fill of every section.

The rate must be at least 120ms.`,
	Args: cobra.NoArgs,
	RunE: runAnimate,
}

var (
	sequence []int
	rate     time.Duration
)

func init() {
	animateCmd.Flags().IntSliceVar(&sequence, "sequence", []int{0, 1, 2, 3}, "sections to highlight, in order")
	animateCmd.Flags().DurationVar(&rate, "rate", 150*time.Millisecond, "time each section stays highlighted")
	rootCmd.AddCommand(animateCmd)
}

func runAnimate(cmd *cobra.Command, args []string) error {
	if rate < simon.MinimalRate {
		return fmt.Errorf("rate must be at least %v, got %v", simon.MinimalRate, rate)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	queue := dispatch.NewQueue()
	start := time.Now()

	var circle *simon.Circle
	circle = simon.New(cfg.Circle,
		simon.WithLogger(logger),
		simon.WithDispatcher(queue),
		simon.WithInvalidate(func() {
			fmt.Printf("%8s  %s\n", time.Since(start).Round(time.Millisecond), fills(circle))
		}),
	)

	stopped := make(chan struct{})
	animator := simon.NewAnimator(circle, simon.ListenerFuncs{
		OnStarted: func() { fmt.Printf("%8s  started\n", time.Since(start).Round(time.Millisecond)) },
		OnStopped: func() {
			fmt.Printf("%8s  stopped\n", time.Since(start).Round(time.Millisecond))
			close(stopped)
		},
	})

	fmt.Printf("%8s  %s\n", "initial", fills(circle))

	// This goroutine is the rendering context.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		<-stopped
		cancel()
	}()

	animator.Animate(sequence, rate)
	if err := queue.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	queue.Drain()
	return nil
}

func fills(c *simon.Circle) string {
	parts := make([]string, c.Sections())
	for i := range parts {
		col, _ := c.SectionColor(i)
		parts[i] = colors.Hex(col)
	}
	return strings.Join(parts, " ")
}
