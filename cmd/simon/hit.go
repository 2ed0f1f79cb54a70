package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/davidparry/widgets/simon"
)

var hitCmd = &cobra.Command{
	Use:   "hit X Y",
	Short: "Report the section under a point",
	Long: `Report which section of the circle contains the point (X, Y) in view
coordinates, or "none" when the point misses every section.`,
	Args: cobra.ExactArgs(2),
	RunE: runHit,
}

func init() {
	addBoundsFlags(hitCmd)
	rootCmd.AddCommand(hitCmd)
}

func runHit(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid X %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid Y %q: %w", args[1], err)
	}

	n, err := resolveSections()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("sections must be at least 1, got %d", n)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	section := simon.NoSection
	circle := simon.New(simon.Config{Sections: n}, simon.WithLogger(logger),
		simon.WithOnSectionClick(func(ev simon.TouchEvent, s int) bool {
			section = s
			return true
		}))
	circle.Resize(viewWidth, viewHeight)
	circle.Touch(simon.TouchEvent{Action: simon.ActionDown, X: x, Y: y})

	if section == simon.NoSection {
		fmt.Println("none")
		return nil
	}
	fmt.Println(section)
	return nil
}
