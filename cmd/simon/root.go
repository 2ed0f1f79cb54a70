package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/davidparry/widgets/internal/config"
)

var (
	// Global flags.
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "simon",
	Short: "Simon circle geometry, animation and image loading",
	Long: `Simon is a CLI tool for the widgets library.

It computes the sectors of a Simon circle, hit-tests points against them,
plays highlight sequences and fetches images through the cached loader.

Settings come from --config (YAML), then WIDGETS_* environment variables,
then flags. A .env file in the working directory is loaded first.

Examples:
  # List the sectors of a 6-section circle
  simon sectors --sections 6 --width 400 --height 400

  # Which section is under a point?
  simon hit 300 250 --width 400 --height 400

  # Play a sequence
  simon animate --sequence 0,2,1,3 --rate 150ms

  # Fetch images and print metrics
  simon fetch https://example.com/a.png s3://bucket/b.png --s3 --metrics`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// loadConfig reads the configuration file and environment overrides.
func loadConfig() (config.Config, error) {
	logger, err := newLogger()
	if err != nil {
		return config.Config{}, err
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath, logger.Named("config"))
	if err != nil {
		return config.Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a development logger with --verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}
