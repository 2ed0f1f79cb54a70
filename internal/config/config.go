// Package config loads widget and loader settings from a YAML file with
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/davidparry/widgets/simon"
)

// Environment variables that override file settings.
const (
	EnvSections          = "WIDGETS_SECTIONS"
	EnvSectionColors     = "WIDGETS_SECTION_COLORS"
	EnvLineColor         = "WIDGETS_LINE_COLOR"
	EnvHighlightColors   = "WIDGETS_HIGHLIGHT_COLORS"
	EnvAvailableMemoryMB = "WIDGETS_AVAILABLE_MEMORY_MB"
	EnvWorkers           = "WIDGETS_WORKERS"
	EnvHTTPTimeout       = "WIDGETS_HTTP_TIMEOUT"
	EnvS3Region          = "WIDGETS_S3_REGION"
	EnvS3Endpoint        = "WIDGETS_S3_ENDPOINT"
)

// Config is the full configuration.
type Config struct {
	Circle simon.Config `yaml:"circle"`
	Loader Loader       `yaml:"loader"`
}

// Loader configures image loading.
type Loader struct {
	AvailableMemoryMB int64         `yaml:"available_memory_mb"`
	Workers           int           `yaml:"workers"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	Deduplicate       *bool         `yaml:"deduplicate"`
	S3                S3            `yaml:"s3"`
	GCS               GCS           `yaml:"gcs"`
}

// S3 configures the s3:// source.
type S3 struct {
	Enabled  bool   `yaml:"enabled"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// GCS configures the gs:// source.
type GCS struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// AvailableMemory returns the memory hint in bytes.
func (l Loader) AvailableMemory() int64 {
	return l.AvailableMemoryMB << 20
}

// Dedupe reports whether concurrent fetches are shared. Defaults to true.
func (l Loader) Dedupe() bool {
	return l.Deduplicate == nil || *l.Deduplicate
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Circle: simon.Config{Sections: simon.DefaultSections},
		Loader: Loader{
			Workers:     10,
			HTTPTimeout: 30 * time.Second,
		},
	}
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Load reads the YAML file at path (when non-empty), applies environment
// overrides and normalizes the result, logging every replaced value to
// logger. A nil logger discards those warnings.
func Load(path string, logger *zap.Logger) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = Parse(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Normalize(logger)
	return cfg, nil
}

// Normalize replaces values that parse but cannot work with their defaults
// and logs a warning for each one.
func (c *Config) Normalize(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := Default()
	if c.Loader.HTTPTimeout <= 0 {
		logger.Warn("invalid http timeout, using default",
			zap.Duration("http_timeout", c.Loader.HTTPTimeout),
			zap.Duration("default", def.Loader.HTTPTimeout),
		)
		c.Loader.HTTPTimeout = def.Loader.HTTPTimeout
	}
	if c.Loader.Workers <= 0 {
		logger.Warn("invalid worker count, using default",
			zap.Int("workers", c.Loader.Workers),
			zap.Int("default", def.Loader.Workers),
		)
		c.Loader.Workers = def.Loader.Workers
	}
	if c.Loader.AvailableMemoryMB < 0 {
		logger.Warn("negative available memory, using the cache default",
			zap.Int64("available_memory_mb", c.Loader.AvailableMemoryMB),
		)
		c.Loader.AvailableMemoryMB = 0
	}
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	integer(EnvSections, &c.Circle.Sections)
	str(EnvSectionColors, &c.Circle.SectionColors)
	str(EnvLineColor, &c.Circle.LineColor)
	str(EnvHighlightColors, &c.Circle.HighlightColors)
	integer(EnvWorkers, &c.Loader.Workers)
	str(EnvS3Region, &c.Loader.S3.Region)
	str(EnvS3Endpoint, &c.Loader.S3.Endpoint)

	if v, ok := lookup(EnvAvailableMemoryMB); ok && v != "" {
		mb, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAvailableMemoryMB, err))
		} else {
			c.Loader.AvailableMemoryMB = mb
		}
	}
	if v, ok := lookup(EnvHTTPTimeout); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvHTTPTimeout, err))
		} else {
			c.Loader.HTTPTimeout = d
		}
	}
	return errors.Join(errs...)
}
