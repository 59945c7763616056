// Package config holds the tunable settings for panel extraction.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// COMIC_PANELS_* environment variables. Command-line flags are applied on
// top by the cli package. Validate is called once every layer is in.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/comic-panels/internal/imaging"
	"github.com/ironsheep/comic-panels/internal/segment"
)

// ErrInvalidConfig is wrapped by every validation and parse failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes the environment variable of every setting.
const EnvPrefix = "COMIC_PANELS_"

// Config is the full set of extraction settings.
type Config struct {
	// Segmentation
	Threshold          int     `yaml:"threshold"`
	KernelSize         int     `yaml:"kernel_size"`
	DilationIterations int     `yaml:"dilation_iterations"`
	MinPanelArea       int     `yaml:"min_panel_area"`
	BufferRatio        float64 `yaml:"buffer_ratio"`
	RowBucketHeight    int     `yaml:"row_bucket_height"`

	// Output
	Ext          string `yaml:"ext"`
	JPEGQuality  int    `yaml:"jpeg_quality"`
	Renumber     bool   `yaml:"renumber"`
	Manifest     bool   `yaml:"manifest"`
	Preview      bool   `yaml:"preview"`
	PreviewColor string `yaml:"preview_color"`
	DebugMasks   bool   `yaml:"debug_masks"`
	WriteRetries int    `yaml:"write_retries"`
	RetryDelayMS int    `yaml:"retry_delay_ms"`
}

// Default returns the settings tuned for single-page comic scans.
func Default() Config {
	opts := segment.DefaultOptions()
	return Config{
		Threshold:          int(opts.Threshold),
		KernelSize:         opts.KernelSize,
		DilationIterations: opts.Iterations,
		MinPanelArea:       opts.MinArea,
		BufferRatio:        opts.BufferRatio,
		RowBucketHeight:    opts.RowBucketHeight,

		Ext:          "jpg",
		JPEGQuality:  95,
		PreviewColor: "#FF0000",
		RetryDelayMS: 100,
	}
}

// Load reads a YAML file over the defaults.
//
// Keys missing from the file keep their default value. Unknown keys are
// rejected so that a typo does not silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from COMIC_PANELS_* variables found by lookup.
//
// The variable name is the upper-cased YAML key, for example
// COMIC_PANELS_MIN_PANEL_AREA. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	for _, f := range c.fields() {
		name := EnvPrefix + strings.ToUpper(f.key)
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		if err := f.set(strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate reports every setting outside its accepted range.
func (c Config) Validate() error {
	var errs []error

	if c.Threshold < 0 || c.Threshold > 255 {
		errs = append(errs, fmt.Errorf("threshold must be 0-255, got %d", c.Threshold))
	}
	if err := c.SegmentOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := imaging.CheckFormat(c.Ext); err != nil {
		errs = append(errs, err)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg quality must be 1-100, got %d", c.JPEGQuality))
	}
	if c.WriteRetries < 0 {
		errs = append(errs, fmt.Errorf("write retries must be >= 0, got %d", c.WriteRetries))
	}
	if c.RetryDelayMS < 0 {
		errs = append(errs, fmt.Errorf("retry delay must be >= 0, got %d", c.RetryDelayMS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SegmentOptions returns the segmentation part of the settings.
func (c Config) SegmentOptions() segment.Options {
	return segment.Options{
		Threshold:       uint8(c.Threshold),
		KernelSize:      c.KernelSize,
		Iterations:      c.DilationIterations,
		MinArea:         c.MinPanelArea,
		BufferRatio:     c.BufferRatio,
		RowBucketHeight: c.RowBucketHeight,
	}
}

// RetryDelay returns the pause between panel write attempts.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

type field struct {
	key string
	set func(string) error
}

func (c *Config) fields() []field {
	return []field{
		{"threshold", intSetter(&c.Threshold)},
		{"kernel_size", intSetter(&c.KernelSize)},
		{"dilation_iterations", intSetter(&c.DilationIterations)},
		{"min_panel_area", intSetter(&c.MinPanelArea)},
		{"buffer_ratio", floatSetter(&c.BufferRatio)},
		{"row_bucket_height", intSetter(&c.RowBucketHeight)},
		{"ext", stringSetter(&c.Ext)},
		{"jpeg_quality", intSetter(&c.JPEGQuality)},
		{"renumber", boolSetter(&c.Renumber)},
		{"manifest", boolSetter(&c.Manifest)},
		{"preview", boolSetter(&c.Preview)},
		{"preview_color", stringSetter(&c.PreviewColor)},
		{"debug_masks", boolSetter(&c.DebugMasks)},
		{"write_retries", intSetter(&c.WriteRetries)},
		{"retry_delay_ms", intSetter(&c.RetryDelayMS)},
	}
}

func intSetter(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%q is not a finite number", s)
		}
		*dst = v
		return nil
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stringSetter(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}
