package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/comic-panels/internal/segment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panels.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.SegmentOptions() != segment.DefaultOptions() {
		t.Errorf("SegmentOptions: got %+v, want %+v", cfg.SegmentOptions(), segment.DefaultOptions())
	}
	if cfg.Ext != "jpg" || cfg.JPEGQuality != 95 {
		t.Errorf("output: got %s/%d, want jpg/95", cfg.Ext, cfg.JPEGQuality)
	}
	if cfg.Renumber || cfg.Manifest || cfg.Preview || cfg.DebugMasks {
		t.Error("optional outputs should be off by default")
	}
	if cfg.WriteRetries != 0 || cfg.RetryDelay() != 100*time.Millisecond {
		t.Errorf("retries: got %d / %v", cfg.WriteRetries, cfg.RetryDelay())
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
threshold: 180
min_panel_area: 8000
buffer_ratio: 0.2
ext: png
renumber: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Threshold != 180 || cfg.MinPanelArea != 8000 || cfg.BufferRatio != 0.2 {
		t.Errorf("segmentation: got %+v", cfg)
	}
	if cfg.Ext != "png" || !cfg.Renumber {
		t.Errorf("output: got ext=%s renumber=%v", cfg.Ext, cfg.Renumber)
	}
	// Keys not in the file keep their defaults
	if cfg.KernelSize != 5 || cfg.RowBucketHeight != 100 || cfg.JPEGQuality != 95 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty file should give defaults, got %+v", cfg)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "treshold: 180\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "treshold") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoad_BadValue(t *testing.T) {
	_, err := Load(writeConfig(t, "kernel_size: wide\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyEnv(envMap(map[string]string{
		"COMIC_PANELS_THRESHOLD":         "150",
		"COMIC_PANELS_BUFFER_RATIO":      " 0.1 ",
		"COMIC_PANELS_MANIFEST":          "true",
		"COMIC_PANELS_EXT":               "png",
		"COMIC_PANELS_ROW_BUCKET_HEIGHT": "80",
		"UNRELATED":                      "x",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Threshold != 150 || cfg.BufferRatio != 0.1 || cfg.RowBucketHeight != 80 {
		t.Errorf("segmentation: got %+v", cfg)
	}
	if !cfg.Manifest || cfg.Ext != "png" {
		t.Errorf("output: got manifest=%v ext=%s", cfg.Manifest, cfg.Ext)
	}
	if cfg.KernelSize != 5 {
		t.Errorf("unset variables should keep values, got kernel %d", cfg.KernelSize)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()

	err := cfg.ApplyEnv(envMap(map[string]string{
		"COMIC_PANELS_KERNEL_SIZE":  "five",
		"COMIC_PANELS_RENUMBER":     "maybe",
		"COMIC_PANELS_BUFFER_RATIO": "NaN",
	}))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, name := range []string{"COMIC_PANELS_KERNEL_SIZE", "COMIC_PANELS_RENUMBER", "COMIC_PANELS_BUFFER_RATIO"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Threshold = 256 }},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }},
		{"zero kernel", func(c *Config) { c.KernelSize = 0 }},
		{"negative iterations", func(c *Config) { c.DilationIterations = -1 }},
		{"negative area", func(c *Config) { c.MinPanelArea = -1 }},
		{"negative buffer", func(c *Config) { c.BufferRatio = -0.5 }},
		{"NaN buffer", func(c *Config) { c.BufferRatio = math.NaN() }},
		{"huge buffer", func(c *Config) { c.BufferRatio = 1e300 }},
		{"zero row bucket", func(c *Config) { c.RowBucketHeight = 0 }},
		{"unknown ext", func(c *Config) { c.Ext = "webp" }},
		{"quality zero", func(c *Config) { c.JPEGQuality = 0 }},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }},
		{"negative retries", func(c *Config) { c.WriteRetries = -1 }},
		{"negative delay", func(c *Config) { c.RetryDelayMS = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.KernelSize = 0
	cfg.JPEGQuality = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "kernel size") || !strings.Contains(err.Error(), "jpeg quality") {
		t.Errorf("expected both problems reported: %v", err)
	}
}
