// Package extract runs panel extraction for one page image end to end.
//
// An Extractor loads the page, segments it, writes every panel through a
// panels.FileWriter, and then writes whichever optional artefacts are
// enabled: a YAML manifest, a preview with the panels outlined, and the
// intermediate masks. None of the artefacts carry timestamps, so running
// twice on the same input produces identical files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/comic-panels/internal/config"
	"github.com/ironsheep/comic-panels/internal/imaging"
	"github.com/ironsheep/comic-panels/internal/panels"
	"github.com/ironsheep/comic-panels/internal/segment"
)

// ErrUnreadableImage is returned when the input cannot be opened or decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// paletteSize is the number of dominant colours listed per panel.
const paletteSize = 3

// PanelEntry is one written panel as listed in the manifest.
type PanelEntry struct {
	Index    int                   `json:"index" yaml:"index"`
	Position int                   `json:"position" yaml:"position"`
	File     string                `json:"file" yaml:"file"`
	Detected segment.Box           `json:"detected" yaml:"detected"`
	Box      segment.Box           `json:"box" yaml:"box"`
	Color    *imaging.ColorSummary `json:"color,omitempty" yaml:"color,omitempty"`

	// Palette lists the most common quantized colours of the panel.
	Palette []imaging.ColorFrequency `json:"palette,omitempty" yaml:"palette,omitempty"`
}

// Summary describes one extraction run. It is also the manifest content.
type Summary struct {
	Source   string            `json:"source" yaml:"source"`
	Width    int               `json:"width" yaml:"width"`
	Height   int               `json:"height" yaml:"height"`
	Detected int               `json:"detected" yaml:"detected"`
	Settings config.Config     `json:"-" yaml:"settings"`
	Panels   []PanelEntry      `json:"panels" yaml:"panels"`
	Failed   []panels.Failure  `json:"failed,omitempty" yaml:"failed,omitempty"`
	Outputs  map[string]string `json:"outputs,omitempty" yaml:"-"`
	Result   *segment.Result   `json:"-" yaml:"-"`
}

// Extractor runs extraction with a fixed configuration.
type Extractor struct {
	Config config.Config

	// Cache is optional; when nil every Run decodes the input from disk.
	Cache *imaging.ImageCache

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// New returns an Extractor for cfg.
func New(cfg config.Config, logger *slog.Logger) *Extractor {
	return &Extractor{Config: cfg, Logger: logger}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Run extracts the panels of input into outDir.
//
// When input cannot be decoded the error wraps ErrUnreadableImage and
// nothing is written; outDir is not created. Panel write failures do not
// stop the run: the returned Summary lists them and the error joins them.
func (e *Extractor) Run(ctx context.Context, input, outDir string) (*Summary, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, err
	}

	img, err := e.load(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}

	result, err := e.Segment(img)
	if err != nil {
		return nil, err
	}

	log := e.logger()
	log.Info("segmented image", "path", input, "width", result.Width, "height", result.Height,
		"detected", result.Detected, "panels", len(result.Regions))

	base := imaging.BaseName(input)
	exporter := &panels.Exporter{
		Writer: &panels.FileWriter{
			Dir:        outDir,
			BaseName:   base,
			Format:     e.Config.Ext,
			Quality:    e.Config.JPEGQuality,
			Retries:    e.Config.WriteRetries,
			RetryDelay: e.Config.RetryDelay(),
		},
		Renumber: e.Config.Renumber,
		Logger:   log,
	}

	report, exportErr := exporter.Export(ctx, img, result.Regions)

	summary := &Summary{
		Source:   filepath.Base(input),
		Width:    result.Width,
		Height:   result.Height,
		Detected: result.Detected,
		Settings: e.Config,
		Panels:   make([]PanelEntry, 0, len(report.Written)),
		Failed:   report.Failed,
		Outputs:  map[string]string{},
		Result:   result,
	}
	for _, w := range report.Written {
		entry := PanelEntry{
			Index:    w.Index,
			Position: w.Position,
			File:     filepath.Base(w.Path),
			Detected: w.Detected,
			Box:      w.Box,
		}
		if c, err := imaging.SummarizeColor(img, w.Box.Rect()); err == nil {
			entry.Color = c
		}
		if p, err := imaging.DominantColors(img, paletteSize, w.Box.Rect()); err == nil {
			entry.Palette = p
		}
		summary.Panels = append(summary.Panels, entry)
	}

	outputErr := e.writeOutputs(img, summary, outDir, base)

	return summary, errors.Join(exportErr, outputErr)
}

// Segment runs the segmentation stages on img with the extractor's settings.
func (e *Extractor) Segment(img image.Image) (*segment.Result, error) {
	opts := e.Config.SegmentOptions()
	opts.KeepMasks = e.Config.DebugMasks
	return segment.Segment(img, opts)
}

func (e *Extractor) load(path string) (image.Image, error) {
	if e.Cache != nil {
		return e.Cache.Load(path)
	}
	return imaging.Open(path)
}

func (e *Extractor) writeOutputs(img image.Image, summary *Summary, outDir, base string) error {
	if !e.Config.Manifest && !e.Config.Preview && !e.Config.DebugMasks {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	log := e.logger()
	var errs []error
	save := func(kind, name string, write func(path string) error) {
		path := filepath.Join(outDir, name)
		if err := write(path); err != nil {
			log.Error("failed to write output", "kind", kind, "path", path, "error", err)
			errs = append(errs, err)
			return
		}
		summary.Outputs[kind] = path
		log.Debug("wrote output", "kind", kind, "path", path)
	}

	if e.Config.Preview {
		save("preview", base+"_preview.png", func(path string) error {
			return imaging.Save(Preview(img, summary.Result, e.Config), path, 0)
		})
	}

	if e.Config.DebugMasks && summary.Result.Binary != nil {
		save("mask", base+"_mask.png", func(path string) error {
			return imaging.Save(summary.Result.Binary.Gray(), path, 0)
		})
		save("grown", base+"_grown.png", func(path string) error {
			return imaging.Save(summary.Result.Grown.Gray(), path, 0)
		})
	}

	if e.Config.Manifest {
		save("manifest", base+"_panels.yaml", func(path string) error {
			return writeManifest(summary, path)
		})
	}

	return errors.Join(errs...)
}

func writeManifest(summary *Summary, path string) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Preview renders the regions of result over img, labelled the way the
// exported panels are numbered.
func Preview(img image.Image, result *segment.Result, cfg config.Config) *image.RGBA {
	labels := make([]imaging.Label, 0, len(result.Regions))
	for i, r := range result.Regions {
		labels = append(labels, imaging.Label{
			Text:     fmt.Sprintf("%d", panels.Index(r, i, cfg.Renumber)),
			Detected: r.Detected.Rect(),
			Box:      r.Box.Rect(),
		})
	}
	return imaging.DrawRegions(img, labels, cfg.PreviewColor)
}
