package panels

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/comic-panels/internal/imaging"
	"github.com/ironsheep/comic-panels/internal/segment"
)

// Panel is one cropped region ready to be written.
type Panel struct {
	// Index is the number used in the panel's name.
	Index int

	// Position is the region's 1-based place in reading order before
	// small regions were dropped.
	Position int

	// Detected is the region as found on the page.
	Detected segment.Box

	// Box is the cropped area, including the caption buffer.
	Box segment.Box

	// Image holds the panel pixels, independent of the source image.
	Image *image.NRGBA
}

// Written describes a panel that was saved.
type Written struct {
	Index    int         `json:"index" yaml:"index"`
	Position int         `json:"position" yaml:"position"`
	Path     string      `json:"path" yaml:"path"`
	Detected segment.Box `json:"detected" yaml:"detected"`
	Box      segment.Box `json:"box" yaml:"box"`
}

// Failure describes a panel that could not be saved.
type Failure struct {
	Index    int         `json:"index" yaml:"index"`
	Position int         `json:"position" yaml:"position"`
	Box      segment.Box `json:"box" yaml:"box"`
	Error    string      `json:"error" yaml:"error"`
}

// Report lists the outcome of every panel an export attempted.
type Report struct {
	Written []Written `json:"written" yaml:"written"`
	Failed  []Failure `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Exporter crops regions out of a page and writes them.
type Exporter struct {
	Writer Writer

	// Renumber names panels 1..n in emitted order instead of by position.
	Renumber bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Export crops each region from img and passes it to the writer in order.
//
// A failed panel is logged and recorded and the rest are still attempted.
// The returned error joins every per-panel failure and is nil when all
// panels were written. Cancelling ctx stops before the next panel.
func (e *Exporter) Export(ctx context.Context, img image.Image, regions []segment.Region) (*Report, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := &Report{Written: []Written{}}
	var errs []error

	for i, r := range regions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("export stopped before panel %d: %w", r.Position, err))
			break
		}

		index := Index(r, i, e.Renumber)

		path, err := e.exportOne(ctx, img, index, r)
		if err != nil {
			logger.Error("failed to save panel", "index", index, "position", r.Position, "error", err)
			report.Failed = append(report.Failed, Failure{
				Index:    index,
				Position: r.Position,
				Box:      r.Box,
				Error:    err.Error(),
			})
			errs = append(errs, fmt.Errorf("panel %d: %w", index, err))
			continue
		}

		logger.Info("saved panel", "index", index, "path", path)
		report.Written = append(report.Written, Written{
			Index:    index,
			Position: r.Position,
			Path:     path,
			Detected: r.Detected,
			Box:      r.Box,
		})
	}

	return report, errors.Join(errs...)
}

// Index returns the number that names the i-th emitted region: its
// pre-filter position, or i+1 when renumbering.
func Index(r segment.Region, i int, renumber bool) int {
	if renumber {
		return i + 1
	}
	return r.Position
}

func (e *Exporter) exportOne(ctx context.Context, img image.Image, index int, r segment.Region) (string, error) {
	cropped, err := imaging.Crop(img, r.Box.Rect())
	if err != nil {
		return "", err
	}

	return e.Writer.WritePanel(ctx, Panel{
		Index:    index,
		Position: r.Position,
		Detected: r.Detected,
		Box:      r.Box,
		Image:    cropped,
	})
}
