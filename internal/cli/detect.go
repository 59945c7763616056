package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/comic-panels/internal/imaging"
	"github.com/ironsheep/comic-panels/internal/panels"
	"github.com/ironsheep/comic-panels/internal/segment"
)

// detection is the report printed by the detect command.
type detection struct {
	Image    *imaging.ImageInfo `json:"image" yaml:"image"`
	Detected int                `json:"detected" yaml:"detected"`
	Panels   []detectedPanel    `json:"panels" yaml:"panels"`
}

type detectedPanel struct {
	Index    int         `json:"index" yaml:"index"`
	Position int         `json:"position" yaml:"position"`
	Detected segment.Box `json:"detected" yaml:"detected"`
	Box      segment.Box `json:"box" yaml:"box"`
}

func (a *app) newDetectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "detect <inputImagePath>",
		Short: "Print the panels found on a page without writing files",
		Long: `Runs panel detection on one page and prints the image information and every
panel box in reading order. Use it to tune the detection flags before
extracting.`,
		Example: `  comic-panels detect page01.png
  comic-panels detect page01.png --format yaml --min-area 2000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q: want json or yaml", format)
			}
			report, err := a.detect(args[0])
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")

	return cmd
}

func (a *app) detect(input string) (*detection, error) {
	cache := imaging.NewImageCache()
	info, err := imaging.LoadImageInfo(cache, input)
	if err != nil {
		return nil, err
	}
	img, err := cache.Load(input)
	if err != nil {
		return nil, err
	}

	result, err := segment.Segment(img, a.cfg.SegmentOptions())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("segmented image", "path", input, "detected", result.Detected, "panels", len(result.Regions))

	report := &detection{
		Image:    info,
		Detected: result.Detected,
		Panels:   make([]detectedPanel, 0, len(result.Regions)),
	}
	for i, r := range result.Regions {
		report.Panels = append(report.Panels, detectedPanel{
			Index:    panels.Index(r, i, a.cfg.Renumber),
			Position: r.Position,
			Detected: r.Detected,
			Box:      r.Box,
		})
	}
	return report, nil
}

func writeReport(w io.Writer, report *detection, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
