package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label is one region to outline on a preview.
//
// Rectangles are relative to the source image's bounds origin.
type Label struct {
	// Text is drawn in the top-left corner of Box, usually the panel index.
	Text string

	// Detected is the region as found on the page.
	Detected image.Rectangle

	// Box is the region after caption expansion. When it extends below
	// Detected, a line marks where the caption buffer starts.
	Box image.Rectangle
}

const (
	outlineWidth = 2
	labelPadding = 2
)

var (
	defaultOutline = color.NRGBA{255, 0, 0, 255}
	captionLine    = color.NRGBA{0, 96, 255, 160}
	labelText      = color.RGBA{255, 255, 255, 255}
	labelBack      = color.NRGBA{0, 0, 0, 180}
)

// DrawRegions renders labels over a copy of img.
//
// Each label's Box is outlined in outlineHex ("#RRGGBB" or "#RRGGBBAA").
// An empty or unparsable colour falls back to opaque red. The returned image
// has its origin at (0,0) and the same size as img; img is not modified.
func DrawRegions(img image.Image, labels []Label, outlineHex string) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	outline, err := parseHexColor(outlineHex)
	if err != nil {
		outline = defaultOutline
	}

	for _, l := range labels {
		if l.Box.Max.Y > l.Detected.Max.Y {
			fillRect(result, image.Rect(l.Box.Min.X, l.Detected.Max.Y-1, l.Box.Max.X, l.Detected.Max.Y+1), captionLine)
		}
		strokeRect(result, l.Box, outline)
		if l.Text != "" {
			drawLabel(result, l.Box.Min.X+outlineWidth, l.Box.Min.Y+outlineWidth, l.Text)
		}
	}

	return result
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+outlineWidth), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-outlineWidth, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+outlineWidth, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-outlineWidth, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

// drawLabel draws text on a translucent backing box with its top-left at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	fillRect(img, image.Rect(x, y, x+width+2*labelPadding, y+height+2*labelPadding), labelBack)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelText),
		Face: face,
		Dot:  fixed.P(x+labelPadding, y+labelPadding+face.Ascent),
	}
	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
