package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r" yaml:"r"` // Red component (0-255)
	G uint8 `json:"g" yaml:"g"` // Green component (0-255)
	B uint8 `json:"b" yaml:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// HSL is often more intuitive for color manipulation than RGB:
//   - Hue represents the color type (red, green, blue, etc.)
//   - Saturation represents color intensity (gray to vivid)
//   - Lightness represents brightness (black to white)
type HSLColor struct {
	H int `json:"h" yaml:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s" yaml:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l" yaml:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorSummary describes the average colour of a region.
//
// A panel summary lets a reader of the manifest tell colour pages from
// black-and-white ones and spot blank crops without opening the files.
type ColorSummary struct {
	Hex string   `json:"hex" yaml:"hex"` // Mean colour "#rrggbb"
	RGB RGBColor `json:"rgb" yaml:"rgb"` // Mean colour components
	HSL HSLColor `json:"hsl" yaml:"hsl"` // Mean colour in HSL
}

// SummarizeColor computes the mean colour of rect within img.
//
// The rectangle is relative to img.Bounds().Min and must lie within the image.
// Alpha is ignored; transparent pixels contribute their stored colour.
func SummarizeColor(img image.Image, rect image.Rectangle) (*ColorSummary, error) {
	abs, err := absoluteRect(img, rect)
	if err != nil {
		return nil, err
	}

	var sumR, sumG, sumB uint64
	for y := abs.Min.Y; y < abs.Max.Y; y++ {
		for x := abs.Min.X; x < abs.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sumR += uint64(r >> 8)
			sumG += uint64(g >> 8)
			sumB += uint64(b >> 8)
		}
	}

	n := float64(abs.Dx() * abs.Dy())
	mean := RGBColor{
		R: uint8(math.Round(float64(sumR) / n)),
		G: uint8(math.Round(float64(sumG) / n)),
		B: uint8(math.Round(float64(sumB) / n)),
	}

	c := toColorful(mean)
	return &ColorSummary{
		Hex: c.Hex(),
		RGB: mean,
		HSL: toHSL(c),
	}, nil
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex" yaml:"hex"`               // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage" yaml:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb" yaml:"rgb"`               // RGB components (quantized)
}

// DominantColors extracts the N most common colors from a region of an image.
//
// Parameters:
//   - img: The source image to analyze.
//   - count: Maximum number of colors to return. If the region has fewer distinct
//     colors (after quantization), fewer results are returned.
//   - rect: Region to analyze, relative to img.Bounds().Min. An empty rectangle
//     analyzes the whole image.
//
// # Color Quantization
//
// To group similar colors, each RGB component is quantized to a multiple of 16:
//
//	quantized = (original / 16) * 16
//
// For example, colors #f0f0f0 and #fafafa are both counted as #f0f0f0.
//
// Colors are sorted by frequency, most common first. Equal frequencies are
// ordered by hex value so the result is deterministic.
func DominantColors(img image.Image, count int, rect image.Rectangle) ([]ColorFrequency, error) {
	if rect.Empty() {
		rect = image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy())
	}
	abs, err := absoluteRect(img, rect)
	if err != nil {
		return nil, err
	}

	colorCounts := make(map[RGBColor]int)
	for y := abs.Min.Y; y < abs.Max.Y; y++ {
		for x := abs.Min.X; x < abs.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// Quantize to reduce color space (group similar colors)
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			colorCounts[key]++
		}
	}

	totalPixels := float64(abs.Dx() * abs.Dy())
	colors := make([]ColorFrequency, 0, len(colorCounts))
	for rgb, cnt := range colorCounts {
		colors = append(colors, ColorFrequency{
			Hex:        toColorful(rgb).Hex(),
			Percentage: float64(cnt) / totalPixels * 100,
			RGB:        rgb,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}

	return colors, nil
}

func absoluteRect(img image.Image, rect image.Rectangle) (image.Rectangle, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("empty region (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
	}
	abs := rect.Add(bounds.Min)
	if !abs.In(bounds) {
		return image.Rectangle{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Dx(), bounds.Dy())
	}
	return abs, nil
}

func toColorful(c RGBColor) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
