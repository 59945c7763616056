package segment

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ITU-R BT.601 luminance weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Binarize converts an image into a foreground mask.
//
// Each pixel is reduced to 8-bit luminance (0.299*R + 0.587*G + 0.114*B,
// rounded) and marked foreground iff its luminance is strictly below
// threshold. This is an inverted binary threshold: dark ink becomes
// foreground, light paper becomes background.
//
// Images that are not fully opaque are composited over white first, so
// transparent areas count as paper rather than as black ink.
//
// The returned mask has the same width and height as img; the source image
// is never modified.
func Binarize(img image.Image, threshold uint8) *Mask {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := NewMask(width, height)
	if width == 0 || height == 0 {
		return mask
	}

	gray := effect.GrayscaleWithWeights(flatten(img), lumaR, lumaG, lumaB)

	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			if row[x*4] < threshold {
				mask.Pix[y*width+x] = Foreground
			}
		}
	}

	return mask
}

// flatten composites a translucent image over a white page.
// Opaque images are returned unchanged.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	page := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(page, img, image.Pt(0, 0), 1.0)
}
