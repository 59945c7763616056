package segment

import (
	"image"
)

// Foreground and Background are the two values a Mask pixel can hold.
const (
	Foreground uint8 = 0xFF
	Background uint8 = 0x00
)

// Mask is a binary raster the size of the source image.
//
// Pix is row-major with one byte per pixel: Foreground for ink-like pixels,
// Background otherwise. The pixel at (x, y) is Pix[y*Width+x].
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At reports whether (x, y) is a foreground pixel. Coordinates outside the
// mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] == Foreground
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, fg bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if fg {
		m.Pix[y*m.Width+x] = Foreground
	} else {
		m.Pix[y*m.Width+x] = Background
	}
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Mask{Width: m.Width, Height: m.Height, Pix: pix}
}

// Gray returns an *image.Gray view of the mask. The view shares Pix with the
// mask, so foreground renders white and background black.
func (m *Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    m.Pix,
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// maskFromRGBA thresholds the red channel of an RGBA image at mid-gray.
// Used to read back the output of bild filters, which always return *image.RGBA.
func maskFromRGBA(img *image.RGBA) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.Width; x++ {
			if row[x*4] > 0x7F {
				m.Pix[y*m.Width+x] = Foreground
			}
		}
	}
	return m
}
