package segment

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Grow dilates the foreground of a mask with a square structuring element.
//
// The element is kernelSize x kernelSize pixels and is applied iterations
// times, so strokes that are a few pixels apart merge into one connected
// blob. With the defaults (5, 2) every foreground pixel spreads 4 pixels in
// each direction.
//
// A kernelSize of 1 or less, or iterations of 0 or less, returns an
// unchanged copy. The input mask is never modified.
//
// Each pass ranks the kernelSize² window of every pixel, so the cost is
// O(width x height x kernelSize² x iterations). Repeated small passes stay
// cheaper than one pass with the equivalent larger window.
func Grow(m *Mask, kernelSize, iterations int) *Mask {
	if kernelSize <= 1 || iterations <= 0 || m.Width == 0 || m.Height == 0 {
		return m.Clone()
	}

	// bild windows are 2r+1 wide, rounded half up.
	radius := float64(kernelSize-1) / 2

	var current image.Image = m.Gray()
	var dilated *image.RGBA
	for i := 0; i < iterations; i++ {
		dilated = effect.Dilate(current, radius)
		current = dilated
	}

	return maskFromRGBA(dilated)
}
