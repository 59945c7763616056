package segment

import (
	"math"
)

// Region is a panel candidate that survived the area filter.
type Region struct {
	// Position is the 1-based place of the region in the reading-ordered
	// sequence before filtering. Filtered neighbours leave gaps.
	Position int `json:"position" yaml:"position"`

	// Detected is the bounding box as found by DetectRegions.
	Detected Box `json:"detected" yaml:"detected"`

	// Box is Detected extended downward by the caption buffer.
	Box Box `json:"box" yaml:"box"`
}

// ExpandRegions drops undersized boxes and reserves caption space below the rest.
//
// Boxes are visited in the given order. A box whose Width x Height is below
// minArea is discarded, but still consumes a position. Every other box is
// extended downward by floor(Height x bufferRatio) pixels, with the new
// bottom edge clamped to imageHeight. A NaN or negative ratio adds no buffer.
// X, Y and Width never change.
func ExpandRegions(ordered []Box, minArea int, bufferRatio float64, imageHeight int) []Region {
	regions := make([]Region, 0, len(ordered))

	for i, b := range ordered {
		if b.Area() < minArea {
			continue
		}

		// Clamp in float so an oversized ratio cannot overflow int.
		bottom := b.Bottom()
		buffer := math.Floor(float64(b.Height) * bufferRatio)
		switch {
		case buffer >= float64(imageHeight-bottom):
			bottom = imageHeight
		case buffer > 0:
			bottom += int(buffer)
		}

		expanded := b
		expanded.Height = bottom - b.Y

		regions = append(regions, Region{
			Position: i + 1,
			Detected: b,
			Box:      expanded,
		})
	}

	return regions
}
