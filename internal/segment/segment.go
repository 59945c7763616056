package segment

import (
	"fmt"
	"image"
	"math"
)

// Options holds the tunable thresholds of the segmentation pipeline.
type Options struct {
	// Threshold is the luminance (0-255) below which a pixel counts as ink.
	Threshold uint8 `json:"threshold"`

	// KernelSize is the side of the square dilation element in pixels.
	KernelSize int `json:"kernel_size"`

	// Iterations is how many times the dilation is applied.
	Iterations int `json:"iterations"`

	// MinArea is the smallest detected box area (px²) kept as a panel.
	MinArea int `json:"min_area"`

	// BufferRatio is the caption buffer as a fraction of panel height.
	BufferRatio float64 `json:"buffer_ratio"`

	// RowBucketHeight is the strip height used to group panels into rows.
	RowBucketHeight int `json:"row_bucket_height"`

	// KeepMasks stores the binary and grown masks on the Result.
	KeepMasks bool `json:"-"`
}

// MaxBufferRatio is the largest accepted BufferRatio. Any ratio of 1 or more
// already reaches the bottom of most pages.
const MaxBufferRatio = 1000

// DefaultOptions returns the thresholds tuned for single-page comic scans.
func DefaultOptions() Options {
	return Options{
		Threshold:       200,
		KernelSize:      5,
		Iterations:      2,
		MinArea:         5000,
		BufferRatio:     0.15,
		RowBucketHeight: 100,
	}
}

// Validate reports the first option outside its accepted range.
func (o Options) Validate() error {
	if o.KernelSize < 1 {
		return fmt.Errorf("kernel size must be >= 1, got %d", o.KernelSize)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0, got %d", o.Iterations)
	}
	if o.MinArea < 0 {
		return fmt.Errorf("min area must be >= 0, got %d", o.MinArea)
	}
	if math.IsNaN(o.BufferRatio) || o.BufferRatio < 0 || o.BufferRatio > MaxBufferRatio {
		return fmt.Errorf("buffer ratio must be between 0 and %d, got %g", MaxBufferRatio, o.BufferRatio)
	}
	if o.RowBucketHeight < 1 {
		return fmt.Errorf("row bucket height must be >= 1, got %d", o.RowBucketHeight)
	}
	return nil
}

// Result is the outcome of segmenting one page.
type Result struct {
	// Width and Height are the source image dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Detected is the number of external regions found before filtering.
	Detected int `json:"detected"`

	// Regions are the surviving regions in reading order.
	Regions []Region `json:"regions"`

	// Binary and Grown are the intermediate masks. Only set when
	// Options.KeepMasks is true.
	Binary *Mask `json:"-"`
	Grown  *Mask `json:"-"`
}

// Segment runs the full panel segmentation pipeline on img.
//
// Returns an error only when opts fails validation. An image without ink,
// or with nothing above MinArea, yields a Result with no regions.
func Segment(img image.Image, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmentation options: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Regions: []Region{},
	}

	binary := Binarize(img, opts.Threshold)
	grown := Grow(binary, opts.KernelSize, opts.Iterations)
	boxes := DetectRegions(grown)
	ordered := SortReadingOrder(boxes, opts.RowBucketHeight)

	result.Detected = len(ordered)
	result.Regions = ExpandRegions(ordered, opts.MinArea, opts.BufferRatio, result.Height)

	if opts.KeepMasks {
		result.Binary = binary
		result.Grown = grown
	}

	return result, nil
}
