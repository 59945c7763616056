// Package segment finds comic panels on a scanned page.
//
// The package turns a decoded page image into an ordered list of panel
// regions. It does not decode or encode files and never touches the file
// system; callers hand it an image.Image and get plain values back.
//
// # Pipeline
//
// Segment runs five stages, each a pure function of its input:
//
//  1. Binarize: BT.601 luminance, foreground where luminance < threshold
//  2. Grow: square dilation so strokes inside one panel merge into one blob
//  3. DetectRegions: bounding boxes of external 8-connected components
//  4. SortReadingOrder: stable sort by (y / rowBucketHeight, x)
//  5. ExpandRegions: drop boxes below minArea, extend survivors downward by
//     a caption buffer clipped to the image height
//
// Each stage is exported so it can be tuned or tested on its own.
//
// # Coordinate System
//
// All coordinates are relative to img.Bounds().Min:
//   - Origin (0, 0) at the top-left corner of the image
//   - X increases rightward, Y increases downward
//   - A Box covers [X, X+Width) x [Y, Y+Height)
//
// # Region Positions
//
// ExpandRegions tags every surviving region with its 1-based position in the
// ordered sequence before filtering. A filtered-out region therefore leaves a
// gap in the positions of the regions that follow it. Renumbering, if wanted,
// is the caller's decision (see the panels package).
//
// # Performance Considerations
//
// Dilation cost grows with kernelSize² x iterations x pixel count. For very
// large scans consider downscaling first and scaling thresholds with it
// (minArea by the square of the factor, rowBucketHeight linearly).
package segment
