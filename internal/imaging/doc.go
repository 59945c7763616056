// Package imaging provides the image I/O and rendering helpers around panel
// segmentation.
//
// This package decodes page scans, crops and encodes panels, summarises the
// colour of a region, and renders a preview of detected panels over the
// page. All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// Rectangles passed to Crop and SummarizeColor are relative to the image's
// bounds origin, matching the boxes produced by the segment package.
//
// # Supported Formats
//
// Decoding supports PNG, JPEG, GIF, BMP and TIFF through
// github.com/disintegration/imaging, plus WebP through golang.org/x/image.
// JPEG orientation tags are applied on load so the page is segmented the way
// it is displayed. Encoding picks the format from the output file extension;
// WebP is decode-only.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds or with zero area
//   - File I/O errors during image loading
//   - Unknown output formats and encoding errors
package imaging
