package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// EncodedImage contains an encoded image ready to be embedded in a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts a rectangular region from an image.
//
// The rectangle is relative to img.Bounds().Min, so (0,0) is always the
// top-left pixel of the image. The returned image owns its pixels and has
// its origin at (0,0).
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rect.Min.X < 0 || rect.Min.Y < 0 || rect.Max.X > w || rect.Max.Y > h {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, w, h)
	}
	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, rect.Add(bounds.Min)), nil
}

// CheckFormat reports whether ext names a format Save can write.
// The extension may be given with or without its leading dot.
func CheckFormat(ext string) error {
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return fmt.Errorf("unsupported output format %q: %w", ext, err)
	}
	return nil
}

// Save encodes img to path, choosing the format from the file extension.
//
// quality applies to JPEG output only and is ignored for the other formats.
// Nothing is created on disk when the extension is not a supported format.
func Save(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// EncodePNGBase64 encodes img as a base64 PNG.
func EncodePNGBase64(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
