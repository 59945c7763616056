package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawRegions(t *testing.T) {
	img := createInMemoryImage(200, 200, color.White)
	labels := []Label{{
		Text:     "1",
		Detected: image.Rect(20, 20, 120, 100),
		Box:      image.Rect(20, 20, 120, 115),
	}}

	result := DrawRegions(img, labels, "#00FF00")

	if result.Bounds() != image.Rect(0, 0, 200, 200) {
		t.Fatalf("bounds: got %v, want (0,0)-(200,200)", result.Bounds())
	}

	// Outline on the bottom edge of the expanded box
	if c := result.RGBAAt(70, 114); c != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("outline pixel: got %v, want green", c)
	}

	// Caption line at the detected bottom edge is blended blue
	c := result.RGBAAt(70, 100)
	if c.B <= c.R {
		t.Errorf("caption line pixel: got %v, want blue tint", c)
	}

	// Interior untouched
	if c := result.RGBAAt(70, 60); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("interior pixel: got %v, want white", c)
	}

	// Source image not modified
	if r, g, b, _ := img.At(70, 114).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Error("DrawRegions modified its input")
	}
}

func TestDrawRegions_Label(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	labels := []Label{{Text: "12", Detected: image.Rect(10, 10, 90, 90), Box: image.Rect(10, 10, 90, 90)}}

	result := DrawRegions(img, labels, "")

	// Label backing box sits just inside the top-left corner
	c := result.RGBAAt(13, 13)
	if c.R > 200 {
		t.Errorf("label background pixel: got %v, want dark", c)
	}

	// Empty colour falls back to red
	if c := result.RGBAAt(50, 10); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("outline pixel: got %v, want red", c)
	}
}

func TestDrawRegions_ClipsToImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	labels := []Label{{Text: "99", Detected: image.Rect(30, 30, 80, 80), Box: image.Rect(30, 30, 80, 90)}}

	// Should not panic
	result := DrawRegions(img, labels, "#FF0000")
	if result.RGBAAt(30, 40) != (color.RGBA{255, 0, 0, 255}) {
		t.Error("expected left edge outline inside the image")
	}
}

func TestDrawRegions_OffsetBounds(t *testing.T) {
	page := createInMemoryImage(100, 100, color.White)
	sub := page.SubImage(image.Rect(50, 50, 100, 100))
	labels := []Label{{Detected: image.Rect(0, 0, 20, 20), Box: image.Rect(0, 0, 20, 20)}}

	result := DrawRegions(sub, labels, "#0000FF")

	if result.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("bounds: got %v, want (0,0)-(50,50)", result.Bounds())
	}
	if result.RGBAAt(0, 10) != (color.RGBA{0, 0, 255, 255}) {
		t.Error("expected outline at the sub image origin")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := parseHexColor(tt.hex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHexColor(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseHexColor(%q) = %v, want %v", tt.hex, got, tt.want)
			}
		})
	}
}
