package panels

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/comic-panels/internal/imaging"
)

func testPanel(index int) Panel {
	img := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.NRGBA{200, 40, 40, 255})
		}
	}
	return Panel{Index: index, Position: index, Image: img}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		base  string
		index int
		ext   string
		want  string
	}{
		{"page1", 1, "jpg", "page1_panel_1.jpg"},
		{"page1", 12, ".png", "page1_panel_12.png"},
		{"issue 3.cover", 4, "jpg", "issue 3.cover_panel_4.jpg"},
	}

	for _, tt := range tests {
		if got := Filename(tt.base, tt.index, tt.ext); got != tt.want {
			t.Errorf("Filename(%q, %d, %q) = %q, want %q", tt.base, tt.index, tt.ext, got, tt.want)
		}
	}
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	w := &FileWriter{Dir: dir, BaseName: "page", Format: "jpg", Quality: 95}

	path, err := w.WritePanel(context.Background(), testPanel(3))
	if err != nil {
		t.Fatalf("WritePanel failed: %v", err)
	}

	if path != filepath.Join(dir, "page_panel_3.jpg") {
		t.Errorf("path: got %s", path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("written panel unreadable: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestFileWriter_ExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	w := &FileWriter{Dir: dir, BaseName: "page", Format: "png"}

	for i := 1; i <= 2; i++ {
		if _, err := w.WritePanel(context.Background(), testPanel(i)); err != nil {
			t.Fatalf("WritePanel(%d) failed: %v", i, err)
		}
	}

	// Rewriting overwrites in place
	again := &FileWriter{Dir: dir, BaseName: "page", Format: "png"}
	if _, err := again.WritePanel(context.Background(), testPanel(1)); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files, got %d", len(entries))
	}
}

func TestFileWriter_DirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	w := &FileWriter{Dir: file, BaseName: "page", Format: "png"}
	if _, err := w.WritePanel(context.Background(), testPanel(1)); err == nil {
		t.Error("expected error when output directory is a file")
	}
}

func TestFileWriter_Retries(t *testing.T) {
	// Unsupported extension fails on every attempt
	w := &FileWriter{
		Dir:        t.TempDir(),
		BaseName:   "page",
		Format:     "xyz",
		Retries:    2,
		RetryDelay: time.Millisecond,
	}

	start := time.Now()
	if _, err := w.WritePanel(context.Background(), testPanel(1)); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("expected two retry delays, took %v", elapsed)
	}
}

func TestFileWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &FileWriter{Dir: t.TempDir(), BaseName: "page", Format: "xyz", Retries: 5, RetryDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		_, err := w.WritePanel(ctx, testPanel(1))
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled write kept retrying")
	}
}

func TestMemoryWriter(t *testing.T) {
	w := &MemoryWriter{BaseName: "page", Format: "png"}

	name, err := w.WritePanel(context.Background(), testPanel(7))
	if err != nil {
		t.Fatalf("WritePanel failed: %v", err)
	}
	if name != "page_panel_7.png" {
		t.Errorf("name: got %s, want page_panel_7.png", name)
	}

	panels := w.Panels()
	if len(panels) != 1 || panels[0].Index != 7 {
		t.Errorf("panels: got %+v", panels)
	}
}
