package panels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ironsheep/comic-panels/internal/imaging"
)

// Writer persists one panel and reports where it went.
type Writer interface {
	WritePanel(ctx context.Context, p Panel) (string, error)
}

// Filename returns the file name for panel index of the page base.
func Filename(base string, index int, ext string) string {
	return fmt.Sprintf("%s_panel_%d.%s", base, index, strings.TrimPrefix(ext, "."))
}

// FileWriter saves panels as image files in Dir.
type FileWriter struct {
	// Dir is created, with parents, on the first write.
	Dir string

	// BaseName prefixes every file name, usually the source image name.
	BaseName string

	// Format is the file extension, which selects the encoder: jpg, png,
	// gif, bmp or tiff.
	Format string

	// Quality is the JPEG quality (1-100). Ignored for other formats.
	Quality int

	// Retries is how many extra attempts a failed save gets.
	Retries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	mkdirOnce sync.Once
	mkdirErr  error
}

// WritePanel saves p to Dir and returns the file path.
func (w *FileWriter) WritePanel(ctx context.Context, p Panel) (string, error) {
	w.mkdirOnce.Do(func() {
		w.mkdirErr = os.MkdirAll(w.Dir, 0o755)
	})
	if w.mkdirErr != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.Dir, w.mkdirErr)
	}

	path := filepath.Join(w.Dir, Filename(w.BaseName, p.Index, w.Format))

	retries := w.Retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.RetryDelay), uint64(retries)),
		ctx,
	)

	err := backoff.Retry(func() error {
		return imaging.Save(p.Image, path, w.Quality)
	}, policy)
	if err != nil {
		return "", err
	}

	return path, nil
}

// MemoryWriter keeps written panels in memory. It is safe for concurrent use.
type MemoryWriter struct {
	// BaseName and Format name the panels the way FileWriter would.
	BaseName string
	Format   string

	mu     sync.Mutex
	panels []Panel
}

// WritePanel records p and returns its would-be file name.
func (w *MemoryWriter) WritePanel(ctx context.Context, p Panel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	w.panels = append(w.panels, p)
	w.mu.Unlock()

	return Filename(w.BaseName, p.Index, w.Format), nil
}

// Panels returns the panels written so far, in write order.
func (w *MemoryWriter) Panels() []Panel {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Panel, len(w.panels))
	copy(out, w.panels)
	return out
}
