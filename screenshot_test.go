package flaggallery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"gallery-1.5", "gallery-1.5"},
		{"focus on item/3", "focus_on_item_3"},
		{"é", "_"},
		{" step_2 ", "step_2"},
		{"a:b*c", "a_b_c"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half transparent
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // clear
		200, 200, 200, 100, // clamped
	}
	img := unpremultiply(pixels, 2, 2)
	want := []byte{
		255, 127, 0, 128,
		10, 20, 30, 255,
		0, 0, 0, 0,
		255, 255, 255, 100,
	}
	if diff := cmp.Diff(want, img.Pix); diff != "" {
		t.Errorf("unpremultiply (-want +got):\n%s", diff)
	}
}

func TestWriteImage(t *testing.T) {
	img := unpremultiply([]byte{255, 0, 0, 255}, 1, 1)
	dir := t.TempDir()
	for _, format := range []ScreenshotFormat{ScreenshotPNG, ScreenshotWebP} {
		path := filepath.Join(dir, "shot."+string(format))
		if err := writeImage(path, img, format); err != nil {
			t.Fatalf("writeImage(%s): %v", format, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		_, got, err := DecodeImage(data)
		if err != nil {
			t.Fatalf("decode %s: %v", format, err)
		}
		if got != string(format) {
			t.Errorf("decoded format = %q, want %q", got, format)
		}
	}
}

func TestScreenshotSkippedWhenHeadless(t *testing.T) {
	g := &Game{headless: true, log: zap.NewNop()}
	g.Screenshot("x")
	if len(g.shots) != 0 {
		t.Errorf("queued %d screenshot(s) in headless mode", len(g.shots))
	}
}
