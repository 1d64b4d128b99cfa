package flaggallery

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/HugoSmits86/nativewebp"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// ScreenshotFormat selects the encoding of captured frames.
type ScreenshotFormat string

const (
	ScreenshotPNG  ScreenshotFormat = "png"
	ScreenshotWebP ScreenshotFormat = "webp"
)

// Screenshot queues a labeled capture of the frame being drawn. Files land
// in the game's screenshot directory with a timestamped name. Safe to call
// from Update or Draw.
func (g *Game) Screenshot(label string) {
	if g.headless {
		g.log.Debug("screenshot skipped in headless mode", zap.String("label", label))
		return
	}
	g.shots = append(g.shots, label)
}

// flushScreenshots captures screen for every queued label. Called at the end
// of Game.Draw.
func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shots) == 0 {
		return
	}
	defer func() { g.shots = g.shots[:0] }()

	if err := os.MkdirAll(g.shotDir, 0o755); err != nil {
		g.log.Warn("screenshot: mkdir", zap.String("dir", g.shotDir), zap.Error(err))
		return
	}
	img := readScreen(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.shots {
		path := filepath.Join(g.shotDir, fmt.Sprintf("%s_%s.%s", stamp, sanitizeLabel(label), g.shotFormat))
		if err := writeImage(path, img, g.shotFormat); err != nil {
			g.log.Warn("screenshot", zap.Error(err))
			continue
		}
		g.log.Info("screenshot saved", zap.String("path", path))
	}
}

// readScreen copies the screen into a straight-alpha image.
func readScreen(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	return unpremultiply(pixels, w, h)
}

// unpremultiply converts premultiplied RGBA bytes to an NRGBA image.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writeImage encodes img to path as PNG or WebP.
func writeImage(path string, img image.Image, format ScreenshotFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	switch format {
	case ScreenshotWebP:
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel makes a script label usable inside a file name. Anything
// other than ASCII letters, digits, '-', '_' and '.' becomes '_'.
func sanitizeLabel(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "unlabeled"
	}
	return strings.Map(fileNameRune, label)
}

func fileNameRune(r rune) rune {
	if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_.", r)) {
		return r
	}
	return '_'
}
