package flaggallery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// maxDecoders bounds concurrent image decodes.
const maxDecoders = 4

type decoder struct {
	format string
	match  func([]byte) bool
	decode func(io.Reader) (image.Image, error)
}

func hasMagic(magic string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(magic)) }
}

// decoders are tried in order. TGA has no signature, so it is the fallback.
var decoders = []decoder{
	{"png", hasMagic("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", hasMagic("\xff\xd8"), jpeg.Decode},
	{"gif", hasMagic("GIF8"), gif.Decode},
	{"webp", func(b []byte) bool {
		return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}, webp.Decode},
	{"bmp", hasMagic("BM"), bmp.Decode},
	{"tga", func([]byte) bool { return true }, tga.Decode},
}

// DecodeImage decodes a png, jpeg, gif, webp, bmp or tga image and reports
// which format it was.
func DecodeImage(data []byte) (image.Image, string, error) {
	for _, d := range decoders {
		if !d.match(data) {
			continue
		}
		img, err := d.decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decode %s image: %w", d.format, err)
		}
		return img, d.format, nil
	}
	return nil, "", fmt.Errorf("decode image: %w", image.ErrFormat)
}

// imagePath maps an item image reference ("/shot.png", "shots/a.webp") to
// a path inside an fs.FS.
func imagePath(ref string) string {
	return path.Clean(strings.TrimLeft(strings.TrimSpace(ref), "/"))
}

// LoadCoverImages decodes the first image of every item from fsys. Missing
// or undecodable images are logged and left nil: an item without a picture
// is shown without one. The only error returned is ctx's.
func LoadCoverImages(ctx context.Context, fsys fs.FS, items []Item, log *zap.Logger) ([]image.Image, error) {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]image.Image, len(items))
	if fsys == nil {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDecoders)
	for i, it := range items {
		if len(it.Images) == 0 {
			continue
		}
		ref := it.Images[0]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, imagePath(ref))
			if err != nil {
				log.Warn("item image missing", zap.String("item", it.Title), zap.String("image", ref), zap.Error(err))
				return nil
			}
			img, format, err := DecodeImage(data)
			if err != nil {
				log.Warn("item image unreadable", zap.String("item", it.Title), zap.String("image", ref), zap.Error(err))
				return nil
			}
			log.Debug("item image loaded", zap.String("item", it.Title), zap.String("format", format))
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load cover images: %w", err)
	}
	return out, nil
}
