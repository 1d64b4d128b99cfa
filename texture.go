package flaggallery

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

// Face layout constants, in units of a 1024×512 card. They are scaled to
// the configured texture size.
const (
	cardRefWidth    = 1024.0
	cardMargin      = 20.0
	cardCorner      = 60.0
	stripeSpacing   = 40
	imageAreaFrac   = 0.6
	maxDescLines    = 5
	pillHeight      = 26.0
	pillPad         = 12.0
	buttonHeight    = 34.0
	descLineSpacing = 24.0
)

// FaceTextures are the two sides of one panel.
type FaceTextures struct {
	Front *ebiten.Image
	Back  *ebiten.Image
}

// Dispose releases the GPU images.
func (f FaceTextures) Dispose() {
	if f.Front != nil {
		f.Front.Deallocate()
	}
	if f.Back != nil {
		f.Back.Deallocate()
	}
}

// TextureBuilder renders item face textures.
type TextureBuilder struct {
	w, h  int
	scale float64
	face  *text.GoXFace
}

// NewTextureBuilder returns a builder producing cfg.TextureWidth ×
// cfg.TextureHeight textures.
func NewTextureBuilder(cfg RenderConfig) *TextureBuilder {
	return &TextureBuilder{
		w:     cfg.TextureWidth,
		h:     cfg.TextureHeight,
		scale: float64(cfg.TextureWidth) / cardRefWidth,
		face:  text.NewGoXFace(basicfont.Face7x13),
	}
}

// Build renders both faces of item it. cover may be nil.
func (b *TextureBuilder) Build(it Item, p PanelParams, cover image.Image) FaceTextures {
	return FaceTextures{
		Front: b.front(it, p),
		Back:  b.back(it, p, cover),
	}
}

// background paints the vertical gradient, the radial vignette and the
// diagonal stripes shared by both faces.
func (b *TextureBuilder) background(p PanelParams) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.w, b.h))
	top, bottom := p.Gradient[0], p.Gradient[1]
	cx, cy := float64(b.w)/2, float64(b.h)/2
	radius := float64(b.w) * 0.6
	stripe := max(int(stripeSpacing*b.scale), 4)
	for y := 0; y < b.h; y++ {
		row := top.Lerp(bottom, float64(y)/float64(max(b.h-1, 1)))
		for x := 0; x < b.w; x++ {
			c := row
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / radius
			c = c.Lerp(Color{0, 0, 0, 1}, clamp01(d)*0.55)
			if ((x-y)%stripe+stripe)%stripe < max(int(2*b.scale), 1) {
				c = c.Lerp(top, 0.08)
			}
			img.SetRGBA(x, y, c.WithAlpha(1).RGBA())
		}
	}
	return img
}

func (b *TextureBuilder) front(it Item, p PanelParams) *ebiten.Image {
	img := ebiten.NewImageFromImage(b.background(p))
	b.corners(img)

	title := strings.ToUpper(it.Title)
	adv := text.Advance(title, b.face)
	s := 1.0
	if adv > 0 {
		s = math.Min(float64(b.w)*0.85/adv, 90*b.scale/13)
	}
	s = math.Max(s, 1)
	x := (float64(b.w) - adv*s) / 2
	y := (float64(b.h) - 13*s) / 2
	b.drawText(img, title, x+3*b.scale, y+3*b.scale, s, color.RGBA{0, 0, 0, 200})
	b.drawText(img, title, x, y, s, color.White)
	return img
}

// corners draws the four bracket accents of the front face.
func (b *TextureBuilder) corners(img *ebiten.Image) {
	m := float32(cardMargin * b.scale)
	c := float32(cardCorner * b.scale)
	w, h := float32(b.w), float32(b.h)
	lw := float32(math.Max(4*b.scale, 1))
	clr := color.RGBA{77, 77, 77, 77}
	segs := [][4]float32{
		{m, c, m, m}, {m, m, c, m},
		{w - c, m, w - m, m}, {w - m, m, w - m, c},
		{m, h - c, m, h - m}, {m, h - m, c, h - m},
		{w - c, h - m, w - m, h - m}, {w - m, h - m, w - m, h - c},
	}
	for _, s := range segs {
		vector.StrokeLine(img, s[0], s[1], s[2], s[3], lw, clr, true)
	}
}

func (b *TextureBuilder) back(it Item, p PanelParams, cover image.Image) *ebiten.Image {
	base := b.background(p)
	area := b.imageArea()
	fillRect(base, area, color.RGBA{18, 18, 18, 255})
	if cover != nil {
		dst := FitRect(cover.Bounds().Dx(), cover.Bounds().Dy(), area)
		xdraw.CatmullRom.Scale(base, dst, cover, cover.Bounds(), xdraw.Over, nil)
	}
	img := ebiten.NewImageFromImage(base)

	g0, g1 := p.Gradient[0].WithAlpha(1).RGBA(), p.Gradient[1].WithAlpha(1).RGBA()
	ax, ay := float32(area.Min.X), float32(area.Min.Y)
	aw, ah := float32(area.Dx()), float32(area.Dy())
	vector.StrokeRect(img, ax, ay, aw, ah, float32(math.Max(4*b.scale, 1)), g0, true)
	vector.StrokeRect(img, ax-3, ay-3, aw+6, ah+6, float32(math.Max(2*b.scale, 1)), g1, true)

	sc := b.scale
	infoX := float64(b.w)*imageAreaFrac + 30*sc
	infoW := float64(b.w) - float64(b.w)*imageAreaFrac - 60*sc
	y := 40 * sc

	titleScale := math.Max(4*sc, 1)
	for _, line := range WrapText(strings.ToUpper(it.Title), infoW, b.measure(titleScale)) {
		b.drawText(img, line, infoX+2, y+2, titleScale, color.Black)
		b.drawText(img, line, infoX, y, titleScale, g0)
		y += 13*titleScale + 4*sc
	}
	y += 10 * sc
	vector.StrokeLine(img, float32(infoX), float32(y), float32(float64(b.w)-30*sc), float32(y), float32(math.Max(2*sc, 1)), g1, true)
	y += 20 * sc

	bodyScale := math.Max(sc*1.4, 1)
	for _, line := range TruncateLines(WrapText(it.Description, infoW, b.measure(bodyScale)), maxDescLines) {
		b.drawText(img, line, infoX, y, bodyScale, color.RGBA{232, 232, 232, 255})
		y += descLineSpacing * sc
	}
	y += 20 * sc

	pillScale := math.Max(sc, 1)
	for _, pill := range LayoutPills(it.Tags, infoX, y, float64(b.w)-30*sc, b.measure(pillScale), pillPad*sc, (pillHeight+10)*sc) {
		r := pill.Rect
		vector.DrawFilledRect(img, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(pillHeight*sc), color.RGBA{g0.R / 3, g0.G / 3, g0.B / 3, 170}, true)
		b.drawText(img, pill.Label, float64(r.Min.X)+pillPad*sc, float64(r.Min.Y)+(pillHeight*sc-13*pillScale)/2, pillScale, color.White)
	}

	by := float64(b.h) - 40*sc - buttonHeight*sc
	bx := infoX
	for _, label := range ButtonLabels(it) {
		w := b.measure(pillScale)(label) + 2*pillPad*sc
		vector.DrawFilledRect(img, float32(bx), float32(by), float32(w), float32(buttonHeight*sc), g0, true)
		vector.StrokeRect(img, float32(bx), float32(by), float32(w), float32(buttonHeight*sc), 1, g1, true)
		b.drawText(img, label, bx+pillPad*sc, by+(buttonHeight*sc-13*pillScale)/2, pillScale, color.Black)
		bx += w + 12*sc
	}
	return img
}

// imageArea is the left 60% of the back face, inset.
func (b *TextureBuilder) imageArea() image.Rectangle {
	sc := b.scale
	areaW := float64(b.w) * imageAreaFrac
	return image.Rect(int(30*sc), int(40*sc), int(areaW-30*sc), int(float64(b.h)-40*sc))
}

func (b *TextureBuilder) measure(scale float64) func(string) float64 {
	return func(s string) float64 { return text.Advance(s, b.face) * scale }
}

func (b *TextureBuilder) drawText(dst *ebiten.Image, s string, x, y, scale float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.Filter = ebiten.FilterNearest
	text.Draw(dst, s, b.face, op)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// FitRect returns the largest rectangle with the aspect ratio of a w×h
// image that fits inside area, centred.
func FitRect(w, h int, area image.Rectangle) image.Rectangle {
	if w <= 0 || h <= 0 || area.Empty() {
		return image.Rectangle{}
	}
	aw, ah := float64(area.Dx()), float64(area.Dy())
	imgAspect := float64(w) / float64(h)
	dw, dh := aw, ah
	if imgAspect > aw/ah {
		dh = aw / imgAspect
	} else {
		dw = ah * imgAspect
	}
	x := float64(area.Min.X) + (aw-dw)/2
	y := float64(area.Min.Y) + (ah-dh)/2
	return image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+dw)), int(math.Round(y+dh)))
}

// WrapText breaks s into lines no wider than maxWidth according to measure.
// A single word wider than maxWidth gets a line of its own.
func WrapText(s string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && measure(next) > maxWidth {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// TruncateLines keeps at most n lines and appends "..." when lines were
// dropped.
func TruncateLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	return append(out, "...")
}

// Pill is one laid out tag badge.
type Pill struct {
	Label string
	Rect  image.Rectangle
}

// LayoutPills flows tag badges left to right from (x, y), wrapping at
// right.
func LayoutPills(tags []string, x, y, right float64, measure func(string) float64, pad, rowStep float64) []Pill {
	out := make([]Pill, 0, len(tags))
	cx := x
	for _, tag := range tags {
		w := measure(tag) + 2*pad
		if cx > x && cx+w > right {
			cx = x
			y += rowStep
		}
		out = append(out, Pill{
			Label: tag,
			Rect:  image.Rect(int(cx), int(y), int(cx+w), int(y+rowStep)),
		})
		cx += w + pad
	}
	return out
}

// ButtonLabels returns the link buttons drawn on the back face: one per
// link the item has.
func ButtonLabels(it Item) []string {
	var out []string
	if it.Demo != "" {
		out = append(out, "LIVE DEMO")
	}
	if it.GitHub != "" {
		out = append(out, "GITHUB")
	}
	return out
}
