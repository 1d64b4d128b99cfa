package flaggallery

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudRefresh is the number of seconds between two HUD redraws.
const hudRefresh = 0.5

// hud is the corner overlay showing FPS/TPS, the navigation state and the
// renderer counters. Its image is only redrawn every hudRefresh seconds.
type hud struct {
	img   *ebiten.Image
	since float64
	dirty bool
}

func newHUD() *hud {
	// 180x60 fits four lines of the debug font.
	return &hud{img: ebiten.NewImage(180, 60), dirty: true}
}

func (h *hud) update(dt float64) {
	h.since += dt
	if h.since >= hudRefresh {
		h.since = 0
		h.dirty = true
	}
}

func (h *hud) draw(screen *ebiten.Image, ns NavigationState, s Stats) {
	if h.dirty {
		h.dirty = false
		h.img.Clear()
		// Semi-transparent background for readability
		h.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(h.img, fmt.Sprintf("FPS: %.1f  TPS: %.1f\n%s #%d\npanels %d culled %d\ntris %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			ns.State, ns.CurrentIndex,
			s.Panels, s.Culled, s.Triangles))
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(8, 8)
	screen.DrawImage(h.img, op)
}

func (h *hud) dispose() { h.img.Deallocate() }
