package flaggallery

import (
	"cmp"
	"fmt"
	"image/color"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Fog fades vertex colours toward Color between Near and Far units of
// camera distance.
type Fog struct {
	Color     Color
	Near, Far float64
}

// Factor returns the fog amount in [0, 1] at distance d.
func (f Fog) Factor(d float64) float64 {
	if f.Far <= f.Near {
		return 0
	}
	return clamp01((d - f.Near) / (f.Far - f.Near))
}

// Apply blends c toward the fog colour for a point at distance d.
func (f Fog) Apply(c Color, d float64) Color {
	return c.Lerp(f.Color, f.Factor(d))
}

// drawCommand is one projected panel waiting to be drawn.
type drawCommand struct {
	index int
	depth float64
}

// Renderer turns an orchestrator's frames into triangles: it deforms and
// projects every panel mesh, sorts them back to front and submits them.
type Renderer struct {
	bg       color.RGBA
	fog      Fog
	texW     float64
	texH     float64
	meshes   []*FlagMesh
	faces    []FaceTextures
	commands []drawCommand
	quads    []HitQuad
	stats    debugStats
}

// NewRenderer creates a renderer for n items.
func NewRenderer(cfg Config, n int) (*Renderer, error) {
	bg, err := ParseHexColor(cfg.Render.Background)
	if err != nil {
		return nil, fmt.Errorf("new renderer: background: %w", err)
	}
	fogColor, err := ParseHexColor(cfg.Render.FogColor)
	if err != nil {
		return nil, fmt.Errorf("new renderer: fog: %w", err)
	}
	r := &Renderer{
		bg:     bg.RGBA(),
		fog:    Fog{Color: fogColor, Near: cfg.Render.FogNear, Far: cfg.Render.FogFar},
		texW:   float64(cfg.Render.TextureWidth),
		texH:   float64(cfg.Render.TextureHeight),
		meshes: make([]*FlagMesh, n),
	}
	for i := range r.meshes {
		r.meshes[i] = NewFlagMesh(cfg.Panel.Segments)
	}
	return r, nil
}

// SetFaces installs the face textures, indexed like the items. Previously
// installed textures are released.
func (r *Renderer) SetFaces(faces []FaceTextures) {
	for _, f := range r.faces {
		f.Dispose()
	}
	r.faces = faces
}

// Quads returns the panel outlines of the last Prepare, for hit testing.
func (r *Renderer) Quads() []HitQuad { return r.quads }

// Prepare builds every visible panel mesh for a w×h viewport and orders
// them back to front.
func (r *Renderer) Prepare(o *Orchestrator, w, h int) {
	start := time.Now()
	cam := o.Camera()
	proj := cam.Projector(float64(w), float64(h))

	r.commands = r.commands[:0]
	r.quads = r.quads[:0]
	culled := 0
	for _, f := range o.Frames() {
		quad, ok := r.meshes[f.Index].Build(f, proj, r.texW, r.texH, r.fog)
		if !ok {
			culled++
			continue
		}
		r.commands = append(r.commands, drawCommand{index: f.Index, depth: quad.Depth})
		r.quads = append(r.quads, quad)
	}
	r.stats.projectTime = time.Since(start)

	start = time.Now()
	slices.SortStableFunc(r.commands, func(a, b drawCommand) int {
		return cmp.Compare(b.depth, a.depth)
	})
	r.stats.sortTime = time.Since(start)
	r.stats.panelCount = len(r.commands)
	r.stats.culledCount = culled
}

// Draw clears screen to the background colour and submits the prepared
// panels.
func (r *Renderer) Draw(screen *ebiten.Image, o *Orchestrator) {
	start := time.Now()
	screen.Fill(r.bg)
	frames := o.Frames()
	tris := 0
	op := &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear}
	for _, cmd := range r.commands {
		if cmd.index >= len(r.faces) {
			continue
		}
		tex := r.faces[cmd.index].Front
		if frames[cmd.index].Panel.Face == FaceBack {
			tex = r.faces[cmd.index].Back
		}
		if tex == nil {
			continue
		}
		m := r.meshes[cmd.index]
		screen.DrawTriangles(m.Vertices(), m.Indices(), tex, op)
		tris += len(m.Indices()) / 3
	}
	r.stats.submitTime = time.Since(start)
	r.stats.triangleCount = tris
}
