package flaggallery

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// FlagMesh is a grid mesh for one panel surface, deformed every frame by the
// panel's cloth wave and projected into screen space.
type FlagMesh struct {
	cols, rows int
	uv         []Vec2 // normalized texture coordinates, (0,0) top-left
	verts      []ebiten.Vertex
	inds       []uint16
}

// NewFlagMesh creates a segments×segments grid. Vertices = (segments+1)².
func NewFlagMesh(segments int) *FlagMesh {
	segments = min(max(segments, 1), 128)
	cols, rows := segments, segments
	vcols, vrows := cols+1, rows+1

	m := &FlagMesh{
		cols:  cols,
		rows:  rows,
		uv:    make([]Vec2, vcols*vrows),
		verts: make([]ebiten.Vertex, vcols*vrows),
		inds:  make([]uint16, cols*rows*6),
	}
	for r := 0; r < vrows; r++ {
		for c := 0; c < vcols; c++ {
			m.uv[r*vcols+c] = Vec2{X: float64(c) / float64(cols), Y: float64(r) / float64(rows)}
		}
	}
	ii := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tl := uint16(r*vcols + c)
			tr := tl + 1
			bl := uint16((r+1)*vcols + c)
			br := bl + 1
			m.inds[ii+0] = tl
			m.inds[ii+1] = bl
			m.inds[ii+2] = tr
			m.inds[ii+3] = tr
			m.inds[ii+4] = bl
			m.inds[ii+5] = br
			ii += 6
		}
	}
	return m
}

// Cols returns the number of grid columns.
func (m *FlagMesh) Cols() int { return m.cols }

// Rows returns the number of grid rows.
func (m *FlagMesh) Rows() int { return m.rows }

// Vertices returns the vertices of the last Build.
func (m *FlagMesh) Vertices() []ebiten.Vertex { return m.verts }

// Indices returns the triangle indices.
func (m *FlagMesh) Indices() []uint16 { return m.inds }

// LocalPoint returns the displaced panel-space position of grid vertex
// (col, row) and its shade multiplier.
func (m *FlagMesh) LocalPoint(pf PanelFrame, col, row int) (Vec3, float64) {
	uv := m.uv[row*(m.cols+1)+col]
	x := (uv.X - 0.5) * pf.Width
	y := (0.5 - uv.Y) * pf.Height
	z := pf.Wave.Displacement(x, y)
	return Vec3{x, y, z}, pf.Wave.Shade(z)
}

// WorldPoint maps a panel-space point through the panel transform and the
// item anchor transform.
func WorldPoint(f ItemFrame, local Vec3) Vec3 {
	p := Vec3{local.X * f.Panel.Scale.X, local.Y * f.Panel.Scale.Y, local.Z * f.Panel.Scale.Z}
	p = rotateXYZ(p, f.Panel.Rotation)
	p = rotateY(p.Scale(f.Scale), f.RotationY)
	return p.Add(f.Position)
}

// Build deforms and projects the mesh for frame f onto tex (a texW×texH
// face texture). It returns false when any vertex falls behind the near
// plane, in which case the panel is culled. The returned quad outlines the
// panel corners on screen.
func (m *FlagMesh) Build(f ItemFrame, proj Projector, texW, texH float64, fog Fog) (HitQuad, bool) {
	vcols := m.cols + 1
	mirror := f.Panel.Face == FaceBack
	glow := 1 + f.Panel.Emissive
	var quad HitQuad
	quad.Index = f.Index

	for r := 0; r <= m.rows; r++ {
		for c := 0; c <= m.cols; c++ {
			idx := r*vcols + c
			local, shade := m.LocalPoint(f.Panel, c, r)
			world := WorldPoint(f, local)
			sx, sy, _, ok := proj.Project(world)
			if !ok {
				return HitQuad{}, false
			}
			u := m.uv[idx].X
			if mirror {
				u = 1 - u
			}
			clr := fog.Apply(ColorWhite, proj.Distance(world))
			k := float32(shade * glow)
			m.verts[idx] = ebiten.Vertex{
				DstX:   float32(sx),
				DstY:   float32(sy),
				SrcX:   float32(u * texW),
				SrcY:   float32(m.uv[idx].Y * texH),
				ColorR: float32(clr.R) * k,
				ColorG: float32(clr.G) * k,
				ColorB: float32(clr.B) * k,
				ColorA: 1,
			}
		}
	}

	corners := [4]int{0, m.cols, vcols*(m.rows+1) - 1, m.rows * vcols}
	for i, idx := range corners {
		quad.Points[i] = Vec2{X: float64(m.verts[idx].DstX), Y: float64(m.verts[idx].DstY)}
	}
	_, _, quad.Depth, _ = proj.Project(f.Position)
	return quad, true
}

// rotateXYZ applies Euler angles r in XYZ order (the matrix Rx·Ry·Rz).
func rotateXYZ(v, r Vec3) Vec3 {
	// Rz
	s, c := math.Sincos(r.Z)
	v = Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
	v = rotateY(v, r.Y)
	// Rx
	s, c = math.Sincos(r.X)
	return Vec3{v.X, v.Y*c - v.Z*s, v.Y*s + v.Z*c}
}

func rotateY(v Vec3, a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
}
