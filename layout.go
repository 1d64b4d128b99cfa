package flaggallery

import "math"

// Placement is one item's slot in a scattered layout, with the bookkeeping
// of how it was found.
type Placement struct {
	Pos      Vec3
	Attempts int  // candidates drawn, 1..MaxAttempts
	Relaxed  bool // accepted after exhausting the retry budget while still too close
}

// Layout is the seeded layout generator. It carries configuration only: every
// method is a pure function of its arguments, so positions can be recomputed
// at any time instead of cached.
type Layout struct {
	cfg LayoutConfig
}

// NewLayout returns a generator for the given configuration.
func NewLayout(cfg LayoutConfig) Layout {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return Layout{cfg: cfg}
}

// DefaultLayout uses DefaultConfig().Layout.
var DefaultLayout = NewLayout(DefaultConfig().Layout)

// LinearPath returns DefaultLayout.Linear(index).
func LinearPath(index int) Vec3 { return DefaultLayout.Linear(index) }

// ScatteredGallery returns DefaultLayout.Scattered(index).
func ScatteredGallery(index int) Vec3 { return DefaultLayout.Scattered(index) }

// Hash returns a pseudo-random value in [0, 1) derived from seed and offset:
// the fractional part of sin(seed+offset)*HashScale.
func (l Layout) Hash(seed, offset float64) float64 {
	x := math.Sin(seed+offset) * l.cfg.HashScale
	return x - math.Floor(x)
}

// Seed returns the base seed of item index with the given salt folded in.
func (l Layout) Seed(index, salt int) float64 {
	return float64(index)*l.cfg.SeedStride + float64(salt)
}

// Linear returns the position of item index on the linear path: jittered in
// X/Y around the path axis and stepped along Z.
func (l Layout) Linear(index int) Vec3 {
	seed := l.Seed(index, 0)
	s := l.cfg.LinearSpread
	return Vec3{
		X: (l.Hash(seed, 1) - 0.5) * s.X,
		Y: (l.Hash(seed, 2) - 0.5) * s.Y,
		Z: float64(index)*l.cfg.LinearStep + (l.Hash(seed, 3)-0.5)*s.Z,
	}
}

// Scattered returns the gallery position of item index. Placement of index
// depends on the placements of every lower index, so they are recomputed.
func (l Layout) Scattered(index int) Vec3 {
	if index < 0 {
		return l.candidate(index, 0)
	}
	return l.ScatteredAll(index + 1)[index].Pos
}

// ScatteredAll places n items by rejection sampling. Each item draws up to
// MaxAttempts candidates, folding the attempt number into its seed, and takes
// the first one at least MinSeparation away from every earlier item. When the
// budget runs out the last candidate is accepted regardless and the placement
// is marked Relaxed.
func (l Layout) ScatteredAll(n int) []Placement {
	out := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		var p Placement
		for attempt := 0; attempt < l.cfg.MaxAttempts; attempt++ {
			c := l.candidate(i, attempt)
			free := true
			for _, prev := range out {
				if c.Dist(prev.Pos) < l.cfg.MinSeparation {
					free = false
					break
				}
			}
			p = Placement{Pos: c, Attempts: attempt + 1}
			if free {
				break
			}
			if attempt == l.cfg.MaxAttempts-1 {
				p.Relaxed = true
			}
		}
		out = append(out, p)
	}
	return out
}

func (l Layout) candidate(index, attempt int) Vec3 {
	seed := l.Seed(index, attempt)
	s := l.cfg.GallerySpread
	c := l.cfg.GalleryCenter
	return Vec3{
		X: c.X + (l.Hash(seed, 1)-0.5)*s.X,
		Y: c.Y + (l.Hash(seed, 2)-0.5)*s.Y,
		Z: c.Z + (l.Hash(seed, 3)-0.5)*s.Z,
	}
}

// PositionFor returns the position of index under mode.
func (l Layout) PositionFor(mode Mode, index int) Vec3 {
	if mode == ModeGallery {
		return l.Scattered(index)
	}
	return l.Linear(index)
}
