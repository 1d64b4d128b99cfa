package flaggallery

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Vec3 is a 3D vector used for positions, offsets, scales and velocities
// throughout the API. The gallery uses a right-handed frame: X right, Y up,
// and the linear path running toward -Z.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return v
	}
	return v.Scale(1 / l)
}

// Vec2 is a point in screen space, in pixels.
type Vec2 struct {
	X, Y float64
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the neutral vertex tint.
var ColorWhite = Color{1, 1, 1, 1}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Lerp blends c toward o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA converts to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mode is the layout the items are arranged in.
type Mode uint8

const (
	ModeLinear  Mode = iota // one item at a time along the linear path
	ModeGallery             // every item scattered and visible at once
)

func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeGallery:
		return "gallery"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// State is a node of the navigation state machine.
type State uint8

const (
	StateLinearScroll            State = iota // resting on currentIndex along the path
	StateTransitioningLinear                  // camera arcing between two linear items
	StateTransitioningToGallery               // items scattering into the gallery
	StateGallery                              // resting in the gallery
	StateTransitioningToFocus                 // camera zooming onto a gallery item
	StateFocused                              // one gallery item isolated and enlarged
	StateReturningFromFocus                   // items restoring their gallery layout
	StateTransitioningFromGallery             // items returning to the linear path
)

var stateNames = [...]string{
	StateLinearScroll:             "LinearScroll",
	StateTransitioningLinear:      "TransitioningLinear",
	StateTransitioningToGallery:   "TransitioningToGallery",
	StateGallery:                  "Gallery",
	StateTransitioningToFocus:     "TransitioningToFocus",
	StateFocused:                  "Focused",
	StateReturningFromFocus:       "ReturningFromFocus",
	StateTransitioningFromGallery: "TransitioningFromGallery",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Transient reports whether s is one of the Transitioning* states, during
// which navigation commands are dropped.
func (s State) Transient() bool {
	switch s {
	case StateTransitioningLinear, StateTransitioningToGallery,
		StateTransitioningToFocus, StateReturningFromFocus,
		StateTransitioningFromGallery:
		return true
	}
	return false
}

// Mode returns the layout mode the state belongs to. Transient states report
// the mode they started from.
func (s State) Mode() Mode {
	switch s {
	case StateLinearScroll, StateTransitioningLinear, StateTransitioningToGallery:
		return ModeLinear
	default:
		return ModeGallery
	}
}

// Face selects which texture a panel shows.
type Face uint8

const (
	FaceFront Face = iota // title card
	FaceBack              // details card
)

func (f Face) String() string {
	if f == FaceBack {
		return "back"
	}
	return "front"
}
