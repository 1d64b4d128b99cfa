package flaggallery

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// HitQuad is the projected outline of a panel on screen, used for pointer
// hit testing. Points must define a convex polygon in either winding order.
type HitQuad struct {
	Index  int
	Points [4]Vec2
	Depth  float64 // view depth of the panel centre, nearer wins
}

// Contains reports whether (x, y) lies inside the quad using a cross-product
// sign test.
func (q HitQuad) Contains(x, y float64) bool {
	var positive, negative bool
	for i := range q.Points {
		a := q.Points[i]
		b := q.Points[(i+1)%len(q.Points)]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return positive || negative
}

// hitTest returns the nearest item under (x, y), or NoItem.
func hitTest(quads []HitQuad, x, y float64) int {
	best := NoItem
	bestDepth := math.Inf(1)
	for _, q := range quads {
		if q.Depth < bestDepth && q.Contains(x, y) {
			best = q.Index
			bestDepth = q.Depth
		}
	}
	return best
}

// InputFrame is one tick of raw input, polled from Ebitengine or built by a
// test.
type InputFrame struct {
	X, Y    float64 // pointer position in screen pixels
	Pressed bool    // left button or any touch held
	Touch   bool    // the pointer is a touch
	WheelY  float64 // vertical wheel offset, positive away from the user
	Keys    []ebiten.Key
}

// pointerState tracks press/release pairing and hover across ticks.
type pointerState struct {
	down   bool
	startX float64
	startY float64
	lastX  float64
	lastY  float64
	hit    int
	hover  int
	touch  bool
}

// tapSlop is how far a press may travel before it no longer counts as a
// click or a tap.
const tapSlop = 8.0

// InputAdapter translates raw input into orchestrator commands: wheel
// deltas, navigation keys, Escape, touch tap zones and pointer hover and
// clicks on projected panels.
type InputAdapter struct {
	render RenderConfig
	width  float64
	height float64

	ptr      pointerState
	touchIDs []ebiten.TouchID
	keys     []ebiten.Key
}

// NewInputAdapter returns an adapter for a w×h screen.
func NewInputAdapter(cfg RenderConfig, w, h int) *InputAdapter {
	a := &InputAdapter{render: cfg}
	a.ptr.hit = NoItem
	a.ptr.hover = NoItem
	a.Resize(w, h)
	return a
}

// Resize updates the screen size used for tap zones and pointer
// normalization.
func (a *InputAdapter) Resize(w, h int) {
	a.width = float64(max(w, 1))
	a.height = float64(max(h, 1))
}

// Poll reads the current Ebitengine input state.
func (a *InputAdapter) Poll() InputFrame {
	var in InputFrame
	a.touchIDs = ebiten.AppendTouchIDs(a.touchIDs[:0])
	if len(a.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(a.touchIDs[0])
		in.X, in.Y = float64(tx), float64(ty)
		in.Pressed = true
		in.Touch = true
	} else if a.ptr.down && a.ptr.touch {
		// The finger lifted this tick: release where it was.
		in.X, in.Y = a.ptr.lastX, a.ptr.lastY
		in.Touch = true
	} else {
		mx, my := ebiten.CursorPosition()
		in.X, in.Y = float64(mx), float64(my)
		in.Pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	}
	_, in.WheelY = ebiten.Wheel()
	a.keys = inpututil.AppendJustPressedKeys(a.keys[:0])
	in.Keys = a.keys
	return in
}

// Apply feeds one input frame to o. quads are the panel outlines of the
// last drawn frame.
func (a *InputAdapter) Apply(o *Orchestrator, in InputFrame, quads []HitQuad) {
	for _, k := range in.Keys {
		switch k {
		case ebiten.KeyEscape:
			o.Execute(Dismiss())
		case ebiten.KeyArrowRight, ebiten.KeyArrowDown, ebiten.KeySpace, ebiten.KeyPageDown:
			o.Next()
		case ebiten.KeyArrowLeft, ebiten.KeyArrowUp, ebiten.KeyPageUp:
			o.Prev()
		case ebiten.KeyEnter:
			o.Execute(SelectItem(o.State().CurrentIndex))
		}
	}

	if in.WheelY != 0 {
		o.Scroll(-in.WheelY * a.render.WheelScale)
	}

	o.SetPointer(in.X/a.width*2-1, in.Y/a.height*2-1)
	a.pointer(o, in, hitTest(quads, in.X, in.Y))
}

// pointer runs the press/release state machine of the single pointer.
func (a *InputAdapter) pointer(o *Orchestrator, in InputFrame, target int) {
	ps := &a.ptr
	if target != ps.hover && !(in.Touch && !in.Pressed) {
		if ps.hover != NoItem {
			o.Execute(Hover(ps.hover, false))
		}
		if target != NoItem {
			o.Execute(Hover(target, true))
		}
		ps.hover = target
	}

	switch {
	case in.Pressed && !ps.down:
		ps.down = true
		ps.touch = in.Touch
		ps.startX, ps.startY = in.X, in.Y
		ps.lastX, ps.lastY = in.X, in.Y
		ps.hit = target
	case in.Pressed && ps.down:
		ps.lastX, ps.lastY = in.X, in.Y
	case !in.Pressed && ps.down:
		ps.down = false
		moved := math.Hypot(in.X-ps.startX, in.Y-ps.startY) > tapSlop
		if !moved && ps.hit == target {
			a.click(o, in, target)
		}
		ps.hit = NoItem
	}
}

// click turns a completed click into a command. Touches that miss every
// panel fall into the tap zones at the screen edges.
func (a *InputAdapter) click(o *Orchestrator, in InputFrame, target int) {
	if target == NoItem && in.Touch {
		zone := a.render.TapZone * a.width
		switch {
		case in.X < zone:
			o.Prev()
			return
		case in.X > a.width-zone:
			o.Next()
			return
		}
	}
	o.Execute(SelectItem(target))
}
