package flaggallery

// syntheticEvent is a single injected input. Commands go straight to the
// orchestrator; pointer events use screen coordinates and pass through the
// same hit testing as real input.
type syntheticEvent struct {
	cmd     *Command
	scroll  float64
	pointer bool
	x, y    float64
	pressed bool
	touch   bool
}

// injectQueue holds synthetic events, consumed one per tick.
type injectQueue struct {
	events []syntheticEvent
}

func (q *injectQueue) push(e syntheticEvent) { q.events = append(q.events, e) }

// Len returns the number of pending events.
func (q *injectQueue) Len() int { return len(q.events) }

func (q *injectQueue) pop() (syntheticEvent, bool) {
	if len(q.events) == 0 {
		return syntheticEvent{}, false
	}
	e := q.events[0]
	copy(q.events, q.events[1:])
	q.events = q.events[:len(q.events)-1]
	return e, true
}

// InjectCommand queues a command for the next tick.
func (g *Game) InjectCommand(cmd Command) {
	g.inject.push(syntheticEvent{cmd: &cmd})
}

// InjectScroll queues a wheel delta (positive moves forward).
func (g *Game) InjectScroll(delta float64) {
	g.inject.push(syntheticEvent{scroll: delta})
}

// InjectPress queues a pointer press at screen coordinates.
func (g *Game) InjectPress(x, y float64) {
	g.inject.push(syntheticEvent{pointer: true, x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move at screen coordinates with no button
// held, which drives hover.
func (g *Game) InjectMove(x, y float64) {
	g.inject.push(syntheticEvent{pointer: true, x: x, y: y})
}

// InjectRelease queues a pointer release at screen coordinates.
func (g *Game) InjectRelease(x, y float64) {
	g.inject.push(syntheticEvent{pointer: true, x: x, y: y})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two ticks.
func (g *Game) InjectClick(x, y float64) {
	g.InjectPress(x, y)
	g.InjectRelease(x, y)
}

// InjectTap is InjectClick for a touch, so tap zones apply.
func (g *Game) InjectTap(x, y float64) {
	g.inject.push(syntheticEvent{pointer: true, touch: true, x: x, y: y, pressed: true})
	g.inject.push(syntheticEvent{pointer: true, touch: true, x: x, y: y})
}

// processInjected pops one event and applies it. It returns true when an
// event was consumed, in which case real input is skipped for the tick.
func (g *Game) processInjected() bool {
	e, ok := g.inject.pop()
	if !ok {
		return false
	}
	switch {
	case e.cmd != nil:
		g.orch.Execute(*e.cmd)
	case e.pointer:
		in := InputFrame{X: e.x, Y: e.y, Pressed: e.pressed, Touch: e.touch}
		g.input.Apply(g.orch, in, g.quads)
	default:
		g.orch.Scroll(e.scroll)
	}
	return true
}
