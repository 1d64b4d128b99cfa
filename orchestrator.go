package flaggallery

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// LinkOpener opens an item link outside the gallery (a browser, a log, a
// test recorder).
type LinkOpener interface {
	Open(url string) error
}

// LinkOpenerFunc adapts a function to LinkOpener.
type LinkOpenerFunc func(url string) error

// Open calls f(url).
func (f LinkOpenerFunc) Open(url string) error { return f(url) }

// Options configures a new Orchestrator.
type Options struct {
	// Items is the immutable item list of the session. Required.
	Items []Item
	// Config overrides DefaultConfig when non-nil.
	Config *Config
	// StartIndex is the linear index the session opens on, clamped to the
	// item range.
	StartIndex int
	// Logger receives debug and warning output. Defaults to zap.NewNop().
	Logger *zap.Logger
	// Opener activates item links. Nil disables activation.
	Opener LinkOpener
	// OnDetailPanel is called whenever the detail overlay should be shown or
	// hidden. Only changes are reported.
	OnDetailPanel func(shown bool)
	// OnCurrentIndex is called whenever the current item changes.
	OnCurrentIndex func(index int)
}

// NavigationState is a snapshot of where the user currently is.
type NavigationState struct {
	State         State
	Mode          Mode
	CurrentIndex  int
	SelectedIndex int // NoItem when nothing is focused
	Transitioning bool
	DwellTime     float64
	DetailShown   bool
}

// ItemState is the orchestrator-owned transform of one item anchor.
type ItemState struct {
	Position  Vec3
	Scale     float64
	RotationY float64
	// HoverScale and HoverLift are driven by gallery hover only and compose
	// with Scale and Position.Z.
	HoverScale float64
	HoverLift  float64
}

// ItemFrame is everything the renderer needs to draw one item this tick.
type ItemFrame struct {
	Index      int
	Position   Vec3
	Scale      float64
	RotationY  float64
	NearCamera bool
	Selected   bool
	Hovered    bool
	Panel      PanelFrame
}

// Orchestrator is the navigation and camera state machine of one gallery
// session. It is the only writer of NavigationState, the camera and the
// item transforms. All methods must be called from the same goroutine, the
// one driving Update.
type Orchestrator struct {
	cfg     Config
	layout  Layout
	items   []Item
	log     *zap.Logger
	session string
	opener  LinkOpener

	onDetail func(bool)
	onIndex  func(int)

	clock  Clock
	camera *Camera
	look   Vec3 // look point animated by forward linear transitions
	px, py float64

	state      State
	current    int
	selected   int
	target     int
	dwell      float64
	detail     bool
	suppressed bool
	scroll     scrollAccumulator

	itemStates []ItemState
	panels     []*Panel
	frames     []ItemFrame
	hovered    int
	hoverTL    []*Timeline
	active     *Timeline

	stats navStats
}

// NewOrchestrator creates a session resting in LinearScroll on
// opts.StartIndex. It returns ErrNoItems for an empty item list and an
// ErrInvalidConfig error for a bad configuration.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if len(opts.Items) == 0 {
		return nil, ErrNoItems
	}
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new orchestrator: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	n := len(opts.Items)
	start := min(max(opts.StartIndex, 0), n-1)
	o := &Orchestrator{
		cfg:      cfg,
		layout:   NewLayout(cfg.Layout),
		items:    opts.Items,
		session:  uuid.NewString(),
		opener:   opts.Opener,
		onDetail: opts.OnDetailPanel,
		onIndex:  opts.OnCurrentIndex,
		state:    StateLinearScroll,
		current:  start,
		selected: NoItem,
		target:   NoItem,
		hovered:  NoItem,
		scroll:   scrollAccumulator{threshold: cfg.Navigation.ScrollThreshold},

		itemStates: make([]ItemState, n),
		panels:     make([]*Panel, n),
		frames:     make([]ItemFrame, n),
		hoverTL:    make([]*Timeline, n),
	}
	o.log = log.With(zap.String("session", o.session))

	for i := range o.itemStates {
		o.itemStates[i] = ItemState{Position: o.layout.Linear(i), Scale: 1, HoverScale: 1}
		o.panels[i] = NewPanel(NewPanelParams(o.layout, cfg.Panel, i), cfg.Panel)
	}
	home := o.layout.Linear(start)
	o.camera = newCamera(cfg.Camera, home.Add(cfg.Camera.StartOffset), home.Add(cfg.Camera.ViewOffset), home)
	o.look = home
	o.refreshFrames(false)

	o.log.Debug("session started", zap.Int("items", n), zap.Int("start", start))
	return o, nil
}

// Session returns the id attached to every log line of this session.
func (o *Orchestrator) Session() string { return o.session }

// Config returns the configuration in use.
func (o *Orchestrator) Config() Config { return o.cfg }

// Layout returns the layout generator in use.
func (o *Orchestrator) Layout() Layout { return o.layout }

// Items returns the item list.
func (o *Orchestrator) Items() []Item { return o.items }

// Len returns the number of items.
func (o *Orchestrator) Len() int { return len(o.items) }

// Clock returns the shared animation clock.
func (o *Orchestrator) Clock() Clock { return o.clock }

// Camera returns a copy of the camera state.
func (o *Orchestrator) Camera() Camera { return *o.camera }

// ItemState returns the current transform of item i.
func (o *Orchestrator) ItemState(i int) ItemState { return o.itemStates[i] }

// Frames returns the per-item output of the last Update. The slice is reused
// between ticks.
func (o *Orchestrator) Frames() []ItemFrame { return o.frames }

// State returns a snapshot of the navigation state.
func (o *Orchestrator) State() NavigationState {
	return NavigationState{
		State:         o.state,
		Mode:          o.state.Mode(),
		CurrentIndex:  o.current,
		SelectedIndex: o.selected,
		Transitioning: o.state.Transient(),
		DwellTime:     o.dwell,
		DetailShown:   o.detail,
	}
}

// PanelParams returns the fixed panel parameters of item i.
func (o *Orchestrator) PanelParams(i int) PanelParams { return o.panels[i].Params() }

// Stretched reports whether item i is showing its stretched detail pose.
func (o *Orchestrator) Stretched(i int) bool {
	if o.suppressed || o.dwell < o.cfg.Navigation.DwellThreshold-dwellEpsilon {
		return false
	}
	switch o.state {
	case StateLinearScroll:
		return i == o.current
	case StateFocused:
		return i == o.selected
	}
	return false
}

// dwellEpsilon absorbs the rounding of many small frame deltas summed up to
// the threshold.
const dwellEpsilon = 1e-9

// SetPointer records the normalized pointer position, x and y in [-1, 1]
// with y growing downward. It only affects the look target.
func (o *Orchestrator) SetPointer(x, y float64) {
	o.px = math.Max(-1, math.Min(1, x))
	o.py = math.Max(-1, math.Min(1, y))
}

// Scroll feeds a wheel delta. Positive deltas move forward. It returns true
// when the accumulated delta started a transition. Once the accumulator
// passes the threshold it is emptied whether or not the move was possible.
func (o *Orchestrator) Scroll(delta float64) bool {
	if o.state.Transient() || o.state == StateFocused {
		return false
	}
	dir := o.scroll.add(delta)
	if dir == 0 {
		return false
	}
	// Consumed even when the move is refused.
	defer o.scroll.reset()
	if dir > 0 {
		return o.Execute(NavigateForward())
	}
	return o.Execute(NavigateBackward())
}

// Next behaves exactly like a forward wheel step.
func (o *Orchestrator) Next() bool { return o.Scroll(o.cfg.Navigation.StepDelta) }

// Prev behaves exactly like a backward wheel step.
func (o *Orchestrator) Prev() bool { return o.Scroll(-o.cfg.Navigation.StepDelta) }

// Execute applies one command. It returns false when the command was
// ignored: invalid in the current state, out of range, or received while a
// transition is in flight. Ignored commands are neither queued nor logged.
func (o *Orchestrator) Execute(cmd Command) bool {
	var ok bool
	switch cmd.Kind {
	case CommandNavigateForward:
		ok = o.navigate(1)
	case CommandNavigateBackward:
		ok = o.navigate(-1)
	case CommandSelectItem:
		ok = o.selectItem(cmd.Index)
	case CommandDismiss:
		ok = o.dismiss()
	case CommandHover:
		ok = o.hover(cmd.Index, cmd.Enter)
	}
	if ok {
		o.stats.commands++
	}
	return ok
}

func (o *Orchestrator) navigate(dir int) bool {
	switch o.state {
	case StateLinearScroll:
		next := o.current + dir
		switch {
		case next >= len(o.items):
			o.startToGallery()
		case next >= 0:
			o.startLinear(next)
		default:
			return false
		}
		return true
	case StateGallery:
		if dir < 0 {
			o.startFromGallery()
			return true
		}
	}
	return false
}

func (o *Orchestrator) selectItem(i int) bool {
	if i != NoItem && (i < 0 || i >= len(o.items)) {
		return false
	}
	switch o.state {
	case StateGallery:
		if i == NoItem || i == o.selected {
			return false
		}
		o.startFocus(i)
		return true
	case StateFocused:
		if i == NoItem {
			o.startReturn()
			return true
		}
		if i == o.selected {
			return o.activate(i)
		}
	case StateLinearScroll:
		if i == o.current {
			return o.activate(i)
		}
	}
	return false
}

func (o *Orchestrator) dismiss() bool {
	if o.state.Transient() {
		return false
	}
	if o.detail {
		o.dwell = 0
		o.suppressed = true
		o.setDetail(false)
		return true
	}
	if o.state == StateFocused {
		o.startReturn()
		return true
	}
	return false
}

func (o *Orchestrator) hover(i int, enter bool) bool {
	if o.state != StateGallery || i < 0 || i >= len(o.items) {
		return false
	}
	tr := o.cfg.Transitions
	st := &o.itemStates[i]
	if tl := o.hoverTL[i]; tl != nil {
		tl.Kill()
	}
	tl := NewTimeline()
	if enter {
		o.hovered = i
		tl.To(&st.HoverScale, tr.HoverScale, 0, tr.HoverDuration, ease.OutBack).
			To(&st.HoverLift, tr.HoverLift, 0, tr.HoverDuration, ease.OutQuad)
	} else {
		if o.hovered == i {
			o.hovered = NoItem
		}
		tl.To(&st.HoverScale, 1, 0, tr.HoverDuration, ease.OutQuad).
			To(&st.HoverLift, 0, 0, tr.HoverDuration, ease.OutQuad)
	}
	o.hoverTL[i] = tl
	return true
}

// activate opens the item link: demo first, else repository.
func (o *Orchestrator) activate(i int) bool {
	url := o.items[i].Link()
	if url == "" || o.opener == nil {
		return false
	}
	if err := o.opener.Open(url); err != nil {
		o.log.Warn("open link", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}

// begin enters a transient state with a fresh main timeline. Hover
// timelines are killed and every hover offset returns to rest inside the
// new timeline.
func (o *Orchestrator) begin(s State, tl *Timeline, settle float64) {
	for i, h := range o.hoverTL {
		if h != nil {
			h.Kill()
			o.hoverTL[i] = nil
		}
		st := &o.itemStates[i]
		tl.To(&st.HoverScale, 1, 0, settle, ease.OutQuad).
			To(&st.HoverLift, 0, 0, settle, ease.OutQuad)
	}
	o.hovered = NoItem
	o.active = tl
	o.setState(s)
	o.stats.transitions++
	o.log.Debug("transition started",
		zap.Stringer("state", s),
		zap.Int("current", o.current),
		zap.Int("target", o.target),
		zap.Float64("duration", tl.Duration()))
}

func (o *Orchestrator) startLinear(next int) {
	tr := o.cfg.Transitions
	from := o.layout.Linear(o.current)
	to := o.layout.Linear(next)
	stage := tr.ArcStage
	step := tr.ArcStage - tr.ArcOverlap

	tl := NewTimeline().
		ToVec3(&o.camera.Target, from.Add(tr.ArcOffset), 0, stage, ease.InOutSine).
		ToVec3(&o.camera.Target, to.Add(tr.ArcOffset), step, stage, ease.InOutSine).
		ToVec3(&o.camera.Target, to.Add(o.cfg.Camera.ViewOffset), 2*step, stage, ease.InOutSine)
	if next > o.current {
		o.look = o.camera.LookAt
		tl.ToVec3(&o.look, to, 0, tr.ArcLookDuration, ease.InOutExpo)
	}
	o.target = next
	o.begin(StateTransitioningLinear, tl, stage)
}

func (o *Orchestrator) startToGallery() {
	tr := o.cfg.Transitions
	tl := NewTimeline().
		ToVec3(&o.camera.Target, tr.EntryWaypoint, 0, tr.EntryWaypointIn, ease.InQuad).
		ToVec3(&o.camera.Target, tr.GalleryView, tr.EntryWaypointIn, tr.GalleryViewIn, ease.OutExpo)
	for i, p := range o.layout.ScatteredAll(len(o.items)) {
		st := &o.itemStates[i]
		at := o.ScatterDelay(i)
		st.RotationY = 0
		tl.ToVec3(&st.Position, p.Pos, at, tr.ScatterDuration, ease.OutElastic).
			To(&st.RotationY, 2*math.Pi, at, tr.ScatterDuration, ease.OutQuad)
	}
	o.target = NoItem
	o.begin(StateTransitioningToGallery, tl, tr.HoverDuration)
}

// ScatterDelay returns the start offset of item i in the gallery entry
// scatter: base + wave·sin(i·freq) + i·step.
func (o *Orchestrator) ScatterDelay(i int) float64 {
	tr := o.cfg.Transitions
	fi := float64(i)
	return tr.ScatterBase + math.Sin(fi*tr.ScatterWaveFreq)*tr.ScatterWave + fi*tr.ScatterStep
}

func (o *Orchestrator) startFromGallery() {
	tr := o.cfg.Transitions
	last := len(o.items) - 1
	tl := NewTimeline().
		ToVec3(&o.camera.Target, o.layout.Linear(last).Add(o.cfg.Camera.ViewOffset), 0, tr.ExitDuration, ease.InOutQuad)
	for i := range o.itemStates {
		st := &o.itemStates[i]
		tl.ToVec3(&st.Position, o.layout.Linear(i), 0, tr.ExitDuration, ease.InOutQuad).
			To(&st.Scale, 1, 0, tr.ExitDuration, ease.InOutQuad)
	}
	o.target = last
	o.begin(StateTransitioningFromGallery, tl, tr.HoverDuration)
}

func (o *Orchestrator) startFocus(i int) {
	tr := o.cfg.Transitions
	home := o.layout.Scattered(i)
	st := &o.itemStates[i]
	tl := NewTimeline().
		ToVec3(&o.camera.Target, home.Add(tr.FocusOffset), 0, tr.FocusDuration, ease.InOutQuad).
		ToVec3(&st.Position, home, 0, tr.FocusDuration, ease.InOutQuad).
		To(&st.Scale, tr.FocusScale, 0, tr.FocusDuration, ease.OutBack)
	o.selected = i
	o.target = i
	o.begin(StateTransitioningToFocus, tl, tr.FocusDuration)
}

func (o *Orchestrator) startReturn() {
	tr := o.cfg.Transitions
	tl := NewTimeline()
	for i, p := range o.layout.ScatteredAll(len(o.items)) {
		st := &o.itemStates[i]
		at := float64(i) * tr.ReturnStagger
		tl.ToVec3(&st.Position, p.Pos, at, tr.ReturnDuration, ease.InOutCubic).
			To(&st.Scale, 1, at, tr.ReturnDuration, ease.InOutCubic)
	}
	tl.ToVec3(&o.camera.Target, tr.ReturnView, tr.ReturnViewDelay, tr.ReturnViewIn, ease.InOutQuad)
	o.selected = NoItem
	o.target = NoItem
	o.begin(StateReturningFromFocus, tl, tr.HoverDuration)
}

// complete performs the state change of the transition that just finished.
func (o *Orchestrator) complete() {
	from := o.state
	o.active = nil
	switch from {
	case StateTransitioningLinear, StateTransitioningFromGallery:
		o.setState(StateLinearScroll)
		o.setCurrent(o.target)
	case StateTransitioningToGallery:
		for i := range o.itemStates {
			o.itemStates[i].RotationY = 0
		}
		o.setState(StateGallery)
	case StateTransitioningToFocus:
		o.setState(StateFocused)
		o.setCurrent(o.selected)
		o.dwell = o.cfg.Navigation.FocusDwellPrime
	case StateReturningFromFocus:
		o.setState(StateGallery)
	}
	o.target = NoItem
	o.log.Debug("transition complete",
		zap.Stringer("from", from),
		zap.Stringer("state", o.state),
		zap.Int("current", o.current))
}

// setState switches state. Every state change resets the dwell timer and
// hides the detail overlay.
func (o *Orchestrator) setState(s State) {
	if s.Mode() != o.state.Mode() {
		o.log.Debug("mode changed", zap.Stringer("mode", s.Mode()))
	}
	o.state = s
	o.dwell = 0
	o.suppressed = false
	o.setDetail(false)
}

func (o *Orchestrator) setCurrent(i int) {
	if i == o.current {
		return
	}
	o.current = i
	if o.onIndex != nil {
		o.onIndex(i)
	}
}

func (o *Orchestrator) setDetail(shown bool) {
	if o.detail == shown {
		return
	}
	o.detail = shown
	if o.onDetail != nil {
		o.onDetail(shown)
	}
}

// Update advances the session by dt seconds: the active transition and its
// completion, hover animations, the dwell timer, the camera spring and
// every panel. Spring physics use dt clamped to MaxFrameDelta.
func (o *Orchestrator) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	phys := math.Min(dt, o.cfg.Navigation.MaxFrameDelta)
	o.clock.Advance(dt)
	o.stats.ticks++

	if o.active != nil && o.active.Update(dt) {
		o.complete()
	}
	for i, tl := range o.hoverTL {
		if tl != nil && tl.Update(dt) {
			o.hoverTL[i] = nil
		}
	}

	if o.state == StateLinearScroll || o.state == StateFocused {
		o.dwell += dt
		if !o.detail && !o.suppressed && o.dwell >= o.cfg.Navigation.DwellThreshold-dwellEpsilon {
			o.setDetail(true)
		}
	}

	o.camera.LookAt = o.lookTarget()
	o.camera.update(phys)
	o.refreshFrames(true)
}

// lookTarget returns where the camera should look this tick. Transitions
// hold the current look point, except forward linear ones which animate it.
func (o *Orchestrator) lookTarget() Vec3 {
	c := o.cfg.Camera
	ox := o.px * c.Parallax
	oy := -o.py * c.Parallax
	switch o.state {
	case StateTransitioningLinear:
		if o.target > o.current {
			return o.look
		}
		return o.camera.LookAt
	case StateLinearScroll:
		p := o.itemStates[o.current].Position
		return Vec3{p.X + ox, p.Y + oy, p.Z}
	case StateGallery:
		g := c.GalleryLook
		return Vec3{g.X + ox*c.GalleryBoost, g.Y + oy*c.GalleryBoost, g.Z}
	case StateFocused:
		p := o.itemStates[o.selected].Position
		return Vec3{p.X + ox*c.FocusDamp, p.Y + oy*c.FocusDamp, p.Z}
	}
	return o.camera.LookAt
}

// nearCamera is the central animation LOD test of item i.
func (o *Orchestrator) nearCamera(i int) bool {
	if o.state.Mode() == ModeGallery || i == o.target || i == o.selected {
		return true
	}
	return NearCamera(o.camera.Position(), o.layout.Linear(i), o.cfg.Navigation.NearCameraDistance)
}

// refreshFrames recomputes every ItemFrame. When step is true the panels
// advance by the current clock delta.
func (o *Orchestrator) refreshFrames(step bool) {
	dt := math.Min(o.clock.Delta(), o.cfg.Navigation.MaxFrameDelta)
	for i := range o.itemStates {
		st := o.itemStates[i]
		near := o.nearCamera(i)
		hovered := i == o.hovered && o.state == StateGallery
		var pf PanelFrame
		if step {
			pf = o.panels[i].Update(PanelInputs{
				Time:       o.clock.Elapsed(),
				Delta:      dt,
				Stretched:  o.Stretched(i),
				NearCamera: near,
				Hover:      hovered,
			})
		} else {
			pf = o.panels[i].Frame()
		}
		pos := st.Position
		pos.Z += st.HoverLift
		o.frames[i] = ItemFrame{
			Index:      i,
			Position:   pos,
			Scale:      st.Scale * st.HoverScale,
			RotationY:  st.RotationY,
			NearCamera: near,
			Selected:   i == o.selected,
			Hovered:    hovered,
			Panel:      pf,
		}
	}
}
