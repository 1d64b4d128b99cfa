package flaggallery

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const tick = 1.0 / 60

var approx = cmpopts.EquateApprox(0, 1e-9)

func newTestOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	if opts.Items == nil {
		opts.Items = DefaultItems()
	}
	o, err := NewOrchestrator(opts)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

// settle steps o until the running transition completes.
func settle(t *testing.T, o *Orchestrator) {
	t.Helper()
	for i := 0; o.State().Transitioning; i++ {
		if i > 10000 {
			t.Fatalf("transition %s never completed", o.State().State)
		}
		o.Update(tick)
	}
}

func enterGallery(t *testing.T, o *Orchestrator) {
	t.Helper()
	for o.State().State != StateGallery {
		if !o.Execute(NavigateForward()) {
			t.Fatalf("NavigateForward refused in %s", o.State().State)
		}
		settle(t, o)
	}
}

func TestNewOrchestratorErrors(t *testing.T) {
	if _, err := NewOrchestrator(Options{}); !errors.Is(err, ErrNoItems) {
		t.Errorf("empty items: err = %v, want ErrNoItems", err)
	}
	cfg := DefaultConfig()
	cfg.Camera.Damping = 2
	_, err := NewOrchestrator(Options{Items: DefaultItems(), Config: &cfg})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad config: err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewOrchestratorInitialState(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	got := o.State()
	want := NavigationState{
		State:         StateLinearScroll,
		Mode:          ModeLinear,
		CurrentIndex:  0,
		SelectedIndex: NoItem,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("initial state (-want +got):\n%s", diff)
	}
	if o.Session() == "" {
		t.Error("Session() is empty")
	}
	for i := 0; i < o.Len(); i++ {
		if diff := cmp.Diff(o.Layout().Linear(i), o.ItemState(i).Position, approx); diff != "" {
			t.Errorf("item %d not on the linear path (-want +got):\n%s", i, diff)
		}
	}
}

func TestStartIndexClamped(t *testing.T) {
	o := newTestOrchestrator(t, Options{StartIndex: 99})
	if got, want := o.State().CurrentIndex, o.Len()-1; got != want {
		t.Errorf("CurrentIndex = %d, want %d", got, want)
	}
}

func TestSingleFlight(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if !o.Execute(NavigateForward()) {
		t.Fatal("first NavigateForward refused")
	}
	if got := o.State().State; got != StateTransitioningLinear {
		t.Fatalf("state = %s, want TransitioningLinear", got)
	}
	for _, cmd := range []Command{NavigateForward(), NavigateBackward(), Dismiss(), SelectItem(0), Hover(1, true)} {
		if o.Execute(cmd) {
			t.Errorf("%s accepted during a transition", cmd)
		}
	}
	if o.Scroll(1000) {
		t.Error("Scroll accepted during a transition")
	}
	if got := o.Stats().Commands; got != 1 {
		t.Errorf("Commands = %d, want 1", got)
	}
	settle(t, o)
	if got := o.State().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (dropped commands must not queue)", got)
	}
}

func TestLinearTransitionEndsAtTarget(t *testing.T) {
	var indices []int
	o := newTestOrchestrator(t, Options{OnCurrentIndex: func(i int) { indices = append(indices, i) }})
	o.Execute(NavigateForward())
	settle(t, o)

	want := o.Layout().Linear(1).Add(o.Config().Camera.ViewOffset)
	if diff := cmp.Diff(want, o.Camera().Target, approx); diff != "" {
		t.Errorf("camera target (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, indices); diff != "" {
		t.Errorf("OnCurrentIndex calls (-want +got):\n%s", diff)
	}

	o.Execute(NavigateBackward())
	settle(t, o)
	if got := o.State().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex after backward = %d, want 0", got)
	}
}

func TestBackwardAtFirstItemIgnored(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if o.Execute(NavigateBackward()) {
		t.Error("NavigateBackward accepted at index 0")
	}
	if got := o.State().State; got != StateLinearScroll {
		t.Errorf("state = %s, want LinearScroll", got)
	}
}

func TestScrollAccumulates(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if o.Scroll(60) {
		t.Fatal("Scroll(60) started a transition below the threshold")
	}
	if !o.Scroll(60) {
		t.Fatal("Scroll(60)+Scroll(60) did not start a transition")
	}
	settle(t, o)
	// The accumulator was reset: a single small delta does nothing.
	if o.Scroll(60) {
		t.Error("accumulator not reset after the transition started")
	}
}

func TestNextPrev(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if !o.Next() {
		t.Fatal("Next refused")
	}
	settle(t, o)
	if !o.Prev() {
		t.Fatal("Prev refused")
	}
	settle(t, o)
	if got := o.State().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex = %d, want 0", got)
	}
}

func TestRefusedStepsDoNotAccumulate(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	for i := 0; i < 3; i++ {
		if o.Next() {
			t.Fatalf("Next %d accepted in the gallery", i)
		}
	}
	if !o.Prev() {
		t.Fatal("a single Prev after refused Next steps did not leave the gallery")
	}
	if got := o.State().State; got != StateTransitioningFromGallery {
		t.Errorf("state = %s, want TransitioningFromGallery", got)
	}
}

func TestRefusedBackwardAtFirstItemDoesNotAccumulate(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	for i := 0; i < 3; i++ {
		if o.Prev() {
			t.Fatalf("Prev %d accepted at index 0", i)
		}
	}
	if !o.Next() {
		t.Fatal("a single Next after refused Prev steps did not start a transition")
	}
	if got := o.State().State; got != StateTransitioningLinear {
		t.Errorf("state = %s, want TransitioningLinear", got)
	}
}

func TestDwellThreshold(t *testing.T) {
	shown := 0
	o := newTestOrchestrator(t, Options{OnDetailPanel: func(s bool) {
		if s {
			shown++
		}
	}})
	for i := 0; i < 79; i++ {
		o.Update(0.01)
	}
	if o.State().DetailShown {
		t.Fatalf("detail shown after %.2fs", o.State().DwellTime)
	}
	o.Update(0.01)
	if !o.State().DetailShown {
		t.Fatalf("detail hidden after %.2fs", o.State().DwellTime)
	}
	if !o.Stretched(0) || o.Stretched(1) {
		t.Error("only the current item should stretch")
	}
	o.Update(0.01)
	if shown != 1 {
		t.Errorf("OnDetailPanel(true) called %d times, want 1", shown)
	}
}

func TestDwellResetsOnNavigation(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	for i := 0; i < 60; i++ {
		o.Update(tick)
	}
	if !o.State().DetailShown {
		t.Fatal("detail not shown after 1s")
	}
	o.Execute(NavigateForward())
	ns := o.State()
	if ns.DetailShown || ns.DwellTime != 0 {
		t.Errorf("after navigation: detail = %t, dwell = %v, want false, 0", ns.DetailShown, ns.DwellTime)
	}
}

func TestDismissHidesDetail(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	for i := 0; i < 60; i++ {
		o.Update(tick)
	}
	if !o.Execute(Dismiss()) {
		t.Fatal("Dismiss with detail shown refused")
	}
	for i := 0; i < 120; i++ {
		o.Update(tick)
	}
	if o.State().DetailShown {
		t.Error("detail reopened after Dismiss without navigation")
	}
	if o.Execute(Dismiss()) {
		t.Error("Dismiss in LinearScroll without detail accepted")
	}
}

func TestNegativeDeltaIgnored(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	o.Update(-5)
	clock := o.Clock()
	if got := clock.Elapsed(); got != 0 {
		t.Errorf("Elapsed = %v, want 0", got)
	}
	if got := o.State().DwellTime; got != 0 {
		t.Errorf("DwellTime = %v, want 0", got)
	}
}

func TestEnterAndLeaveGallery(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	n := o.Len()
	for k := 0; k < n-1; k++ {
		if !o.Execute(NavigateForward()) {
			t.Fatalf("forward %d refused", k)
		}
		settle(t, o)
		if got := o.State().CurrentIndex; got != k+1 {
			t.Fatalf("CurrentIndex = %d, want %d", got, k+1)
		}
	}

	if !o.Execute(NavigateForward()) {
		t.Fatal("forward past the last item refused")
	}
	if got := o.State().State; got != StateTransitioningToGallery {
		t.Fatalf("state = %s, want TransitioningToGallery", got)
	}
	settle(t, o)
	ns := o.State()
	if ns.State != StateGallery || ns.Mode != ModeGallery {
		t.Fatalf("state = %s/%s, want Gallery/gallery", ns.State, ns.Mode)
	}
	for i := 0; i < n; i++ {
		st := o.ItemState(i)
		if diff := cmp.Diff(o.Layout().Scattered(i), st.Position, approx); diff != "" {
			t.Errorf("item %d gallery position (-want +got):\n%s", i, diff)
		}
		if st.RotationY != 0 {
			t.Errorf("item %d RotationY = %v, want 0", i, st.RotationY)
		}
	}
	if o.Execute(NavigateForward()) {
		t.Error("NavigateForward accepted in the gallery")
	}

	if !o.Execute(NavigateBackward()) {
		t.Fatal("NavigateBackward refused in the gallery")
	}
	if got := o.State().State; got != StateTransitioningFromGallery {
		t.Fatalf("state = %s, want TransitioningFromGallery", got)
	}
	settle(t, o)
	ns = o.State()
	if ns.State != StateLinearScroll || ns.CurrentIndex != n-1 {
		t.Fatalf("state = %s at %d, want LinearScroll at %d", ns.State, ns.CurrentIndex, n-1)
	}
	for i := 0; i < n; i++ {
		if diff := cmp.Diff(o.Layout().Linear(i), o.ItemState(i).Position, approx); diff != "" {
			t.Errorf("item %d linear position (-want +got):\n%s", i, diff)
		}
	}
}

func TestGalleryAlwaysAnimates(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	o.Update(tick)
	for _, f := range o.Frames() {
		if !f.NearCamera {
			t.Errorf("item %d frozen in the gallery", f.Index)
		}
	}
}

func TestFocusAndReturn(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	focus := o.Config().Transitions.FocusScale

	if !o.Execute(SelectItem(3)) {
		t.Fatal("SelectItem(3) refused in the gallery")
	}
	if got := o.State().State; got != StateTransitioningToFocus {
		t.Fatalf("state = %s, want TransitioningToFocus", got)
	}
	settle(t, o)
	ns := o.State()
	if ns.State != StateFocused || ns.SelectedIndex != 3 || ns.CurrentIndex != 3 {
		t.Fatalf("got %s selected %d current %d, want Focused 3 3", ns.State, ns.SelectedIndex, ns.CurrentIndex)
	}
	if !ns.DetailShown {
		t.Error("detail not shown on focus completion")
	}
	if got := o.ItemState(3).Scale; got != focus {
		t.Errorf("focused scale = %v, want %v", got, focus)
	}
	// Focused items stay rendered.
	if got := len(o.Frames()); got != o.Len() {
		t.Errorf("len(Frames) = %d, want %d", got, o.Len())
	}
	if o.Scroll(1000) {
		t.Error("Scroll accepted while focused")
	}

	// First Escape closes the overlay only.
	if !o.Execute(Dismiss()) {
		t.Fatal("first Dismiss refused")
	}
	if ns := o.State(); ns.State != StateFocused || ns.DetailShown {
		t.Fatalf("after first Dismiss: %s detail %t, want Focused false", ns.State, ns.DetailShown)
	}
	// Second Escape returns to the gallery.
	if !o.Execute(Dismiss()) {
		t.Fatal("second Dismiss refused")
	}
	if got := o.State().State; got != StateReturningFromFocus {
		t.Fatalf("state = %s, want ReturningFromFocus", got)
	}
	settle(t, o)
	ns = o.State()
	if ns.State != StateGallery || ns.SelectedIndex != NoItem {
		t.Fatalf("got %s selected %d, want Gallery %d", ns.State, ns.SelectedIndex, NoItem)
	}
	st := o.ItemState(3)
	if st.Scale != 1 {
		t.Errorf("scale after return = %v, want 1", st.Scale)
	}
	if diff := cmp.Diff(o.Layout().Scattered(3), st.Position, approx); diff != "" {
		t.Errorf("position after return (-want +got):\n%s", diff)
	}
}

func TestBackgroundClickWhileFocused(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	o.Execute(SelectItem(2))
	settle(t, o)
	if !o.Execute(SelectItem(NoItem)) {
		t.Fatal("background click refused while focused")
	}
	if got := o.State().State; got != StateReturningFromFocus {
		t.Errorf("state = %s, want ReturningFromFocus", got)
	}
}

func TestSelectInGallery(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	tests := []struct {
		name string
		cmd  Command
	}{
		{"background", SelectItem(NoItem)},
		{"negative", SelectItem(-7)},
		{"out of range", SelectItem(o.Len())},
	}
	for _, tt := range tests {
		if o.Execute(tt.cmd) {
			t.Errorf("%s: %s accepted", tt.name, tt.cmd)
		}
	}
	if got := o.State().State; got != StateGallery {
		t.Errorf("state = %s, want Gallery", got)
	}
}

func TestHover(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if o.Execute(Hover(0, true)) {
		t.Error("hover accepted in linear mode")
	}
	enterGallery(t, o)

	if !o.Execute(Hover(4, true)) {
		t.Fatal("hover refused in the gallery")
	}
	for i := 0; i < 60; i++ {
		o.Update(tick)
	}
	tr := o.Config().Transitions
	st := o.ItemState(4)
	if st.HoverScale != tr.HoverScale || st.HoverLift != tr.HoverLift {
		t.Errorf("hover = %v/%v, want %v/%v", st.HoverScale, st.HoverLift, tr.HoverScale, tr.HoverLift)
	}
	f := o.Frames()[4]
	if !f.Hovered {
		t.Error("frame not marked hovered")
	}
	if got, want := f.Position.Z, st.Position.Z+tr.HoverLift; got != want {
		t.Errorf("frame Z = %v, want %v", got, want)
	}

	// Starting a transition settles the hover back to rest.
	o.Execute(SelectItem(4))
	settle(t, o)
	st = o.ItemState(4)
	if st.HoverScale != 1 || st.HoverLift != 0 {
		t.Errorf("hover after focus = %v/%v, want 1/0", st.HoverScale, st.HoverLift)
	}
	if o.Execute(Hover(5, true)) {
		t.Error("hover accepted while focused")
	}
}

func TestUnhover(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	enterGallery(t, o)
	o.Execute(Hover(1, true))
	o.Update(0.1)
	o.Execute(Hover(1, false))
	for i := 0; i < 60; i++ {
		o.Update(tick)
	}
	st := o.ItemState(1)
	if st.HoverScale != 1 || st.HoverLift != 0 {
		t.Errorf("hover = %v/%v, want 1/0", st.HoverScale, st.HoverLift)
	}
	if o.Frames()[1].Hovered {
		t.Error("frame still marked hovered")
	}
}

func TestActivateLink(t *testing.T) {
	var opened []string
	opener := LinkOpenerFunc(func(url string) error {
		opened = append(opened, url)
		return nil
	})
	o := newTestOrchestrator(t, Options{Opener: opener})
	if o.Execute(SelectItem(1)) {
		t.Error("selecting a non-current item activated it")
	}
	if !o.Execute(SelectItem(0)) {
		t.Fatal("selecting the current item did not activate it")
	}
	want := []string{o.Items()[0].Link()}
	if diff := cmp.Diff(want, opened); diff != "" {
		t.Errorf("opened (-want +got):\n%s", diff)
	}
	if got := o.State().State; got != StateLinearScroll {
		t.Errorf("state = %s, want LinearScroll", got)
	}
}

func TestActivateLinkFailure(t *testing.T) {
	opener := LinkOpenerFunc(func(string) error { return errors.New("no browser") })
	o := newTestOrchestrator(t, Options{Opener: opener})
	if o.Execute(SelectItem(0)) {
		t.Error("failed activation reported as accepted")
	}
}

func TestActivateWithoutLink(t *testing.T) {
	items := []Item{{Title: "bare"}}
	called := false
	o := newTestOrchestrator(t, Options{Items: items, Opener: LinkOpenerFunc(func(string) error {
		called = true
		return nil
	})})
	if o.Execute(SelectItem(0)) || called {
		t.Error("item without links activated")
	}
}

func TestScatterDelay(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if got, want := o.ScatterDelay(0), 0.6; got != want {
		t.Errorf("ScatterDelay(0) = %v, want %v", got, want)
	}
	for i := 1; i < o.Len(); i++ {
		if o.ScatterDelay(i) <= 0 {
			t.Errorf("ScatterDelay(%d) = %v, want > 0", i, o.ScatterDelay(i))
		}
	}
}

func TestStatsCountTransitions(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	o.Execute(NavigateForward())
	settle(t, o)
	o.Execute(NavigateBackward())
	settle(t, o)
	s := o.Stats()
	if s.Transitions != 2 || s.Commands != 2 {
		t.Errorf("stats = %+v, want 2 transitions and 2 commands", s)
	}
	if s.Ticks == 0 {
		t.Error("Ticks = 0")
	}
}
