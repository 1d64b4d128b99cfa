package flaggallery

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScriptStep is a single action in a replay script.
type ScriptStep struct {
	Action string       `yaml:"action" json:"action"`
	Label  string       `yaml:"label,omitempty" json:"label,omitempty"`
	X      float64      `yaml:"x,omitempty" json:"x,omitempty"`
	Y      float64      `yaml:"y,omitempty" json:"y,omitempty"`
	Index  int          `yaml:"index,omitempty" json:"index,omitempty"`
	Delta  float64      `yaml:"delta,omitempty" json:"delta,omitempty"`
	Frames int          `yaml:"frames,omitempty" json:"frames,omitempty"`
	Expect *Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expectation is checked by an "expect" step. Nil fields are not checked.
type Expectation struct {
	State    string `yaml:"state,omitempty" json:"state,omitempty"`
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Current  *int   `yaml:"current,omitempty" json:"current,omitempty"`
	Selected *int   `yaml:"selected,omitempty" json:"selected,omitempty"`
	Detail   *bool  `yaml:"detail,omitempty" json:"detail,omitempty"`
}

type script struct {
	Steps []ScriptStep `yaml:"steps"`
}

// defaultIdleBudget bounds a "settle" step that names no frame count.
const defaultIdleBudget = 1200

var scriptActions = map[string]bool{
	"scroll": true, "next": true, "prev": true, "forward": true, "backward": true,
	"select": true, "background": true, "hover": true, "unhover": true,
	"escape": true, "click": true, "tap": true, "move": true,
	"wait": true, "settle": true, "screenshot": true, "expect": true,
}

// TestRunner sequences injected input, waits, expectations and screenshots
// across ticks for automated runs. Attach to a Game with SetTestRunner.
type TestRunner struct {
	steps     []ScriptStep
	cursor    int
	waitCount int
	idle      int
	settling  bool
	done      bool
	failures  []string
}

// LoadTestScript parses a YAML (or JSON) replay script and returns a
// TestRunner ready to be attached to a Game.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range s.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "expect" && st.Expect == nil {
			return nil, fmt.Errorf("parse test script: step %d: expect without expectation", i)
		}
	}
	return &TestRunner{steps: s.Steps}, nil
}

// SetTestRunner attaches a runner. Its step method is called from
// Game.Update before input processing each tick.
func (g *Game) SetTestRunner(r *TestRunner) {
	g.runner = r
}

// Done reports whether every step has executed.
func (r *TestRunner) Done() bool { return r.done }

// Failures returns the messages of every failed expectation.
func (r *TestRunner) Failures() []string { return r.failures }

// step advances the runner by one tick.
func (r *TestRunner) step(g *Game) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if g.inject.Len() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.settling {
		if g.orch.State().Transitioning && r.idle > 0 {
			r.idle--
			return
		}
		r.settling = false
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "scroll":
		g.InjectScroll(st.Delta)
	case "next":
		g.InjectScroll(g.orch.Config().Navigation.StepDelta)
	case "prev":
		g.InjectScroll(-g.orch.Config().Navigation.StepDelta)
	case "forward":
		g.InjectCommand(NavigateForward())
	case "backward":
		g.InjectCommand(NavigateBackward())
	case "select":
		g.InjectCommand(SelectItem(st.Index))
	case "background":
		g.InjectCommand(SelectItem(NoItem))
	case "hover":
		g.InjectCommand(Hover(st.Index, true))
	case "unhover":
		g.InjectCommand(Hover(st.Index, false))
	case "escape":
		g.InjectCommand(Dismiss())
	case "click":
		g.InjectClick(st.X, st.Y)
	case "tap":
		g.InjectTap(st.X, st.Y)
	case "move":
		g.InjectMove(st.X, st.Y)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	case "settle":
		r.settling = true
		r.idle = st.Frames
		if r.idle <= 0 {
			r.idle = defaultIdleBudget
		}
	case "screenshot":
		g.Screenshot(st.Label)
	case "expect":
		r.check(st, g.orch.State())
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !r.settling && g.inject.Len() == 0 {
		r.done = true
	}
}

func (r *TestRunner) check(st ScriptStep, ns NavigationState) {
	e := st.Expect
	var msgs []string
	if e.State != "" && !strings.EqualFold(e.State, ns.State.String()) {
		msgs = append(msgs, fmt.Sprintf("state = %s, want %s", ns.State, e.State))
	}
	if e.Mode != "" && !strings.EqualFold(e.Mode, ns.Mode.String()) {
		msgs = append(msgs, fmt.Sprintf("mode = %s, want %s", ns.Mode, e.Mode))
	}
	if e.Current != nil && *e.Current != ns.CurrentIndex {
		msgs = append(msgs, fmt.Sprintf("current = %d, want %d", ns.CurrentIndex, *e.Current))
	}
	if e.Selected != nil && *e.Selected != ns.SelectedIndex {
		msgs = append(msgs, fmt.Sprintf("selected = %d, want %d", ns.SelectedIndex, *e.Selected))
	}
	if e.Detail != nil && *e.Detail != ns.DetailShown {
		msgs = append(msgs, fmt.Sprintf("detail = %t, want %t", ns.DetailShown, *e.Detail))
	}
	if len(msgs) == 0 {
		return
	}
	label := st.Label
	if label == "" {
		label = fmt.Sprintf("step %d", r.cursor-1)
	}
	r.failures = append(r.failures, label+": "+strings.Join(msgs, ", "))
}
