package flaggallery

import "testing"

func TestScrollAccumulator(t *testing.T) {
	acc := scrollAccumulator{threshold: 100}
	steps := []struct {
		delta float64
		want  int
	}{
		{50, 0},
		{50, 0}, // exactly the threshold does not trigger
		{1, 1},
	}
	for i, s := range steps {
		if got := acc.add(s.delta); got != s.want {
			t.Errorf("step %d: add(%v) = %d, want %d", i, s.delta, got, s.want)
		}
	}
	acc.reset()
	if got := acc.add(-101); got != -1 {
		t.Errorf("add(-101) = %d, want -1", got)
	}
	// Without a reset the accumulator keeps its excess.
	if got := acc.add(-1); got != -1 {
		t.Errorf("add(-1) after an unreset trigger = %d, want -1", got)
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{NavigateForward(), "forward"},
		{NavigateBackward(), "backward"},
		{SelectItem(3), "select(3)"},
		{SelectItem(NoItem), "select(-1)"},
		{Dismiss(), "dismiss"},
		{Hover(2, true), "hover(2)"},
		{Hover(2, false), "unhover(2)"},
		{Command{Kind: 42}, "command(42)"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestStateModes(t *testing.T) {
	tests := []struct {
		s         State
		mode      Mode
		transient bool
	}{
		{StateLinearScroll, ModeLinear, false},
		{StateTransitioningLinear, ModeLinear, true},
		{StateTransitioningToGallery, ModeLinear, true},
		{StateGallery, ModeGallery, false},
		{StateTransitioningToFocus, ModeGallery, true},
		{StateFocused, ModeGallery, false},
		{StateReturningFromFocus, ModeGallery, true},
		{StateTransitioningFromGallery, ModeGallery, true},
	}
	for _, tt := range tests {
		if got := tt.s.Mode(); got != tt.mode {
			t.Errorf("%s.Mode() = %s, want %s", tt.s, got, tt.mode)
		}
		if got := tt.s.Transient(); got != tt.transient {
			t.Errorf("%s.Transient() = %t, want %t", tt.s, got, tt.transient)
		}
	}
	if got := State(99).String(); got != "state(99)" {
		t.Errorf("State(99).String() = %q", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ffffff", Color{1, 1, 1, 1}, false},
		{"#000", Color{0, 0, 0, 1}, false},
		{"00ff0080", Color{0, 1, 0, 128.0 / 255}, false},
		{"#12", Color{}, true},
		{"#zzzzzz", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %t", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestColorRGBAPremultiplied(t *testing.T) {
	c := Color{1, 0.5, 0, 0.5}.RGBA()
	if c.R != 128 || c.G != 64 || c.B != 0 || c.A != 128 {
		t.Errorf("RGBA = %+v, want {128 64 0 128}", c)
	}
}
