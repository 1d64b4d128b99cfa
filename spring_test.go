package flaggallery

import (
	"math"
	"testing"
)

func TestSpringConverges(t *testing.T) {
	s := Spring{Stiffness: 12, Damping: 0.92}
	for i := 0; i < 600; i++ {
		s.Step(10, tick)
	}
	if math.Abs(s.Value-10) > 1e-3 {
		t.Errorf("Value = %v, want 10", s.Value)
	}
}

func TestSpring3StepsEachAxis(t *testing.T) {
	s := Spring3{Stiffness: 12, Damping: 0.92}
	target := Vec3{1, -2, 3}
	for i := 0; i < 600; i++ {
		s.Step(target, tick)
	}
	if d := s.Value.Dist(target); d > 1e-3 {
		t.Errorf("Value = %+v, want %+v", s.Value, target)
	}
}

func TestSpringFirstStep(t *testing.T) {
	s := Spring{Stiffness: 10, Damping: 0.5}
	s.Step(1, 0.1)
	// force = 10, v = (0 + 1) * 0.5, x = 0.05
	if math.Abs(s.Velocity-0.5) > 1e-12 || math.Abs(s.Value-0.05) > 1e-12 {
		t.Errorf("after one step: value %v velocity %v, want 0.05 0.5", s.Value, s.Velocity)
	}
}

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{0.25, 0.0625},
		{0.5, 0.5},
		{0.75, 0.9375},
		{1, 1},
	}
	for _, tt := range tests {
		if got := EaseInOutCubic(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseInOutCubic(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApproach(t *testing.T) {
	if got := Approach(0, 10, 0.5, 0.1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Approach = %v, want 0.5", got)
	}
	// The fraction is clamped to 1: no overshoot on long frames.
	if got := Approach(0, 10, 2, 5); got != 10 {
		t.Errorf("Approach with a long dt = %v, want 10", got)
	}
}

func TestClock(t *testing.T) {
	var c Clock
	c.Advance(0.5)
	c.Advance(-1)
	c.Advance(0.25)
	if c.Elapsed() != 0.75 || c.Delta() != 0.25 || c.Frames() != 3 {
		t.Errorf("clock = %v/%v/%d, want 0.75/0.25/3", c.Elapsed(), c.Delta(), c.Frames())
	}
}
