package flaggallery

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTimelineOffsetTrack(t *testing.T) {
	var v float64
	tl := NewTimeline().To(&v, 10, 0.5, 1, ease.Linear)
	if got := tl.Duration(); got != 1.5 {
		t.Errorf("Duration = %v, want 1.5", got)
	}
	if tl.Update(0.25) || v != 0 {
		t.Fatalf("before the offset: done %t, v = %v", tl.Done, v)
	}
	tl.Update(0.5)
	if math.Abs(v-2.5) > 1e-4 {
		t.Errorf("v = %v, want 2.5", v)
	}
	if !tl.Update(1) {
		t.Error("timeline not done past its duration")
	}
	if v != 10 {
		t.Errorf("final v = %v, want exactly 10", v)
	}
	if tl.Progress() != 1 {
		t.Errorf("Progress = %v, want 1", tl.Progress())
	}
}

func TestTimelineCapturesStartLate(t *testing.T) {
	var v float64
	tl := NewTimeline().To(&v, 10, 1, 1, ease.Linear)
	tl.Update(0.5)
	v = 6 // moved by an earlier stage before this track starts
	tl.Update(1)
	if math.Abs(v-8) > 1e-4 {
		t.Errorf("v = %v, want 8 (halfway from 6)", v)
	}
}

func TestTimelineLaterTrackWins(t *testing.T) {
	var v float64
	tl := NewTimeline().
		To(&v, 100, 0, 2, ease.Linear).
		To(&v, -1, 0, 0.5, ease.Linear)
	tl.Update(0.5)
	if v != -1 {
		t.Errorf("v = %v, want the second track's end value -1", v)
	}
}

func TestTimelineVec3(t *testing.T) {
	var p Vec3
	want := Vec3{1, 2, 3}
	tl := NewTimeline().ToVec3(&p, want, 0, 0.5, ease.InOutQuad)
	for !tl.Update(tick) {
	}
	if p != want {
		t.Errorf("p = %+v, want %+v", p, want)
	}
}

func TestTimelineKill(t *testing.T) {
	var v float64
	tl := NewTimeline().To(&v, 10, 0, 1, ease.Linear)
	tl.Update(0.5)
	mid := v
	tl.Kill()
	if !tl.Update(1) {
		t.Error("killed timeline not done")
	}
	if v != mid {
		t.Errorf("v = %v after Kill, want %v", v, mid)
	}
}

func TestTimelineZeroDuration(t *testing.T) {
	var v float64
	tl := NewTimeline().To(&v, 3, 0.2, 0, nil)
	tl.Update(0.1)
	if v != 0 {
		t.Errorf("v = %v before offset, want 0", v)
	}
	if !tl.Update(0.2) || v != 3 {
		t.Errorf("v = %v, done %t, want 3 true", v, tl.Done)
	}
}

func TestEmptyTimeline(t *testing.T) {
	tl := NewTimeline()
	if !tl.Update(0) {
		t.Error("empty timeline not done")
	}
	if tl.Progress() != 1 {
		t.Errorf("Progress = %v, want 1", tl.Progress())
	}
}
