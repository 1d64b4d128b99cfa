package flaggallery

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// track animates one float64 field. The start value is captured when the
// track becomes active, not when it is added, so staged tracks chain off
// whatever the previous stage left behind.
type track struct {
	field    *float64
	to       float64
	at       float64
	duration float64
	fn       ease.TweenFunc
	tween    *gween.Tween
	done     bool
}

// Timeline runs tracks against its own local time. Each track starts at an
// absolute offset from the beginning of the timeline; tracks added later win
// when two of them write the same field during the same tick.
//
// There is no global animation manager. The owner calls Update every tick and
// inspects Done.
type Timeline struct {
	tracks  []track
	elapsed float64
	end     float64
	Done    bool
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// To adds a track driving *field to the value to, starting at offset at and
// lasting duration seconds.
func (tl *Timeline) To(field *float64, to, at, duration float64, fn ease.TweenFunc) *Timeline {
	if fn == nil {
		fn = ease.Linear
	}
	tl.tracks = append(tl.tracks, track{field: field, to: to, at: at, duration: duration, fn: fn})
	if e := at + duration; e > tl.end {
		tl.end = e
	}
	return tl
}

// ToVec3 adds three tracks driving every component of *v to to.
func (tl *Timeline) ToVec3(v *Vec3, to Vec3, at, duration float64, fn ease.TweenFunc) *Timeline {
	tl.To(&v.X, to.X, at, duration, fn)
	tl.To(&v.Y, to.Y, at, duration, fn)
	tl.To(&v.Z, to.Z, at, duration, fn)
	return tl
}

// Duration returns the offset at which the last track finishes.
func (tl *Timeline) Duration() float64 { return tl.end }

// Elapsed returns the local time advanced so far.
func (tl *Timeline) Elapsed() float64 { return tl.elapsed }

// Progress returns elapsed/duration clamped to [0, 1]. An empty timeline
// reports 1.
func (tl *Timeline) Progress() float64 {
	if tl.end <= 0 {
		return 1
	}
	p := tl.elapsed / tl.end
	if p > 1 {
		return 1
	}
	return p
}

// Update advances the timeline by dt seconds and writes every active track.
// Finished tracks write their exact end value. Done is set once every track
// has finished.
func (tl *Timeline) Update(dt float64) bool {
	if tl.Done {
		return true
	}
	prev := tl.elapsed
	tl.elapsed += dt

	allDone := true
	for i := range tl.tracks {
		tr := &tl.tracks[i]
		if tr.done {
			continue
		}
		if tl.elapsed < tr.at {
			allDone = false
			continue
		}
		if tr.duration <= 0 {
			*tr.field = tr.to
			tr.done = true
			continue
		}
		step := dt
		if tr.tween == nil {
			tr.tween = gween.New(float32(*tr.field), float32(tr.to), float32(tr.duration), tr.fn)
			step = tl.elapsed - max(prev, tr.at)
		}
		val, finished := tr.tween.Update(float32(step))
		if finished || tl.elapsed >= tr.at+tr.duration {
			*tr.field = tr.to
			tr.done = true
			continue
		}
		*tr.field = float64(val)
		allDone = false
	}
	tl.Done = allDone
	return tl.Done
}

// Kill stops the timeline where it is. Fields keep their current values.
func (tl *Timeline) Kill() {
	tl.Done = true
}
