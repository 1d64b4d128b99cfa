package flaggallery

// Clock is the monotonic animation time source shared by the orchestrator
// and every panel so that wave and spring phases stay consistent across the
// scene. It only moves forward, by the deltas it is given.
type Clock struct {
	elapsed float64
	delta   float64
	frames  uint64
}

// Advance moves the clock forward by dt seconds. Negative deltas are treated
// as zero.
func (c *Clock) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	c.elapsed += dt
	c.delta = dt
	c.frames++
}

// Elapsed returns the total time advanced, in seconds.
func (c *Clock) Elapsed() float64 { return c.elapsed }

// Delta returns the most recent step.
func (c *Clock) Delta() float64 { return c.delta }

// Frames returns the number of Advance calls.
func (c *Clock) Frames() uint64 { return c.frames }
