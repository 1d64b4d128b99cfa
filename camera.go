package flaggallery

import "math"

// Camera is the CameraState of a gallery session: a position pulled toward
// Target by a spring every tick, plus the point it looks at. Only the
// orchestrator writes Target and LookAt; Position and Velocity are never set
// directly after construction.
type Camera struct {
	// Target is the goal position the spring pulls toward.
	Target Vec3
	// LookAt is the world point at the centre of the view.
	LookAt Vec3
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Near is the distance below which points are not projected.
	Near float64

	spring Spring3
}

// newCamera creates a camera at pos, at rest, aimed at look.
func newCamera(cfg CameraConfig, pos, target, look Vec3) *Camera {
	return &Camera{
		Target: target,
		LookAt: look,
		FOV:    cfg.FOV,
		Near:   cfg.Near,
		spring: Spring3{Value: pos, Stiffness: cfg.Stiffness, Damping: cfg.Damping},
	}
}

// Position returns the current camera position.
func (c *Camera) Position() Vec3 { return c.spring.Value }

// Velocity returns the smoothed spring velocity.
func (c *Camera) Velocity() Vec3 { return c.spring.Velocity }

// update advances the spring by dt seconds. Called from Orchestrator.Update
// with an already clamped delta.
func (c *Camera) update(dt float64) {
	c.spring.Step(c.Target, dt)
}

// Basis returns the camera's right, up and forward unit vectors. A camera
// looking straight along ±Y falls back to a Z-up frame.
func (c *Camera) Basis() (right, up, forward Vec3) {
	forward = c.LookAt.Sub(c.spring.Value).Normalize()
	if forward.Len() < 1e-9 {
		forward = Vec3{0, 0, -1}
	}
	worldUp := Vec3{0, 1, 0}
	if math.Abs(forward.Dot(worldUp)) > 0.999 {
		worldUp = Vec3{0, 0, 1}
	}
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

// Projector is a snapshot of the camera used to project many points in one
// frame without recomputing the basis.
type Projector struct {
	pos                Vec3
	right, up, forward Vec3
	focal              float64
	cx, cy             float64
	near               float64
}

// Projector returns a perspective projector for a viewport of w×h pixels.
func (c *Camera) Projector(w, h float64) Projector {
	r, u, f := c.Basis()
	half := c.FOV * math.Pi / 360
	return Projector{
		pos:     c.spring.Value,
		right:   r,
		up:      u,
		forward: f,
		focal:   (h / 2) / math.Tan(half),
		cx:      w / 2,
		cy:      h / 2,
		near:    c.Near,
	}
}

// Project maps a world point to screen coordinates. depth is the distance
// along the view axis; ok is false for points behind the near plane.
func (p Projector) Project(world Vec3) (sx, sy, depth float64, ok bool) {
	d := world.Sub(p.pos)
	depth = d.Dot(p.forward)
	if depth < p.near {
		return 0, 0, depth, false
	}
	sx = p.cx + d.Dot(p.right)/depth*p.focal
	sy = p.cy - d.Dot(p.up)/depth*p.focal
	return sx, sy, depth, true
}

// Distance returns the straight-line distance from the projector's eye.
func (p Projector) Distance(world Vec3) float64 {
	return world.Dist(p.pos)
}

// NearCamera reports whether an item anchored at item is close enough along
// the view axis of the path (|Δz| < dist) to keep animating.
func NearCamera(camera, item Vec3, dist float64) bool {
	return math.Abs(camera.Z-item.Z) < dist
}
