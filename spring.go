package flaggallery

import "math"

// Spring advances a scalar toward a target with a proportional restoring
// force and a multiplicative per-step velocity damping:
//
//	force = (target - value) * stiffness
//	v'    = (v + force*dt) * damping
//	x'    = x + v'*dt
type Spring struct {
	Value     float64
	Velocity  float64
	Stiffness float64
	Damping   float64
}

// Step integrates one tick of dt seconds toward target and returns the new
// value.
func (s *Spring) Step(target, dt float64) float64 {
	s.Value, s.Velocity = springStep(s.Value, s.Velocity, target, s.Stiffness, s.Damping, dt)
	return s.Value
}

func springStep(value, velocity, target, stiffness, damping, dt float64) (float64, float64) {
	force := (target - value) * stiffness
	velocity = (velocity + force*dt) * damping
	return value + velocity*dt, velocity
}

// Spring3 applies the same integration to each axis of a Vec3 independently.
type Spring3 struct {
	Value     Vec3
	Velocity  Vec3
	Stiffness float64
	Damping   float64
}

// Step integrates one tick toward target and returns the new value.
func (s *Spring3) Step(target Vec3, dt float64) Vec3 {
	s.Value.X, s.Velocity.X = springStep(s.Value.X, s.Velocity.X, target.X, s.Stiffness, s.Damping, dt)
	s.Value.Y, s.Velocity.Y = springStep(s.Value.Y, s.Velocity.Y, target.Y, s.Stiffness, s.Damping, dt)
	s.Value.Z, s.Velocity.Z = springStep(s.Value.Z, s.Velocity.Z, target.Z, s.Stiffness, s.Damping, dt)
	return s.Value
}

// EaseInOutCubic maps t in [0, 1] onto a cubic ease-in/ease-out curve.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Approach moves value toward target by the fraction min(dt*rate, 1).
func Approach(value, target, rate, dt float64) float64 {
	return value + (target-value)*math.Min(dt*rate, 1)
}
