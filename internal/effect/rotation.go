package effect

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// InfiniteRotation spins the target about a fixed axis, accelerating up to
// a cap. Stop restores the scale; the final orientation is kept.
type InfiniteRotation struct {
	p         RotationParams
	intensity float64
	env       Env

	active    bool
	clock     clock
	axis      r3.Vec
	speed     float64
	baseScale r3.Vec
}

// NewInfiniteRotation creates an InfiniteRotation effect.
func NewInfiniteRotation(p RotationParams, intensity float64, env Env) *InfiniteRotation {
	return &InfiniteRotation{p: p, intensity: intensity, env: env.withRand()}
}

func (r *InfiniteRotation) Kind() Kind   { return InfiniteRotationKind }
func (r *InfiniteRotation) Active() bool { return r.active }

// Axis returns the rotation axis chosen by Execute.
func (r *InfiniteRotation) Axis() r3.Vec { return r.axis }

// Speed returns the current angular speed in radians per second.
func (r *InfiniteRotation) Speed() float64 { return r.speed }

func (r *InfiniteRotation) chooseAxis(dir r3.Vec) r3.Vec {
	if r3.Norm(r.p.Axis) > 0 {
		return r3.Unit(r.p.Axis)
	}
	if r.p.RandomAxis {
		rng := r.env.Rand
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		return vecmath.SafeUnit(v, vecmath.Up)
	}
	axis := r3.Cross(dir, vecmath.Up)
	if r3.Norm(axis) < 1e-3 {
		return vecmath.Up
	}
	return r3.Unit(axis)
}

// Execute picks the axis and captures the scale.
func (r *InfiniteRotation) Execute(target *scene.Node, ev gesture.Event) {
	if r.active || !target.Alive() {
		return
	}
	r.active = true
	r.clock.reset(ev.Time)
	r.axis = r.chooseAxis(ev.Direction)
	r.speed = r.p.StartSpeed * r.intensity
	_, r.baseScale = target.Baseline()
	target.PushLook(r, nil)
}

// Update advances the spin.
func (r *InfiniteRotation) Update(target *scene.Node, ev gesture.Event) {
	if !r.active || !target.Alive() {
		return
	}
	dt, elapsed := r.clock.tick(ev.Time)

	limit := r.p.MaxSpeed * r.intensity
	r.speed = math.Min(limit, r.speed+r.p.Acceleration*dt)
	if step := r.speed * dt; step != 0 {
		spin := vecmath.AxisAngle(r.axis, step)
		target.Rotation = vecmath.Normalize(quat.Mul(spin, target.Rotation))
	}

	if r.p.ScaleOscillation > 0 {
		k := 1 + r.p.ScaleOscillation*math.Sin(2*math.Pi*r.p.OscillationHz*elapsed)
		target.Scale = r3.Scale(k, r.baseScale)
	}
}

// Stop releases the scale back to the node.
func (r *InfiniteRotation) Stop(target *scene.Node) {
	if !r.active {
		return
	}
	r.active = false
	r.speed = 0
	if target.Alive() {
		target.PopLook(r)
	}
}
