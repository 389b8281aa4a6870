package effect

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// FollowHand makes the target trail the hand. While active the target's
// body is kinematic without gravity; Stop hands it back to the simulation
// where it was released.
type FollowHand struct {
	p         FollowParams
	intensity float64
	env       Env

	active bool
	clock  clock

	originPos r3.Vec
	originRot quat.Number
	baseScale r3.Vec

	body         *scene.Body
	wasKinematic bool
	hadGravity   bool
	offset       r3.Vec
	rotOffset    quat.Number
}

// NewFollowHand creates a FollowHand effect.
func NewFollowHand(p FollowParams, intensity float64, env Env) *FollowHand {
	return &FollowHand{p: p, intensity: intensity, env: env}
}

func (f *FollowHand) Kind() Kind   { return FollowHandKind }
func (f *FollowHand) Active() bool { return f.active }

// Origin returns the target position and rotation captured by Execute.
func (f *FollowHand) Origin() (r3.Vec, quat.Number) {
	return f.originPos, f.originRot
}

// Execute captures the target pose and body flags.
func (f *FollowHand) Execute(target *scene.Node, ev gesture.Event) {
	if f.active || !target.Alive() {
		return
	}
	f.active = true
	f.clock.reset(ev.Time)

	f.originPos = target.Position
	f.originRot = target.Rotation
	_, f.baseScale = target.Baseline()
	target.PushLook(f, nil)

	f.body = target.Body
	if f.body != nil {
		f.wasKinematic = f.body.Kinematic
		f.hadGravity = f.body.UseGravity
		f.body.Kinematic = true
		f.body.UseGravity = false
		f.body.Velocity = r3.Vec{}
		f.body.AngularVelocity = r3.Vec{}
	}

	f.offset = r3.Sub(target.Position, ev.Position)
	if n := r3.Norm(f.offset); n > f.p.MaxOffset {
		if f.p.MaxOffset <= 0 {
			f.offset = r3.Vec{}
		} else {
			f.offset = r3.Scale(f.p.MaxOffset/n, f.offset)
		}
	}

	handRot := vecmath.LookRotation(ev.Direction, vecmath.Up)
	f.rotOffset = vecmath.Normalize(quat.Mul(quat.Conj(handRot), target.Rotation))

	f.env.Log.Debug("follow started", "node", target.String())
}

// Update eases the target toward the hand.
func (f *FollowHand) Update(target *scene.Node, ev gesture.Event) {
	if !f.active || !target.Alive() {
		return
	}
	dt, elapsed := f.clock.tick(ev.Time)

	goal := r3.Add(ev.Position, f.offset)
	target.Position = vecmath.Lerp(target.Position, goal, vecmath.Smoothing(f.p.PositionRate, dt))

	if f.p.FollowRotation && r3.Norm(ev.Direction) > 0 {
		handRot := vecmath.LookRotation(ev.Direction, vecmath.Up)
		goalRot := quat.Mul(handRot, f.rotOffset)
		target.Rotation = vecmath.Slerp(target.Rotation, goalRot, vecmath.Smoothing(f.p.RotationRate, dt))
	}

	pulse := 1 + f.p.PulseAmplitude*f.intensity*math.Sin(2*math.Pi*f.p.PulseHz*elapsed)
	target.Scale = r3.Scale(pulse, f.baseScale)
}

// Stop restores the body flags and releases the scale. The pose is left
// where the hand put it.
func (f *FollowHand) Stop(target *scene.Node) {
	if !f.active {
		return
	}
	f.active = false
	if f.body != nil {
		f.body.Kinematic = f.wasKinematic
		f.body.UseGravity = f.hadGravity
		f.body = nil
	}
	if target.Alive() {
		target.PopLook(f)
	}
	f.env.Log.Debug("follow stopped", "node", target.String())
}
