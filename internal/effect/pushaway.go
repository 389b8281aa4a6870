package effect

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// PushAway shoves the target away from the hand with an impulse and a
// smaller spin. In continuous mode it keeps pushing every tick with a force
// scaled by the step length.
type PushAway struct {
	p         PushParams
	intensity float64
	env       Env

	active bool
	clock  clock
	body   *scene.Body
	err    error
	pushes int
}

// NewPushAway creates a PushAway effect.
func NewPushAway(p PushParams, intensity float64, env Env) *PushAway {
	return &PushAway{p: p, intensity: intensity, env: env}
}

func (p *PushAway) Kind() Kind   { return PushAwayKind }
func (p *PushAway) Active() bool { return p.active }

// Err returns ErrNoBody when the last Execute found nothing to push.
func (p *PushAway) Err() error { return p.err }

// Pushes returns how many impulses have been applied.
func (p *PushAway) Pushes() int { return p.pushes }

// Execute applies the initial impulse, creating a temporary body if allowed.
// The temporary body stays on the node after Stop.
func (p *PushAway) Execute(target *scene.Node, ev gesture.Event) {
	if p.active || !target.Alive() {
		return
	}
	p.active = true
	p.err = nil
	p.clock.reset(ev.Time)

	p.body = target.Body
	if p.body == nil {
		if !p.p.AutoCreateBody {
			p.err = ErrNoBody
			p.env.Log.Warn("push skipped", "node", target.String(), "error", ErrNoBody)
			return
		}
		p.body = scene.NewBody(p.p.TemporaryMass)
		p.body.Temporary = true
		target.Body = p.body
		p.env.Log.Debug("temporary body created", "node", target.String())
	}

	p.push(target, ev, 1)

	if p.p.Shockwave && p.env.Scene != nil && p.env.Animator != nil {
		p.env.Animator.Add(NewShockwave(p.env.Scene, ev.Position, p.p.ShockwaveColor,
			p.p.ShockwaveScale, p.p.ShockwaveDuration, ev.Time))
	}
}

// Update keeps pushing in continuous mode.
func (p *PushAway) Update(target *scene.Node, ev gesture.Event) {
	if !p.active || p.body == nil || !target.Alive() {
		return
	}
	dt, _ := p.clock.tick(ev.Time)
	if p.p.Continuous && dt > 0 {
		p.push(target, ev, dt)
	}
}

// Stop ends the effect. Velocity already imparted is left to the
// simulation.
func (p *PushAway) Stop(*scene.Node) {
	if !p.active {
		return
	}
	p.active = false
	p.body = nil
}

func (p *PushAway) push(target *scene.Node, ev gesture.Event, scale float64) {
	pos := target.WorldPosition()
	away := r3.Sub(pos, ev.Position)
	aim := vecmath.SafeUnit(ev.Direction, vecmath.SafeUnit(away, vecmath.Forward))
	away = vecmath.SafeUnit(away, aim)
	dir := vecmath.SafeUnit(vecmath.Lerp(away, aim, vecmath.Clamp01(p.p.AimBlend)), away)

	falloff := 1.0
	if p.p.MaxDistance > 0 {
		falloff = vecmath.Clamp01(1 - vecmath.Distance(pos, ev.Position)/p.p.MaxDistance)
	}
	strength := ev.Intensity
	if strength <= 0 {
		strength = ev.Confidence
	}

	mag := p.p.Force * falloff * strength * p.intensity * scale
	if mag <= 0 {
		return
	}
	p.body.AddImpulse(r3.Scale(mag, dir))
	torqueAxis := vecmath.SafeUnit(r3.Cross(dir, vecmath.Up), vecmath.Right)
	p.body.AddTorqueImpulse(r3.Scale(mag*p.p.TorqueFactor, torqueAxis))
	p.pushes++
}
