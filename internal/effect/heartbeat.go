package effect

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// Heartbeat pulses the target at a steady rate. Each beat scales and tints
// the target and schedules its own revert on the timeline, so no beat state
// survives Stop.
type Heartbeat struct {
	p         HeartbeatParams
	intensity float64
	env       Env

	active   bool
	timeline Timeline
	target   *scene.Node
	beats    int

	working      *scene.Material
	baseScale    r3.Vec
	baseColor    scene.Color
	baseEmission scene.Color
}

// NewHeartbeat creates a Heartbeat effect.
func NewHeartbeat(p HeartbeatParams, intensity float64, env Env) *Heartbeat {
	return &Heartbeat{p: p, intensity: intensity, env: env}
}

func (h *Heartbeat) Kind() Kind   { return HeartbeatKind }
func (h *Heartbeat) Active() bool { return h.active }

// Beats returns the number of beats fired, secondaries included.
func (h *Heartbeat) Beats() int { return h.beats }

// Pending returns the number of scheduled actions.
func (h *Heartbeat) Pending() int { return h.timeline.Len() }

func (h *Heartbeat) period() time.Duration {
	rate := h.p.Rate
	if rate <= 0 {
		rate = 60
	}
	return time.Duration(float64(time.Minute) / rate)
}

// Execute captures the target appearance and schedules the first beat at the
// event time.
func (h *Heartbeat) Execute(target *scene.Node, ev gesture.Event) {
	if h.active || !target.Alive() {
		return
	}
	h.active = true
	h.target = target
	h.beats = 0

	base, scale := target.Baseline()
	h.baseScale = scale
	if base != nil {
		h.working = base.Clone()
	} else {
		h.working = &scene.Material{Name: "heartbeat", Color: scene.White}
	}
	h.baseColor = h.working.Color
	h.baseEmission = h.working.Emission
	target.PushLook(h, h.working)

	h.timeline.Clear()
	h.timeline.At(ev.Time, h.primary)
}

// Update runs every beat and revert that is due.
func (h *Heartbeat) Update(target *scene.Node, ev gesture.Event) {
	if !h.active || !target.Alive() {
		return
	}
	h.timeline.Poll(ev.Time)
}

// Stop drops the beat material and scale immediately and clears pending
// beats.
func (h *Heartbeat) Stop(target *scene.Node) {
	if !h.active {
		return
	}
	h.active = false
	h.timeline.Clear()
	if target.Alive() {
		target.PopLook(h)
	}
	h.target = nil
	h.working = nil
}

func (h *Heartbeat) primary(now time.Time) {
	h.beat(now, 1)
	if h.p.DoubleBeat && h.p.SecondaryDelay > 0 {
		h.timeline.At(now.Add(h.p.SecondaryDelay), func(at time.Time) {
			h.beat(at, h.p.SecondaryStrength)
		})
	}
	h.timeline.At(now.Add(h.period()), h.primary)
}

func (h *Heartbeat) beat(now time.Time, strength float64) {
	if !h.target.Alive() {
		return
	}
	k := vecmath.Clamp01(strength * h.intensity)
	h.beats++

	h.target.Scale = r3.Scale(1+(h.p.PulseScale-1)*k, h.baseScale)
	h.working.Color = scene.LerpColor(h.baseColor, h.p.Color, k)
	h.working.Emission = scene.LerpColor(h.baseEmission, h.p.Emission, k)
	if b := h.target.Body; b != nil && h.p.Impulse > 0 {
		b.AddImpulse(r3.Scale(h.p.Impulse*k, vecmath.Up))
	}

	h.timeline.At(now.Add(h.p.Hold), h.revert)
}

func (h *Heartbeat) revert(time.Time) {
	if !h.target.Alive() {
		return
	}
	h.target.Scale = h.baseScale
	h.working.Color = h.baseColor
	h.working.Emission = h.baseEmission
}
