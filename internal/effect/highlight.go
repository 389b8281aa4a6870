package effect

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// Highlight tints and enlarges the target while the gesture is held. The
// target's material is cloned so shared materials are never mutated.
type Highlight struct {
	p         HighlightParams
	intensity float64
	env       Env

	active bool
	clock  clock

	working      *scene.Material
	baseColor    scene.Color
	baseEmission scene.Color
	baseScale    r3.Vec
	outline      *scene.Node
	level        float64
}

// NewHighlight creates a Highlight effect.
func NewHighlight(p HighlightParams, intensity float64, env Env) *Highlight {
	return &Highlight{p: p, intensity: intensity, env: env}
}

func (h *Highlight) Kind() Kind   { return HighlightKind }
func (h *Highlight) Active() bool { return h.active }

// Level returns the blend factor applied on the last Update.
func (h *Highlight) Level() float64 { return h.level }

// Outline returns the outline proxy, if one was spawned.
func (h *Highlight) Outline() *scene.Node { return h.outline }

// Execute swaps in a cloned material and spawns the outline proxy.
func (h *Highlight) Execute(target *scene.Node, ev gesture.Event) {
	if h.active || !target.Alive() {
		return
	}
	h.active = true
	h.clock.reset(ev.Time)
	h.level = 0

	base, scale := target.Baseline()
	h.baseScale = scale
	if base != nil {
		h.working = base.Clone()
	} else {
		h.working = &scene.Material{Name: "highlight", Color: scene.White}
	}
	h.baseColor = h.working.Color
	h.baseEmission = h.working.Emission
	target.PushLook(h, h.working)

	if h.p.Outline && h.env.Scene != nil {
		o := h.env.Scene.Spawn(target.Name+".outline", target)
		o.Layer = scene.LayerEffects
		o.Mesh = target.Mesh
		o.Radius = target.Radius
		o.Scale = vecmath.Uniform(h.p.OutlineScale)
		c := h.p.OutlineColor
		c.A = 0
		o.Material = &scene.Material{Name: "outline", Color: c, Flat: true}
		h.outline = o
	}
}

// Update blends toward the highlight colour by the pulse and falloff.
func (h *Highlight) Update(target *scene.Node, ev gesture.Event) {
	if !h.active || !target.Alive() {
		return
	}
	dt, elapsed := h.clock.tick(ev.Time)

	pulse := h.p.PulseMin + (1-h.p.PulseMin)*0.5*(1+math.Sin(2*math.Pi*h.p.PulseHz*elapsed))
	falloff := 1.0
	if h.p.Falloff && h.p.FalloffDistance > 0 {
		d := vecmath.Distance(ev.Position, target.WorldPosition())
		falloff = vecmath.Clamp01(1 - d/h.p.FalloffDistance)
	}
	h.level = vecmath.Clamp01(pulse * falloff * h.intensity)

	h.working.Color = scene.LerpColor(h.baseColor, h.p.Color, h.level)
	h.working.Emission = scene.LerpColor(h.baseEmission, h.p.Emission, h.level)

	goal := r3.Scale(1+(h.p.Scale-1)*h.level, h.baseScale)
	target.Scale = vecmath.Lerp(target.Scale, goal, vecmath.Smoothing(h.p.ScaleRate, dt))

	if h.outline.Alive() {
		h.outline.Material.Color.A = h.p.OutlineColor.A * h.level
	}
}

// Stop drops the highlight material and scale and removes the outline.
func (h *Highlight) Stop(target *scene.Node) {
	if !h.active {
		return
	}
	h.active = false
	h.level = 0
	if target.Alive() {
		target.PopLook(h)
	}
	if h.outline.Alive() && h.env.Scene != nil {
		h.env.Scene.Destroy(h.outline)
	}
	h.outline = nil
	h.working = nil
}
