package effect

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// Transient is a fire-and-forget animation that outlives the effect that
// spawned it.
type Transient interface {
	// Advance moves the animation to now and reports whether it finished.
	Advance(now time.Time) bool
	// Cancel ends the animation immediately, releasing anything it spawned.
	Cancel()
}

// Animator advances transients once per tick.
type Animator struct {
	items []Transient
}

// NewAnimator creates an empty animator.
func NewAnimator() *Animator {
	return &Animator{}
}

// Add starts tracking t.
func (a *Animator) Add(t Transient) {
	if a == nil || t == nil {
		return
	}
	a.items = append(a.items, t)
}

// Advance steps every transient and drops the finished ones.
func (a *Animator) Advance(now time.Time) {
	if a == nil {
		return
	}
	live := a.items[:0]
	for _, t := range a.items {
		if !t.Advance(now) {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(a.items); i++ {
		a.items[i] = nil
	}
	a.items = live
}

// Clear cancels every transient.
func (a *Animator) Clear() {
	if a == nil {
		return
	}
	for _, t := range a.items {
		t.Cancel()
	}
	a.items = nil
}

// Len returns the number of running transients.
func (a *Animator) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Shockwave is an expanding, fading sphere proxy. It is destroyed when the
// expansion completes.
type Shockwave struct {
	node    *scene.Node
	spawner scene.Spawner
	scale   *gween.Tween
	alpha   *gween.Tween
	last    time.Time
	done    bool
}

// NewShockwave spawns the proxy at pos. It grows from zero to maxScale with
// an ease-out curve while its alpha falls to zero.
func NewShockwave(sp scene.Spawner, pos r3.Vec, color scene.Color, maxScale float64, d time.Duration, now time.Time) *Shockwave {
	n := sp.Spawn("shockwave", nil)
	n.Layer = scene.LayerEffects
	n.Position = pos
	n.Scale = r3.Vec{}
	n.Material = &scene.Material{Name: "shockwave", Color: color, Flat: true}

	secs := float32(d.Seconds())
	if secs <= 0 {
		secs = 0.001
	}
	return &Shockwave{
		node:    n,
		spawner: sp,
		scale:   gween.New(0, float32(maxScale), secs, ease.OutCubic),
		alpha:   gween.New(float32(color.A), 0, secs, ease.InQuad),
		last:    now,
	}
}

// Node returns the proxy node.
func (s *Shockwave) Node() *scene.Node {
	return s.node
}

// Advance implements Transient.
func (s *Shockwave) Advance(now time.Time) bool {
	if s.done {
		return true
	}
	if !s.node.Alive() {
		s.done = true
		return true
	}
	dt := float32(0)
	if now.After(s.last) {
		dt = float32(now.Sub(s.last).Seconds())
		s.last = now
	}
	scale, scaleDone := s.scale.Update(dt)
	alpha, alphaDone := s.alpha.Update(dt)
	s.node.Scale = vecmath.Uniform(float64(scale))
	s.node.Material.Color.A = float64(alpha)

	if scaleDone && alphaDone {
		s.Cancel()
		return true
	}
	return false
}

// Cancel implements Transient.
func (s *Shockwave) Cancel() {
	if s.done {
		return
	}
	s.done = true
	s.spawner.Destroy(s.node)
}
