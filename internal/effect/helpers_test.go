package effect

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

const frame = time.Second / 60

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testEnv(s *scene.Scene) Env {
	return Env{
		Scene:    s,
		Animator: NewAnimator(),
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
}

func testTarget(s *scene.Scene) *scene.Node {
	n := scene.NewNode("cube")
	n.Layer = scene.LayerInteractable
	n.Position = r3.Vec{Y: 1, Z: 0.5}
	n.Scale = r3.Vec{X: 0.3, Y: 0.2, Z: 0.1}
	n.Radius = 0.1
	n.Mesh = &scene.Mesh{Name: "cube"}
	n.Material = &scene.Material{
		Name:     "shared",
		Color:    scene.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
		Emission: scene.Color{R: 0.01, G: 0.02, B: 0.03, A: 1},
	}
	n.Body = scene.NewBody(1)
	s.Add(n)
	return n
}

func event(kind gesture.Kind, at time.Time, pos r3.Vec) gesture.Event {
	return gesture.Event{
		Kind:       kind,
		Phase:      gesture.Started,
		Position:   pos,
		Direction:  vecmath.Forward,
		Confidence: 1,
		Intensity:  1,
		Time:       at,
	}
}

// drive calls Update every frame for dur, starting one frame after from,
// and returns the time of the last update.
func drive(e Effect, target *scene.Node, from time.Time, dur time.Duration, ev func(time.Time) gesture.Event) time.Time {
	now := from
	end := from.Add(dur)
	for now.Before(end) {
		now = now.Add(frame)
		e.Update(target, ev(now))
	}
	return now
}
