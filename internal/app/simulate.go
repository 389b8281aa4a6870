package app

import (
	"time"

	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/script"
)

// Summary reports what a simulation triggered.
type Summary struct {
	Script   string
	Frames   int
	Duration time.Duration
	// Gestures counts started gestures by kind.
	Gestures map[string]int
	// Effects counts started effects by kind.
	Effects map[string]int
	// Notices counts every notice by type.
	Notices map[interaction.NoticeType]int
}

// Simulate plays s against the scene on a virtual clock starting at start.
// Effects still running when the script ends are stopped.
func (a *App) Simulate(s *script.Script, start time.Time) Summary {
	sum := Summary{
		Script:   s.Name,
		Frames:   s.Frames(),
		Duration: s.Duration,
		Gestures: make(map[string]int),
		Effects:  make(map[string]int),
		Notices:  make(map[interaction.NoticeType]int),
	}

	a.Reset()

	recording := true
	a.Observe(func(n interaction.Notice) {
		if !recording {
			return
		}
		sum.Notices[n.Type]++
		switch n.Type {
		case interaction.GestureStarted:
			sum.Gestures[n.Gesture]++
		case interaction.EffectStarted:
			sum.Effects[n.Effect]++
		}
	})

	a.log.Info("simulation started", "script", s.Name, "frames", sum.Frames, "fps", s.FPS)

	p := script.NewPlayer(s)
	step := s.Step()
	for i := 0; i < sum.Frames; i++ {
		offset := time.Duration(i) * step
		p.Seek(offset)
		a.Step(p, start.Add(offset))
	}
	a.Reset()
	recording = false

	a.log.Info("simulation finished", "script", s.Name, "effects", len(sum.Effects))
	return sum
}
