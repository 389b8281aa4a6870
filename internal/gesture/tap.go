package gesture

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

// TapDetector recognizes a fast-then-stop wrist motion. A speed spike arms
// the detector; dropping below StopSpeed within StopWindow of the last fast
// sample confirms the tap. The tap auto-releases after TapDuration and no new
// tap is recognized until Cooldown has elapsed since the last one.
type TapDetector struct {
	base
	cfg   TapConfig
	state [2]tapState
}

type tapState struct {
	prev     sample
	hasPrev  bool
	armed    bool
	lastFast time.Time
	peak     float64
	dir      r3.Vec

	tapping    bool
	tapStart   time.Time
	confidence float64
	intensity  float64
	cooldown   time.Time
}

// NewTap creates a tap detector.
func NewTap(cfg TapConfig) *TapDetector {
	return &TapDetector{base: newBase(Tap, cfg.Stability), cfg: cfg}
}

// Update advances the detector by one tick.
func (d *TapDetector) Update(src hand.Source, now time.Time) []Event {
	return d.update(src, now, d.read, d.clear)
}

// Reset drops all per-hand state.
func (d *TapDetector) Reset() {
	d.resetHands()
	d.state = [2]tapState{}
}

func (d *TapDetector) clear(side hand.Side) {
	// The cooldown survives tracking loss so a flickering hand cannot
	// re-trigger immediately.
	cooldown := d.state[side].cooldown
	d.state[side] = tapState{cooldown: cooldown}
}

func (d *TapDetector) read(src hand.Source, side hand.Side, now time.Time) reading {
	st := &d.state[side]
	pos := src.WristPose(side).Position

	speed := 0.0
	var motion r3.Vec
	if st.hasPrev {
		if dt := now.Sub(st.prev.at).Seconds(); dt > 0 {
			motion = r3.Sub(pos, st.prev.pos)
			speed = r3.Norm(motion) / dt
		}
	}
	st.prev = sample{pos: pos, at: now}
	st.hasPrev = true

	if st.tapping {
		if now.Sub(st.tapStart) < d.cfg.TapDuration {
			return reading{
				active:     true,
				confidence: st.confidence,
				intensity:  st.intensity,
				position:   pos,
				direction:  st.dir,
			}
		}
		st.tapping = false
	}

	if now.Before(st.cooldown) {
		st.armed = false
		st.peak = 0
		return reading{position: pos, direction: st.dir}
	}

	switch {
	case speed >= d.cfg.SpikeSpeed:
		st.armed = true
		st.lastFast = now
		if speed > st.peak {
			st.peak = speed
		}
		st.dir = vecmath.SafeUnit(motion, st.dir)
	case st.armed && now.Sub(st.lastFast) > d.cfg.StopWindow:
		st.armed = false
		st.peak = 0
	case st.armed && speed <= d.cfg.StopSpeed:
		st.armed = false
		st.tapping = true
		st.tapStart = now
		st.cooldown = now.Add(d.cfg.Cooldown)
		st.confidence = vecmath.Clamp01(st.peak / (2 * d.cfg.SpikeSpeed))
		st.intensity = vecmath.Clamp01(st.peak / d.cfg.MaxSpeed)
		st.peak = 0
		return reading{
			active:     true,
			confidence: st.confidence,
			intensity:  st.intensity,
			position:   pos,
			direction:  st.dir,
		}
	}
	return reading{position: pos, direction: st.dir}
}
