package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

// WaveDetector recognizes oscillating wrist motion over a sliding time
// window. Horizontal motion is projected on its principal axis; vertical
// motion is only considered when the horizontal series does not qualify.
type WaveDetector struct {
	base
	cfg     WaveConfig
	windows [2]window

	xs, ys, zs []float64
	series     []float64
}

// NewWave creates a wave detector.
func NewWave(cfg WaveConfig) *WaveDetector {
	d := &WaveDetector{base: newBase(Wave, cfg.Stability), cfg: cfg}
	for i := range d.windows {
		d.windows[i].span = cfg.Window
	}
	return d
}

// Update advances the detector by one tick.
func (d *WaveDetector) Update(src hand.Source, now time.Time) []Event {
	return d.update(src, now, d.read, d.clear)
}

// Reset drops all per-hand state.
func (d *WaveDetector) Reset() {
	d.resetHands()
	for i := range d.windows {
		d.windows[i].clear()
	}
}

func (d *WaveDetector) clear(side hand.Side) {
	d.windows[side].clear()
}

// Samples returns the number of buffered samples for side.
func (d *WaveDetector) Samples(side hand.Side) int {
	return d.windows[side].len()
}

func (d *WaveDetector) read(src hand.Source, side hand.Side, now time.Time) reading {
	pos := src.WristPose(side).Position
	w := &d.windows[side]
	w.push(pos, now)

	r := reading{position: pos}
	n := w.len()
	if n >= 2 {
		r.direction = vecmath.SafeUnit(r3.Sub(w.samples[n-1].pos, w.samples[n-2].pos), r3.Vec{})
	}
	if n < d.cfg.MinSamples {
		return r
	}

	d.xs, d.ys, d.zs = d.xs[:0], d.ys[:0], d.zs[:0]
	for _, s := range w.samples {
		d.xs = append(d.xs, s.pos.X)
		d.ys = append(d.ys, s.pos.Y)
		d.zs = append(d.zs, s.pos.Z)
	}
	cx, cy, cz := stat.Mean(d.xs, nil), stat.Mean(d.ys, nil), stat.Mean(d.zs, nil)

	// Principal horizontal axis of the x/z scatter.
	vxx := stat.Variance(d.xs, nil)
	vzz := stat.Variance(d.zs, nil)
	cxz := stat.Covariance(d.xs, d.zs, nil)
	theta := 0.5 * math.Atan2(2*cxz, vxx-vzz)
	ax, az := math.Cos(theta), math.Sin(theta)

	floor := d.cfg.NoiseFloor * d.cfg.AmplitudeThreshold

	d.series = d.series[:0]
	for i := range d.xs {
		d.series = append(d.series, (d.xs[i]-cx)*ax+(d.zs[i]-cz)*az)
	}
	count, amp := extrema(d.series, floor)
	if !d.qualifies(count, amp) {
		d.series = d.series[:0]
		for _, y := range d.ys {
			d.series = append(d.series, y-cy)
		}
		count, amp = extrema(d.series, floor)
	}

	r.active = d.qualifies(count, amp)
	r.confidence = amp / (2 * d.cfg.AmplitudeThreshold)
	r.intensity = r.confidence
	return r
}

func (d *WaveDetector) qualifies(count int, amp float64) bool {
	return count >= d.cfg.MinOscillations && amp > d.cfg.AmplitudeThreshold
}
