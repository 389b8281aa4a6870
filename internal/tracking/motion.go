package tracking

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// MotionDetector compares consecutive frames after grayscale conversion and
// a Gaussian blur.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector. threshold is the percentage of
// pixels that must change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect reports whether frame differs from the previous one and the
// percentage of changed pixels. The first frame only primes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !m.primed {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100
	blurred.CopyTo(&m.prev)
	return changed > m.threshold, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.Reset()
}

// MotionGate switches between the idle and active frame rates. Motion
// switches to active at once; the gate drops back to idle after the timeout
// passes without motion.
type MotionGate struct {
	idleFPS    int
	activeFPS  int
	timeout    time.Duration
	active     bool
	lastMotion time.Time
}

// NewMotionGate creates an idle gate.
func NewMotionGate(idleFPS, activeFPS int, timeout time.Duration) *MotionGate {
	if idleFPS <= 0 {
		idleFPS = 1
	}
	if activeFPS < idleFPS {
		activeFPS = idleFPS
	}
	return &MotionGate{idleFPS: idleFPS, activeFPS: activeFPS, timeout: timeout}
}

// Observe records whether the latest frame showed motion and reports
// whether the gate changed mode.
func (g *MotionGate) Observe(motion bool, now time.Time) bool {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return true
		}
		return false
	}
	if g.active && now.Sub(g.lastMotion) > g.timeout {
		g.active = false
		return true
	}
	return false
}

// Hold keeps the gate active as if motion were seen at now. Hosts call it
// while a hand is tracked so a still hand does not idle the pipeline.
func (g *MotionGate) Hold(now time.Time) bool {
	return g.Observe(true, now)
}

// Active reports whether the gate is in active mode.
func (g *MotionGate) Active() bool { return g.active }

// FPS returns the frame rate of the current mode.
func (g *MotionGate) FPS() int {
	if g.active {
		return g.activeFPS
	}
	return g.idleFPS
}

// Interval returns the frame interval of the current mode.
func (g *MotionGate) Interval() time.Duration {
	return time.Second / time.Duration(g.FPS())
}
