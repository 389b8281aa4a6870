package tracking

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/vecmath"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func defaultPose() hand.Pose {
	return hand.Pose{Position: r3.Vec{X: 0.1, Y: 1.1, Z: 0.3}, Forward: vecmath.Forward, Up: vecmath.Up}
}

func TestSynthesize_CurlRoundTrip(t *testing.T) {
	sideways := hand.Pose{Position: r3.Vec{Y: 1}, Forward: vecmath.Right, Up: r3.Vec{Z: -1}}
	tilted := hand.Pose{
		Position: r3.Vec{X: -0.2, Y: 0.9, Z: 0.5},
		Forward:  r3.Unit(r3.Vec{X: 0.3, Y: 0.5, Z: 1}),
		Up:       r3.Vec{Y: 1},
	}

	tests := []struct {
		name  string
		side  hand.Side
		pose  hand.Pose
		curls [hand.NumFingers]float64
	}{
		{name: "open right", side: hand.Right, pose: defaultPose()},
		{name: "fist left", side: hand.Left, pose: defaultPose(), curls: [hand.NumFingers]float64{1, 1, 1, 1, 1}},
		{name: "point right", side: hand.Right, pose: sideways, curls: [hand.NumFingers]float64{0.7, 0, 0.9, 0.9, 0.9}},
		{name: "mixed left tilted", side: hand.Left, pose: tilted, curls: [hand.NumFingers]float64{0.2, 0.4, 0.5, 0.65, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Synthesize(tt.side, tt.curls, tt.pose, 0)
			for _, f := range hand.Fingers {
				assert.InDelta(t, tt.curls[f], l.FingerCurl(f), 1e-6, f.String())
			}
			assert.Equal(t, tt.side, l.Side)
			assert.InDelta(t, DefaultHandSize, l.Scale(), 1e-12)
		})
	}
}

func TestSynthesize_WristPoseRoundTrip(t *testing.T) {
	for _, side := range hand.Sides {
		t.Run(side.String(), func(t *testing.T) {
			pose := hand.Pose{
				Position: r3.Vec{X: 0.5, Y: 1, Z: 0.2},
				Forward:  r3.Unit(r3.Vec{X: 1, Z: 1}),
				Up:       r3.Unit(r3.Vec{X: -1, Y: 1, Z: 1}),
			}
			l := Synthesize(side, [hand.NumFingers]float64{0.3, 0.1, 0.2, 0.5, 0.6}, pose, 0.1)
			got := l.WristPose()

			wantUp := r3.Unit(r3.Sub(pose.Up, r3.Scale(r3.Dot(pose.Up, pose.Forward), pose.Forward)))
			if diff := cmp.Diff(pose.Position, got.Position, approx); diff != "" {
				t.Errorf("position mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(pose.Forward, got.Forward, approx); diff != "" {
				t.Errorf("forward mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantUp, got.Up, approx); diff != "" {
				t.Errorf("up mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLandmarks_Normalize(t *testing.T) {
	l := Synthesize(hand.Right, [hand.NumFingers]float64{}, defaultPose(), 0.08)
	n := l.Normalize()

	assert.Equal(t, r3.Vec{}, n.Points[Wrist])
	assert.InDelta(t, 1, n.Scale(), 1e-12)
	assert.Equal(t, l.Side, n.Side)
	for _, f := range hand.Fingers {
		assert.InDelta(t, l.FingerCurl(f), n.FingerCurl(f), 1e-9, "curl is scale invariant")
	}

	var degenerate Landmarks
	d := degenerate.Normalize()
	for _, p := range d.Points {
		assert.False(t, math.IsNaN(p.X))
	}
	assert.Zero(t, degenerate.FingerCurl(hand.Index))
	assert.Zero(t, degenerate.PinchStrength())
	_, ok := degenerate.AimDirection()
	assert.False(t, ok)
}

func TestLandmarks_PinchStrength(t *testing.T) {
	open := Synthesize(hand.Right, [hand.NumFingers]float64{}, defaultPose(), 0)
	assert.Zero(t, open.PinchStrength())

	touching := open
	touching.Points[ThumbTip] = touching.Points[IndexTip]
	assert.Equal(t, 1.0, touching.PinchStrength())

	half := open
	mid := (PinchOpen + PinchClosed) / 2 * open.Scale()
	half.Points[ThumbTip] = r3.Add(half.Points[IndexTip], r3.Vec{X: mid})
	assert.InDelta(t, 0.5, half.PinchStrength(), 1e-9)
}

func TestLandmarks_AimDirection(t *testing.T) {
	l := Synthesize(hand.Right, [hand.NumFingers]float64{}, defaultPose(), 0)
	dir, ok := l.AimDirection()
	assert.True(t, ok)
	assert.InDelta(t, 1, r3.Norm(dir), 1e-12)
	assert.Greater(t, r3.Dot(dir, vecmath.Forward), 0.9)
}

func TestLandmarks_FingerCurlOutOfRange(t *testing.T) {
	l := Synthesize(hand.Right, [hand.NumFingers]float64{1, 1, 1, 1, 1}, defaultPose(), 0)
	assert.Zero(t, l.FingerCurl(hand.NumFingers))
	assert.Zero(t, l.FingerCurl(-1))
	assert.Equal(t, [hand.NumFingers]float64{1, 1, 1, 1, 1}, roundCurls(l.Curls()))
}

func roundCurls(c [hand.NumFingers]float64) [hand.NumFingers]float64 {
	for i := range c {
		c[i] = math.Round(c[i]*1e6) / 1e6
	}
	return c
}
