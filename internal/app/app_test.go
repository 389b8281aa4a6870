package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tracking"
	"github.com/ayusman/mudra/testdata"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newApp(t *testing.T, settings *config.Config) *App {
	t.Helper()
	a, err := New(Config{Settings: settings, Logger: logging.NopLogger(), Seed: 7})
	require.NoError(t, err)
	return a
}

func TestBuildScene(t *testing.T) {
	scn, responders, err := BuildScene(config.Default())
	require.NoError(t, err)

	assert.Equal(t, 3, scn.Len())
	require.Len(t, responders, 3)

	cube := scn.Find("cube")
	require.NotNil(t, cube)
	assert.Same(t, cube, responders[0].Node)
	assert.True(t, responders[0].CanRespond(gesture.Pinch))
	assert.False(t, responders[0].CanRespond(gesture.Tap))
	assert.Equal(t, []gesture.Kind{gesture.Tap, gesture.Point}, responders[1].Kinds())
	assert.Equal(t, scene.LayerInteractable, cube.Layer)
	assert.Equal(t, config.Default().Scene.Physics, scn.Physics)

	t.Run("bad response", func(t *testing.T) {
		settings := config.Default()
		settings.Scene.Objects[0].Responses[0].Effect = "explode"
		_, _, err := BuildScene(settings)
		assert.ErrorContains(t, err, "cube")
	})

	t.Run("bad layer", func(t *testing.T) {
		settings := config.Default()
		settings.Scene.Objects[2].Layers = []string{"nope"}
		_, _, err := BuildScene(settings)
		assert.ErrorContains(t, err, "heart")
	})
}

func TestNew(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)

	assert.Len(t, a.Responders(), 3)
	assert.Len(t, a.Dispatcher().Responders(), 3)
	assert.Same(t, a.Scene(), a.Scene())
	assert.NotNil(t, a.Settings())
	for _, kind := range gesture.Kinds {
		_, ok := a.Dispatcher().Detector(kind)
		assert.True(t, ok, kind.String())
	}

	settings := config.Default()
	settings.Dispatcher.Layers = []string{"nope"}
	_, err = New(Config{Settings: settings})
	assert.Error(t, err)
}

func TestSimulate_Fixtures(t *testing.T) {
	tests := []struct {
		script  string
		gesture string
		effect  string
	}{
		{"pinch", "pinch", "follow_hand"},
		{"tap", "tap", "push_away"},
		{"point", "point", "highlight"},
		{"palm", "open_palm", "heartbeat"},
	}

	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			s, err := testdata.LoadScript(tt.script)
			require.NoError(t, err)

			a := newApp(t, nil)
			var notices []interaction.Notice
			a.Observe(func(n interaction.Notice) { notices = append(notices, n) })

			sum := a.Simulate(s, epoch)

			assert.Equal(t, map[string]int{tt.gesture: 1}, sum.Gestures)
			assert.Equal(t, map[string]int{tt.effect: 1}, sum.Effects)
			assert.Equal(t, 1, sum.Notices[interaction.EffectStopped])
			assert.Zero(t, sum.Notices[interaction.EffectFailed])
			assert.Equal(t, s.Frames(), sum.Frames)
			assert.Equal(t, s.Frames(), a.Steps())

			require.NotEmpty(t, notices)
			assert.Equal(t, interaction.GestureStarted, notices[0].Type)
			assert.Equal(t, tt.gesture, notices[0].Gesture)
			assert.Empty(t, a.Dispatcher().Effects())
		})
	}
}

func TestSimulate_Wave(t *testing.T) {
	s, err := testdata.LoadScript("wave")
	require.NoError(t, err)

	a := newApp(t, nil)
	sum := a.Simulate(s, epoch)

	assert.GreaterOrEqual(t, sum.Gestures["wave"], 1)
	assert.GreaterOrEqual(t, sum.Effects["infinite_rotation"], 1)
	assert.Zero(t, sum.Gestures["tap"])
}

func TestSimulate_Demo(t *testing.T) {
	s, err := testdata.LoadScript("demo")
	require.NoError(t, err)

	a := newApp(t, nil)
	first := a.Simulate(s, epoch)

	assert.Equal(t, map[string]int{"pinch": 1, "point": 1, "open_palm": 1}, first.Gestures)
	assert.Equal(t, map[string]int{"follow_hand": 1, "highlight": 1, "heartbeat": 1}, first.Effects)

	// A second run over the same app starts from a clean state.
	second := a.Simulate(s, epoch.Add(time.Hour))
	assert.Equal(t, first.Gestures, second.Gestures)
	assert.Equal(t, first.Effects, second.Effects)
	assert.Equal(t, 2*first.Notices[interaction.EffectStarted], a.Counts()[interaction.EffectStarted])
}

func TestStep_CapsPhysicsStep(t *testing.T) {
	settings := config.Default()
	settings.Scene.Objects = []config.ObjectConfig{{
		Name:     "ball",
		Position: r3.Vec{Y: 2},
		Radius:   0.1,
		Body:     &config.BodyConfig{Mass: 1},
	}}
	a := newApp(t, settings)
	ball := a.Scene().Find("ball")
	require.NotNil(t, ball)

	src := hand.NewMockSource()
	a.Step(src, epoch)
	assert.Zero(t, ball.Body.Velocity.Y)

	a.Step(src, epoch.Add(time.Second))
	g := settings.Scene.Physics.Gravity.Y * maxStep.Seconds()
	damped := g * (1 - settings.Scene.Physics.LinearDamping*maxStep.Seconds())
	assert.InDelta(t, damped, ball.Body.Velocity.Y, 1e-9)
	assert.Equal(t, 2, a.Steps())

	a.Reset()
	a.Step(src, epoch.Add(time.Hour))
	assert.InDelta(t, damped, ball.Body.Velocity.Y, 1e-9)
}

func TestRun_MockPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv pipeline test in short mode")
	}

	black := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer white.Close()
	cam := tracking.NewMockCamera([]*gocv.Mat{&black, &white}, true)

	settings := config.Default()
	settings.Tracking.IdleFPS = 20
	settings.Tracking.ActiveFPS = 30
	m := settings.Tracking.Mapping

	world := tracking.Synthesize(hand.Right, [hand.NumFingers]float64{0.5, 0.5, 0.5, 0.5, 0.5}, hand.Pose{
		Position: r3.Vec{X: -0.2, Y: 1.2, Z: 0.45},
		Forward:  r3.Vec{Z: 1},
		Up:       r3.Vec{Y: 1},
	}, tracking.DefaultHandSize)
	world.Points[tracking.ThumbTip] = world.Points[tracking.IndexTip]
	lm := tracking.NewMockLandmarker()
	lm.SetHands(m.ImageLandmarks(world))

	a, err := New(Config{Settings: settings, Logger: logging.NopLogger(), Camera: cam, Landmarker: lm})
	require.NoError(t, err)

	var notices []interaction.Notice
	a.Observe(func(n interaction.Notice) { notices = append(notices, n) })

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	assert.Greater(t, lm.Calls(), 0)
	assert.False(t, cam.IsOpen())
	assert.Equal(t, 30, cam.FPS())

	var started []string
	for _, n := range notices {
		if n.Type == interaction.EffectStarted {
			started = append(started, n.Effect)
		}
	}
	assert.Equal(t, []string{"follow_hand"}, started)
	assert.Empty(t, a.Dispatcher().Effects())
}

func TestRun_CameraError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv pipeline test in short mode")
	}

	settings := config.Default()
	settings.Tracking.CameraID = 99
	settings.Tracking.Landmarker = tracking.LandmarkerMock
	a := newApp(t, settings)

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "open camera")
}
