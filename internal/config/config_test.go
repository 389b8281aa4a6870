package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/effect"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/responder"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

const sampleYAML = `
logging:
  level: debug
  format: json
tracking:
  camera_id: 1
  idle_timeout: 3s
  landmarker: mock
  mapping:
    mirror: false
    origin: {x: 0, y: 1, z: 0.5}
detectors:
  pinch:
    stability: 50ms
  point:
    finger: middle
dispatcher:
  query_radius: 0.4
  layers: [interactable, default]
monitor:
  enabled: true
  addr: ":9000"
scene:
  objects:
    - name: ball
      position: {x: 0.1, y: 1.1, z: 0.6}
      radius: 0.05
      mesh: sphere
      color: {r: 1, g: 0, b: 0, a: 1}
      body:
        mass: 2
        gravity: false
      responses:
        - gesture: tap
          effect: push_away
          intensity: 2
          duration: 1500ms
          params:
            push:
              force: 4
              shockwave_duration: 200ms
`

func loadYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return Load(v)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.Len(t, cfg.Scene.Objects, 3)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Logging, cfg.Logging)
	assert.Equal(t, want.Tracking, cfg.Tracking)
	assert.Equal(t, want.Dispatcher, cfg.Dispatcher)
	assert.Equal(t, want.Monitor, cfg.Monitor)
	assert.Equal(t, want.Detectors.Pinch, cfg.Detectors.Pinch)
	assert.Equal(t, hand.Index, cfg.Detectors.Point.Finger)
	require.Len(t, cfg.Scene.Objects, 3)
	assert.Equal(t, "cube", cfg.Scene.Objects[0].Name)
}

func TestLoad_File(t *testing.T) {
	cfg, err := loadYAML(t, sampleYAML)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 1, cfg.Tracking.CameraID)
	assert.Equal(t, 3*time.Second, cfg.Tracking.IdleTimeout)
	assert.Equal(t, "mock", cfg.Tracking.Landmarker)
	assert.False(t, cfg.Tracking.Mapping.Mirror)
	assert.Equal(t, r3.Vec{Y: 1, Z: 0.5}, cfg.Tracking.Mapping.Origin)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15, cfg.Tracking.ActiveFPS)

	assert.Equal(t, 50*time.Millisecond, cfg.Detectors.Pinch.Stability)
	assert.Equal(t, 0.8, cfg.Detectors.Pinch.ActivateThreshold)
	assert.Equal(t, hand.Middle, cfg.Detectors.Point.Finger)

	assert.Equal(t, 0.4, cfg.Dispatcher.QueryRadius)
	assert.Equal(t, []string{"interactable", "default"}, cfg.Dispatcher.Layers)
	assert.True(t, cfg.Monitor.Enabled)
	assert.Equal(t, ":9000", cfg.Monitor.Addr)

	require.Len(t, cfg.Scene.Objects, 1)
	obj := cfg.Scene.Objects[0]
	assert.Equal(t, "ball", obj.Name)
	assert.Equal(t, r3.Vec{X: 0.1, Y: 1.1, Z: 0.6}, obj.Position)
	assert.Equal(t, scene.Color{R: 1, A: 1}, obj.Color)
	require.NotNil(t, obj.Body)
	assert.Equal(t, 2.0, obj.Body.Mass)
	require.NotNil(t, obj.Body.Gravity)
	assert.False(t, *obj.Body.Gravity)

	require.Len(t, obj.Responses, 1)
	ic, err := obj.Responses[0].Interaction()
	require.NoError(t, err)
	assert.Equal(t, gesture.Tap, ic.Gesture)
	assert.Equal(t, effect.PushAwayKind, ic.Effect)
	assert.Equal(t, 2.0, ic.Intensity)
	assert.Equal(t, 1500*time.Millisecond, ic.Duration)
	assert.Equal(t, 4.0, ic.Params.Push.Force)
	assert.Equal(t, 200*time.Millisecond, ic.Params.Push.ShockwaveDuration)
	assert.Equal(t, effect.DefaultParams().Push.TorqueFactor, ic.Params.Push.TorqueFactor)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MUDRA_DISPATCHER_QUERY_RADIUS", "0.5")
	t.Setenv("MUDRA_TRACKING_MAPPING_MIRROR", "false")
	t.Setenv("MUDRA_DETECTORS_WAVE_WINDOW", "2s")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Dispatcher.QueryRadius)
	assert.False(t, cfg.Tracking.Mapping.Mirror)
	assert.Equal(t, 2*time.Second, cfg.Detectors.Wave.Window)
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := loadYAML(t, `
logging:
  level: loud
dispatcher:
  query_radius: 0
`)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "logging.level", verrs[0].Field)
	assert.Equal(t, "dispatcher.query_radius", verrs[1].Field)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad fps", func(c *Config) { c.Tracking.ActiveFPS = 0 }, "tracking"},
		{"bad pinch band", func(c *Config) { c.Detectors.Pinch.ReleaseThreshold = 0.9 }, "detectors"},
		{"negative tolerance", func(c *Config) { c.Dispatcher.ContactTolerance = -1 }, "dispatcher.contact_tolerance"},
		{"unknown layer", func(c *Config) { c.Dispatcher.Layers = []string{"nope"} }, "dispatcher.layers"},
		{"no layers", func(c *Config) { c.Dispatcher.Layers = nil }, "dispatcher.layers"},
		{"monitor without addr", func(c *Config) { c.Monitor.Enabled = true; c.Monitor.Addr = "" }, "monitor.addr"},
		{"zero queue", func(c *Config) { c.Monitor.QueueSize = 0 }, "monitor.queue_size"},
		{"unnamed object", func(c *Config) { c.Scene.Objects[0].Name = "" }, "scene.objects[0].name"},
		{"duplicate object", func(c *Config) { c.Scene.Objects[1].Name = "cube" }, "scene.objects[1].name"},
		{"negative radius", func(c *Config) { c.Scene.Objects[0].Radius = -1 }, "scene.objects[0].radius"},
		{"negative mass", func(c *Config) { c.Scene.Objects[0].Body.Mass = -1 }, "scene.objects[0].body.mass"},
		{"bad object layer", func(c *Config) { c.Scene.Objects[2].Layers = []string{"x"} }, "scene.objects[2].layers"},
		{"unknown gesture", func(c *Config) { c.Scene.Objects[0].Responses[0].Gesture = "clap" }, "scene.objects[0].responses[0]"},
		{"gesture bound twice", func(c *Config) {
			c.Scene.Objects[1].Responses[1].Gesture = "point"
		}, "scene.objects[1].responses[1].gesture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "monitor.queue_size: must be positive (got: 0)",
		ValidationError{Field: "monitor.queue_size", Value: 0, Message: "must be positive"}.Error())
	assert.Equal(t, "scene.objects[0].name: is required",
		ValidationError{Field: "scene.objects[0].name", Message: "is required"}.Error())

	assert.Equal(t, "", ValidationErrors(nil).Error())
	one := ValidationErrors{{Field: "a", Message: "b"}}
	assert.Equal(t, "a: b", one.Error())
}

func TestResponseConfig_Interaction(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ic, err := ResponseConfig{Gesture: "open-palm", Effect: "heartbeat"}.Interaction()
		require.NoError(t, err)
		assert.Equal(t, gesture.OpenPalm, ic.Gesture)
		assert.Equal(t, 1.0, ic.Intensity)
		assert.Equal(t, responder.Unbounded, ic.Duration)
		assert.False(t, ic.Bounded())
		assert.Equal(t, effect.DefaultParams(), ic.Params)
	})

	t.Run("unknown effect", func(t *testing.T) {
		_, err := ResponseConfig{Gesture: "pinch", Effect: "explode"}.Interaction()
		assert.Error(t, err)
	})

	t.Run("typo suggests a name", func(t *testing.T) {
		_, err := ResponseConfig{Gesture: "pnich", Effect: "highlight"}.Interaction()
		assert.ErrorContains(t, err, `did you mean "pinch"?`)

		_, err = ResponseConfig{Gesture: "tap", Effect: "folow-hand"}.Interaction()
		assert.ErrorContains(t, err, `did you mean "follow_hand"?`)
	})

	t.Run("unknown param", func(t *testing.T) {
		_, err := ResponseConfig{
			Gesture: "pinch",
			Effect:  "follow_hand",
			Params:  map[string]any{"follow": map[string]any{"speed": 3}},
		}.Interaction()
		assert.ErrorContains(t, err, "params")
	})

	t.Run("param overlay", func(t *testing.T) {
		ic, err := ResponseConfig{
			Gesture: "wave",
			Effect:  "infinite_rotation",
			Params: map[string]any{"rotation": map[string]any{
				"axis":      map[string]any{"y": 1},
				"max_speed": "9",
			}},
		}.Interaction()
		require.NoError(t, err)
		assert.Equal(t, r3.Vec{Y: 1}, ic.Params.Rotation.Axis)
		assert.Equal(t, 9.0, ic.Params.Rotation.MaxSpeed)
		assert.Equal(t, effect.DefaultParams().Rotation.StartSpeed, ic.Params.Rotation.StartSpeed)
	})

	t.Run("negative trigger distance", func(t *testing.T) {
		_, err := ResponseConfig{Gesture: "tap", Effect: "push_away", TriggerDistance: -1}.Interaction()
		assert.ErrorIs(t, err, responder.ErrInvalidConfig)
	})
}

func TestObjectConfig_Node(t *testing.T) {
	n, err := ObjectConfig{
		Name:     "box",
		Position: r3.Vec{Y: 1},
		Radius:   0.2,
		Mesh:     "cube",
		Color:    scene.White,
		Body:     &BodyConfig{Mass: 3},
	}.Node()
	require.NoError(t, err)

	assert.Equal(t, "box", n.Name)
	assert.Equal(t, scene.LayerInteractable, n.Layer)
	assert.Equal(t, vecmath.One, n.Scale)
	assert.Equal(t, 0.2, n.Radius)
	require.NotNil(t, n.Mesh)
	assert.Equal(t, "cube", n.Mesh.Name)
	assert.Equal(t, scene.White, n.Material.Color)
	require.NotNil(t, n.Body)
	assert.Equal(t, 3.0, n.Body.Mass)
	assert.True(t, n.Body.UseGravity)

	off := false
	n, err = ObjectConfig{
		Name:   "float",
		Scale:  r3.Vec{X: 2, Y: 2, Z: 2},
		Layers: []string{"default"},
		Body:   &BodyConfig{Kinematic: true, Gravity: &off},
	}.Node()
	require.NoError(t, err)
	assert.Equal(t, scene.LayerDefault, n.Layer)
	assert.Equal(t, 1.0, n.BoundingRadius())
	assert.True(t, n.Body.Kinematic)
	assert.False(t, n.Body.UseGravity)
	assert.Nil(t, n.Mesh)

	_, err = ObjectConfig{Name: "bad", Layers: []string{"nope"}}.Node()
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/mudra", ConfigDir())
	assert.Equal(t, "/tmp/xdg/mudra/config.yaml", ConfigFile())
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact", "wave", "wave"},
		{"one edit", "wav", "wave"},
		{"hyphen and case", "Open-Plam", "open_palm"},
		{"too far", "explode", ""},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.in, gestureNames()))
		})
	}
}
