// Package config loads mudra's settings through viper. Files are YAML,
// durations are strings such as "150ms" and every key can be overridden by
// a MUDRA_ environment variable (dots become underscores).
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tracking"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MUDRA"

// Config represents the complete mudra configuration
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracking   tracking.Config  `mapstructure:"tracking"`
	Detectors  gesture.Config   `mapstructure:"detectors"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Scene      SceneConfig      `mapstructure:"scene"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is text or json
	Format string `mapstructure:"format"`
	// File is the log file path; empty logs to stderr
	File string `mapstructure:"file"`
}

// DispatcherConfig controls how gestures find their targets
type DispatcherConfig struct {
	QueryRadius      float64  `mapstructure:"query_radius"`
	ContactTolerance float64  `mapstructure:"contact_tolerance"`
	Layers           []string `mapstructure:"layers"`
}

// Interaction converts the section into the dispatcher's config.
func (d DispatcherConfig) Interaction() (interaction.Config, error) {
	mask, err := scene.ParseLayers(d.Layers)
	if err != nil {
		return interaction.Config{}, err
	}
	return interaction.Config{
		QueryRadius:      d.QueryRadius,
		ContactTolerance: d.ContactTolerance,
		InteractableMask: mask,
	}, nil
}

// MonitorConfig controls the debug event stream
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	// QueueSize is the per-client backlog before notices are dropped
	QueueSize int `mapstructure:"queue_size"`
}

// SceneConfig describes the interactive objects
type SceneConfig struct {
	Physics scene.Physics  `mapstructure:"physics"`
	Objects []ObjectConfig `mapstructure:"objects"`
}

// Default returns a Config with the default values and a small demo scene.
func Default() *Config {
	inter := interaction.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracking:  tracking.DefaultConfig(),
		Detectors: gesture.DefaultConfig(),
		Dispatcher: DispatcherConfig{
			QueryRadius:      inter.QueryRadius,
			ContactTolerance: inter.ContactTolerance,
			Layers:           []string{"interactable"},
		},
		Monitor: MonitorConfig{
			Addr:      "127.0.0.1:8765",
			QueueSize: 64,
		},
		Scene: SceneConfig{
			Physics: scene.DefaultPhysics(),
			Objects: DemoObjects(),
		},
	}
}

// DemoObjects returns the built-in scene: one object per effect.
func DemoObjects() []ObjectConfig {
	return []ObjectConfig{
		{
			Name:     "cube",
			Position: r3.Vec{X: -0.2, Y: 1.2, Z: 0.5},
			Radius:   0.06,
			Mesh:     "cube",
			Color:    scene.Color{R: 0.3, G: 0.5, B: 0.9, A: 1},
			Body:     floating(1),
			Responses: []ResponseConfig{
				{Gesture: "pinch", Effect: "follow_hand"},
			},
		},
		{
			Name:     "orb",
			Position: r3.Vec{Y: 1.2, Z: 0.5},
			Radius:   0.05,
			Mesh:     "sphere",
			Color:    scene.Color{R: 0.9, G: 0.9, B: 0.9, A: 1},
			Body:     floating(0.5),
			Responses: []ResponseConfig{
				{Gesture: "point", Effect: "highlight"},
				{Gesture: "tap", Effect: "push_away", Intensity: 1.5},
			},
		},
		{
			Name:     "heart",
			Position: r3.Vec{X: 0.2, Y: 1.2, Z: 0.5},
			Radius:   0.07,
			Mesh:     "heart",
			Color:    scene.Color{R: 0.8, G: 0.1, B: 0.2, A: 1},
			Responses: []ResponseConfig{
				{Gesture: "open_palm", Effect: "heartbeat", Duration: 3 * time.Second},
				{Gesture: "wave", Effect: "infinite_rotation", Duration: 5 * time.Second},
			},
		},
	}
}

// floating returns a body that ignores gravity.
func floating(mass float64) *BodyConfig {
	off := false
	return &BodyConfig{Mass: mass, Gravity: &off}
}

// NewViper returns a viper instance with defaults registered and environment
// overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every default value with v so each key is known to
// viper and can be overridden from the environment.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	setStruct(v, "logging", defaults.Logging)
	setStruct(v, "tracking", defaults.Tracking)
	setStruct(v, "detectors", defaults.Detectors)
	setStruct(v, "dispatcher", defaults.Dispatcher)
	setStruct(v, "monitor", defaults.Monitor)
	setStruct(v, "scene.physics", defaults.Scene.Physics)
}

// setStruct registers one default per leaf of a struct value, keyed by its
// mapstructure tag or lowercased field name.
func setStruct(v *viper.Viper, prefix string, value any) {
	rv := reflect.ValueOf(value)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("mapstructure")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := prefix + "." + name
		fv := rv.Field(i)
		if fv.Kind() == reflect.Struct && fv.Type() != reflect.TypeOf(time.Time{}) {
			setStruct(v, key, fv.Interface())
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}

// Load reads the configuration from v into a Config struct and validates it.
// Lists in the file replace the defaults; the demo scene is kept only when
// the file names no objects.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg, replaceSlices); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return cfg, nil
}

func replaceSlices(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mudra")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".config", "mudra")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
