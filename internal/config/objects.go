package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/effect"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/responder"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

// ObjectConfig describes one scene node and the gestures it answers
type ObjectConfig struct {
	Name     string  `mapstructure:"name"`
	Position r3.Vec  `mapstructure:"position"`
	// Scale defaults to one on every axis
	Scale     r3.Vec           `mapstructure:"scale"`
	Radius    float64          `mapstructure:"radius"`
	Mesh      string           `mapstructure:"mesh"`
	Color     scene.Color      `mapstructure:"color"`
	Emission  scene.Color      `mapstructure:"emission"`
	Layers    []string         `mapstructure:"layers"`
	Body      *BodyConfig      `mapstructure:"body"`
	Responses []ResponseConfig `mapstructure:"responses"`
}

// BodyConfig attaches a rigid body
type BodyConfig struct {
	Mass      float64 `mapstructure:"mass"`
	Kinematic bool    `mapstructure:"kinematic"`
	// Gravity defaults to true
	Gravity *bool `mapstructure:"gravity"`
}

// ResponseConfig binds a gesture to an effect on the object
type ResponseConfig struct {
	Gesture         string        `mapstructure:"gesture"`
	Effect          string        `mapstructure:"effect"`
	Intensity       float64       `mapstructure:"intensity"`
	Duration        time.Duration `mapstructure:"duration"`
	RequiresContact bool          `mapstructure:"requires_contact"`
	TriggerDistance float64       `mapstructure:"trigger_distance"`
	// Params overrides effect parameters, e.g. {push: {force: 4}}
	Params map[string]any `mapstructure:"params"`
}

// Node builds the scene node. The node is not added to any scene.
func (o ObjectConfig) Node() (*scene.Node, error) {
	n := scene.NewNode(o.Name)
	layers := o.Layers
	if len(layers) == 0 {
		layers = []string{"interactable"}
	}
	mask, err := scene.ParseLayers(layers)
	if err != nil {
		return nil, err
	}
	n.Layer = mask
	n.Position = o.Position
	if o.Scale != (r3.Vec{}) {
		n.Scale = o.Scale
	} else {
		n.Scale = vecmath.One
	}
	if o.Radius > 0 {
		n.Radius = o.Radius
	}
	if o.Mesh != "" {
		n.Mesh = &scene.Mesh{Name: o.Mesh}
	}
	n.Material = &scene.Material{Name: o.Name, Color: o.Color, Emission: o.Emission}
	if o.Body != nil {
		b := scene.NewBody(o.Body.Mass)
		b.Kinematic = o.Body.Kinematic
		if o.Body.Gravity != nil {
			b.UseGravity = *o.Body.Gravity
		}
		n.Body = b
	}
	return n, nil
}

// Interaction converts the response into a validated InteractionConfig.
func (r ResponseConfig) Interaction() (responder.InteractionConfig, error) {
	g, err := gesture.ParseKind(r.Gesture)
	if err != nil {
		return responder.InteractionConfig{}, withSuggestion(err, r.Gesture, gestureNames())
	}
	e, err := effect.ParseKind(r.Effect)
	if err != nil {
		return responder.InteractionConfig{}, withSuggestion(err, r.Effect, effectNames())
	}

	cfg := responder.NewConfig(g, e)
	if r.Intensity > 0 {
		cfg.Intensity = r.Intensity
	}
	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	cfg.RequiresContact = r.RequiresContact
	cfg.TriggerDistance = r.TriggerDistance

	if len(r.Params) > 0 {
		if err := decodeParams(r.Params, &cfg.Params); err != nil {
			return responder.InteractionConfig{}, fmt.Errorf("params: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// decodeParams overlays raw onto p, leaving unnamed fields at their
// defaults. Unknown keys are errors.
func decodeParams(raw map[string]any, p *effect.Params) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           p,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
