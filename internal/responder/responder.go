// Package responder holds the per-node table mapping gesture kinds to the
// effect they trigger.
package responder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/effect"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
)

// ErrInvalidConfig is wrapped by every InteractionConfig validation error.
var ErrInvalidConfig = errors.New("invalid interaction config")

// Unbounded marks an effect that runs until its gesture is released.
const Unbounded time.Duration = -1

// InteractionConfig binds one gesture kind to an effect.
type InteractionConfig struct {
	Gesture   gesture.Kind
	Effect    effect.Kind
	Intensity float64
	// Duration stops the effect after it elapses. Zero or negative means
	// unbounded.
	Duration time.Duration
	// RequiresContact restricts triggering to hands touching the node's
	// bounding sphere.
	RequiresContact bool
	// TriggerDistance, when positive, is the maximum hand-to-surface
	// distance.
	TriggerDistance float64
	Params          effect.Params
}

// NewConfig returns a config with default parameters, unit intensity and no
// duration limit.
func NewConfig(g gesture.Kind, e effect.Kind) InteractionConfig {
	return InteractionConfig{
		Gesture:   g,
		Effect:    e,
		Intensity: 1,
		Duration:  Unbounded,
		Params:    effect.DefaultParams(),
	}
}

// Bounded reports whether the effect has a duration limit.
func (c InteractionConfig) Bounded() bool {
	return c.Duration > 0
}

// Validate checks the config.
func (c InteractionConfig) Validate() error {
	if _, ok := kindIndex(c.Gesture); !ok {
		return fmt.Errorf("%w: unknown gesture %d", ErrInvalidConfig, int(c.Gesture))
	}
	if c.Effect < 0 || int(c.Effect) >= len(effect.Kinds) {
		return fmt.Errorf("%w: unknown effect %d", ErrInvalidConfig, int(c.Effect))
	}
	if c.Intensity < 0 {
		return fmt.Errorf("%w: intensity must not be negative, got %v", ErrInvalidConfig, c.Intensity)
	}
	if c.TriggerDistance < 0 {
		return fmt.Errorf("%w: trigger distance must not be negative, got %v", ErrInvalidConfig, c.TriggerDistance)
	}
	return nil
}

func kindIndex(k gesture.Kind) (int, bool) {
	for i, g := range gesture.Kinds {
		if g == k {
			return i, true
		}
	}
	return 0, false
}

// Responder is attached to one node and answers which effect a gesture
// should trigger on it.
type Responder struct {
	ID   uuid.UUID
	Node *scene.Node

	// OnTriggered is called when a gesture starts an effect on the node.
	OnTriggered func(kind gesture.Kind, ev gesture.Event, target *scene.Node)
	// OnReleased is called for every release of a kind the responder handles.
	OnReleased func(kind gesture.Kind, ev gesture.Event, target *scene.Node)

	configs map[gesture.Kind]InteractionConfig
}

// New creates a responder for node.
func New(node *scene.Node) *Responder {
	return &Responder{
		ID:      uuid.New(),
		Node:    node,
		configs: make(map[gesture.Kind]InteractionConfig),
	}
}

// Add validates cfg and sets it for its gesture kind, replacing any previous
// entry.
func (r *Responder) Add(cfg InteractionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.configs[cfg.Gesture] = cfg
	return nil
}

// Remove drops the config for kind.
func (r *Responder) Remove(kind gesture.Kind) {
	delete(r.configs, kind)
}

// CanRespond reports whether kind is configured.
func (r *Responder) CanRespond(kind gesture.Kind) bool {
	_, ok := r.configs[kind]
	return ok
}

// ConfigFor returns the config for kind.
func (r *Responder) ConfigFor(kind gesture.Kind) (InteractionConfig, bool) {
	cfg, ok := r.configs[kind]
	return cfg, ok
}

// Kinds returns the configured gesture kinds in ascending order.
func (r *Responder) Kinds() []gesture.Kind {
	kinds := make([]gesture.Kind, 0, len(r.configs))
	for k := range r.configs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Triggered invokes OnTriggered when set.
func (r *Responder) Triggered(kind gesture.Kind, ev gesture.Event) {
	if r.OnTriggered != nil {
		r.OnTriggered(kind, ev, r.Node)
	}
}

// Released invokes OnReleased when set.
func (r *Responder) Released(kind gesture.Kind, ev gesture.Event) {
	if r.OnReleased != nil {
		r.OnReleased(kind, ev, r.Node)
	}
}
