// Package interaction binds detected gestures to nearby responders and runs
// the effect lifecycle. Everything happens inside Tick on the caller's
// goroutine; the dispatcher is not safe for concurrent use.
package interaction

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/effect"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/responder"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/vecmath"
)

var (
	// ErrNilNode is returned when registering a responder without a node.
	ErrNilNode = errors.New("responder has no node")
	// ErrAlreadyRegistered is returned for a duplicate responder or node.
	ErrAlreadyRegistered = errors.New("already registered")
)

// Scene is what the dispatcher needs from the scene: proximity queries for
// targets and a spawner for effect proxies.
type Scene interface {
	scene.Query
	scene.Spawner
}

// EffectFactory builds effects. It defaults to effect.New.
type EffectFactory func(kind effect.Kind, p effect.Params, intensity float64, env effect.Env) (effect.Effect, error)

// Config holds the dispatcher settings.
type Config struct {
	// QueryRadius is the radius of the sphere searched around a gesture.
	QueryRadius float64 `mapstructure:"query_radius"`
	// ContactTolerance is the surface gap still counted as contact.
	ContactTolerance float64 `mapstructure:"contact_tolerance"`
	// InteractableMask filters query results.
	InteractableMask scene.Layer `mapstructure:"-"`
}

// DefaultConfig returns the default dispatcher settings.
func DefaultConfig() Config {
	return Config{
		QueryRadius:      0.3,
		ContactTolerance: 0.02,
		InteractableMask: scene.LayerInteractable,
	}
}

type slotKey struct {
	node uuid.UUID
	kind gesture.Kind
}

type slot struct {
	key       slotKey
	responder *responder.Responder
	target    *scene.Node
	cfg       responder.InteractionConfig
	effect    effect.Effect
	trigger   gesture.Event
	started   time.Time
	seq       uint64
}

// ActiveEffect describes a running effect.
type ActiveEffect struct {
	Node    *scene.Node
	Gesture gesture.Kind
	Effect  effect.Effect
	Hand    hand.Side
	Since   time.Time
}

// Dispatcher owns the detectors, the responders and the running effects.
type Dispatcher struct {
	cfg       Config
	scene     Scene
	src       hand.Source
	detectors []gesture.Detector
	byKind    map[gesture.Kind]gesture.Detector

	responders map[uuid.UUID]*responder.Responder
	order      []*responder.Responder
	byNode     map[uuid.UUID]*responder.Responder

	slots     map[slotKey]*slot
	seq       uint64
	animator  *effect.Animator
	rng       *rand.Rand
	newEffect EffectFactory
	observers []func(Notice)
	log       *logging.Logger
}

// New creates a dispatcher over scn with one detector per gesture kind.
// Later detectors of an already present kind are ignored.
func New(cfg Config, scn Scene, detectors []gesture.Detector) *Dispatcher {
	if cfg.QueryRadius <= 0 {
		cfg.QueryRadius = DefaultConfig().QueryRadius
	}
	if cfg.InteractableMask == 0 {
		cfg.InteractableMask = scene.LayerInteractable
	}

	d := &Dispatcher{
		cfg:        cfg,
		scene:      scn,
		byKind:     make(map[gesture.Kind]gesture.Detector),
		responders: make(map[uuid.UUID]*responder.Responder),
		byNode:     make(map[uuid.UUID]*responder.Responder),
		slots:      make(map[slotKey]*slot),
		animator:   effect.NewAnimator(),
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		newEffect:  effect.New,
	}
	for _, det := range detectors {
		if det == nil {
			continue
		}
		if _, dup := d.byKind[det.Kind()]; dup {
			continue
		}
		d.byKind[det.Kind()] = det
		d.detectors = append(d.detectors, det)
	}
	return d
}

// SetSource sets the hand signal. A nil source means no hands are tracked.
func (d *Dispatcher) SetSource(src hand.Source) { d.src = src }

// SetLogger sets the logger passed to effects.
func (d *Dispatcher) SetLogger(l *logging.Logger) { d.log = l }

// SetRand seeds effect randomness.
func (d *Dispatcher) SetRand(r *rand.Rand) {
	if r != nil {
		d.rng = r
	}
}

// SetEffectFactory replaces the effect constructor.
func (d *Dispatcher) SetEffectFactory(f EffectFactory) {
	if f != nil {
		d.newEffect = f
	}
}

// Observe registers fn to receive every notice.
func (d *Dispatcher) Observe(fn func(Notice)) {
	if fn != nil {
		d.observers = append(d.observers, fn)
	}
}

// Detector returns the detector for kind.
func (d *Dispatcher) Detector(kind gesture.Kind) (gesture.Detector, bool) {
	det, ok := d.byKind[kind]
	return det, ok
}

// Animator returns the shared transient animator.
func (d *Dispatcher) Animator() *effect.Animator { return d.animator }

// Register adds a responder.
func (d *Dispatcher) Register(r *responder.Responder) error {
	if r == nil || r.Node == nil {
		return ErrNilNode
	}
	if _, ok := d.responders[r.ID]; ok {
		return fmt.Errorf("responder %s: %w", r.ID, ErrAlreadyRegistered)
	}
	if _, ok := d.byNode[r.Node.ID]; ok {
		return fmt.Errorf("node %s: %w", r.Node, ErrAlreadyRegistered)
	}
	d.responders[r.ID] = r
	d.byNode[r.Node.ID] = r
	d.order = append(d.order, r)
	return nil
}

// Unregister removes a responder and stops its effects. It reports whether
// the responder was registered.
func (d *Dispatcher) Unregister(id uuid.UUID) bool {
	r, ok := d.responders[id]
	if !ok {
		return false
	}
	for _, s := range d.sortedSlots() {
		if s.responder == r {
			d.stop(s, ReasonUnregistered, time.Time{})
		}
	}
	delete(d.responders, id)
	if d.byNode[r.Node.ID] == r {
		delete(d.byNode, r.Node.ID)
	}
	for i, o := range d.order {
		if o == r {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Responders returns the registered responders in registration order.
func (d *Dispatcher) Responders() []*responder.Responder {
	out := make([]*responder.Responder, len(d.order))
	copy(out, d.order)
	return out
}

// Tick runs one frame: detectors first, then every running effect, then the
// transient animations.
func (d *Dispatcher) Tick(now time.Time) {
	for _, det := range d.detectors {
		for _, ev := range det.Update(d.src, now) {
			d.OnEvent(ev)
		}
	}
	d.updateEffects(now)
	d.animator.Advance(now)
}

// OnEvent dispatches one gesture event. Tick calls it for every detector
// event; hosts may call it directly to inject events.
func (d *Dispatcher) OnEvent(ev gesture.Event) {
	switch ev.Phase {
	case gesture.Started:
		d.notify(Notice{Type: GestureStarted, Gesture: ev.Kind.String(), Hand: ev.Hand.String(),
			Confidence: ev.Confidence, Position: ev.Position, Time: ev.Time})
		d.started(ev)
	case gesture.Released:
		d.notify(Notice{Type: GestureReleased, Gesture: ev.Kind.String(), Hand: ev.Hand.String(),
			Position: ev.Position, Time: ev.Time})
		d.released(ev)
	}
}

func (d *Dispatcher) started(ev gesture.Event) {
	if d.scene == nil {
		return
	}
	for _, n := range d.scene.OverlapSphere(ev.Position, d.cfg.QueryRadius, d.cfg.InteractableMask) {
		r := d.byNode[n.ID]
		if r == nil {
			continue
		}
		cfg, ok := r.ConfigFor(ev.Kind)
		if !ok || !d.inReach(n, cfg, ev) {
			continue
		}
		r.Triggered(ev.Kind, ev)
		d.start(r, n, cfg, ev)
	}
}

// inReach applies the trigger distance and contact filters, both measured
// from the hand to the node's bounding sphere surface.
func (d *Dispatcher) inReach(n *scene.Node, cfg responder.InteractionConfig, ev gesture.Event) bool {
	gap := math.Max(0, vecmath.Distance(ev.Position, n.WorldPosition())-n.BoundingRadius())
	if cfg.TriggerDistance > 0 && gap > cfg.TriggerDistance {
		return false
	}
	if cfg.RequiresContact && gap > d.cfg.ContactTolerance {
		return false
	}
	return true
}

func (d *Dispatcher) start(r *responder.Responder, n *scene.Node, cfg responder.InteractionConfig, ev gesture.Event) {
	key := slotKey{node: n.ID, kind: ev.Kind}
	if old, ok := d.slots[key]; ok {
		d.stop(old, ReasonReplaced, ev.Time)
	}

	env := effect.Env{Animator: d.animator, Rand: d.rng, Log: d.log}
	if d.scene != nil {
		env.Scene = d.scene
	}
	eff, err := d.newEffect(cfg.Effect, cfg.Params, cfg.Intensity, env)
	if err != nil {
		d.log.Warn("effect not created", "node", n.String(), "effect", cfg.Effect.String(), "error", err)
		d.notifyEffect(EffectFailed, key, n, cfg.Effect, ev, err.Error())
		return
	}

	eff.Execute(n, ev)
	d.seq++
	d.slots[key] = &slot{
		key:       key,
		responder: r,
		target:    n,
		cfg:       cfg,
		effect:    eff,
		trigger:   ev,
		started:   ev.Time,
		seq:       d.seq,
	}
	if f, ok := eff.(effect.Failer); ok && f.Err() != nil {
		d.notifyEffect(EffectFailed, key, n, cfg.Effect, ev, f.Err().Error())
		return
	}
	d.notifyEffect(EffectStarted, key, n, cfg.Effect, ev, "")
}

// released notifies every capable responder, then stops the discrete effects
// of that kind started by the releasing hand.
func (d *Dispatcher) released(ev gesture.Event) {
	for _, r := range d.Responders() {
		if r.CanRespond(ev.Kind) {
			r.Released(ev.Kind, ev)
		}
	}
	for _, s := range d.sortedSlots() {
		if s.key.kind != ev.Kind || s.trigger.Hand != ev.Hand || s.effect.Kind().Continuous() {
			continue
		}
		d.stop(s, ReasonReleased, ev.Time)
	}
}

func (d *Dispatcher) updateEffects(now time.Time) {
	for _, s := range d.sortedSlots() {
		if d.slots[s.key] != s {
			continue
		}
		if !s.target.Alive() {
			delete(d.slots, s.key)
			d.notifyEffect(TargetLost, s.key, s.target, s.cfg.Effect, s.trigger, "")
			continue
		}
		if s.cfg.Bounded() && now.Sub(s.started) >= s.cfg.Duration {
			d.stop(s, ReasonExpired, now)
			continue
		}
		s.effect.Update(s.target, d.currentEvent(s, now))
	}
}

// currentEvent derives the event fed to a running effect. Continuous effects
// get the trigger pose at full confidence; discrete ones follow the live
// detector status while the hand still holds the gesture.
func (d *Dispatcher) currentEvent(s *slot, now time.Time) gesture.Event {
	ev := s.trigger
	ev.Phase = gesture.Continuing
	ev.Time = now
	if s.effect.Kind().Continuous() {
		ev.Confidence = 1
		ev.Intensity = 1
		return ev
	}
	if det, ok := d.byKind[s.key.kind]; ok {
		if st := det.Status(s.trigger.Hand); st.Detected {
			return st.Event(s.key.kind, now)
		}
	}
	return ev
}

func (d *Dispatcher) stop(s *slot, reason string, now time.Time) {
	if d.slots[s.key] != s {
		return
	}
	delete(d.slots, s.key)
	if s.target.Alive() {
		s.effect.Stop(s.target)
	}
	if now.IsZero() {
		now = s.trigger.Time
	}
	ev := s.trigger
	ev.Time = now
	d.notifyEffect(EffectStopped, s.key, s.target, s.cfg.Effect, ev, reason)
}

// StopAll stops every running effect and cancels transients.
func (d *Dispatcher) StopAll() {
	for _, s := range d.sortedSlots() {
		d.stop(s, ReasonStopped, time.Time{})
	}
	d.animator.Clear()
}

// Effects returns the running effects in start order.
func (d *Dispatcher) Effects() []ActiveEffect {
	slots := d.sortedSlots()
	out := make([]ActiveEffect, 0, len(slots))
	for _, s := range slots {
		out = append(out, ActiveEffect{
			Node:    s.target,
			Gesture: s.key.kind,
			Effect:  s.effect,
			Hand:    s.trigger.Hand,
			Since:   s.started,
		})
	}
	return out
}

// EffectFor returns the running effect for (node, kind).
func (d *Dispatcher) EffectFor(node uuid.UUID, kind gesture.Kind) (effect.Effect, bool) {
	s, ok := d.slots[slotKey{node: node, kind: kind}]
	if !ok {
		return nil, false
	}
	return s.effect, true
}

func (d *Dispatcher) sortedSlots() []*slot {
	out := make([]*slot, 0, len(d.slots))
	for _, s := range d.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (d *Dispatcher) notifyEffect(t NoticeType, key slotKey, n *scene.Node, kind effect.Kind, ev gesture.Event, reason string) {
	d.notify(Notice{
		Type:       t,
		Gesture:    key.kind.String(),
		Effect:     kind.String(),
		Hand:       ev.Hand.String(),
		Node:       n.String(),
		NodeID:     key.node,
		Reason:     reason,
		Confidence: ev.Confidence,
		Position:   ev.Position,
		Time:       ev.Time,
	})
}

func (d *Dispatcher) notify(n Notice) {
	if d.log.Enabled(logging.LevelDebug) {
		d.log.Debug(string(n.Type), "gesture", n.Gesture, "effect", n.Effect, "node", n.Node, "reason", n.Reason)
	}
	for _, fn := range d.observers {
		fn(n)
	}
}
