// Package app wires the mudra pipeline together: the configured scene and
// responders, the gesture detectors and dispatcher, and the hand signal that
// drives them, either live from a camera or from a script.
package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/monitor"
	"github.com/ayusman/mudra/internal/responder"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/tracking"
	"github.com/ayusman/mudra/internal/vecmath"
)

// ErrRunning is returned by Run when the live pipeline is already running.
var ErrRunning = errors.New("pipeline already running")

// maxStep caps the physics step after a stall or an idle period.
const maxStep = 100 * time.Millisecond

// Config holds configuration options for the application.
type Config struct {
	// Settings is the loaded configuration; nil means config.Default().
	Settings *config.Config
	Logger   *logging.Logger

	// Camera and Landmarker override the devices built from Settings.
	Camera     tracking.Camera
	Landmarker tracking.Landmarker
	// Monitor, when set, receives notices and camera frames.
	Monitor *monitor.Server

	// Seed makes effect randomness reproducible when non-zero.
	Seed uint64
}

// App is the main application that feeds the hand signal to the dispatcher
// and steps the scene.
type App struct {
	config     Config
	settings   *config.Config
	log        *logging.Logger
	scene      *scene.Scene
	dispatcher *interaction.Dispatcher
	responders []*responder.Responder

	mu        sync.RWMutex
	running   bool
	observers []func(interaction.Notice)
	stepHooks []func(time.Time, hand.Source)
	counts    map[interaction.NoticeType]int
	lastStep  time.Time
	steps     int
}

// New creates an App with the scene and responders described by the
// settings.
func New(cfg Config) (*App, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
		if errs := settings.Validate(); len(errs) > 0 {
			return nil, config.ValidationErrors(errs)
		}
	}
	log := cfg.Logger

	scn, responders, err := BuildScene(settings)
	if err != nil {
		return nil, err
	}

	interCfg, err := settings.Dispatcher.Interaction()
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	d := interaction.New(interCfg, scn, gesture.NewDetectors(settings.Detectors, log))
	d.SetLogger(log.With("component", "dispatcher"))
	if cfg.Seed != 0 {
		d.SetRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)))
	}
	for _, r := range responders {
		if err := d.Register(r); err != nil {
			return nil, err
		}
	}

	a := &App{
		config:     cfg,
		settings:   settings,
		log:        log,
		scene:      scn,
		dispatcher: d,
		responders: responders,
		counts:     make(map[interaction.NoticeType]int),
	}
	d.Observe(a.notice)
	if cfg.Monitor != nil {
		d.Observe(cfg.Monitor.Hub().Publish)
	}

	log.Info("scene ready", "objects", len(responders), "nodes", scn.Len())
	return a, nil
}

// BuildScene creates the configured nodes and one responder per node.
func BuildScene(settings *config.Config) (*scene.Scene, []*responder.Responder, error) {
	scn := scene.New()
	scn.Physics = settings.Scene.Physics

	responders := make([]*responder.Responder, 0, len(settings.Scene.Objects))
	for i, obj := range settings.Scene.Objects {
		n, err := obj.Node()
		if err != nil {
			return nil, nil, fmt.Errorf("object %d (%s): %w", i, obj.Name, err)
		}
		scn.Add(n)

		r := responder.New(n)
		for j, resp := range obj.Responses {
			ic, err := resp.Interaction()
			if err != nil {
				return nil, nil, fmt.Errorf("object %s response %d: %w", obj.Name, j, err)
			}
			if err := r.Add(ic); err != nil {
				return nil, nil, fmt.Errorf("object %s response %d: %w", obj.Name, j, err)
			}
		}
		responders = append(responders, r)
	}
	return scn, responders, nil
}

// Scene returns the scene.
func (a *App) Scene() *scene.Scene { return a.scene }

// Dispatcher returns the dispatcher.
func (a *App) Dispatcher() *interaction.Dispatcher { return a.dispatcher }

// Responders returns the responders built from the settings.
func (a *App) Responders() []*responder.Responder { return a.responders }

// Settings returns the configuration in use.
func (a *App) Settings() *config.Config { return a.settings }

// Observe registers fn to receive every dispatcher notice.
func (a *App) Observe(fn func(interaction.Notice)) {
	if fn != nil {
		a.observers = append(a.observers, fn)
	}
}

// Counts returns how many notices of each type were seen.
func (a *App) Counts() map[interaction.NoticeType]int {
	out := make(map[interaction.NoticeType]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// Steps returns the number of pipeline steps run.
func (a *App) Steps() int { return a.steps }

func (a *App) notice(n interaction.Notice) {
	a.counts[n.Type]++
	switch n.Type {
	case interaction.GestureStarted, interaction.GestureReleased:
		a.log.Debug(string(n.Type), "gesture", n.Gesture, "hand", n.Hand)
	case interaction.EffectFailed, interaction.TargetLost:
		a.log.Warn(string(n.Type), "gesture", n.Gesture, "effect", n.Effect, "node", n.Node, "reason", n.Reason)
	default:
		a.log.Info(string(n.Type), "gesture", n.Gesture, "effect", n.Effect, "node", n.Node, "reason", n.Reason)
	}
	for _, fn := range a.observers {
		fn(n)
	}
}

// Step runs one pipeline tick: detectors and effects see src at now, then
// the scene integrates the time since the previous step.
func (a *App) Step(src hand.Source, now time.Time) {
	a.dispatcher.SetSource(src)
	a.dispatcher.Tick(now)

	if !a.lastStep.IsZero() {
		dt := now.Sub(a.lastStep)
		if dt > maxStep {
			dt = maxStep
		}
		a.scene.Step(vecmath.Seconds(dt))
	}
	a.lastStep = now
	a.steps++

	for _, fn := range a.stepHooks {
		fn(now, src)
	}
}

// OnStep registers fn to run at the end of every Step with the source that
// drove it.
func (a *App) OnStep(fn func(now time.Time, src hand.Source)) {
	if fn != nil {
		a.stepHooks = append(a.stepHooks, fn)
	}
}

// Reset stops every effect, clears detector state and forgets the step
// clock.
func (a *App) Reset() {
	a.dispatcher.StopAll()
	a.dispatcher.SetSource(nil)
	for _, kind := range gesture.Kinds {
		if det, ok := a.dispatcher.Detector(kind); ok {
			det.Reset()
		}
	}
	a.lastStep = time.Time{}
}
