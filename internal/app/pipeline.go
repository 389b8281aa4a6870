package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/tracking"
)

// Run drives the pipeline from the camera until ctx is cancelled.
//
// Pipeline logic:
// 1. Start in idle mode at the idle frame rate
// 2. On motion switch to the active frame rate
// 3. While active run the landmarker and refresh the hand source
// 4. A tracked hand keeps the pipeline active
// 5. After the idle timeout without motion drop back to idle
//
// Every frame, active or not, ticks the dispatcher and steps the scene so
// running effects keep animating.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrRunning
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	cfg := a.settings.Tracking
	cam := a.config.Camera
	if cam == nil {
		cam = tracking.NewCamera(cfg.CameraID, cfg.Width, cfg.Height, cfg.IdleFPS)
	}
	lm := a.config.Landmarker
	if lm == nil {
		lm = tracking.NewLandmarker(cfg, a.log.With("component", "landmarker"))
	}
	defer func() {
		if err := lm.Close(); err != nil {
			a.log.Warn("close landmarker", "error", err)
		}
	}()

	if err := cam.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := cam.Close(); err != nil {
			a.log.Warn("close camera", "error", err)
		}
	}()

	motion := tracking.NewMotionDetector(cfg.MotionThreshold)
	defer motion.Close()
	gate := tracking.NewMotionGate(cfg.IdleFPS, cfg.ActiveFPS, cfg.IdleTimeout)
	cam.SetFPS(gate.FPS())
	src := tracking.NewSource(cfg.Mapping, cfg.MinScore)

	if a.config.Monitor != nil {
		go func() {
			if err := a.config.Monitor.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("monitor stopped", "error", err)
			}
		}()
	}

	ticker := time.NewTicker(gate.Interval())
	defer ticker.Stop()
	a.log.Info("pipeline started", "camera", cfg.CameraID, "fps", gate.FPS())

	for {
		select {
		case <-ctx.Done():
			a.Reset()
			a.log.Info("pipeline stopped", "steps", a.steps)
			return nil
		case now := <-ticker.C:
			if a.processFrame(cam, lm, motion, gate, src, now) {
				cam.SetFPS(gate.FPS())
				ticker.Reset(gate.Interval())
				a.log.Info("switched mode", "active", gate.Active(), "fps", gate.FPS())
			}
			a.Step(src, now)
		}
	}
}

// processFrame reads one frame and refreshes src. It reports whether the
// motion gate changed mode.
func (a *App) processFrame(
	cam tracking.Camera,
	lm tracking.Landmarker,
	motion *tracking.MotionDetector,
	gate *tracking.MotionGate,
	src *tracking.Source,
	now time.Time,
) bool {
	frame, err := cam.ReadFrame()
	if err != nil {
		a.log.Warn("read frame", "error", err)
		return false
	}
	defer frame.Close()

	moved, pct := motion.Detect(frame)
	changed := gate.Observe(moved, now)
	if moved {
		a.log.Debug("motion", "percent", pct)
	}
	if !gate.Active() {
		return changed
	}

	if mon := a.config.Monitor; mon != nil {
		if err := mon.Frames().PublishFrame(frame); err != nil {
			a.log.Warn("publish frame", "error", err)
		}
	}

	hands, err := lm.Detect(frame)
	if err != nil {
		a.log.Warn("detect hands", "error", err)
		return changed
	}
	src.Update(hands)
	if src.IsTracked(hand.Left) || src.IsTracked(hand.Right) {
		if gate.Hold(now) {
			changed = true
		}
	}
	return changed
}
