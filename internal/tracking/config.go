package tracking

import (
	"errors"
	"fmt"
	"time"
)

// Landmarker kinds.
const (
	LandmarkerMediaPipe = "mediapipe"
	LandmarkerMock      = "mock"
)

// Config holds the camera, motion gate and landmarker settings.
type Config struct {
	CameraID int `mapstructure:"camera_id"`
	Width    int `mapstructure:"width"`
	Height   int `mapstructure:"height"`

	// IdleFPS is the frame rate while nothing moves.
	IdleFPS int `mapstructure:"idle_fps"`
	// ActiveFPS is the frame rate while motion is seen.
	ActiveFPS int `mapstructure:"active_fps"`
	// IdleTimeout is how long without motion before dropping to IdleFPS.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// MotionThreshold is the percentage of changed pixels that counts as
	// motion.
	MotionThreshold float64 `mapstructure:"motion_threshold"`

	Landmarker string  `mapstructure:"landmarker"`
	Python     string  `mapstructure:"python"`
	Script     string  `mapstructure:"script"`
	MaxHands   int     `mapstructure:"max_hands"`
	MinScore   float64 `mapstructure:"min_score"`

	Mapping Mapping `mapstructure:"mapping"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Width:           640,
		Height:          480,
		IdleFPS:         5,
		ActiveFPS:       15,
		IdleTimeout:     2 * time.Second,
		MotionThreshold: 1.0,
		Landmarker:      LandmarkerMediaPipe,
		MaxHands:        2,
		MinScore:        0.5,
		Mapping:         DefaultMapping(),
	}
}

// Validate checks the frame rates, thresholds and mapping.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.IdleFPS <= 0 || c.ActiveFPS < c.IdleFPS {
		errs = append(errs, fmt.Errorf("fps must satisfy 0 < idle_fps (%d) <= active_fps (%d)", c.IdleFPS, c.ActiveFPS))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("idle_timeout must not be negative, got %v", c.IdleTimeout))
	}
	if c.MotionThreshold <= 0 || c.MotionThreshold > 100 {
		errs = append(errs, fmt.Errorf("motion_threshold must be in (0, 100], got %v", c.MotionThreshold))
	}
	if c.Landmarker != LandmarkerMediaPipe && c.Landmarker != LandmarkerMock {
		errs = append(errs, fmt.Errorf("landmarker must be %q or %q, got %q", LandmarkerMediaPipe, LandmarkerMock, c.Landmarker))
	}
	if c.MaxHands < 1 || c.MaxHands > 2 {
		errs = append(errs, fmt.Errorf("max_hands must be 1 or 2, got %d", c.MaxHands))
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		errs = append(errs, fmt.Errorf("min_score must be in [0, 1], got %v", c.MinScore))
	}
	if err := c.Mapping.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
