package gesture

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logging"
)

// PinchConfig configures the pinch detector.
type PinchConfig struct {
	ActivateThreshold float64       `mapstructure:"activate_threshold"`
	ReleaseThreshold  float64       `mapstructure:"release_threshold"`
	Stability         time.Duration `mapstructure:"stability"`
}

// DefaultPinchConfig returns the pinch defaults.
func DefaultPinchConfig() PinchConfig {
	return PinchConfig{
		ActivateThreshold: 0.8,
		ReleaseThreshold:  0.3,
		Stability:         100 * time.Millisecond,
	}
}

// Validate checks the thresholds form a hysteresis band inside [0, 1].
func (c PinchConfig) Validate() error {
	if c.ActivateThreshold <= 0 || c.ActivateThreshold > 1 {
		return fmt.Errorf("activate_threshold must be in (0, 1], got %v", c.ActivateThreshold)
	}
	if c.ReleaseThreshold < 0 || c.ReleaseThreshold >= c.ActivateThreshold {
		return fmt.Errorf("release_threshold must be in [0, activate_threshold), got %v", c.ReleaseThreshold)
	}
	return validStability(c.Stability)
}

// TapConfig configures the tap detector. Speeds are in metres per second.
type TapConfig struct {
	SpikeSpeed  float64       `mapstructure:"spike_speed"`
	StopSpeed   float64       `mapstructure:"stop_speed"`
	MaxSpeed    float64       `mapstructure:"max_speed"`
	StopWindow  time.Duration `mapstructure:"stop_window"`
	TapDuration time.Duration `mapstructure:"tap_duration"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
	Stability   time.Duration `mapstructure:"stability"`
}

// DefaultTapConfig returns the tap defaults. The fast-then-stop pattern is
// its own filter, so the stability window is zero.
func DefaultTapConfig() TapConfig {
	return TapConfig{
		SpikeSpeed:  1.0,
		StopSpeed:   0.15,
		MaxSpeed:    3.0,
		StopWindow:  100 * time.Millisecond,
		TapDuration: 150 * time.Millisecond,
		Cooldown:    300 * time.Millisecond,
	}
}

func (c TapConfig) Validate() error {
	if c.SpikeSpeed <= 0 {
		return fmt.Errorf("spike_speed must be positive, got %v", c.SpikeSpeed)
	}
	if c.StopSpeed < 0 || c.StopSpeed >= c.SpikeSpeed {
		return fmt.Errorf("stop_speed must be in [0, spike_speed), got %v", c.StopSpeed)
	}
	if c.MaxSpeed < c.SpikeSpeed {
		return fmt.Errorf("max_speed must be >= spike_speed, got %v", c.MaxSpeed)
	}
	if c.StopWindow <= 0 || c.TapDuration <= 0 {
		return errors.New("stop_window and tap_duration must be positive")
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %v", c.Cooldown)
	}
	return validStability(c.Stability)
}

// PointConfig configures the point detector.
type PointConfig struct {
	Finger          hand.Finger   `mapstructure:"-"`
	FingerName      string        `mapstructure:"finger"`
	ExtendedMax     float64       `mapstructure:"extended_max"`
	CurledMin       float64       `mapstructure:"curled_min"`
	IncludeThumb    bool          `mapstructure:"include_thumb"`
	AimToleranceDeg float64       `mapstructure:"aim_tolerance_deg"`
	Stability       time.Duration `mapstructure:"stability"`
}

// DefaultPointConfig returns the point defaults.
func DefaultPointConfig() PointConfig {
	return PointConfig{
		Finger:          hand.Index,
		FingerName:      hand.Index.String(),
		ExtendedMax:     0.3,
		CurledMin:       0.6,
		AimToleranceDeg: 30,
		Stability:       120 * time.Millisecond,
	}
}

// Validate checks thresholds and resolves FingerName into Finger.
func (c *PointConfig) Validate() error {
	if c.FingerName != "" {
		f, err := hand.ParseFinger(c.FingerName)
		if err != nil {
			return err
		}
		c.Finger = f
	}
	if c.ExtendedMax < 0 || c.CurledMin > 1 || c.ExtendedMax >= c.CurledMin {
		return fmt.Errorf("extended_max (%v) must be below curled_min (%v) within [0, 1]", c.ExtendedMax, c.CurledMin)
	}
	if c.AimToleranceDeg <= 0 || c.AimToleranceDeg > 180 {
		return fmt.Errorf("aim_tolerance_deg must be in (0, 180], got %v", c.AimToleranceDeg)
	}
	return validStability(c.Stability)
}

// OpenPalmConfig configures the open palm detector.
type OpenPalmConfig struct {
	MinExtended        int           `mapstructure:"min_extended"`
	ExtendedMax        float64       `mapstructure:"extended_max"`
	FacingToleranceDeg float64       `mapstructure:"facing_tolerance_deg"`
	Outward            r3.Vec        `mapstructure:"outward"`
	Stability          time.Duration `mapstructure:"stability"`
}

// DefaultOpenPalmConfig returns the open palm defaults. Outward is used when
// the source cannot report the viewer position.
func DefaultOpenPalmConfig() OpenPalmConfig {
	return OpenPalmConfig{
		MinExtended:        4,
		ExtendedMax:        0.3,
		FacingToleranceDeg: 45,
		Outward:            r3.Vec{Z: 1},
		Stability:          150 * time.Millisecond,
	}
}

func (c OpenPalmConfig) Validate() error {
	if c.MinExtended < 1 || c.MinExtended > 4 {
		return fmt.Errorf("min_extended must be in [1, 4], got %d", c.MinExtended)
	}
	if c.ExtendedMax <= 0 || c.ExtendedMax > 1 {
		return fmt.Errorf("extended_max must be in (0, 1], got %v", c.ExtendedMax)
	}
	if c.FacingToleranceDeg <= 0 || c.FacingToleranceDeg > 180 {
		return fmt.Errorf("facing_tolerance_deg must be in (0, 180], got %v", c.FacingToleranceDeg)
	}
	return validStability(c.Stability)
}

// WaveConfig configures the wave detector.
type WaveConfig struct {
	Window time.Duration `mapstructure:"window"`
	// MinOscillations is the number of extrema (peaks and troughs) a series
	// needs in the window. Each extremum is half a period, so 3 is met by
	// about one and a half back-and-forth swings.
	MinOscillations    int     `mapstructure:"min_oscillations"`
	AmplitudeThreshold float64 `mapstructure:"amplitude_threshold"`
	// NoiseFloor is the fraction of AmplitudeThreshold below which an
	// extremum is ignored.
	NoiseFloor float64       `mapstructure:"noise_floor"`
	MinSamples int           `mapstructure:"min_samples"`
	Stability  time.Duration `mapstructure:"stability"`
}

// DefaultWaveConfig returns the wave defaults.
func DefaultWaveConfig() WaveConfig {
	return WaveConfig{
		Window:             1200 * time.Millisecond,
		MinOscillations:    3,
		AmplitudeThreshold: 0.05,
		NoiseFloor:         0.25,
		MinSamples:         8,
		Stability:          100 * time.Millisecond,
	}
}

func (c WaveConfig) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MinOscillations < 1 {
		return fmt.Errorf("min_oscillations must be at least 1, got %d", c.MinOscillations)
	}
	if c.AmplitudeThreshold <= 0 {
		return fmt.Errorf("amplitude_threshold must be positive, got %v", c.AmplitudeThreshold)
	}
	if c.NoiseFloor < 0 || c.NoiseFloor >= 1 {
		return fmt.Errorf("noise_floor must be in [0, 1), got %v", c.NoiseFloor)
	}
	if c.MinSamples < 3 {
		return fmt.Errorf("min_samples must be at least 3, got %d", c.MinSamples)
	}
	return validStability(c.Stability)
}

func validStability(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("stability must not be negative, got %v", d)
	}
	return nil
}

// Config groups the settings of every detector.
type Config struct {
	Pinch    PinchConfig    `mapstructure:"pinch"`
	Tap      TapConfig      `mapstructure:"tap"`
	Point    PointConfig    `mapstructure:"point"`
	OpenPalm OpenPalmConfig `mapstructure:"open_palm"`
	Wave     WaveConfig     `mapstructure:"wave"`
}

// DefaultConfig returns defaults for every detector.
func DefaultConfig() Config {
	return Config{
		Pinch:    DefaultPinchConfig(),
		Tap:      DefaultTapConfig(),
		Point:    DefaultPointConfig(),
		OpenPalm: DefaultOpenPalmConfig(),
		Wave:     DefaultWaveConfig(),
	}
}

// Validate validates every section, prefixing errors with the section name.
func (c *Config) Validate() error {
	var errs []error
	check := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	check("pinch", c.Pinch.Validate())
	check("tap", c.Tap.Validate())
	check("point", c.Point.Validate())
	check("open_palm", c.OpenPalm.Validate())
	check("wave", c.Wave.Validate())
	return errors.Join(errs...)
}

// NewDetectors builds one detector per gesture kind in Kinds order.
func NewDetectors(cfg Config, log *logging.Logger) []Detector {
	pinch := NewPinch(cfg.Pinch)
	tap := NewTap(cfg.Tap)
	point := NewPoint(cfg.Point)
	palm := NewOpenPalm(cfg.OpenPalm)
	wave := NewWave(cfg.Wave)

	for _, b := range []*base{&pinch.base, &tap.base, &point.base, &palm.base, &wave.base} {
		b.SetLogger(log)
	}
	return []Detector{pinch, tap, point, palm, wave}
}
