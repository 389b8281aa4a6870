package effect

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/scene"
)

// FollowParams configures FollowHand. Rates are exponential smoothing rates
// per second.
type FollowParams struct {
	PositionRate   float64 `mapstructure:"position_rate"`
	RotationRate   float64 `mapstructure:"rotation_rate"`
	FollowRotation bool    `mapstructure:"follow_rotation"`
	MaxOffset      float64 `mapstructure:"max_offset"`
	PulseAmplitude float64 `mapstructure:"pulse_amplitude"`
	PulseHz        float64 `mapstructure:"pulse_hz"`
}

// RotationParams configures InfiniteRotation. Speeds are in radians per
// second.
type RotationParams struct {
	RandomAxis bool `mapstructure:"random_axis"`
	// Axis, when non-zero, overrides both the random and the derived axis.
	Axis             r3.Vec  `mapstructure:"axis"`
	StartSpeed       float64 `mapstructure:"start_speed"`
	MaxSpeed         float64 `mapstructure:"max_speed"`
	Acceleration     float64 `mapstructure:"acceleration"`
	ScaleOscillation float64 `mapstructure:"scale_oscillation"`
	OscillationHz    float64 `mapstructure:"oscillation_hz"`
}

// HighlightParams configures Highlight.
type HighlightParams struct {
	Color    scene.Color `mapstructure:"color"`
	Emission scene.Color `mapstructure:"emission"`
	PulseHz  float64     `mapstructure:"pulse_hz"`
	// PulseMin is the trough of the pulse as a fraction of full strength.
	PulseMin  float64 `mapstructure:"pulse_min"`
	Scale     float64 `mapstructure:"scale"`
	ScaleRate float64 `mapstructure:"scale_rate"`
	// Falloff fades the highlight linearly to zero at FalloffDistance from
	// the hand.
	Falloff         bool        `mapstructure:"falloff"`
	FalloffDistance float64     `mapstructure:"falloff_distance"`
	Outline         bool        `mapstructure:"outline"`
	OutlineColor    scene.Color `mapstructure:"outline_color"`
	OutlineScale    float64     `mapstructure:"outline_scale"`
}

// PushParams configures PushAway.
type PushParams struct {
	Force float64 `mapstructure:"force"`
	// MaxDistance is where the distance falloff reaches zero. Zero disables
	// the falloff.
	MaxDistance float64 `mapstructure:"max_distance"`
	// AimBlend mixes the gesture direction into the hand-to-target
	// direction: 0 pushes straight away from the hand, 1 along the aim.
	AimBlend          float64       `mapstructure:"aim_blend"`
	TorqueFactor      float64       `mapstructure:"torque_factor"`
	AutoCreateBody    bool          `mapstructure:"auto_create_body"`
	TemporaryMass     float64       `mapstructure:"temporary_mass"`
	Continuous        bool          `mapstructure:"continuous"`
	Shockwave         bool          `mapstructure:"shockwave"`
	ShockwaveDuration time.Duration `mapstructure:"shockwave_duration"`
	ShockwaveScale    float64       `mapstructure:"shockwave_scale"`
	ShockwaveColor    scene.Color   `mapstructure:"shockwave_color"`
}

// HeartbeatParams configures Heartbeat.
type HeartbeatParams struct {
	// Rate is in beats per minute.
	Rate              float64       `mapstructure:"rate"`
	DoubleBeat        bool          `mapstructure:"double_beat"`
	SecondaryDelay    time.Duration `mapstructure:"secondary_delay"`
	SecondaryStrength float64       `mapstructure:"secondary_strength"`
	PulseScale        float64       `mapstructure:"pulse_scale"`
	Hold              time.Duration `mapstructure:"hold"`
	Color             scene.Color   `mapstructure:"color"`
	Emission          scene.Color   `mapstructure:"emission"`
	Impulse           float64       `mapstructure:"impulse"`
}

// Params groups the parameters of every effect kind. A responder carries a
// full set and the effect picks its own section.
type Params struct {
	Follow    FollowParams    `mapstructure:"follow"`
	Rotation  RotationParams  `mapstructure:"rotation"`
	Highlight HighlightParams `mapstructure:"highlight"`
	Push      PushParams      `mapstructure:"push"`
	Heartbeat HeartbeatParams `mapstructure:"heartbeat"`
}

// DefaultParams returns the default parameters of every effect.
func DefaultParams() Params {
	return Params{
		Follow: FollowParams{
			PositionRate:   12,
			RotationRate:   8,
			FollowRotation: true,
			MaxOffset:      0.15,
			PulseAmplitude: 0.03,
			PulseHz:        2,
		},
		Rotation: RotationParams{
			StartSpeed:    1,
			MaxSpeed:      6,
			Acceleration:  2,
			OscillationHz: 1,
		},
		Highlight: HighlightParams{
			Color:           scene.Color{R: 1, G: 0.85, B: 0.2, A: 1},
			Emission:        scene.Color{R: 1, G: 0.6, B: 0.1, A: 1},
			PulseHz:         1.5,
			PulseMin:        0.6,
			Scale:           1.1,
			ScaleRate:       10,
			Falloff:         true,
			FalloffDistance: 0.5,
			Outline:         true,
			OutlineColor:    scene.White,
			OutlineScale:    1.05,
		},
		Push: PushParams{
			Force:             2,
			MaxDistance:       1,
			AimBlend:          0.5,
			TorqueFactor:      0.2,
			TemporaryMass:     1,
			Shockwave:         true,
			ShockwaveDuration: 400 * time.Millisecond,
			ShockwaveScale:    0.5,
			ShockwaveColor:    scene.Color{R: 0.6, G: 0.8, B: 1, A: 0.8},
		},
		Heartbeat: HeartbeatParams{
			Rate:              72,
			DoubleBeat:        true,
			SecondaryDelay:    150 * time.Millisecond,
			SecondaryStrength: 0.6,
			PulseScale:        1.2,
			Hold:              100 * time.Millisecond,
			Color:             scene.Color{R: 1, G: 0.2, B: 0.3, A: 1},
			Emission:          scene.Color{R: 0.8, G: 0.1, B: 0.1, A: 1},
			Impulse:           0.5,
		},
	}
}
