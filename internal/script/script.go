// Package script plays back a hand signal described in YAML. A script lists
// keyframes per hand; each keyframe sets any of the tracked flag, curls,
// pinch strength and wrist pose, inheriting the rest from the previous
// keyframe. A keyframe marked lerp is reached by interpolating from its
// predecessor, otherwise values step at the keyframe time.
//
//	name: pinch the cube
//	hands:
//	  right:
//	    - at: 0s
//	      position: {x: -0.2, y: 1.2, z: 0.45}
//	      curls: [0.1]
//	    - at: 400ms
//	      pinch: 0.95
//	      lerp: true
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/hand"
)

// ErrEmpty is returned for scripts without keyframes.
var ErrEmpty = errors.New("script has no keyframes")

// DefaultFPS is the playback rate when the script does not set one.
const DefaultFPS = 60

// tail is how long playback runs past the last keyframe when no duration is
// given, so releases triggered by it are observed.
const tail = 500 * time.Millisecond

// Wave overlays a sinusoidal wrist oscillation on the keyframe position.
type Wave struct {
	Axis      r3.Vec  `yaml:"axis"`
	Amplitude float64 `yaml:"amplitude"`
	Hz        float64 `yaml:"hz"`
}

// Keyframe is one step of a hand track. Nil fields inherit.
type Keyframe struct {
	At      time.Duration `yaml:"at"`
	Tracked *bool         `yaml:"tracked"`
	// Curls holds five values thumb first, or one value for every finger.
	Curls    []float64 `yaml:"curls"`
	Pinch    *float64  `yaml:"pinch"`
	Position *r3.Vec   `yaml:"position"`
	Forward  *r3.Vec   `yaml:"forward"`
	Up       *r3.Vec   `yaml:"up"`
	// Wave starts an oscillation; an amplitude of zero stops it.
	Wave *Wave `yaml:"wave"`
	Lerp bool  `yaml:"lerp"`
}

// Script is a parsed playback description.
type Script struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Duration    time.Duration         `yaml:"duration"`
	FPS         int                   `yaml:"fps"`
	Hands       map[string][]Keyframe `yaml:"hands"`

	tracks [2][]frame
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script. Unknown keys are errors.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// frame is a keyframe with every inherited field resolved.
type frame struct {
	at        time.Duration
	lerp      bool
	tracked   bool
	curls     [hand.NumFingers]float64
	pinch     float64
	pinchSet  bool
	pose      hand.Pose
	wave      Wave
	waveStart time.Duration
}

func initialFrame() frame {
	return frame{
		pose: hand.Pose{
			Position: r3.Vec{Y: 1.2, Z: 0.4},
			Forward:  r3.Vec{Z: 1},
			Up:       r3.Vec{Y: 1},
		},
	}
}

func (s *Script) compile() error {
	total := 0
	var last time.Duration
	for name, keys := range s.Hands {
		side, err := hand.ParseSide(name)
		if err != nil {
			return err
		}
		if len(s.tracks[side]) > 0 {
			return fmt.Errorf("hand %s listed twice", side)
		}
		frames, err := resolve(keys)
		if err != nil {
			return fmt.Errorf("hand %s: %w", side, err)
		}
		s.tracks[side] = frames
		total += len(frames)
		if n := len(frames); n > 0 && frames[n-1].at > last {
			last = frames[n-1].at
		}
	}
	if total == 0 {
		return ErrEmpty
	}
	if s.FPS < 0 {
		return fmt.Errorf("fps must not be negative, got %d", s.FPS)
	}
	if s.FPS == 0 {
		s.FPS = DefaultFPS
	}
	if s.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %v", s.Duration)
	}
	if s.Duration == 0 {
		s.Duration = last + tail
	}
	return nil
}

func resolve(keys []Keyframe) ([]frame, error) {
	frames := make([]frame, 0, len(keys))
	prev := initialFrame()
	for i, k := range keys {
		if k.At < 0 {
			return nil, fmt.Errorf("keyframe %d: negative time %v", i, k.At)
		}
		if i > 0 && k.At < keys[i-1].At {
			return nil, fmt.Errorf("keyframe %d: %v is before %v", i, k.At, keys[i-1].At)
		}

		f := prev
		f.at = k.At
		f.lerp = k.Lerp && i > 0
		switch {
		case k.Tracked != nil:
			f.tracked = *k.Tracked
		case i == 0:
			f.tracked = true
		}
		switch len(k.Curls) {
		case 0:
		case 1:
			for j := range f.curls {
				f.curls[j] = k.Curls[0]
			}
		case int(hand.NumFingers):
			copy(f.curls[:], k.Curls)
		default:
			return nil, fmt.Errorf("keyframe %d: curls needs 1 or %d values, got %d", i, hand.NumFingers, len(k.Curls))
		}
		if k.Pinch != nil {
			f.pinch = *k.Pinch
			f.pinchSet = true
		}
		if k.Position != nil {
			f.pose.Position = *k.Position
		}
		if k.Forward != nil {
			f.pose.Forward = *k.Forward
		}
		if k.Up != nil {
			f.pose.Up = *k.Up
		}
		if k.Wave != nil {
			if k.Wave.Amplitude != 0 && k.Wave.Hz <= 0 {
				return nil, fmt.Errorf("keyframe %d: wave hz must be positive", i)
			}
			f.wave = *k.Wave
			f.waveStart = k.At
		}
		frames = append(frames, f)
		prev = f
	}
	return frames, nil
}

// Frames returns the number of ticks needed to play the script at its
// frame rate, including the tick at zero.
func (s *Script) Frames() int {
	return int(s.Duration*time.Duration(s.FPS)/time.Second) + 1
}

// Step returns the tick interval.
func (s *Script) Step() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

// Sides returns the hands the script drives, left first.
func (s *Script) Sides() []hand.Side {
	var out []hand.Side
	for _, side := range hand.Sides {
		if len(s.tracks[side]) > 0 {
			out = append(out, side)
		}
	}
	return out
}

// at evaluates side's track at offset t.
func (s *Script) at(side hand.Side, t time.Duration) frame {
	if side != hand.Left && side != hand.Right {
		return frame{}
	}
	frames := s.tracks[side]
	i := sort.Search(len(frames), func(i int) bool { return frames[i].at > t }) - 1
	if i < 0 {
		return frame{}
	}
	f := frames[i]
	if i+1 < len(frames) && frames[i+1].lerp {
		next := frames[i+1]
		if span := next.at - f.at; span > 0 {
			f = interpolate(f, next, float64(t-f.at)/float64(span))
		}
	}
	f.pose.Position = r3.Add(f.pose.Position, f.wave.offset(t-f.waveStart))
	return f
}
