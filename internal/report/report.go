// Package report records a simulated run and renders it as a timeline plot:
// wrist coordinates per hand over time, with a marker wherever a gesture
// was confirmed.
package report

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/interaction"
)

// Default image size.
const (
	Width  = 12 * vg.Inch
	Height = 5 * vg.Inch
)

var axisColors = [3]color.Color{
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
}

var gestureColors = []color.Color{
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 23, G: 190, B: 207, A: 255},
	color.RGBA{R: 188, G: 189, B: 34, A: 255},
	color.RGBA{R: 227, G: 119, B: 194, A: 255},
}

type sample struct {
	at  float64
	pos r3.Vec
}

// Recorder accumulates wrist samples and gesture starts. It is not safe for
// concurrent use.
type Recorder struct {
	start time.Time

	// tracks holds contiguous tracked segments per hand.
	tracks  [2][][]sample
	open    [2]bool
	starts  map[string]plotter.XYs
	samples int
}

// NewRecorder creates a recorder whose time axis begins at start.
func NewRecorder(start time.Time) *Recorder {
	return &Recorder{start: start, starts: make(map[string]plotter.XYs)}
}

// Sample records the wrist of every tracked hand at now.
func (r *Recorder) Sample(now time.Time, src hand.Source) {
	at := now.Sub(r.start).Seconds()
	for _, side := range hand.Sides {
		if !hand.Tracked(src, side) {
			r.open[side] = false
			continue
		}
		if !r.open[side] {
			r.tracks[side] = append(r.tracks[side], nil)
			r.open[side] = true
		}
		seg := &r.tracks[side][len(r.tracks[side])-1]
		*seg = append(*seg, sample{at: at, pos: src.WristPose(side).Position})
		r.samples++
	}
}

// Notice records gesture starts; other notices are ignored.
func (r *Recorder) Notice(n interaction.Notice) {
	if n.Type != interaction.GestureStarted {
		return
	}
	key := n.Gesture + " (" + n.Hand + ")"
	r.starts[key] = append(r.starts[key], plotter.XY{X: n.Time.Sub(r.start).Seconds(), Y: n.Position.Y})
}

// Samples returns the number of wrist samples recorded.
func (r *Recorder) Samples() int { return r.samples }

// Plot builds the timeline.
func (r *Recorder) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "wrist position (m)"

	axes := [3]string{"x", "y", "z"}
	for _, side := range hand.Sides {
		for seg, samples := range r.tracks[side] {
			for axis := range axes {
				pts := make(plotter.XYs, len(samples))
				for i, s := range samples {
					pts[i] = plotter.XY{X: s.at, Y: component(s.pos, axis)}
				}
				line, err := plotter.NewLine(pts)
				if err != nil {
					return nil, fmt.Errorf("%s %s line: %w", side, axes[axis], err)
				}
				line.Color = axisColors[axis]
				line.Width = vg.Points(1)
				if side == hand.Left {
					line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
				}
				p.Add(line)
				if seg == 0 {
					p.Legend.Add(fmt.Sprintf("%s %s", side, axes[axis]), line)
				}
			}
		}
	}

	keys := make([]string, 0, len(r.starts))
	for k := range r.starts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		sc, err := plotter.NewScatter(r.starts[k])
		if err != nil {
			return nil, fmt.Errorf("%s markers: %w", k, err)
		}
		sc.GlyphStyle.Color = gestureColors[i%len(gestureColors)]
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(k, sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Save renders the timeline to path; the extension picks the format.
func (r *Recorder) Save(path, title string) error {
	p, err := r.Plot(title)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
