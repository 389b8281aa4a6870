package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/interaction"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRecorder_Sample(t *testing.T) {
	src := hand.NewMockSource()
	r := NewRecorder(epoch)

	src.SetTracked(hand.Right, true)
	src.SetPosition(hand.Right, r3.Vec{Y: 1})
	r.Sample(epoch, src)
	r.Sample(epoch.Add(time.Second), src)

	src.SetTracked(hand.Right, false)
	r.Sample(epoch.Add(2*time.Second), src)

	src.SetTracked(hand.Right, true)
	r.Sample(epoch.Add(3*time.Second), src)
	r.Sample(epoch.Add(4*time.Second), nil)

	assert.Equal(t, 3, r.Samples())
	require.Len(t, r.tracks[hand.Right], 2, "tracking gap starts a new segment")
	assert.Len(t, r.tracks[hand.Right][0], 2)
	assert.Len(t, r.tracks[hand.Right][1], 1)
	assert.Equal(t, 1.0, r.tracks[hand.Right][0][1].at)
	assert.Empty(t, r.tracks[hand.Left])
}

func TestRecorder_Notice(t *testing.T) {
	r := NewRecorder(epoch)
	r.Notice(interaction.Notice{Type: interaction.GestureStarted, Gesture: "pinch", Hand: "right",
		Position: r3.Vec{Y: 1.2}, Time: epoch.Add(500 * time.Millisecond)})
	r.Notice(interaction.Notice{Type: interaction.EffectStarted, Gesture: "pinch", Hand: "right"})

	require.Contains(t, r.starts, "pinch (right)")
	assert.Len(t, r.starts, 1)
	assert.InDelta(t, 0.5, r.starts["pinch (right)"][0].X, 1e-9)
	assert.InDelta(t, 1.2, r.starts["pinch (right)"][0].Y, 1e-9)
}

func TestRecorder_Save(t *testing.T) {
	src := hand.NewMockSource()
	src.SetTracked(hand.Left, true)
	r := NewRecorder(epoch)
	for i := 0; i < 10; i++ {
		src.SetPosition(hand.Left, r3.Vec{X: float64(i) / 10, Y: 1})
		r.Sample(epoch.Add(time.Duration(i)*100*time.Millisecond), src)
	}
	r.Notice(interaction.Notice{Type: interaction.GestureStarted, Gesture: "wave", Hand: "left",
		Position: r3.Vec{Y: 1}, Time: epoch.Add(time.Second)})

	p, err := r.Plot("wave")
	require.NoError(t, err)
	assert.Equal(t, "wave", p.Title.Text)

	for _, ext := range []string{"png", "svg"} {
		path := filepath.Join(t.TempDir(), "timeline."+ext)
		require.NoError(t, r.Save(path, "wave"))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRecorder_Empty(t *testing.T) {
	_, err := NewRecorder(epoch).Plot("empty")
	assert.NoError(t, err)
}
