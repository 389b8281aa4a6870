package tracking

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logging"
)

// ErrScriptNotFound is returned when no landmarker script can be located.
var ErrScriptNotFound = errors.New("hand_landmarker.py not found")

const scriptName = "hand_landmarker.py"

// MediaPipeConfig configures the MediaPipe subprocess.
type MediaPipeConfig struct {
	// Python is the interpreter. Empty means a project venv or python3.
	Python string
	// Script is the service script. Empty means search the usual places.
	Script        string
	MaxHands      int
	MinConfidence float64
	// IdleShutdown stops the subprocess after this long without frames.
	IdleShutdown time.Duration
}

// MediaPipe runs a Python MediaPipe service as a subprocess. Frames are sent
// as a 4-byte big-endian length followed by JPEG bytes; each reply is one
// JSON line. The process starts on the first frame and stops when idle.
type MediaPipe struct {
	cfg    MediaPipeConfig
	script string
	log    *logging.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	started bool
	idle    *time.Timer
}

// NewMediaPipe locates the service script. The subprocess is started lazily.
func NewMediaPipe(cfg MediaPipeConfig, log *logging.Logger) (*MediaPipe, error) {
	script := cfg.Script
	if script == "" {
		script = locate(searchPaths(scriptName, "scripts"))
	} else if _, err := os.Stat(script); err != nil {
		script = ""
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if cfg.MaxHands <= 0 {
		cfg.MaxHands = 2
	}
	if cfg.IdleShutdown <= 0 {
		cfg.IdleShutdown = 30 * time.Second
	}
	return &MediaPipe{cfg: cfg, script: script, log: log.With("landmarker", "mediapipe")}, nil
}

// Script returns the resolved service script path.
func (m *MediaPipe) Script() string { return m.script }

// Detect sends frame to the service and decodes the reply.
func (m *MediaPipe) Detect(frame *gocv.Mat) ([]Landmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeFrame(m.stdin, buf.GetBytes()); err != nil {
		m.shutdown()
		return nil, err
	}

	line, err := m.stdout.ReadBytes('\n')
	if err != nil {
		m.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	hands, err := decodeHands(line)
	if err != nil {
		return nil, err
	}
	m.resetIdle()
	return hands, nil
}

// Close shuts down the subprocess.
func (m *MediaPipe) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown()
}

func (m *MediaPipe) ensureStarted() error {
	if m.started {
		return nil
	}

	python := m.cfg.Python
	if python == "" {
		python = locate(searchPaths("python", "venv/bin"))
	}
	if python == "" {
		python = "python3"
	}

	m.cmd = exec.Command(python, m.script,
		"--max-hands", strconv.Itoa(m.cfg.MaxHands),
		"--min-confidence", strconv.FormatFloat(m.cfg.MinConfidence, 'f', -1, 64))
	m.cmd.Stderr = os.Stderr

	stdin, err := m.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := m.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	m.stdin = stdin
	m.stdout = bufio.NewReader(stdout)
	m.started = true
	m.log.Debug("service started", "python", python, "pid", m.cmd.Process.Pid)
	return nil
}

func (m *MediaPipe) shutdown() error {
	if !m.started {
		return nil
	}
	if m.idle != nil {
		m.idle.Stop()
		m.idle = nil
	}
	m.stdin.Close()
	err := m.cmd.Wait()

	m.started = false
	m.cmd = nil
	m.stdin = nil
	m.stdout = nil
	m.log.Debug("service stopped")
	return err
}

func (m *MediaPipe) resetIdle() {
	if m.idle != nil {
		m.idle.Stop()
	}
	m.idle = time.AfterFunc(m.cfg.IdleShutdown, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.shutdown()
	})
}

// writeFrame writes one length-prefixed frame.
func writeFrame(w io.Writer, data []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

type wireHand struct {
	Points     []wirePoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// decodeHands parses one service reply. Hands with an unknown handedness or
// too few points are skipped.
func decodeHands(line []byte) ([]Landmarks, error) {
	var reply struct {
		Hands []wireHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", reply.Error)
	}

	out := make([]Landmarks, 0, len(reply.Hands))
	for _, h := range reply.Hands {
		side, err := hand.ParseSide(h.Handedness)
		if err != nil || len(h.Points) < NumLandmarks {
			continue
		}
		l := Landmarks{Side: side, Score: h.Score}
		for i := range l.Points {
			p := h.Points[i]
			l.Points[i] = r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
		}
		out = append(out, l)
	}
	return out, nil
}

// searchPaths returns the candidate locations of name under dir: relative
// to the working directory, next to the executable and under ~/.mudra.
func searchPaths(name, dir string) []string {
	candidates := []string{
		filepath.Join(dir, name),
		filepath.Join("..", dir, name),
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), dir, name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".mudra", dir, name))
	}
	return candidates
}

// locate returns the absolute path of the first existing candidate.
func locate(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
