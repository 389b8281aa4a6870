package tracking

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/logging"
)

// Landmarker finds hands in a video frame.
type Landmarker interface {
	// Detect returns the image-space landmarks of every hand in frame, or an
	// empty slice when there are none.
	Detect(frame *gocv.Mat) ([]Landmarks, error)

	// Close releases any resources held by the landmarker.
	Close() error
}

// NewLandmarker builds the landmarker named by cfg. When MediaPipe is not
// available it falls back to an empty mock so the pipeline still runs.
func NewLandmarker(cfg Config, log *logging.Logger) Landmarker {
	if cfg.Landmarker == LandmarkerMock {
		return NewMockLandmarker()
	}
	mp, err := NewMediaPipe(MediaPipeConfig{
		Python:        cfg.Python,
		Script:        cfg.Script,
		MaxHands:      cfg.MaxHands,
		MinConfidence: cfg.MinScore,
	}, log)
	if err != nil {
		log.Warn("mediapipe not available, using mock landmarker", "error", err)
		return NewMockLandmarker()
	}
	log.Info("using mediapipe landmarker", "script", mp.Script())
	return mp
}
