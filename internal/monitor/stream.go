package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameStream serves the most recent published frame as MJPEG.
type FrameStream struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jpeg    []byte
	version uint64
	closed  bool
}

// NewFrameStream creates an empty stream.
func NewFrameStream() *FrameStream {
	s := &FrameStream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// PublishFrame encodes frame as JPEG and makes it the current frame.
func (s *FrameStream) PublishFrame(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return nil
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	s.Publish(data)
	return nil
}

// Publish makes an encoded JPEG the current frame.
func (s *FrameStream) Publish(jpeg []byte) {
	s.mu.Lock()
	s.jpeg = jpeg
	s.version++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Close wakes every viewer and ends their streams.
func (s *FrameStream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *FrameStream) wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// next blocks until a frame newer than seen is available.
func (s *FrameStream) next(seen uint64, done <-chan struct{}) ([]byte, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.version == seen && !s.closed {
		select {
		case <-done:
			return nil, seen, false
		default:
		}
		s.cond.Wait()
	}
	if s.closed {
		return nil, seen, false
	}
	return s.jpeg, s.version, true
}

// ServeHTTP streams MJPEG frames to connected clients.
func (s *FrameStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Wake the wait loop when the client goes away.
	done := r.Context().Done()
	stop := context.AfterFunc(r.Context(), s.wake)
	defer stop()

	var seen uint64
	for {
		frame, version, ok := s.next(seen, done)
		if !ok {
			return
		}
		seen = version

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
