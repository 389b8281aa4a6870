// Package monitor serves a local debug view of a running mudra host: a health
// endpoint, a websocket stream of dispatcher notices and an MJPEG stream of
// the camera frames the tracker sees.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/logging"
)

// Config holds the server configuration.
type Config struct {
	Addr string
	// QueueSize is the per-client backlog of notices.
	QueueSize int
	Logger    *logging.Logger
}

// Server represents the monitor HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	hub    *Hub
	frames *FrameStream
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		hub:    NewHub(config.QueueSize, config.Logger),
		frames: NewFrameStream(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/events", s.hub)
	s.mux.Handle("/api/stream", s.frames)
}

// Hub returns the notice broadcaster.
func (s *Server) Hub() *Hub { return s.hub }

// Frames returns the camera frame stream.
func (s *Server) Frames() *FrameStream { return s.frames }

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.hub.Stats()
	response := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(s.start).String(),
		"clients":   stats.Clients,
		"published": stats.Published,
		"dropped":   stats.Dropped,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down and disconnects every client.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("monitor listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	s.frames.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
