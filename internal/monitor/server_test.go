package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/interaction"
)

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		assert.Equal(t, float64(0), response["clients"])
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_Events(t *testing.T) {
	s := New(Config{QueueSize: 8})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return s.Hub().Stats().Clients == 1 }, time.Second, 5*time.Millisecond)

	s.Hub().Publish(interaction.Notice{
		Type:    interaction.EffectStarted,
		Gesture: "pinch",
		Effect:  "follow_hand",
		Hand:    "Right",
		Node:    "cube",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got interaction.Notice
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, interaction.EffectStarted, got.Type)
	assert.Equal(t, "follow_hand", got.Effect)
	assert.Equal(t, "cube", got.Node)

	stats := s.Hub().Stats()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Zero(t, stats.Dropped)
}

func TestHub_DropsWhenClientFallsBehind(t *testing.T) {
	h := NewHub(1, nil)
	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	require.True(t, h.add(c))

	h.Broadcast([]byte("a"))
	h.Broadcast([]byte("b"))
	h.Broadcast([]byte("c"))

	stats := h.Stats()
	assert.Equal(t, 1, stats.Clients)
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, []byte("a"), <-c.send)

	h.remove(c)
	assert.Zero(t, h.Stats().Clients)
	select {
	case <-c.done:
	default:
		t.Fatal("remove should close the client")
	}
}

func TestHub_Close(t *testing.T) {
	s := New(Config{})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return s.Hub().Stats().Clients == 1 }, time.Second, 5*time.Millisecond)

	s.Hub().Close()
	s.Hub().Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	s.Hub().Broadcast([]byte("late"))
	assert.Zero(t, s.Hub().Stats().Published)

	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	assert.False(t, s.Hub().add(c))
}

func TestFrameStream_ServesLatestFrame(t *testing.T) {
	s := New(Config{})
	ts := httptest.NewServer(s)
	defer ts.Close()

	jpeg := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	s.Frames().Publish(jpeg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readLine := func() string {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		return line
	}
	assert.Equal(t, "--frame\r\n", readLine())
	assert.Equal(t, "Content-Type: image/jpeg\r\n", readLine())
	assert.Equal(t, "Content-Length: 6\r\n", readLine())
	assert.Equal(t, "\r\n", readLine())

	body := make([]byte, len(jpeg))
	_, err = io.ReadFull(r, body)
	require.NoError(t, err)
	assert.Equal(t, jpeg, body)
}

func TestFrameStream_MethodAndClose(t *testing.T) {
	fs := NewFrameStream()

	rec := httptest.NewRecorder()
	fs.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	fs.Close()
	done := make(chan struct{})
	go func() {
		fs.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stream", nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closed stream should return")
	}
}

func TestFrameStream_PublishFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	fs := NewFrameStream()
	require.NoError(t, fs.PublishFrame(nil))

	empty := gocv.NewMat()
	defer empty.Close()
	require.NoError(t, fs.PublishFrame(&empty))
	assert.Zero(t, fs.version)

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	require.NoError(t, fs.PublishFrame(&frame))

	assert.Equal(t, uint64(1), fs.version)
	require.Greater(t, len(fs.jpeg), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, fs.jpeg[:2])
}

func TestServer_ListenAndServe(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
}
