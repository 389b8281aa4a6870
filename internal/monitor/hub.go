package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/logging"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Stats counts hub traffic.
type Stats struct {
	Clients   int    `json:"clients"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub broadcasts notices to websocket clients. Publish never blocks: each
// client has a bounded queue and notices are dropped for clients that fall
// behind.
type Hub struct {
	queue int
	log   *logging.Logger

	mu        sync.RWMutex
	clients   map[*client]struct{}
	closed    bool
	published uint64
	dropped   uint64
}

// NewHub creates a hub with a per-client queue of size queue.
func NewHub(queue int, log *logging.Logger) *Hub {
	if queue <= 0 {
		queue = 1
	}
	return &Hub{
		queue:   queue,
		log:     log.With("component", "monitor"),
		clients: make(map[*client]struct{}),
	}
}

// Publish encodes n and queues it for every client. It matches the
// dispatcher's observer signature.
func (h *Hub) Publish(n interaction.Notice) {
	msg, err := json.Marshal(n)
	if err != nil {
		h.log.Warn("encode notice", "error", err)
		return
	}
	h.Broadcast(msg)
}

// Broadcast queues a raw message for every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.published++
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
}

// Stats returns the current counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{Clients: len(h.clients), Published: h.published, Dropped: h.dropped}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.queue),
		done: make(chan struct{}),
	}
	if !h.add(c) {
		conn.Close()
		return
	}
	h.log.Debug("client connected", "remote", r.RemoteAddr)

	go h.write(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.log.Debug("client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.done)
	}
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.done)
	}
}
