// Package hub pushes agent events to WebSocket subscribers. Subscribers are
// listen-only: the agent broadcasts job results and device snapshots, and
// whatever a client writes is discarded.
package hub

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Event names carried in Message.Event
const (
	EventJobResult = "job_result"
	EventDevices   = "devices"
)

// Message is the envelope every broadcast uses
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected clients and fans broadcasts out to them
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			// The agent binds to localhost; cross-origin pages on the same
			// machine are the POS UI itself.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger,
	}
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// HandleUpgrade turns an HTTP request into a subscribed WebSocket client
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan Message, 256)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Info("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains the send channel onto the wire until the channel closes
// or a write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump discards inbound frames. Reading is still required: it is how
// close frames and dead peers are noticed.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
	h.log.Info("websocket client disconnected")
}

// Broadcast queues a message for every connected client. A client whose
// send buffer is full misses the message rather than stalling the caller.
func (h *Hub) Broadcast(event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- Message{Event: event, Data: data}:
		default:
		}
	}
}

// BroadcastJobResult publishes a completed submit
func (h *Hub) BroadcastJobResult(res printjob.Result) {
	h.Broadcast(EventJobResult, res)
}

// BroadcastDevices publishes a fresh registry snapshot
func (h *Hub) BroadcastDevices(devices []device.Descriptor) {
	h.Broadcast(EventDevices, devices)
}

// ClientCount reports connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Used on agent shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
	h.mu.Unlock()
}
