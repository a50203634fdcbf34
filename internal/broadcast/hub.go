// Package broadcast fans simulation events out to WebSocket viewers.
// Delivery is fire-and-forget: no acknowledgement, no backpressure to
// the simulation, slow clients are dropped.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	clientBuffer = 64
	hubBuffer    = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers are read-only; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one named broadcast message.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	SentAt  int64  `json:"sent_at"`
}

// client is one connected viewer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub manages viewer connections and event fan-out.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*client
	register   chan *client
	unregister chan *client
	events     chan Event
}

// NewHub creates an idle hub; call Run to start the event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*client),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		events:     make(chan Event, hubBuffer),
	}
}

// Run processes registrations and broadcasts. Blocks; run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			slog.Info("viewer connected", "client", c.id, "total", n)
			go c.writePump()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			slog.Info("viewer disconnected", "client", c.id, "total", n)

		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

// Publish queues an event for fan-out, dropping it if the hub is full.
// Never blocks: the simulation holds its lock while publishing.
func (h *Hub) Publish(event string, payload any) {
	ev := Event{Type: event, Payload: payload, SentAt: time.Now().Unix()}
	select {
	case h.events <- ev:
	default:
		slog.Debug("broadcast queue full, dropping event", "type", event)
	}
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) fanOut(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("broadcast marshal failed", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; skip this event for them.
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket viewer connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	h.register <- c
	go c.readPump(h)
}

// writePump drains the send channel to the socket with ping keepalives.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
