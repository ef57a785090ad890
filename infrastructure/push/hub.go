// Package push notifies open browser tabs that a job's cached rows changed,
// so every tab re-renders without waiting for its own poll.
package push

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is broadcast to all connected tabs.
type Event struct {
	JobKey string `json:"job_key"`
	Kind   string `json:"kind"`
	Change string `json:"change"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub tracks connected tabs and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast sends an event to every connected tab, dropping connections that
// fail to take the write.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("push marshal failed", slog.Any("err", err))
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.drop(c)
		}
	}
}

// RowsChanged is the convenience wrapper handlers and pollers call.
func (h *Hub) RowsChanged(jobKey, kind string) {
	h.Broadcast(Event{JobKey: jobKey, Kind: kind, Change: "rows"})
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount reports connected tabs; used by tests and the health screen.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	// The desk serves localhost tabs only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and keeps it registered until the tab
// disconnects. Inbound messages are discarded; the channel is one-way.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("push upgrade failed", slog.Any("err", err))
		return
	}

	c := &client{conn: conn}
	h.add(c)

	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
