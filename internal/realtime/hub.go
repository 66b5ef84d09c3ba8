package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is one change notification pushed to admin browsers.
type Event struct {
	Type      string      `json:"type"`
	Table     string      `json:"table"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans events out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu    sync.RWMutex
	count int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.setCount(0)
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			slog.Debug("Realtime client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.setCount(len(h.clients))
			slog.Debug("Realtime client disconnected", "clients", len(h.clients))

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow reader; drop it rather than stall everyone else.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.setCount(len(h.clients))
		}
	}
}

// Publish queues an event without blocking the caller.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to marshal realtime event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("Realtime broadcast queue full, dropping event", "type", e.Type)
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}
