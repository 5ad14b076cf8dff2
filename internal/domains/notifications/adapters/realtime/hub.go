// Package realtime pushes inbox snapshots to a user's open websocket connections.
package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/notifications/ports"
)

// Hub tracks connected clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{clients: map[string]map[*Client]struct{}{}, logger: logger}
}

// Register adds c to its user's client set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = map[*Client]struct{}{}
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes c and closes its send channel. It is safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Push sends snapshot to every client of userID without blocking.
func (h *Hub) Push(userID string, snapshot domain.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("marshal notification snapshot", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// slow client; it will get the next snapshot
			h.logger.Warn("dropping notification snapshot for slow client", slog.String("user.id", userID))
		}
	}
}

// ClientCount returns the number of connections open for userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

var _ ports.Pusher = (*Hub)(nil)
