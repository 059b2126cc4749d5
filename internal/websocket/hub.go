// Package websocket pushes change events to connected UI tabs: one event
// per successful mutation and per fired reminder notification.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/apex/internal/model"
)

// Event is a real-time change notification broadcast to all clients.
type Event struct {
	Type    string              `json:"type"`
	Entity  string              `json:"entity"`
	Action  string              `json:"action"`
	ID      string              `json:"id,omitempty"`
	Payload *model.Notification `json:"payload,omitempty"`
}

// ChangeEvent describes a repository mutation (create/update/delete/import).
func ChangeEvent(entity, action, id string) Event {
	return Event{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// NotificationEvent carries a fired reminder notification to the UI.
func NotificationEvent(n model.Notification) Event {
	return Event{
		Type:    "notification_fired",
		Entity:  "notification",
		Action:  "fired",
		ID:      n.ID,
		Payload: &n,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to all connected clients. Slow clients drop the
// event rather than block the mutation path.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
