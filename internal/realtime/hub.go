package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"myhometech/internal/logger"
)

// Hub is the connection registry: user id -> set of live connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	closed  bool
	logger  *zap.Logger
}

func NewHub(l *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger.OrNop(l).Named("hub"),
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Client) {
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
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	c.closed = true
	close(c.send)
}

// SendToUser queues payload on every connection of userID and returns how
// many accepted it. Connections with a full buffer are skipped.
func (h *Hub) SendToUser(userID int64, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients[userID] {
		if c.enqueue(payload) {
			delivered++
		}
	}
	return delivered
}

// SendToRole queues payload on every connection whose user has role.
func (h *Hub) SendToRole(role string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, set := range h.clients {
		for c := range set {
			if c.role == role && c.enqueue(payload) {
				delivered++
			}
		}
	}
	return delivered
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineCount is the number of distinct connected users.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects everyone and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.clients {
		for c := range set {
			c.closed = true
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

// PublishToUser marshals v and pushes it to the user's local connections.
func (h *Hub) PublishToUser(_ context.Context, userID int64, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	n := h.SendToUser(userID, payload)
	h.logger.Debug("pushed to user", zap.Int64("user_id", userID), zap.Int("connections", n))
	return nil
}

// PublishToRole marshals v and pushes it to every local connection of role.
func (h *Hub) PublishToRole(_ context.Context, role string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	n := h.SendToRole(role, payload)
	h.logger.Debug("pushed to role", zap.String("role", role), zap.Int("connections", n))
	return nil
}
