package ws

import (
	"encoding/json"
	"sync"

	"battleship_backend/internal/logger"
)

// Hub routes session events to subscribed connections. One feed per
// session id; a participant may hold several connections at once
// (reconnects, multiple tabs).
type Hub struct {
	mu    sync.RWMutex
	feeds map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		feeds: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Subscribe(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.feeds[sessionID]
	if !ok {
		feed = make(map[*Client]struct{})
		h.feeds[sessionID] = feed
	}
	feed[c] = struct{}{}
}

func (h *Hub) Unsubscribe(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.feeds[sessionID]
	if !ok {
		return
	}
	delete(feed, c)
	if len(feed) == 0 {
		delete(h.feeds, sessionID)
	}
}

// Publish fans an event out to every subscriber of the session. A
// client whose send buffer is full misses the event instead of
// blocking the game; it can recover state over HTTP.
func (h *Hub) Publish(sessionID, eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
	})
	if err != nil {
		logger.Error("failed to marshal event", "error", err, "type", eventType)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.feeds[sessionID] {
		select {
		case c.Send <- data:
		default:
			logger.Warn("dropping event for slow subscriber",
				"session_id", sessionID, "player_id", c.PlayerID, "type", eventType)
		}
	}
}

// Subscribers reports how many connections watch a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.feeds[sessionID])
}
