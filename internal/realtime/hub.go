// Package realtime delivers change notifications over websockets. Rooms are
// keyed by string: one room per open conversation thread and one inbox room
// per creator for conversation-list updates.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	EventMessageCreated      = "message.created"
	EventConversationUpdated = "conversation.updated"
)

// Event is one realtime notification. ID is the identity of the underlying
// record (message id, conversation id) and doubles as the dedup key: a client
// that already saw an id during replay will not receive it again from a
// broadcast.
type Event struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Payload any    `json:"payload"`
}

func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

func InboxRoom(creatorID string) string {
	return "inbox:" + creatorID
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Leave is idempotent: removing a client that already left is a no-op, so a
// client close racing a hub broadcast never double-unsubscribes.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.rooms[room]
	if m == nil {
		return
	}
	delete(m, c)
	if len(m) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast sends the event to every client in the room. Clients whose send
// buffer is full are closed rather than allowed to block delivery to others.
func (h *Hub) Broadcast(room string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal realtime event", "error", err, "type", event.Type)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Enqueue(event.ID, data)
	}
}

// RoomSize reports the number of subscribed clients, for tests and the
// health endpoint.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)
