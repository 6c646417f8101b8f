package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/realtime"
	"github.com/tip2talk/server/internal/service"
)

type WSHandler struct {
	chatService *service.ChatService
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
}

func NewWSHandler(chatService *service.ChatService, hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		chatService: chatService,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Token auth makes the connection safe cross-origin; the browser
			// cannot attach a token it does not hold.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Conversation subscribes the caller to live updates for one thread. The
// optional since parameter (RFC 3339) replays messages created after that
// instant before live delivery starts, closing the gap between a thread fetch
// and the subscription taking effect. Replayed and live events share ids, so
// a message arriving during the handoff is delivered once, not twice.
func (h *WSHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	conversationID := r.PathValue("id")

	// Participant check happens before the upgrade so outsiders get a plain
	// HTTP error, not a hijacked connection.
	_, err := h.chatService.Conversation(conversationID, profile.ID)
	if err != nil {
		writeConversationError(w, err, conversationID)
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "conversation_id", conversationID)
		return
	}

	client := realtime.NewClient(h.hub, realtime.ConversationRoom(conversationID), conn)
	h.hub.Join(realtime.ConversationRoom(conversationID), client)

	if !since.IsZero() {
		h.replay(client, conversationID, profile.ID, since)
	}

	go client.WritePump()
	go client.ReadPump()
}

// Inbox subscribes a creator to conversation-list updates.
func (h *WSHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "creator_id", profile.ID)
		return
	}

	room := realtime.InboxRoom(profile.ID)
	client := realtime.NewClient(h.hub, room, conn)
	h.hub.Join(room, client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *WSHandler) replay(client *realtime.Client, conversationID, viewerID string, since time.Time) {
	views, err := h.chatService.ThreadSince(conversationID, viewerID, since)
	if err != nil {
		slog.Error("failed to replay messages", "error", err, "conversation_id", conversationID)
		return
	}

	for _, view := range views {
		event := realtime.Event{
			Type:    realtime.EventMessageCreated,
			ID:      view.ID,
			Payload: view,
		}
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal replay event", "error", err, "message_id", view.ID)
			continue
		}
		client.Enqueue(view.ID, data)
	}
}
