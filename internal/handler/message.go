package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/service"
	"github.com/tip2talk/server/internal/validation"
)

type MessageHandler struct {
	chatService *service.ChatService
}

func NewMessageHandler(chatService *service.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

// Thread returns the conversation history oldest first, rendered for the
// caller: priced media they have not purchased comes back locked.
func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	conversationID := r.PathValue("id")

	messages, err := h.chatService.Thread(conversationID, profile.ID)
	if err != nil {
		writeConversationError(w, err, conversationID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// SendText inserts a text message. Whitespace-only content is a no-op
// rejected with 422 before any write.
func (h *MessageHandler) SendText(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	conversationID := r.PathValue("id")

	var in struct {
		Content string `json:"content"`
	}
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.chatService.SendText(conversationID, profile.ID, in.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			writeError(w, http.StatusUnprocessableEntity, "message content is empty")
			return
		}
		writeConversationError(w, err, conversationID)
		return
	}

	writeJSON(w, http.StatusCreated, h.chatService.ViewFor(message, profile.ID))
}

// SendMedia accepts a multipart upload with optional caption and price.
// Only creators may set a price.
func (h *MessageHandler) SendMedia(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	conversationID := r.PathValue("id")

	err := r.ParseMultipartForm(validation.MaxMediaSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "media file is required")
		return
	}
	defer file.Close()

	caption := r.FormValue("caption")

	var price *int
	if raw := r.FormValue("price"); raw != "" {
		parsed, err := parsePrice(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "price must be a positive amount in cents")
			return
		}
		price = &parsed
	}

	message, err := h.chatService.SendMedia(conversationID, profile, file, header, price, caption)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, validation.ErrUnsupportedMedia):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrPriceNotAllowed):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeConversationError(w, err, conversationID)
		}
		return
	}

	slog.Info("media message sent",
		"conversation_id", conversationID,
		"sender_id", profile.ID,
		"media_type", message.MediaType,
		"priced", message.Priced())

	writeJSON(w, http.StatusCreated, h.chatService.ViewFor(message, profile.ID))
}
