package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
)

type ConversationHandler struct {
	chatService    *service.ChatService
	profileService *service.ProfileService
}

func NewConversationHandler(chatService *service.ChatService, profileService *service.ProfileService) *ConversationHandler {
	return &ConversationHandler{
		chatService:    chatService,
		profileService: profileService,
	}
}

// Inbox lists the creator's conversations, filtered and searched server side
// so the list stays correct as threads grow.
func (h *ConversationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	search := r.URL.Query().Get("search")
	filter := r.URL.Query().Get("filter")

	conversations, err := h.chatService.Inbox(profile.ID, search, filter)
	if err != nil {
		if errors.Is(err, service.ErrUnknownFilter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to list inbox", "error", err, "creator_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// FanInbox lists the fan side: every creator the fan has chatted with.
func (h *ConversationHandler) FanInbox(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	conversations, err := h.chatService.FanConversations(profile.ID)
	if err != nil {
		slog.Error("failed to list conversations", "error", err, "fan_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// Start finds or creates the conversation between the caller and a creator.
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	var in struct {
		CreatorID string `json:"creator_id"`
	}
	err := decodeJSON(r, &in)
	if err != nil || in.CreatorID == "" {
		writeError(w, http.StatusBadRequest, "creator_id is required")
		return
	}

	creator, err := h.profileService.ByID(in.CreatorID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "creator not found")
			return
		}
		slog.Error("failed to get creator", "error", err, "creator_id", in.CreatorID)
		writeError(w, http.StatusInternalServerError, "failed to start conversation")
		return
	}

	conversation, err := h.chatService.StartConversation(creator, profile.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotACreator), errors.Is(err, service.ErrSelfChat):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to start conversation", "error", err, "creator_id", in.CreatorID, "fan_id", profile.ID)
			writeError(w, http.StatusInternalServerError, "failed to start conversation")
		}
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

// Get loads a single conversation the caller participates in.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	conversationID := r.PathValue("id")

	conversation, err := h.chatService.Conversation(conversationID, profile.ID)
	if err != nil {
		writeConversationError(w, err, conversationID)
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

func writeConversationError(w http.ResponseWriter, err error, conversationID string) {
	switch {
	case errors.Is(err, repository.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "not a participant in this conversation")
	default:
		slog.Error("conversation lookup failed", "error", err, "conversation_id", conversationID)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
	}
}
