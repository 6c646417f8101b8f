package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/realtime"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/storage"
	"github.com/tip2talk/server/internal/validation"
)

var (
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrNotParticipant  = errors.New("not a participant in this conversation")
	ErrNotACreator     = errors.New("profile is not a creator")
	ErrPriceNotAllowed = errors.New("only creators can price media")
	ErrSelfChat        = errors.New("cannot start a conversation with yourself")
	ErrUnknownFilter   = errors.New("unknown conversation filter")
)

// ChatService owns conversations and messages: inbox listing, thread loading
// with per-viewer lock state, sending, and realtime fanout.
type ChatService struct {
	conversationRepository repository.ConversationRepository
	messageRepository      repository.MessageRepository
	purchaseRepository     repository.PurchaseRepository
	storage                storage.Storage
	hub                    *realtime.Hub
}

func NewChatService(
	conversationRepository repository.ConversationRepository,
	messageRepository repository.MessageRepository,
	purchaseRepository repository.PurchaseRepository,
	fileStorage storage.Storage,
	hub *realtime.Hub,
) *ChatService {
	return &ChatService{
		conversationRepository: conversationRepository,
		messageRepository:      messageRepository,
		purchaseRepository:     purchaseRepository,
		storage:                fileStorage,
		hub:                    hub,
	}
}

// Inbox returns a creator's conversations, newest activity first, joined to
// the counterpart fan profile. filter is one of all, paid, recent.
func (s *ChatService) Inbox(creatorID, search, filter string) ([]*model.Conversation, error) {
	switch filter {
	case "", repository.ConversationFilterAll, repository.ConversationFilterPaid, repository.ConversationFilterRecent:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, filter)
	}

	return s.conversationRepository.ForCreator(creatorID, search, filter)
}

// FanConversations lists the fan side of the inbox.
func (s *ChatService) FanConversations(fanID string) ([]*model.Conversation, error) {
	return s.conversationRepository.ForFan(fanID)
}

// StartConversation finds or creates the single conversation for a
// (creator, fan) pair.
func (s *ChatService) StartConversation(creator *model.Profile, fanID string) (*model.Conversation, error) {
	if !creator.IsCreator {
		return nil, ErrNotACreator
	}
	if creator.ID == fanID {
		return nil, ErrSelfChat
	}

	return s.conversationRepository.GetOrCreate(creator.ID, fanID)
}

// Conversation loads a conversation the viewer participates in.
func (s *ChatService) Conversation(conversationID, viewerID string) (*model.Conversation, error) {
	conversation, err := s.conversationRepository.ByID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(viewerID) {
		return nil, ErrNotParticipant
	}

	return conversation, nil
}

// Thread returns the full message history rendered for the viewer: priced
// media the viewer has not purchased comes back locked with no URL.
func (s *ChatService) Thread(conversationID, viewerID string) ([]model.MessageView, error) {
	if _, err := s.Conversation(conversationID, viewerID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepository.ForConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	purchased, err := s.purchaseRepository.MessageIDsForBuyer(conversationID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	views := make([]model.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.View(viewerID, purchased[m.ID], s.mediaURL))
	}

	return views, nil
}

// ThreadSince returns viewer-rendered messages created after the given time.
// Used by the realtime handler to replay the gap between a thread fetch and
// its subscription.
func (s *ChatService) ThreadSince(conversationID, viewerID string, since time.Time) ([]model.MessageView, error) {
	messages, err := s.messageRepository.ForConversationSince(conversationID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	purchased, err := s.purchaseRepository.MessageIDsForBuyer(conversationID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	views := make([]model.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.View(viewerID, purchased[m.ID], s.mediaURL))
	}

	return views, nil
}

// ViewFor renders a single message for a viewer, resolving its media URL
// through storage. The sender of a priced media message always sees it
// unlocked; anyone else needs a recorded purchase.
func (s *ChatService) ViewFor(message *model.Message, viewerID string) model.MessageView {
	purchased := false
	if message.Priced() && message.SenderID != viewerID {
		purchased, _ = s.purchaseRepository.Exists(message.ID, viewerID)
	}
	return message.View(viewerID, purchased, s.mediaURL)
}

// SendText inserts a text message. Whitespace-only content is rejected before
// any write: no row is created and the conversation is untouched.
func (s *ChatService) SendText(conversationID, senderID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	conversation, err := s.Conversation(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    model.MessageTypeText,
	}

	err = s.messageRepository.Create(message)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.afterSend(conversation, message)
	return message, nil
}

// SendMedia validates and stores an uploaded file, then inserts the media
// message carrying its storage path, coarse media type, optional caption, and
// optional price. Validation failures happen before any storage write.
func (s *ChatService) SendMedia(conversationID string, sender *model.Profile, file multipart.File, header *multipart.FileHeader, price *int, caption string) (*model.Message, error) {
	conversation, err := s.Conversation(conversationID, sender.ID)
	if err != nil {
		return nil, err
	}

	category, err := validation.ValidateMedia(header)
	if err != nil {
		return nil, err
	}

	if price != nil && *price > 0 && !sender.IsCreator {
		return nil, ErrPriceNotAllowed
	}
	if price != nil && *price <= 0 {
		price = nil
	}

	ext := filepath.Ext(header.Filename)
	path := fmt.Sprintf("%s/%s%s", conversationID, uuid.New().String(), ext)

	err = s.storage.Save(path, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        strings.TrimSpace(caption),
		MessageType:    model.MessageTypeMedia,
		MediaPath:      &path,
		MediaType:      &category,
		MediaPrice:     price,
	}

	err = s.messageRepository.Create(message)
	if err != nil {
		// DB insert failed: clean up the orphaned object.
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Error("failed to delete media during cleanup", "error", delErr, "path", path)
		}
		return nil, fmt.Errorf("failed to create media message: %w", err)
	}

	s.afterSend(conversation, message)
	return message, nil
}

// SendTip inserts a tip message into the thread. Called by the payment
// ledger once a tip payment is confirmed.
func (s *ChatService) SendTip(conversationID, senderID string, amount int, note string) (*model.Message, error) {
	conversation, err := s.Conversation(conversationID, senderID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        strings.TrimSpace(note),
		MessageType:    model.MessageTypeTip,
		TipAmount:      &amount,
	}

	err = s.messageRepository.Create(message)
	if err != nil {
		return nil, fmt.Errorf("failed to create tip message: %w", err)
	}

	s.afterSend(conversation, message)
	return message, nil
}

// MessageForPurchase loads a priced media message and its conversation for
// the payment flow, verifying the buyer participates and is not the sender.
func (s *ChatService) MessageForPurchase(messageID, buyerID string) (*model.Message, error) {
	message, err := s.messageRepository.ByID(messageID)
	if err != nil {
		return nil, err
	}
	if !message.Priced() {
		return nil, errors.New("message has no price")
	}
	if message.SenderID == buyerID {
		return nil, errors.New("sender already owns this media")
	}
	if _, err := s.Conversation(message.ConversationID, buyerID); err != nil {
		return nil, err
	}

	return message, nil
}

// HasPurchased reports whether the buyer already holds the entitlement for a
// priced message.
func (s *ChatService) HasPurchased(messageID, buyerID string) (bool, error) {
	return s.purchaseRepository.Exists(messageID, buyerID)
}

// afterSend bumps the conversation's activity clock and fans the message out:
// the conversation room gets the new message, the creator's inbox room gets a
// conversation-updated ping that drives a list refetch.
//
// The broadcast view is rendered for an anonymous viewer, so priced media
// always goes out locked; the sender already holds the content and
// purchasers unlock through the thread fetch.
func (s *ChatService) afterSend(conversation *model.Conversation, message *model.Message) {
	err := s.conversationRepository.TouchLastMessage(conversation.ID, message.CreatedAt)
	if err != nil {
		slog.Error("failed to touch conversation", "error", err, "conversation_id", conversation.ID)
	}

	view := message.View("", false, s.mediaURL)
	s.hub.Broadcast(realtime.ConversationRoom(conversation.ID), realtime.Event{
		Type:    realtime.EventMessageCreated,
		ID:      message.ID,
		Payload: view,
	})
	s.hub.Broadcast(realtime.InboxRoom(conversation.CreatorID), realtime.Event{
		Type:    realtime.EventConversationUpdated,
		ID:      conversation.ID,
		Payload: map[string]any{"conversation_id": conversation.ID, "last_message_at": message.CreatedAt},
	})
}

// mediaURL resolves a storage path to a short-lived fetchable URL.
func (s *ChatService) mediaURL(path string) string {
	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		return s3Storage.MediaURL(path)
	}
	return s.storage.URL(path)
}
