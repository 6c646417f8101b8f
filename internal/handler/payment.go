package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
	"github.com/tip2talk/server/internal/service/payment"
)

type PaymentHandler struct {
	chatService    *service.ChatService
	paymentService payment.Provider
}

func NewPaymentHandler(chatService *service.ChatService, paymentService payment.Provider) *PaymentHandler {
	return &PaymentHandler{
		chatService:    chatService,
		paymentService: paymentService,
	}
}

type createPaymentRequest struct {
	Type      string `json:"type"`      // media_purchase, tip, video_call
	MessageID string `json:"message_id"` // media_purchase only
	ChatID    string `json:"chat_id"`
	CreatorID string `json:"creator_id"` // tip and video_call
	Amount    int64  `json:"amount"`     // minor units, tip and video_call
}

// Create builds a payment intent for a media unlock, tip, or video call. The
// server decides the amount for media purchases; the client's amount is only
// trusted for tips and calls, where the payer chooses it. A creator without a
// connected payout account fails with a distinct code before any intent is
// created.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	var req createPaymentRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var in payment.CreatePaymentInput
	switch req.Type {
	case model.TransactionTypeMediaPurchase:
		in, err = h.mediaPurchaseInput(req, profile.ID)
	case model.TransactionTypeTip:
		in, err = h.tipInput(req, profile.ID)
	case model.TransactionTypeVideoCall:
		in, err = h.videoCallInput(req, profile.ID)
	default:
		writeError(w, http.StatusBadRequest, "unknown payment type")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	intent, err := h.paymentService.CreatePayment(in)
	if err != nil {
		if errors.Is(err, payment.ErrCreatorNotConnected) {
			writeErrorCode(w, http.StatusPaymentRequired, "creator_not_connected",
				"this creator cannot receive payments yet")
			return
		}
		if errors.Is(err, payment.ErrPaymentsDisabled) {
			writeError(w, http.StatusServiceUnavailable, "payments are not configured")
			return
		}
		slog.Error("failed to create payment", "error", err, "type", req.Type, "buyer_id", profile.ID, "provider", h.paymentService.Name())
		writeError(w, http.StatusInternalServerError, "failed to create payment")
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

// Status returns the ledger's view of a payment after reconciling it with the
// processor. Clients poll this after confirming; success here is what unlocks
// the purchase, not the client's own confirmation result.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	paymentIntentID := r.PathValue("id")

	transaction, err := h.paymentService.CheckPayment(paymentIntentID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		slog.Error("failed to check payment", "error", err, "payment_intent_id", paymentIntentID)
		writeError(w, http.StatusInternalServerError, "failed to check payment")
		return
	}

	// Only the payer and the payee may see the row.
	payer := transaction.BuyerID != nil && *transaction.BuyerID == profile.ID
	if !payer && transaction.CreatorID != profile.ID {
		writeError(w, http.StatusForbidden, "not your payment")
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// Webhook receives processor events. Signature verification happens inside
// the provider.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	err = h.paymentService.HandleWebhook(payload, r.Header)
	if err != nil {
		slog.Error("failed to handle webhook", "error", err, "provider", h.paymentService.Name())
		writeError(w, http.StatusBadRequest, "failed to process webhook")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"received": true}`))
}

func (h *PaymentHandler) mediaPurchaseInput(req createPaymentRequest, buyerID string) (payment.CreatePaymentInput, error) {
	if req.MessageID == "" {
		return payment.CreatePaymentInput{}, errors.New("message_id is required")
	}

	message, err := h.chatService.MessageForPurchase(req.MessageID, buyerID)
	if err != nil {
		return payment.CreatePaymentInput{}, err
	}

	purchased, err := h.chatService.HasPurchased(message.ID, buyerID)
	if err != nil {
		return payment.CreatePaymentInput{}, err
	}
	if purchased {
		return payment.CreatePaymentInput{}, errors.New("media already purchased")
	}

	return payment.CreatePaymentInput{
		Amount:      int64(*message.MediaPrice),
		Description: "Media unlock",
		CreatorID:   message.SenderID,
		ChatID:      message.ConversationID,
		BuyerID:     buyerID,
		Metadata: map[string]string{
			"type":       model.TransactionTypeMediaPurchase,
			"message_id": message.ID,
		},
	}, nil
}

func (h *PaymentHandler) tipInput(req createPaymentRequest, buyerID string) (payment.CreatePaymentInput, error) {
	if req.ChatID == "" || req.Amount <= 0 {
		return payment.CreatePaymentInput{}, errors.New("chat_id and a positive amount are required")
	}

	conversation, err := h.chatService.Conversation(req.ChatID, buyerID)
	if err != nil {
		return payment.CreatePaymentInput{}, err
	}
	if conversation.CreatorID == buyerID {
		return payment.CreatePaymentInput{}, errors.New("creators cannot tip themselves")
	}

	return payment.CreatePaymentInput{
		Amount:      req.Amount,
		Description: "Tip",
		CreatorID:   conversation.CreatorID,
		ChatID:      conversation.ID,
		BuyerID:     buyerID,
		Metadata: map[string]string{
			"type": model.TransactionTypeTip,
		},
	}, nil
}

func (h *PaymentHandler) videoCallInput(req createPaymentRequest, buyerID string) (payment.CreatePaymentInput, error) {
	if req.CreatorID == "" || req.Amount <= 0 {
		return payment.CreatePaymentInput{}, errors.New("creator_id and a positive amount are required")
	}
	if req.CreatorID == buyerID {
		return payment.CreatePaymentInput{}, errors.New("cannot book a call with yourself")
	}

	return payment.CreatePaymentInput{
		Amount:      req.Amount,
		Description: fmt.Sprintf("Video call with creator %s", req.CreatorID),
		CreatorID:   req.CreatorID,
		ChatID:      req.ChatID,
		BuyerID:     buyerID,
		Metadata: map[string]string{
			"type": model.TransactionTypeVideoCall,
		},
	}, nil
}
