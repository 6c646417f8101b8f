package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
)

// LedgerService keeps the payment ledger: one transaction per payment intent,
// created pending and resolved to succeeded or failed. Success is the only
// path that grants entitlements, and it is driven exclusively by
// processor-confirmed status (webhook or intent retrieval), never by the
// client's own report.
type LedgerService struct {
	transactionRepository repository.TransactionRepository
	purchaseRepository    repository.PurchaseRepository
	tipRepository         repository.TipRepository
	profileRepository     repository.ProfileRepository
	chatService           *ChatService
}

func NewLedgerService(
	transactionRepository repository.TransactionRepository,
	purchaseRepository repository.PurchaseRepository,
	tipRepository repository.TipRepository,
	profileRepository repository.ProfileRepository,
	chatService *ChatService,
) *LedgerService {
	return &LedgerService{
		transactionRepository: transactionRepository,
		purchaseRepository:    purchaseRepository,
		tipRepository:         tipRepository,
		profileRepository:     profileRepository,
		chatService:           chatService,
	}
}

// RecordPending writes the ledger row for a freshly created payment intent.
func (s *LedgerService) RecordPending(transaction *model.Transaction) error {
	transaction.Status = model.TransactionStatusPending
	return s.transactionRepository.Create(transaction)
}

// Status returns the ledger status for a payment intent.
func (s *LedgerService) Status(paymentIntentID string) (*model.Transaction, error) {
	return s.transactionRepository.ByPaymentIntentID(paymentIntentID)
}

// FinalizeSuccess marks the transaction succeeded and grants what was paid
// for. It is idempotent: the webhook and the status poll can both finalize
// the same intent without double-granting.
func (s *LedgerService) FinalizeSuccess(paymentIntentID string) error {
	transaction, err := s.transactionRepository.ByPaymentIntentID(paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	if transaction.Status == model.TransactionStatusSucceeded {
		return nil
	}

	err = s.transactionRepository.UpdateStatus(paymentIntentID, model.TransactionStatusSucceeded)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	switch transaction.Type {
	case model.TransactionTypeMediaPurchase:
		return s.grantMediaPurchase(transaction)
	case model.TransactionTypeTip:
		return s.grantTip(transaction)
	case model.TransactionTypeVideoCall:
		// The call record is created at booking time; payment confirmation
		// needs no further grant.
		return nil
	default:
		return fmt.Errorf("unknown transaction type: %s", transaction.Type)
	}
}

// FinalizeFailure marks the transaction failed. Failure grants nothing and is
// reported to the client as a distinct state, never as success.
func (s *LedgerService) FinalizeFailure(paymentIntentID string) error {
	transaction, err := s.transactionRepository.ByPaymentIntentID(paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	// A transaction that already succeeded stays succeeded.
	if transaction.Status == model.TransactionStatusSucceeded {
		return nil
	}

	return s.transactionRepository.UpdateStatus(paymentIntentID, model.TransactionStatusFailed)
}

func (s *LedgerService) grantMediaPurchase(transaction *model.Transaction) error {
	if transaction.MessageID == nil || transaction.BuyerID == nil {
		return errors.New("media purchase transaction missing message or buyer")
	}

	purchase := &model.MediaPurchase{
		MessageID:       *transaction.MessageID,
		BuyerID:         *transaction.BuyerID,
		Amount:          transaction.Amount,
		StripePaymentID: &transaction.StripePaymentIntentID,
	}

	err := s.purchaseRepository.Create(purchase)
	if err != nil {
		return fmt.Errorf("failed to record entitlement: %w", err)
	}

	slog.Info("media purchase granted",
		"message_id", *transaction.MessageID,
		"buyer_id", *transaction.BuyerID,
		"amount", transaction.Amount,
	)
	return nil
}

func (s *LedgerService) grantTip(transaction *model.Transaction) error {
	if transaction.BuyerID == nil {
		return errors.New("tip transaction missing buyer")
	}

	tip := &model.Tip{
		FromUserID:      *transaction.BuyerID,
		ToCreatorID:     transaction.CreatorID,
		ConversationID:  transaction.ChatID,
		Amount:          transaction.Amount,
		StripePaymentID: &transaction.StripePaymentIntentID,
	}

	err := s.tipRepository.Create(tip)
	if err != nil {
		return fmt.Errorf("failed to record tip: %w", err)
	}

	err = s.profileRepository.AddTipReceived(transaction.CreatorID, transaction.Amount)
	if err != nil {
		return fmt.Errorf("failed to update tip total: %w", err)
	}

	// Surface the tip in the thread when it was sent from a conversation.
	if transaction.ChatID != nil {
		_, err = s.chatService.SendTip(*transaction.ChatID, *transaction.BuyerID, transaction.Amount, "")
		if err != nil {
			slog.Error("failed to post tip message", "error", err, "conversation_id", *transaction.ChatID)
		}
	}

	slog.Info("tip granted",
		"creator_id", transaction.CreatorID,
		"from", *transaction.BuyerID,
		"amount", transaction.Amount,
	)
	return nil
}
