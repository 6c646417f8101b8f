package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

var ErrPurchaseNotFound = errors.New("media purchase not found")

type PurchaseRepository interface {
	Create(purchase *model.MediaPurchase) error
	Exists(messageID, buyerID string) (bool, error)
	MessageIDsForBuyer(conversationID, buyerID string) (map[string]bool, error)
	CountForBuyer(buyerID string) (int, error)
}

type purchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create records an entitlement. Recording the same (message, buyer) pair
// twice is treated as success so webhook delivery and status polling can both
// finalize the same payment.
func (r *purchaseRepository) Create(purchase *model.MediaPurchase) error {
	if purchase.ID == "" {
		purchase.ID = uuid.New().String()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}

	exists, err := r.Exists(purchase.MessageID, purchase.BuyerID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO media_purchases (id, message_id, buyer_id, amount, stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, purchase.ID, purchase.MessageID, purchase.BuyerID, purchase.Amount,
		purchase.StripePaymentID, purchase.CreatedAt)

	return err
}

func (r *purchaseRepository) Exists(messageID, buyerID string) (bool, error) {
	var id string
	err := r.db.Get(&id,
		`SELECT id FROM media_purchases WHERE message_id = $1 AND buyer_id = $2`, messageID, buyerID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MessageIDsForBuyer returns the set of purchased message ids within one
// conversation, used to resolve lock state for a whole thread in one query.
func (r *purchaseRepository) MessageIDsForBuyer(conversationID, buyerID string) (map[string]bool, error) {
	var ids []string
	err := r.db.Select(&ids, `
		SELECT p.message_id
		FROM media_purchases p
		JOIN messages m ON m.id = p.message_id
		WHERE m.conversation_id = $1 AND p.buyer_id = $2
	`, conversationID, buyerID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

func (r *purchaseRepository) CountForBuyer(buyerID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM media_purchases WHERE buyer_id = $1`, buyerID).Scan(&count)
	return count, err
}
