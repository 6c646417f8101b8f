package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	Create(transaction *model.Transaction) error
	ByPaymentIntentID(paymentIntentID string) (*model.Transaction, error)
	UpdateStatus(paymentIntentID, status string) error
	EarningsSince(creatorID string, since time.Time) (int, error)
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(transaction *model.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	if transaction.UpdatedAt.IsZero() {
		transaction.UpdatedAt = transaction.CreatedAt
	}

	_, err := r.db.Exec(`
		INSERT INTO transactions (id, chat_id, creator_id, buyer_id, message_id, amount, type,
		                          stripe_payment_intent_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, transaction.ID, transaction.ChatID, transaction.CreatorID, transaction.BuyerID,
		transaction.MessageID, transaction.Amount, transaction.Type,
		transaction.StripePaymentIntentID, transaction.Status,
		transaction.CreatedAt, transaction.UpdatedAt)

	return err
}

func (r *transactionRepository) ByPaymentIntentID(paymentIntentID string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Get(&transaction,
		`SELECT * FROM transactions WHERE stripe_payment_intent_id = $1`, paymentIntentID)

	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (r *transactionRepository) UpdateStatus(paymentIntentID, status string) error {
	result, err := r.db.Exec(`
		UPDATE transactions SET status = $1, updated_at = $2 WHERE stripe_payment_intent_id = $3
	`, status, time.Now(), paymentIntentID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// EarningsSince sums succeeded transactions for a creator from the given
// time, in minor units.
func (r *transactionRepository) EarningsSince(creatorID string, since time.Time) (int, error) {
	var total int
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE creator_id = $1 AND status = $2 AND created_at >= $3
	`, creatorID, model.TransactionStatusSucceeded, since).Scan(&total)
	return total, err
}
