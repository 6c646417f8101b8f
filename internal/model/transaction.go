package model

import "time"

const (
	TransactionTypeMediaPurchase = "media_purchase"
	TransactionTypeTip           = "tip"
	TransactionTypeVideoCall     = "video_call"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusSucceeded = "succeeded"
	TransactionStatusFailed    = "failed"
)

// Transaction is the ledger row backing one payment intent. It is created
// pending when the intent is created and resolved by webhook or status poll.
type Transaction struct {
	ID                    string    `db:"id" json:"id"`
	ChatID                *string   `db:"chat_id" json:"chat_id,omitempty"`
	CreatorID             string    `db:"creator_id" json:"creator_id"`
	BuyerID               *string   `db:"buyer_id" json:"buyer_id,omitempty"`
	MessageID             *string   `db:"message_id" json:"message_id,omitempty"`
	Amount                int       `db:"amount" json:"amount"` // minor units
	Type                  string    `db:"type" json:"type"`
	StripePaymentIntentID string    `db:"stripe_payment_intent_id" json:"stripe_payment_intent_id"`
	Status                string    `db:"status" json:"status"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}
