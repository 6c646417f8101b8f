package model

import "time"

// MediaPurchase is a persisted entitlement: once recorded, the buyer sees the
// priced media unlocked on every device and across reloads.
type MediaPurchase struct {
	ID              string    `db:"id" json:"id"`
	MessageID       string    `db:"message_id" json:"message_id"`
	BuyerID         string    `db:"buyer_id" json:"buyer_id"`
	Amount          int       `db:"amount" json:"amount"`
	StripePaymentID *string   `db:"stripe_payment_id" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
