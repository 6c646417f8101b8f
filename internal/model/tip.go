package model

import "time"

// Tip is a standalone monetary record linking a payer to a creator,
// optionally tied to a conversation. Amounts are in minor units.
type Tip struct {
	ID              string    `db:"id" json:"id"`
	FromUserID      string    `db:"from_user_id" json:"from_user_id"`
	ToCreatorID     string    `db:"to_creator_id" json:"to_creator_id"`
	ConversationID  *string   `db:"conversation_id" json:"conversation_id,omitempty"`
	Amount          int       `db:"amount" json:"amount"`
	Message         string    `db:"message" json:"message"`
	StripePaymentID *string   `db:"stripe_payment_id" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
