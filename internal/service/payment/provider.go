// Package payment integrates the external payment processor. The platform
// takes destination charges: the full amount is charged to the buyer and a
// fixed share is transferred to the creator's connected payout account.
package payment

import (
	"errors"
	"net/http"

	"github.com/tip2talk/server/internal/model"
)

// CreatorSharePercent is the creator's cut of every charge. The platform
// retains the remainder. This constant is the single source of truth for the
// split; UI copy and receipts must quote it, not restate it.
const CreatorSharePercent = 85

// ErrCreatorNotConnected is returned when a charge is requested for a creator
// who has no connected payout account. No payment intent is created in that
// case.
var ErrCreatorNotConnected = errors.New("creator has no connected payout account")

// CreatorShare returns the portion of amount (minor units) transferred to the
// creator, rounded down; the platform keeps the remainder.
func CreatorShare(amount int64) int64 {
	return amount * CreatorSharePercent / 100
}

// CreatePaymentInput describes one charge attempt originating from a chat.
type CreatePaymentInput struct {
	Amount      int64  // minor units
	Description string
	CreatorID   string
	ChatID      string
	BuyerID     string
	Metadata    map[string]string // carries type and message_id for purchases
}

// PaymentIntent is the client-facing result of a created charge.
type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PayoutSetupInput describes a creator onboarding request.
type PayoutSetupInput struct {
	CreatorID string
	Email     string
	Country   string
}

// PayoutSetup is the result of creating a payout account: the account id and
// the hosted onboarding link where the creator completes verification.
type PayoutSetup struct {
	AccountID     string `json:"accountId"`
	OnboardingURL string `json:"onboardingUrl"`
}

// Provider is the payment processor seam. The Stripe implementation is the
// only one wired today; handlers depend on this interface so tests can
// substitute a fake.
type Provider interface {
	Name() string

	// CreatePayment validates the creator's payout connection, creates the
	// payment intent with the creator's transfer share, and records a pending
	// ledger row. Fails with ErrCreatorNotConnected before any intent is
	// created when the creator is not connected.
	CreatePayment(in CreatePaymentInput) (*PaymentIntent, error)

	// CheckPayment retrieves the processor's view of the intent and settles
	// the ledger accordingly: succeeded finalizes the grant, a terminal
	// failure marks the transaction failed. Returns the updated ledger row.
	CheckPayment(paymentIntentID string) (*model.Transaction, error)

	// SetupPayout creates the creator's payout account (payouts disabled
	// until verification) and returns the onboarding link.
	SetupPayout(in PayoutSetupInput) (*PayoutSetup, error)

	// HandleWebhook verifies and processes a processor webhook delivery.
	HandleWebhook(payload []byte, headers http.Header) error
}
