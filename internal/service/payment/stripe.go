package payment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/account"
	"github.com/stripe/stripe-go/v81/accountlink"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/tip2talk/server/internal/config"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
)

const ProviderStripe = "stripe"

type StripeProvider struct {
	cfg               *config.Config
	profileRepository repository.ProfileRepository
	ledgerService     *service.LedgerService
}

func NewStripeProvider(cfg *config.Config, profileRepository repository.ProfileRepository, ledgerService *service.LedgerService) *StripeProvider {
	// Set Stripe API key
	stripe.Key = cfg.StripeSecretKey

	slog.Info("stripe provider initialized", "app_env", cfg.AppEnv)

	return &StripeProvider{
		cfg:               cfg,
		profileRepository: profileRepository,
		ledgerService:     ledgerService,
	}
}

func (s *StripeProvider) Name() string {
	return ProviderStripe
}

func (s *StripeProvider) CreatePayment(in CreatePaymentInput) (*PaymentIntent, error) {
	creator, err := s.profileRepository.ByID(in.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	// The connection check happens before any call to Stripe so a failed
	// attempt leaves nothing behind on the processor side.
	if !creator.HasPayoutAccount() {
		return nil, ErrCreatorNotConnected
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(in.Amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(in.Description),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(*creator.StripeAccountID),
			Amount:      stripe.Int64(CreatorShare(in.Amount)),
		},
		Metadata: map[string]string{
			"creator_id": in.CreatorID,
			"buyer_id":   in.BuyerID,
			"chat_id":    in.ChatID,
		},
	}
	for k, v := range in.Metadata {
		params.Metadata[k] = v
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	transaction := &model.Transaction{
		CreatorID:             in.CreatorID,
		Amount:                int(in.Amount),
		Type:                  transactionType(in.Metadata),
		StripePaymentIntentID: intent.ID,
	}
	if in.BuyerID != "" {
		transaction.BuyerID = &in.BuyerID
	}
	if in.ChatID != "" {
		transaction.ChatID = &in.ChatID
	}
	if messageID := in.Metadata["message_id"]; messageID != "" {
		transaction.MessageID = &messageID
	}

	err = s.ledgerService.RecordPending(transaction)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	slog.Info("stripe payment intent created",
		"payment_intent_id", intent.ID,
		"creator_id", in.CreatorID,
		"amount", in.Amount,
		"creator_share", CreatorShare(in.Amount),
		"type", transaction.Type)

	return &PaymentIntent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// CheckPayment reconciles the ledger with Stripe's view of the intent. The
// client polls this after confirming a payment so the grant does not depend
// on webhook delivery timing.
func (s *StripeProvider) CheckPayment(paymentIntentID string) (*model.Transaction, error) {
	intent, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		err = s.ledgerService.FinalizeSuccess(paymentIntentID)
	case stripe.PaymentIntentStatusCanceled:
		err = s.ledgerService.FinalizeFailure(paymentIntentID)
	default:
		// Still in flight, leave the ledger row pending.
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle transaction: %w", err)
	}

	return s.ledgerService.Status(paymentIntentID)
}

func (s *StripeProvider) SetupPayout(in PayoutSetupInput) (*PayoutSetup, error) {
	creator, err := s.profileRepository.ByID(in.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	accountID := ""
	if creator.HasPayoutAccount() {
		// Re-entering onboarding reuses the existing account so a creator who
		// abandoned the flow does not accumulate orphaned accounts.
		accountID = *creator.StripeAccountID
	} else {
		country := in.Country
		if country == "" {
			country = "US"
		}

		acct, err := account.New(&stripe.AccountParams{
			Type:    stripe.String(string(stripe.AccountTypeExpress)),
			Country: stripe.String(country),
			Email:   stripe.String(in.Email),
			Capabilities: &stripe.AccountCapabilitiesParams{
				CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
				Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create payout account: %w", err)
		}
		accountID = acct.ID

		// Payouts stay disabled until account.updated reports the account
		// verified.
		err = s.profileRepository.SetStripeAccount(in.CreatorID, accountID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to store payout account: %w", err)
		}
	}

	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(fmt.Sprintf("%s/dashboard?payout=refresh", s.cfg.AppURL)),
		ReturnURL:  stripe.String(fmt.Sprintf("%s/dashboard?payout=complete", s.cfg.AppURL)),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create onboarding link: %w", err)
	}

	slog.Info("stripe payout onboarding started", "creator_id", in.CreatorID, "account_id", accountID)

	return &PayoutSetup{
		AccountID:     accountID,
		OnboardingURL: link.URL,
	}, nil
}

func (s *StripeProvider) HandleWebhook(payload []byte, headers http.Header) error {
	signature := headers.Get("Stripe-Signature")

	// Use ConstructEventWithOptions to ignore API version mismatch
	// Stripe's API versions are backwards compatible, so this is safe
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	slog.Info("stripe webhook received", "event_type", event.Type)

	switch event.Type {
	case "payment_intent.succeeded":
		return s.handlePaymentIntentSucceeded(event.Data.Raw)
	case "payment_intent.payment_failed":
		return s.handlePaymentIntentFailed(event.Data.Raw)
	case "account.updated":
		return s.handleAccountUpdated(event.Data.Raw)
	default:
		slog.Warn("stripe webhook unknown event type", "event_type", event.Type)
		return nil
	}
}

func (s *StripeProvider) handlePaymentIntentSucceeded(data json.RawMessage) error {
	var intent struct {
		ID string `json:"id"`
	}

	err := json.Unmarshal(data, &intent)
	if err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	err = s.ledgerService.FinalizeSuccess(intent.ID)
	if err != nil {
		return fmt.Errorf("failed to finalize payment: %w", err)
	}

	slog.Info("stripe payment succeeded", "payment_intent_id", intent.ID)
	return nil
}

func (s *StripeProvider) handlePaymentIntentFailed(data json.RawMessage) error {
	var intent struct {
		ID        string `json:"id"`
		LastError struct {
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}

	err := json.Unmarshal(data, &intent)
	if err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	err = s.ledgerService.FinalizeFailure(intent.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	slog.Warn("stripe payment failed", "payment_intent_id", intent.ID, "reason", intent.LastError.Message)
	return nil
}

func (s *StripeProvider) handleAccountUpdated(data json.RawMessage) error {
	var acct struct {
		ID             string `json:"id"`
		PayoutsEnabled bool   `json:"payouts_enabled"`
	}

	err := json.Unmarshal(data, &acct)
	if err != nil {
		return fmt.Errorf("failed to parse account: %w", err)
	}

	err = s.profileRepository.SetPayoutEnabled(acct.ID, acct.PayoutsEnabled)
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}

	slog.Info("stripe payout account updated", "account_id", acct.ID, "payouts_enabled", acct.PayoutsEnabled)
	return nil
}

func transactionType(metadata map[string]string) string {
	switch metadata["type"] {
	case model.TransactionTypeTip:
		return model.TransactionTypeTip
	case model.TransactionTypeVideoCall:
		return model.TransactionTypeVideoCall
	default:
		return model.TransactionTypeMediaPurchase
	}
}
