package payment

import (
	"errors"
	"net/http"

	"github.com/tip2talk/server/internal/model"
)

// ErrPaymentsDisabled is returned by the disabled provider wired in
// development when no Stripe keys are configured. Chat still works; every
// payment operation fails with this error.
var ErrPaymentsDisabled = errors.New("payments are not configured")

const ProviderDisabled = "disabled"

type DisabledProvider struct{}

func (DisabledProvider) Name() string { return ProviderDisabled }

func (DisabledProvider) CreatePayment(CreatePaymentInput) (*PaymentIntent, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) CheckPayment(string) (*model.Transaction, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) SetupPayout(PayoutSetupInput) (*PayoutSetup, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) HandleWebhook([]byte, http.Header) error {
	return ErrPaymentsDisabled
}
