package payment

import (
	"fmt"
	"log/slog"

	"github.com/tip2talk/server/internal/config"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
)

// NewProvider creates the configured payment provider. In development the
// Stripe keys may be left unset so chat runs without a Stripe account; every
// payment call then fails with ErrPaymentsDisabled.
func NewProvider(cfg *config.Config, profileRepository repository.ProfileRepository, ledgerService *service.LedgerService) (Provider, error) {
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		if cfg.IsDevelopment() {
			slog.Warn("stripe keys not set, payments disabled")
			return DisabledProvider{}, nil
		}
		return nil, fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required")
	}

	slog.Info("initializing payment provider", "provider", ProviderStripe)
	return NewStripeProvider(cfg, profileRepository, ledgerService), nil
}
