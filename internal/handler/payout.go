package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/service/payment"
)

type PayoutHandler struct {
	paymentService payment.Provider
}

func NewPayoutHandler(paymentService payment.Provider) *PayoutHandler {
	return &PayoutHandler{paymentService: paymentService}
}

// Setup starts payout onboarding for the calling creator and returns the
// hosted onboarding link. Safe to call again after an abandoned flow; the
// existing account is reused.
func (h *PayoutHandler) Setup(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	var in struct {
		Country string `json:"country"`
	}
	// Body is optional; country defaults inside the provider.
	_ = decodeJSON(r, &in)

	setup, err := h.paymentService.SetupPayout(payment.PayoutSetupInput{
		CreatorID: profile.ID,
		Email:     profile.Email,
		Country:   in.Country,
	})
	if err != nil {
		if errors.Is(err, payment.ErrPaymentsDisabled) {
			writeError(w, http.StatusServiceUnavailable, "payments are not configured")
			return
		}
		slog.Error("failed to set up payout", "error", err, "creator_id", profile.ID, "provider", h.paymentService.Name())
		writeError(w, http.StatusInternalServerError, "failed to set up payouts")
		return
	}

	writeJSON(w, http.StatusOK, setup)
}

// Status reports whether the creator can receive payments yet.
func (h *PayoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"connected":      profile.HasPayoutAccount(),
		"payout_enabled": profile.PayoutEnabled,
	})
}
