package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/service/payment"
)

func TestCreatePaymentNotConnectedCode(t *testing.T) {
	app := newTestApp(t)
	creator := app.profile(t, "creator", true)
	fan := app.profile(t, "fan", false)
	conversation, err := app.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)

	app.provider.createErr = payment.ErrCreatorNotConnected
	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Create(rec, request(t, http.MethodPost, "/api/create-payment", map[string]any{
		"type":    model.TransactionTypeTip,
		"chat_id": conversation.ID,
		"amount":  500,
	}, fan))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "creator_not_connected", body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestCreatePaymentMediaUsesServerPrice(t *testing.T) {
	app := newTestApp(t)
	creator := app.profile(t, "creator", true)
	fan := app.profile(t, "fan", false)
	conversation, err := app.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)

	price := 999
	file, header := uploadFile("pic.jpg", "image/jpeg", []byte("jpegdata"))
	message, err := app.chat.SendMedia(conversation.ID, creator, file, header, &price, "")
	require.NoError(t, err)

	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Create(rec, request(t, http.MethodPost, "/api/create-payment", map[string]any{
		"type":       model.TransactionTypeMediaPurchase,
		"message_id": message.ID,
		// A tampered client amount must be ignored for media purchases.
		"amount": 1,
	}, fan))

	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(price), app.provider.lastInput.Amount)
	assert.Equal(t, creator.ID, app.provider.lastInput.CreatorID)
	assert.Equal(t, fan.ID, app.provider.lastInput.BuyerID)
	assert.Equal(t, message.ID, app.provider.lastInput.Metadata["message_id"])

	body := decodeBody(t, rec)
	assert.Equal(t, "cs_test", body["clientSecret"])
}

func TestCreatePaymentSenderCannotBuyOwnMedia(t *testing.T) {
	app := newTestApp(t)
	creator := app.profile(t, "creator", true)
	fan := app.profile(t, "fan", false)
	conversation, err := app.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)

	price := 999
	file, header := uploadFile("pic.jpg", "image/jpeg", []byte("jpegdata"))
	message, err := app.chat.SendMedia(conversation.ID, creator, file, header, &price, "")
	require.NoError(t, err)

	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Create(rec, request(t, http.MethodPost, "/api/create-payment", map[string]any{
		"type":       model.TransactionTypeMediaPurchase,
		"message_id": message.ID,
	}, creator))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePaymentUnknownType(t *testing.T) {
	app := newTestApp(t)
	fan := app.profile(t, "fan", false)
	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Create(rec, request(t, http.MethodPost, "/api/create-payment", map[string]any{
		"type": "subscription",
	}, fan))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePaymentTipRequiresParticipation(t *testing.T) {
	app := newTestApp(t)
	creator := app.profile(t, "creator", true)
	fan := app.profile(t, "fan", false)
	outsider := app.profile(t, "outsider", false)
	conversation, err := app.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)

	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Create(rec, request(t, http.MethodPost, "/api/create-payment", map[string]any{
		"type":    model.TransactionTypeTip,
		"chat_id": conversation.ID,
		"amount":  500,
	}, outsider))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentStatusVisibility(t *testing.T) {
	app := newTestApp(t)
	creator := app.profile(t, "creator", true)
	fan := app.profile(t, "fan", false)
	stranger := app.profile(t, "stranger", false)

	app.provider.checkResult = &model.Transaction{
		ID:                    "t1",
		CreatorID:             creator.ID,
		BuyerID:               &fan.ID,
		Amount:                500,
		Type:                  model.TransactionTypeTip,
		StripePaymentIntentID: "pi_test",
		Status:                model.TransactionStatusSucceeded,
	}

	h := NewPaymentHandler(app.chat, app.provider)

	for _, tt := range []struct {
		name string
		as   *model.Profile
		want int
	}{
		{"payer sees it", fan, http.StatusOK},
		{"payee sees it", creator, http.StatusOK},
		{"stranger does not", stranger, http.StatusForbidden},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, http.MethodGet, "/api/payments/pi_test", nil, tt.as)
			req.SetPathValue("id", "pi_test")

			rec := httptest.NewRecorder()
			h.Status(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWebhookPassThrough(t *testing.T) {
	app := newTestApp(t)
	h := NewPaymentHandler(app.chat, app.provider)

	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	app.provider.webhookErr = assert.AnError
	rec = httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
