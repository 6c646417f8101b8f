package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
)

func TestFinalizeSuccessGrantsPurchaseOnce(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	price := 999
	file, header := upload("pic.jpg", "image/jpeg", 100, []byte("jpegdata"))
	message, err := deps.chat.SendMedia(conversation.ID, creator, file, header, &price, "")
	require.NoError(t, err)

	transaction := &model.Transaction{
		ChatID:                &conversation.ID,
		CreatorID:             creator.ID,
		BuyerID:               &fan.ID,
		MessageID:             &message.ID,
		Amount:                price,
		Type:                  model.TransactionTypeMediaPurchase,
		StripePaymentIntentID: "pi_test_1",
	}
	require.NoError(t, deps.ledger.RecordPending(transaction))

	row, err := deps.ledger.Status("pi_test_1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusPending, row.Status)

	// The webhook and the status poll can both finalize; the grant happens
	// once.
	require.NoError(t, deps.ledger.FinalizeSuccess("pi_test_1"))
	require.NoError(t, deps.ledger.FinalizeSuccess("pi_test_1"))

	row, err = deps.ledger.Status("pi_test_1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSucceeded, row.Status)

	count, err := deps.purchases.CountForBuyer(fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	purchased, err := deps.chat.HasPurchased(message.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, purchased)
}

func TestFinalizeSuccessTipPostsToThread(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	transaction := &model.Transaction{
		ChatID:                &conversation.ID,
		CreatorID:             creator.ID,
		BuyerID:               &fan.ID,
		Amount:                2500,
		Type:                  model.TransactionTypeTip,
		StripePaymentIntentID: "pi_tip_1",
	}
	require.NoError(t, deps.ledger.RecordPending(transaction))
	require.NoError(t, deps.ledger.FinalizeSuccess("pi_tip_1"))

	tips, err := deps.tips.ForCreator(creator.ID, 10)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, 2500, tips[0].Amount)
	assert.Equal(t, fan.ID, tips[0].FromUserID)

	reloaded, err := deps.profiles.ByID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500, reloaded.TipReceived)

	views, err := deps.chat.Thread(conversation.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.MessageTypeTip, views[0].MessageType)
	require.NotNil(t, views[0].TipAmount)
	assert.Equal(t, 2500, *views[0].TipAmount)
}

func TestFinalizeFailureNeverDowngradesSuccess(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	transaction := &model.Transaction{
		ChatID:                &conversation.ID,
		CreatorID:             creator.ID,
		BuyerID:               &fan.ID,
		Amount:                100,
		Type:                  model.TransactionTypeTip,
		StripePaymentIntentID: "pi_race_1",
	}
	require.NoError(t, deps.ledger.RecordPending(transaction))
	require.NoError(t, deps.ledger.FinalizeSuccess("pi_race_1"))

	// A late failure event must not unwind a settled payment.
	require.NoError(t, deps.ledger.FinalizeFailure("pi_race_1"))

	row, err := deps.ledger.Status("pi_race_1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusSucceeded, row.Status)
}

func TestFinalizeFailureMarksFailed(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	transaction := &model.Transaction{
		ChatID:                &conversation.ID,
		CreatorID:             creator.ID,
		BuyerID:               &fan.ID,
		Amount:                100,
		Type:                  model.TransactionTypeTip,
		StripePaymentIntentID: "pi_fail_1",
	}
	require.NoError(t, deps.ledger.RecordPending(transaction))
	require.NoError(t, deps.ledger.FinalizeFailure("pi_fail_1"))

	row, err := deps.ledger.Status("pi_fail_1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusFailed, row.Status)

	// Failure grants nothing.
	tips, err := deps.tips.ForCreator(creator.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, tips)
}

func TestStatusUnknownIntent(t *testing.T) {
	deps := newTestDeps(t)

	_, err := deps.ledger.Status("pi_missing")
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}
