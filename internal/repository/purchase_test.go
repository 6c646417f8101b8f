package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/model"
)

func TestPurchasePersistsAcrossReads(t *testing.T) {
	database := newTestDB(t)
	repo := NewPurchaseRepository(database)

	creator := seedProfile(t, database, "creator", true)
	buyer := seedProfile(t, database, "buyer", false)
	conversation := seedConversation(t, database, creator.ID, buyer.ID, time.Now())
	message := seedMessage(t, database, conversation.ID, creator.ID, "pic", time.Now())

	require.NoError(t, repo.Create(&model.MediaPurchase{
		MessageID: message.ID,
		BuyerID:   buyer.ID,
		Amount:    999,
	}))

	// The entitlement survives independent lookups, the way a reload or a
	// second device would see it.
	exists, err := repo.Exists(message.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	set, err := repo.MessageIDsForBuyer(conversation.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, set[message.ID])

	count, err := repo.CountForBuyer(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurchaseCreateIsIdempotent(t *testing.T) {
	database := newTestDB(t)
	repo := NewPurchaseRepository(database)

	creator := seedProfile(t, database, "creator", true)
	buyer := seedProfile(t, database, "buyer", false)
	conversation := seedConversation(t, database, creator.ID, buyer.ID, time.Now())
	message := seedMessage(t, database, conversation.ID, creator.ID, "pic", time.Now())

	purchase := &model.MediaPurchase{MessageID: message.ID, BuyerID: buyer.ID, Amount: 999}
	require.NoError(t, repo.Create(purchase))

	// Webhook and status poll can both try to record the same grant.
	again := &model.MediaPurchase{MessageID: message.ID, BuyerID: buyer.ID, Amount: 999}
	require.NoError(t, repo.Create(again))

	count, err := repo.CountForBuyer(buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurchaseScopedToBuyer(t *testing.T) {
	database := newTestDB(t)
	repo := NewPurchaseRepository(database)

	creator := seedProfile(t, database, "creator", true)
	buyer := seedProfile(t, database, "buyer", false)
	other := seedProfile(t, database, "other", false)
	conversation := seedConversation(t, database, creator.ID, buyer.ID, time.Now())
	message := seedMessage(t, database, conversation.ID, creator.ID, "pic", time.Now())

	require.NoError(t, repo.Create(&model.MediaPurchase{
		MessageID: message.ID,
		BuyerID:   buyer.ID,
		Amount:    999,
	}))

	exists, err := repo.Exists(message.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
