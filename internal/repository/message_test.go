package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForConversationOrdersOldestFirst(t *testing.T) {
	database := newTestDB(t)
	repo := NewMessageRepository(database)

	creator := seedProfile(t, database, "creator", true)
	fan := seedProfile(t, database, "fan", false)
	conversation := seedConversation(t, database, creator.ID, fan.ID, time.Now())

	now := time.Now()
	second := seedMessage(t, database, conversation.ID, fan.ID, "second", now.Add(-time.Minute))
	first := seedMessage(t, database, conversation.ID, creator.ID, "first", now.Add(-2*time.Minute))
	third := seedMessage(t, database, conversation.ID, creator.ID, "third", now)

	messages, err := repo.ForConversation(conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, second.ID, messages[1].ID)
	assert.Equal(t, third.ID, messages[2].ID)

	require.NotNil(t, messages[0].Sender)
	assert.Equal(t, creator.Username, messages[0].Sender.Username)
}

func TestForConversationSinceExcludesBoundary(t *testing.T) {
	database := newTestDB(t)
	repo := NewMessageRepository(database)

	creator := seedProfile(t, database, "creator", true)
	fan := seedProfile(t, database, "fan", false)
	conversation := seedConversation(t, database, creator.ID, fan.ID, time.Now())

	cutoff := time.Now().Add(-time.Minute)
	seedMessage(t, database, conversation.ID, fan.ID, "before", cutoff.Add(-time.Second))
	after := seedMessage(t, database, conversation.ID, creator.ID, "after", cutoff.Add(time.Second))

	messages, err := repo.ForConversationSince(conversation.ID, cutoff)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, after.ID, messages[0].ID)
}

func TestCountReceived(t *testing.T) {
	database := newTestDB(t)
	repo := NewMessageRepository(database)

	creator := seedProfile(t, database, "creator", true)
	fan := seedProfile(t, database, "fan", false)
	conversation := seedConversation(t, database, creator.ID, fan.ID, time.Now())

	seedMessage(t, database, conversation.ID, fan.ID, "hi", time.Now())
	seedMessage(t, database, conversation.ID, fan.ID, "there", time.Now())
	seedMessage(t, database, conversation.ID, creator.ID, "hello", time.Now())

	count, err := repo.CountReceived(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.CountReceived(fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
