package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/db"
	"github.com/tip2talk/server/internal/model"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func seedProfile(t *testing.T, database *sqlx.DB, username string, isCreator bool) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  username,
		PasswordHash: "x",
		IsCreator:    isCreator,
	}
	require.NoError(t, NewProfileRepository(database).Create(profile))
	return profile
}

func seedConversation(t *testing.T, database *sqlx.DB, creatorID, fanID string, lastMessageAt time.Time) *model.Conversation {
	t.Helper()

	conversation := &model.Conversation{
		ID:            uuid.New().String(),
		CreatorID:     creatorID,
		FanID:         fanID,
		LastMessageAt: lastMessageAt,
		CreatedAt:     lastMessageAt,
	}
	_, err := database.Exec(`
		INSERT INTO conversations (id, creator_id, fan_id, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conversation.ID, conversation.CreatorID, conversation.FanID,
		conversation.LastMessageAt, conversation.CreatedAt)
	require.NoError(t, err)
	return conversation
}

func seedMessage(t *testing.T, database *sqlx.DB, conversationID, senderID, content string, createdAt time.Time) *model.Message {
	t.Helper()

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    model.MessageTypeText,
		CreatedAt:      createdAt,
	}
	require.NoError(t, NewMessageRepository(database).Create(message))
	return message
}

func seedTip(t *testing.T, database *sqlx.DB, fromID, toID, conversationID string, amount int) *model.Tip {
	t.Helper()

	tip := &model.Tip{
		FromUserID:     fromID,
		ToCreatorID:    toID,
		ConversationID: &conversationID,
		Amount:         amount,
	}
	require.NoError(t, NewTipRepository(database).Create(tip))
	return tip
}
