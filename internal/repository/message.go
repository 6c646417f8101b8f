package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(message *model.Message) error
	ByID(id string) (*model.Message, error)
	ForConversation(conversationID string) ([]*model.Message, error)
	ForConversationSince(conversationID string, since time.Time) ([]*model.Message, error)
	CountReceived(profileID string) (int, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

const senderColumns = `
	s.id AS "sender.id", s.email AS "sender.email", s.username AS "sender.username",
	s.display_name AS "sender.display_name", s.bio AS "sender.bio", s.avatar_url AS "sender.avatar_url",
	s.password_hash AS "sender.password_hash", s.is_creator AS "sender.is_creator",
	s.verified AS "sender.verified", s.follower_count AS "sender.follower_count",
	s.tip_goal AS "sender.tip_goal", s.tip_received AS "sender.tip_received",
	s.stripe_account_id AS "sender.stripe_account_id", s.payout_enabled AS "sender.payout_enabled",
	s.created_at AS "sender.created_at", s.updated_at AS "sender.updated_at"`

type messageWithSender struct {
	ID             string        `db:"id"`
	ConversationID string        `db:"conversation_id"`
	SenderID       string        `db:"sender_id"`
	Content        string        `db:"content"`
	MessageType    string        `db:"message_type"`
	TipAmount      *int          `db:"tip_amount"`
	MediaPath      *string       `db:"media_path"`
	MediaType      *string       `db:"media_type"`
	MediaPrice     *int          `db:"media_price"`
	ReadAt         *time.Time    `db:"read_at"`
	CreatedAt      time.Time     `db:"created_at"`
	Sender         model.Profile `db:"sender"`
}

func (row *messageWithSender) toModel() *model.Message {
	sender := row.Sender
	sender.PasswordHash = ""
	return &model.Message{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		SenderID:       row.SenderID,
		Content:        row.Content,
		MessageType:    row.MessageType,
		TipAmount:      row.TipAmount,
		MediaPath:      row.MediaPath,
		MediaType:      row.MediaType,
		MediaPrice:     row.MediaPrice,
		ReadAt:         row.ReadAt,
		CreatedAt:      row.CreatedAt,
		Sender:         &sender,
	}
}

func (r *messageRepository) Create(message *model.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type,
		                      tip_amount, media_path, media_type, media_price, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, message.ID, message.ConversationID, message.SenderID, message.Content,
		message.MessageType, message.TipAmount, message.MediaPath, message.MediaType,
		message.MediaPrice, message.ReadAt, message.CreatedAt)

	return err
}

func (r *messageRepository) ByID(id string) (*model.Message, error) {
	var message model.Message
	err := r.db.Get(&message, `SELECT * FROM messages WHERE id = $1`, id)

	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// ForConversation returns the full thread in creation order with senders
// joined.
func (r *messageRepository) ForConversation(conversationID string) ([]*model.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.tip_amount, m.media_path, m.media_type, m.media_price, m.read_at, m.created_at,` +
		senderColumns + `
		FROM messages m
		JOIN profiles s ON s.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC`

	var rows []messageWithSender
	err := r.db.Select(&rows, query, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, rows[i].toModel())
	}

	return messages, nil
}

// ForConversationSince returns messages created strictly after the given
// time. Used to replay the gap between a thread fetch and its realtime
// subscription.
func (r *messageRepository) ForConversationSince(conversationID string, since time.Time) ([]*model.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.tip_amount, m.media_path, m.media_type, m.media_price, m.read_at, m.created_at,` +
		senderColumns + `
		FROM messages m
		JOIN profiles s ON s.id = m.sender_id
		WHERE m.conversation_id = $1 AND m.created_at > $2
		ORDER BY m.created_at ASC`

	var rows []messageWithSender
	err := r.db.Select(&rows, query, conversationID, since)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, rows[i].toModel())
	}

	return messages, nil
}

// CountReceived counts messages addressed to the profile across all of its
// conversations (messages it did not send itself).
func (r *messageRepository) CountReceived(profileID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.creator_id = $1 OR c.fan_id = $1) AND m.sender_id != $1
	`, profileID).Scan(&count)
	return count, err
}
