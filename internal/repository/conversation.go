package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

const (
	ConversationFilterAll    = "all"
	ConversationFilterPaid   = "paid"
	ConversationFilterRecent = "recent"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	ByID(id string) (*model.Conversation, error)
	GetOrCreate(creatorID, fanID string) (*model.Conversation, error)
	ForCreator(creatorID, search, filter string) ([]*model.Conversation, error)
	ForFan(fanID string) ([]*model.Conversation, error)
	TouchLastMessage(id string, at time.Time) error
	CountFans(creatorID string) (int, error)
}

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// fanColumns aliases every profile column under the "fan." prefix so sqlx can
// scan the joined counterpart into a nested struct.
const fanColumns = `
	f.id AS "fan.id", f.email AS "fan.email", f.username AS "fan.username",
	f.display_name AS "fan.display_name", f.bio AS "fan.bio", f.avatar_url AS "fan.avatar_url",
	f.password_hash AS "fan.password_hash", f.is_creator AS "fan.is_creator",
	f.verified AS "fan.verified", f.follower_count AS "fan.follower_count",
	f.tip_goal AS "fan.tip_goal", f.tip_received AS "fan.tip_received",
	f.stripe_account_id AS "fan.stripe_account_id", f.payout_enabled AS "fan.payout_enabled",
	f.created_at AS "fan.created_at", f.updated_at AS "fan.updated_at"`

type conversationWithFan struct {
	ID            string        `db:"id"`
	CreatorID     string        `db:"creator_id"`
	FanID         string        `db:"fan_id"`
	LastMessageAt time.Time     `db:"last_message_at"`
	CreatedAt     time.Time     `db:"created_at"`
	TipTotal      int           `db:"tip_total"`
	Fan           model.Profile `db:"fan"`
}

func (row *conversationWithFan) toModel() *model.Conversation {
	fan := row.Fan
	fan.PasswordHash = ""
	return &model.Conversation{
		ID:            row.ID,
		CreatorID:     row.CreatorID,
		FanID:         row.FanID,
		LastMessageAt: row.LastMessageAt,
		CreatedAt:     row.CreatedAt,
		TipTotal:      row.TipTotal,
		Fan:           &fan,
	}
}

func (r *conversationRepository) ByID(id string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Get(&conversation, `SELECT * FROM conversations WHERE id = $1`, id)

	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *conversationRepository) GetOrCreate(creatorID, fanID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Get(&conversation,
		`SELECT * FROM conversations WHERE creator_id = $1 AND fan_id = $2`, creatorID, fanID)
	if err == nil {
		return &conversation, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	conversation = model.Conversation{
		ID:            uuid.New().String(),
		CreatorID:     creatorID,
		FanID:         fanID,
		LastMessageAt: time.Now(),
		CreatedAt:     time.Now(),
	}

	_, err = r.db.Exec(`
		INSERT INTO conversations (id, creator_id, fan_id, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conversation.ID, conversation.CreatorID, conversation.FanID,
		conversation.LastMessageAt, conversation.CreatedAt)
	if err != nil {
		// Unique (creator_id, fan_id): a concurrent first message may have
		// created the pair. Re-read instead of failing.
		getErr := r.db.Get(&conversation,
			`SELECT * FROM conversations WHERE creator_id = $1 AND fan_id = $2`, creatorID, fanID)
		if getErr != nil {
			return nil, err
		}
	}

	return &conversation, nil
}

// ForCreator returns the creator's inbox ordered by last message time
// descending. search matches the fan's display name, username, or email
// (case-insensitive substring). The paid filter keeps conversations with at
// least one recorded tip; recent keeps those active within the last 24 hours.
func (r *conversationRepository) ForCreator(creatorID, search, filter string) ([]*model.Conversation, error) {
	where := []string{"c.creator_id = $1"}
	args := []any{creatorID}

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern)
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(f.display_name) LIKE $%d OR LOWER(f.username) LIKE $%d OR LOWER(f.email) LIKE $%d)",
			n, n, n))
	}

	switch filter {
	case ConversationFilterPaid:
		where = append(where, "EXISTS (SELECT 1 FROM tips t WHERE t.conversation_id = c.id)")
	case ConversationFilterRecent:
		args = append(args, time.Now().Add(-24*time.Hour))
		where = append(where, fmt.Sprintf("c.last_message_at > $%d", len(args)))
	}

	query := `
		SELECT c.id, c.creator_id, c.fan_id, c.last_message_at, c.created_at,
		       COALESCE((SELECT SUM(t.amount) FROM tips t WHERE t.conversation_id = c.id), 0) AS tip_total,` +
		fanColumns + `
		FROM conversations c
		JOIN profiles f ON f.id = c.fan_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY c.last_message_at DESC`

	var rows []conversationWithFan
	err := r.db.Select(&rows, query, args...)
	if err != nil {
		return nil, err
	}

	conversations := make([]*model.Conversation, 0, len(rows))
	for i := range rows {
		conversations = append(conversations, rows[i].toModel())
	}

	return conversations, nil
}

// ForFan returns a fan's conversations joined to the creator profile, newest
// activity first.
func (r *conversationRepository) ForFan(fanID string) ([]*model.Conversation, error) {
	query := `
		SELECT c.id, c.creator_id, c.fan_id, c.last_message_at, c.created_at,
		       0 AS tip_total,` +
		strings.ReplaceAll(fanColumns, `"fan.`, `"creator.`) + `
		FROM conversations c
		JOIN profiles f ON f.id = c.creator_id
		WHERE c.fan_id = $1
		ORDER BY c.last_message_at DESC`

	var rows []conversationWithCreator
	err := r.db.Select(&rows, query, fanID)
	if err != nil {
		return nil, err
	}

	conversations := make([]*model.Conversation, 0, len(rows))
	for i := range rows {
		creator := rows[i].Creator
		creator.PasswordHash = ""
		conversations = append(conversations, &model.Conversation{
			ID:            rows[i].ID,
			CreatorID:     rows[i].CreatorID,
			FanID:         rows[i].FanID,
			LastMessageAt: rows[i].LastMessageAt,
			CreatedAt:     rows[i].CreatedAt,
			Creator:       &creator,
		})
	}

	return conversations, nil
}

type conversationWithCreator struct {
	ID            string        `db:"id"`
	CreatorID     string        `db:"creator_id"`
	FanID         string        `db:"fan_id"`
	LastMessageAt time.Time     `db:"last_message_at"`
	CreatedAt     time.Time     `db:"created_at"`
	TipTotal      int           `db:"tip_total"`
	Creator       model.Profile `db:"creator"`
}

func (r *conversationRepository) TouchLastMessage(id string, at time.Time) error {
	result, err := r.db.Exec(`
		UPDATE conversations SET last_message_at = $1 WHERE id = $2
	`, at, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConversationNotFound
	}

	return nil
}

func (r *conversationRepository) CountFans(creatorID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(DISTINCT fan_id) FROM conversations WHERE creator_id = $1`, creatorID).Scan(&count)
	return count, err
}
