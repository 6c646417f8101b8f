package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

type TipRepository interface {
	Create(tip *model.Tip) error
	ForCreator(creatorID string, limit int) ([]*model.Tip, error)
	SentStats(fanID string) (count int, total int, err error)
}

type tipRepository struct {
	db *sqlx.DB
}

func NewTipRepository(db *sqlx.DB) TipRepository {
	return &tipRepository{db: db}
}

func (r *tipRepository) Create(tip *model.Tip) error {
	if tip.ID == "" {
		tip.ID = uuid.New().String()
	}
	if tip.CreatedAt.IsZero() {
		tip.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO tips (id, from_user_id, to_creator_id, conversation_id, amount, message,
		                  stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tip.ID, tip.FromUserID, tip.ToCreatorID, tip.ConversationID, tip.Amount,
		tip.Message, tip.StripePaymentID, tip.CreatedAt)

	return err
}

func (r *tipRepository) ForCreator(creatorID string, limit int) ([]*model.Tip, error) {
	var tips []*model.Tip
	err := r.db.Select(&tips, `
		SELECT * FROM tips
		WHERE to_creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, creatorID, limit)
	if err != nil {
		return nil, err
	}

	return tips, nil
}

func (r *tipRepository) SentStats(fanID string) (int, int, error) {
	var row struct {
		Count int `db:"count"`
		Total int `db:"total"`
	}
	err := r.db.Get(&row, `
		SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM tips
		WHERE from_user_id = $1
	`, fanID)
	return row.Count, row.Total, err
}
