package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

var ErrVideoCallNotFound = errors.New("video call not found")

type VideoCallRepository interface {
	Create(call *model.VideoCall) error
	ByID(id string) (*model.VideoCall, error)
	ForProfile(profileID string) ([]*model.VideoCall, error)
	UpdateStatus(id, status string, meetingURL *string) error
	CountScheduled(profileID string) (int, error)
}

type videoCallRepository struct {
	db *sqlx.DB
}

func NewVideoCallRepository(db *sqlx.DB) VideoCallRepository {
	return &videoCallRepository{db: db}
}

func (r *videoCallRepository) Create(call *model.VideoCall) error {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	if call.Status == "" {
		call.Status = model.VideoCallStatusScheduled
	}

	_, err := r.db.Exec(`
		INSERT INTO video_calls (id, creator_id, fan_id, duration_minutes, price, scheduled_at,
		                         status, meeting_url, stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, call.ID, call.CreatorID, call.FanID, call.DurationMinutes, call.Price,
		call.ScheduledAt, call.Status, call.MeetingURL, call.StripePaymentID, call.CreatedAt)

	return err
}

func (r *videoCallRepository) ByID(id string) (*model.VideoCall, error) {
	var call model.VideoCall
	err := r.db.Get(&call, `SELECT * FROM video_calls WHERE id = $1`, id)

	if err == sql.ErrNoRows {
		return nil, ErrVideoCallNotFound
	}
	if err != nil {
		return nil, err
	}

	return &call, nil
}

func (r *videoCallRepository) ForProfile(profileID string) ([]*model.VideoCall, error) {
	var calls []*model.VideoCall
	err := r.db.Select(&calls, `
		SELECT * FROM video_calls
		WHERE creator_id = $1 OR fan_id = $1
		ORDER BY scheduled_at ASC
	`, profileID)
	if err != nil {
		return nil, err
	}

	return calls, nil
}

func (r *videoCallRepository) UpdateStatus(id, status string, meetingURL *string) error {
	var result sql.Result
	var err error

	if meetingURL != nil {
		result, err = r.db.Exec(
			`UPDATE video_calls SET status = $1, meeting_url = $2 WHERE id = $3`, status, meetingURL, id)
	} else {
		result, err = r.db.Exec(
			`UPDATE video_calls SET status = $1 WHERE id = $2`, status, id)
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVideoCallNotFound
	}

	return nil
}

func (r *videoCallRepository) CountScheduled(profileID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM video_calls
		WHERE (creator_id = $1 OR fan_id = $1) AND status = $2
	`, profileID, model.VideoCallStatusScheduled).Scan(&count)
	return count, err
}
