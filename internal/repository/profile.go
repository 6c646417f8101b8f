package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tip2talk/server/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	ByID(id string) (*model.Profile, error)
	ByEmail(email string) (*model.Profile, error)
	ByUsername(username string) (*model.Profile, error)
	Create(profile *model.Profile) error
	Update(profile *model.Profile) error
	SetStripeAccount(profileID, accountID string, payoutEnabled bool) error
	SetPayoutEnabled(accountID string, enabled bool) error
	AddTipReceived(profileID string, amount int) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByID(id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE id = $1`, id)

	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) ByEmail(email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE email = $1`, email)

	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) ByUsername(username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE username = $1`, username)

	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO profiles (id, email, username, display_name, bio, avatar_url, password_hash,
		                      is_creator, verified, follower_count, tip_goal, tip_received,
		                      stripe_account_id, payout_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, profile.ID, profile.Email, profile.Username, profile.DisplayName, profile.Bio,
		profile.AvatarURL, profile.PasswordHash, profile.IsCreator, profile.Verified,
		profile.FollowerCount, profile.TipGoal, profile.TipReceived,
		profile.StripeAccountID, profile.PayoutEnabled, profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *profileRepository) Update(profile *model.Profile) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET display_name = $1, bio = $2, avatar_url = $3, tip_goal = $4, updated_at = $5
		WHERE id = $6
	`, profile.DisplayName, profile.Bio, profile.AvatarURL, profile.TipGoal, time.Now(), profile.ID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *profileRepository) SetStripeAccount(profileID, accountID string, payoutEnabled bool) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET stripe_account_id = $1, payout_enabled = $2, updated_at = $3
		WHERE id = $4
	`, accountID, payoutEnabled, time.Now(), profileID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *profileRepository) SetPayoutEnabled(accountID string, enabled bool) error {
	_, err := r.db.Exec(`
		UPDATE profiles
		SET payout_enabled = $1, updated_at = $2
		WHERE stripe_account_id = $3
	`, enabled, time.Now(), accountID)

	return err
}

func (r *profileRepository) AddTipReceived(profileID string, amount int) error {
	_, err := r.db.Exec(`
		UPDATE profiles
		SET tip_received = tip_received + $1, updated_at = $2
		WHERE id = $3
	`, amount, time.Now(), profileID)

	return err
}
