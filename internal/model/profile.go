package model

import "time"

type Profile struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Username        string    `db:"username" json:"username"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	Bio             string    `db:"bio" json:"bio"`
	AvatarURL       string    `db:"avatar_url" json:"avatar_url"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	IsCreator       bool      `db:"is_creator" json:"is_creator"`
	Verified        bool      `db:"verified" json:"verified"`
	FollowerCount   int       `db:"follower_count" json:"follower_count"`
	TipGoal         int       `db:"tip_goal" json:"tip_goal"`
	TipReceived     int       `db:"tip_received" json:"tip_received"`
	StripeAccountID *string   `db:"stripe_account_id" json:"-"`
	PayoutEnabled   bool      `db:"payout_enabled" json:"payout_enabled"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasPayoutAccount reports whether the creator has a connected payout account.
// Payouts may still be disabled until identity verification completes.
func (p *Profile) HasPayoutAccount() bool {
	return p.StripeAccountID != nil && *p.StripeAccountID != ""
}

// Name returns the best display label for the profile, mirroring how
// conversation partners are shown: display name, then username, then email.
func (p *Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}
