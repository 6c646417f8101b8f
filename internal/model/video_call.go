package model

import "time"

const (
	VideoCallStatusScheduled = "scheduled"
	VideoCallStatusCompleted = "completed"
	VideoCallStatusCancelled = "cancelled"
)

type VideoCall struct {
	ID              string    `db:"id" json:"id"`
	CreatorID       string    `db:"creator_id" json:"creator_id"`
	FanID           string    `db:"fan_id" json:"fan_id"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Price           int       `db:"price" json:"price"` // minor units
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status          string    `db:"status" json:"status"`
	MeetingURL      *string   `db:"meeting_url" json:"meeting_url,omitempty"`
	StripePaymentID *string   `db:"stripe_payment_id" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CanTransitionTo reports whether a status change is allowed. Calls only move
// out of scheduled, never back into it.
func (v *VideoCall) CanTransitionTo(status string) bool {
	if v.Status != VideoCallStatusScheduled {
		return false
	}
	return status == VideoCallStatusCompleted || status == VideoCallStatusCancelled
}
