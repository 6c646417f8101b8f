package model

import "time"

type Conversation struct {
	ID            string    `db:"id" json:"id"`
	CreatorID     string    `db:"creator_id" json:"creator_id"`
	FanID         string    `db:"fan_id" json:"fan_id"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// Joined counterpart profiles (not columns)
	Fan     *Profile `db:"-" json:"fan,omitempty"`
	Creator *Profile `db:"-" json:"creator,omitempty"`

	// Aggregate computed by the paid filter query
	TipTotal int `db:"-" json:"tip_total"`
}

// Participant reports whether the given profile belongs to this conversation.
func (c *Conversation) Participant(profileID string) bool {
	return c.CreatorID == profileID || c.FanID == profileID
}
