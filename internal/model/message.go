package model

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeTip   = "tip"
	MessageTypeMedia = "media"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

// Message is immutable once created: there is no edit or delete path.
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Content        string     `db:"content"`
	MessageType    string     `db:"message_type"`
	TipAmount      *int       `db:"tip_amount"`
	MediaPath      *string    `db:"media_path"` // storage key, never exposed directly
	MediaType      *string    `db:"media_type"`
	MediaPrice     *int       `db:"media_price"` // minor units; nil = free media
	ReadAt         *time.Time `db:"read_at"`
	CreatedAt      time.Time  `db:"created_at"`

	// Joined sender profile
	Sender *Profile `db:"-"`
}

// Priced reports whether this is a media message gated behind a price.
func (m *Message) Priced() bool {
	return m.MessageType == MessageTypeMedia && m.MediaPrice != nil && *m.MediaPrice > 0
}

// LockedFor reports whether the media is locked for the given viewer.
// The sender always sees their own media; everyone else needs a recorded
// purchase.
func (m *Message) LockedFor(viewerID string, purchased bool) bool {
	if !m.Priced() {
		return false
	}
	if m.SenderID == viewerID {
		return false
	}
	return !purchased
}

// MessageView is the per-viewer API shape of a message. A locked media
// message carries no URL, only its price.
type MessageView struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	MessageType    string     `json:"message_type"`
	TipAmount      *int       `json:"tip_amount,omitempty"`
	MediaURL       string     `json:"media_url,omitempty"`
	MediaType      *string    `json:"media_type,omitempty"`
	MediaPrice     *int       `json:"media_price,omitempty"`
	Locked         bool       `json:"locked"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Sender         *Profile   `json:"sender,omitempty"`
}

// View renders the message for a viewer. urlFor resolves a storage path to a
// fetchable URL and is only consulted when the media is visible.
func (m *Message) View(viewerID string, purchased bool, urlFor func(path string) string) MessageView {
	v := MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    m.MessageType,
		TipAmount:      m.TipAmount,
		MediaType:      m.MediaType,
		MediaPrice:     m.MediaPrice,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
		Sender:         m.Sender,
	}

	v.Locked = m.LockedFor(viewerID, purchased)
	if m.MediaPath != nil && !v.Locked && urlFor != nil {
		v.MediaURL = urlFor(*m.MediaPath)
	}

	return v
}
