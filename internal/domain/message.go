package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeVideo  = "video"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// Edit/delete windows measured from message creation.
const (
	EditWindow   = 30 * time.Minute
	DeleteWindow = 60 * time.Minute
)

type Message struct {
	ID            uuid.UUID  `json:"id"`
	RoomID        uuid.UUID  `json:"room_id"`
	SenderID      uuid.UUID  `json:"sender_id"`
	Content       string     `json:"content"`
	Type          string     `json:"type"`
	ReplyToID     *uuid.UUID `json:"reply_to_id,omitempty"`
	IsRead        bool       `json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	IsPinned      bool       `json:"is_pinned"`
	PinnedAt      *time.Time `json:"pinned_at,omitempty"`
	ReactionCount int        `json:"reaction_count"`
	CreatedAt     time.Time  `json:"created_at"`
	// Joined fields
	SenderNickname  string  `json:"sender_nickname,omitempty"`
	SenderAvatarURL *string `json:"sender_avatar_url,omitempty"`
}

// CanEdit reports whether the message is still inside its edit window.
// System messages are never editable.
func (m *Message) CanEdit(now time.Time) bool {
	return m.withinWindow(now, EditWindow)
}

// CanDelete reports whether the message is still inside its delete window.
func (m *Message) CanDelete(now time.Time) bool {
	return m.withinWindow(now, DeleteWindow)
}

func (m *Message) withinWindow(now time.Time, window time.Duration) bool {
	if m.Type == MessageTypeSystem {
		return false
	}
	return now.Sub(m.CreatedAt) <= window
}
