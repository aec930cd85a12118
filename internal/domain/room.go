package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomTypePrivate = "private"
	RoomTypeGroup   = "group"
	RoomTypePublic  = "public"
)

type Room struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Description         *string    `json:"description,omitempty"`
	Type                string     `json:"type"`
	IsActive            bool       `json:"is_active"`
	MaxParticipants     int        `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
	TeamID              *uuid.UUID `json:"team_id,omitempty"`
	PasswordHash        *string    `json:"-"`
	LastMessageContent  *string    `json:"last_message_content,omitempty"`
	LastMessageAt       *time.Time `json:"last_message_at,omitempty"`
	TotalMessages       int        `json:"total_messages"`
	// Canonical sorted participant pair, set only for private rooms.
	// Backed by a unique index so concurrent first contact cannot fork
	// two rooms for the same pair.
	PairKey   *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	// Populated on detail reads
	Participants []User `json:"participants,omitempty"`
}

// IsGeneral reports whether the room is visible to every authenticated user.
func (r *Room) IsGeneral() bool {
	return r.TeamID == nil
}

// CanJoin reports whether a new participant may be added.
func (r *Room) CanJoin() bool {
	return r.IsActive && r.CurrentParticipants < r.MaxParticipants
}
