package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the read contract consumed from the user directory.
type User struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
