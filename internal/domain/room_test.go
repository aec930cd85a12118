package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoom_IsGeneral(t *testing.T) {
	teamID := uuid.New()

	assert.True(t, (&Room{Type: RoomTypeGroup}).IsGeneral())
	assert.False(t, (&Room{Type: RoomTypeGroup, TeamID: &teamID}).IsGeneral())
}

func TestRoom_CanJoin(t *testing.T) {
	assert.True(t, (&Room{IsActive: true, MaxParticipants: 2, CurrentParticipants: 1}).CanJoin())
	assert.False(t, (&Room{IsActive: true, MaxParticipants: 2, CurrentParticipants: 2}).CanJoin())
	assert.False(t, (&Room{IsActive: false, MaxParticipants: 2, CurrentParticipants: 0}).CanJoin())
}
