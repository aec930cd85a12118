package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SearchByNickname(ctx context.Context, query string, excludeID uuid.UUID, offset, limit int) ([]domain.User, int, error)
}

type TeamRepository interface {
	IsMember(ctx context.Context, userID, teamID uuid.UUID) (bool, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	ListAccessible(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error)
	ListPublic(ctx context.Context, offset, limit int) ([]domain.Room, int, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID, offset, limit int) ([]domain.Room, int, error)
	ListPrivateByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error)
	FindPrivatePair(ctx context.Context, userA, userB uuid.UUID) (*domain.Room, error)
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) error
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.User, error)
	RecordMessage(ctx context.Context, roomID uuid.UUID, content string, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]domain.Message, int, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool, at time.Time) error
	AdjustReactionCount(ctx context.Context, id uuid.UUID, delta int) error
}
