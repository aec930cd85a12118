package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
	"github.com/minsuRob/sportcomm-sub006/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomInactive    = errors.New("room is not active")
	ErrRoomFull        = errors.New("room is at capacity")
	ErrNotParticipant  = errors.New("user is not a participant of this room")
	ErrInvalidRoomName = errors.New("room name must be between 1 and 100 characters")
	ErrInvalidCapacity = errors.New("max participants must be between 2 and 1000")
)

const maxDescriptionLen = 1000

// RoomService is the room directory: it owns room records and participant
// membership and answers whether a user may act on a room.
//
// Two notions of belonging coexist and are deliberately kept apart:
// team membership grants *visibility* of team-scoped rooms, while the
// participant list only tracks who has explicitly joined. Private rooms are
// the exception and gate on the participant list itself.
type RoomService struct {
	roomRepo repository.RoomRepository
	teamRepo repository.TeamRepository
}

func NewRoomService(roomRepo repository.RoomRepository, teamRepo repository.TeamRepository) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		teamRepo: teamRepo,
	}
}

type RoomListResponse struct {
	Rooms   []domain.Room `json:"rooms"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"has_more"`
}

type CreateRoomInput struct {
	Name            string     `json:"name" validate:"required,min=1,max=100"`
	Description     string     `json:"description" validate:"max=1000"`
	Type            string     `json:"type" validate:"omitempty,oneof=group public"`
	MaxParticipants int        `json:"max_participants" validate:"omitempty,min=2,max=1000"`
	TeamID          *uuid.UUID `json:"team_id,omitempty"`
	Password        string     `json:"password,omitempty"`
}

// Create makes a new group or public room. The creator becomes the first
// participant. An optional password marks a protected public room.
func (s *RoomService) Create(ctx context.Context, userID uuid.UUID, input CreateRoomInput) (*domain.Room, error) {
	if len(input.Name) < 1 || len(input.Name) > 100 {
		return nil, ErrInvalidRoomName
	}
	if len(input.Description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidRoomName, maxDescriptionLen)
	}

	maxParticipants := input.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = 100
	}
	if maxParticipants < 2 || maxParticipants > 1000 {
		return nil, ErrInvalidCapacity
	}

	roomType := input.Type
	if roomType == "" {
		roomType = domain.RoomTypeGroup
	}

	var desc *string
	if input.Description != "" {
		desc = &input.Description
	}

	var passwordHash *string
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing room password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	room := &domain.Room{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     desc,
		Type:            roomType,
		IsActive:        true,
		MaxParticipants: maxParticipants,
		TeamID:          input.TeamID,
		PasswordHash:    passwordHash,
		CreatedAt:       time.Now(),
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	if err := s.roomRepo.AddParticipant(ctx, room.ID, userID); err != nil {
		return nil, fmt.Errorf("adding creator as participant: %w", err)
	}
	room.CurrentParticipants = 1

	return room, nil
}

// ListAccessibleRooms returns active rooms the user may see: general rooms
// plus rooms scoped to one of the user's teams.
func (s *RoomService) ListAccessibleRooms(ctx context.Context, userID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	page, limit, offset := normalizePage(page, limit)
	rooms, total, err := s.roomRepo.ListAccessible(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return newRoomListResponse(rooms, total, page, limit), nil
}

func (s *RoomService) ListPublicRooms(ctx context.Context, page, limit int) (*RoomListResponse, error) {
	page, limit, offset := normalizePage(page, limit)
	rooms, total, err := s.roomRepo.ListPublic(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return newRoomListResponse(rooms, total, page, limit), nil
}

func (s *RoomService) ListTeamRooms(ctx context.Context, teamID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	page, limit, offset := normalizePage(page, limit)
	rooms, total, err := s.roomRepo.ListByTeam(ctx, teamID, offset, limit)
	if err != nil {
		return nil, err
	}
	return newRoomListResponse(rooms, total, page, limit), nil
}

// GetRoomForUser fetches a room and enforces the access policy. A room the
// user may not view surfaces as ErrRoomNotFound, identical to a missing
// room, so existence never leaks.
func (s *RoomService) GetRoomForUser(ctx context.Context, roomID, userID uuid.UUID) (*domain.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if err := s.authorize(ctx, room, userID); err != nil {
		return nil, err
	}

	participants, err := s.roomRepo.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.Participants = participants

	return room, nil
}

// Join adds the user to the participant set. Joining a room the user already
// participates in succeeds without mutation.
func (s *RoomService) Join(ctx context.Context, roomID, userID uuid.UUID) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	already, err := s.roomRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if !room.IsActive {
		return ErrRoomInactive
	}
	if !room.CanJoin() {
		return ErrRoomFull
	}

	return s.roomRepo.AddParticipant(ctx, roomID, userID)
}

// Leave removes the user from the participant set. Leaving a room the user
// never joined is a no-op.
func (s *RoomService) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	return s.roomRepo.RemoveParticipant(ctx, roomID, userID)
}

// authorize evaluates the view policy in order: general rooms are open to any
// authenticated user, team rooms require a team membership record, private
// rooms require literal participant membership.
func (s *RoomService) authorize(ctx context.Context, room *domain.Room, userID uuid.UUID) error {
	if room.Type == domain.RoomTypePrivate {
		participant, err := s.roomRepo.IsParticipant(ctx, room.ID, userID)
		if err != nil {
			return err
		}
		if !participant {
			return ErrRoomNotFound
		}
		return nil
	}

	if room.IsGeneral() {
		return nil
	}

	member, err := s.teamRepo.IsMember(ctx, userID, *room.TeamID)
	if err != nil {
		return err
	}
	if !member {
		return ErrRoomNotFound
	}
	return nil
}

func newRoomListResponse(rooms []domain.Room, total, page, limit int) *RoomListResponse {
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return &RoomListResponse{
		Rooms:   rooms,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}
}

func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}
