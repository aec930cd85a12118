package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
	"github.com/minsuRob/sportcomm-sub006/internal/repository"
)

var ErrSelfChat = errors.New("cannot start a private chat with yourself")

const privateChatOpener = "Private chat started"

// PrivateChatService resolves the unique private room between two users.
type PrivateChatService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

func NewPrivateChatService(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
) *PrivateChatService {
	return &PrivateChatService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// FindOrCreate returns the private room between the two users, creating it
// on first contact. The result is identical for either argument order: the
// room name joins the two nicknames sorted lexicographically, and the
// canonical pair key keeps concurrent first contact from forking two rooms.
func (s *PrivateChatService) FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*domain.Room, error) {
	if userA == userB {
		return nil, ErrSelfChat
	}

	existing, err := s.roomRepo.FindPrivatePair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.populate(ctx, existing)
	}

	a, err := s.userRepo.GetByID(ctx, userA)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrUserNotFound
	}
	b, err := s.userRepo.GetByID(ctx, userB)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrUserNotFound
	}

	pairKey := canonicalPairKey(userA, userB)
	room := &domain.Room{
		ID:              uuid.New(),
		Name:            pairName(a.Nickname, b.Nickname),
		Type:            domain.RoomTypePrivate,
		IsActive:        true,
		MaxParticipants: 2,
		PairKey:         &pairKey,
		CreatedAt:       time.Now(),
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		// Lost the first-contact race: the other side's room already
		// holds the pair key, so fetch that one.
		if isUniqueViolation(err) {
			won, ferr := s.roomRepo.FindPrivatePair(ctx, userA, userB)
			if ferr != nil {
				return nil, ferr
			}
			if won != nil {
				return s.populate(ctx, won)
			}
		}
		return nil, fmt.Errorf("creating private room: %w", err)
	}

	if err := s.roomRepo.AddParticipant(ctx, room.ID, userA); err != nil {
		return nil, fmt.Errorf("adding participant: %w", err)
	}
	if err := s.roomRepo.AddParticipant(ctx, room.ID, userB); err != nil {
		return nil, fmt.Errorf("adding participant: %w", err)
	}

	opener := &domain.Message{
		ID:        uuid.New(),
		RoomID:    room.ID,
		SenderID:  userA,
		Content:   privateChatOpener,
		Type:      domain.MessageTypeSystem,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, opener); err != nil {
		return nil, fmt.Errorf("creating opener message: %w", err)
	}
	if err := s.roomRepo.RecordMessage(ctx, room.ID, opener.Content, opener.CreatedAt); err != nil {
		return nil, fmt.Errorf("updating room summary: %w", err)
	}

	created, err := s.roomRepo.GetByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, created)
}

// ListUserPrivateChats returns the user's active private rooms, most
// recently active first.
func (s *PrivateChatService) ListUserPrivateChats(ctx context.Context, userID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	page, limit, offset := normalizePage(page, limit)
	rooms, total, err := s.roomRepo.ListPrivateByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return newRoomListResponse(rooms, total, page, limit), nil
}

// GetPartner returns the other participant of a private room, or nil when
// the room is not a two-party private room.
func (s *PrivateChatService) GetPartner(ctx context.Context, roomID, currentUserID uuid.UUID) (*domain.User, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.Type != domain.RoomTypePrivate {
		return nil, nil
	}

	participants, err := s.roomRepo.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(participants) != 2 {
		return nil, nil
	}

	for i := range participants {
		if participants[i].ID != currentUserID {
			return &participants[i], nil
		}
	}
	return nil, nil
}

func (s *PrivateChatService) populate(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	participants, err := s.roomRepo.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.Participants = participants
	return room, nil
}

// pairName joins the two nicknames sorted lexicographically so the name is
// independent of call argument order.
func pairName(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + " & " + b
}

func canonicalPairKey(a, b uuid.UUID) string {
	sa, sb := a.String(), b.String()
	if sa > sb {
		sa, sb = sb, sa
	}
	return sa + ":" + sb
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
