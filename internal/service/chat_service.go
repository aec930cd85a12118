package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
	"github.com/minsuRob/sportcomm-sub006/internal/repository"
)

// ChatService is the single entry point for the API layer. It only
// delegates; every operation authorizes before it mutates, and no component
// below it ever calls back up.
type ChatService struct {
	rooms    *RoomService
	messages *MessageService
	private  *PrivateChatService
	userRepo repository.UserRepository
}

func NewChatService(
	rooms *RoomService,
	messages *MessageService,
	private *PrivateChatService,
	userRepo repository.UserRepository,
) *ChatService {
	return &ChatService{
		rooms:    rooms,
		messages: messages,
		private:  private,
		userRepo: userRepo,
	}
}

type UserListResponse struct {
	Users   []domain.User `json:"users"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"has_more"`
}

func (s *ChatService) ListRooms(ctx context.Context, userID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	return s.rooms.ListAccessibleRooms(ctx, userID, page, limit)
}

func (s *ChatService) ListPublicRooms(ctx context.Context, page, limit int) (*RoomListResponse, error) {
	return s.rooms.ListPublicRooms(ctx, page, limit)
}

func (s *ChatService) ListTeamRooms(ctx context.Context, teamID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	return s.rooms.ListTeamRooms(ctx, teamID, page, limit)
}

func (s *ChatService) GetRoom(ctx context.Context, roomID, userID uuid.UUID) (*domain.Room, error) {
	return s.rooms.GetRoomForUser(ctx, roomID, userID)
}

func (s *ChatService) CreateRoom(ctx context.Context, userID uuid.UUID, input CreateRoomInput) (*domain.Room, error) {
	return s.rooms.Create(ctx, userID, input)
}

func (s *ChatService) JoinRoom(ctx context.Context, roomID, userID uuid.UUID) error {
	return s.rooms.Join(ctx, roomID, userID)
}

func (s *ChatService) LeaveRoom(ctx context.Context, roomID, userID uuid.UUID) error {
	return s.rooms.Leave(ctx, roomID, userID)
}

func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID, page, limit int) (*MessageListResponse, error) {
	return s.messages.List(ctx, userID, roomID, page, limit)
}

func (s *ChatService) SendMessage(ctx context.Context, userID, roomID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	return s.messages.Send(ctx, userID, roomID, input)
}

func (s *ChatService) MarkMessageRead(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	return s.messages.MarkRead(ctx, messageID)
}

func (s *ChatService) EditMessage(ctx context.Context, userID, messageID uuid.UUID, content string) (*domain.Message, error) {
	return s.messages.Edit(ctx, userID, messageID, content)
}

func (s *ChatService) TogglePinMessage(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	return s.messages.TogglePin(ctx, messageID)
}

func (s *ChatService) FindOrCreatePrivateChat(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Room, error) {
	return s.private.FindOrCreate(ctx, userID, otherUserID)
}

func (s *ChatService) ListPrivateChats(ctx context.Context, userID uuid.UUID, page, limit int) (*RoomListResponse, error) {
	return s.private.ListUserPrivateChats(ctx, userID, page, limit)
}

func (s *ChatService) GetPartner(ctx context.Context, roomID, userID uuid.UUID) (*domain.User, error) {
	return s.private.GetPartner(ctx, roomID, userID)
}

// SearchChatPartners searches the user directory by nickname substring,
// excluding the caller.
func (s *ChatService) SearchChatPartners(ctx context.Context, userID uuid.UUID, query string, page, limit int) (*UserListResponse, error) {
	page, limit, offset := normalizePage(page, limit)
	users, total, err := s.userRepo.SearchByNickname(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return &UserListResponse{
		Users:   users,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}, nil
}
