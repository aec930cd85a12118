package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
	"github.com/minsuRob/sportcomm-sub006/internal/repository"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("only the message sender can perform this action")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyContent    = errors.New("message content is required")
	ErrContentTooLong  = errors.New("message content exceeds 5000 characters")
)

const maxContentLen = 5000

// ProgressNotifier receives chat activity events for the gamification
// side-system. Delivery is best effort: implementations must not block the
// send path and must swallow their own failures.
type ProgressNotifier interface {
	ChatMessageSent(userID uuid.UUID, teamID *uuid.UUID)
}

// MessageService is the message store. Every read or write authorizes
// through the room directory before touching a message.
type MessageService struct {
	messageRepo repository.MessageRepository
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	rooms       *RoomService
	notifier    ProgressNotifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	rooms *RoomService,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		rooms:       rooms,
	}
}

// SetNotifier sets the progress notifier (optional dependency).
func (s *MessageService) SetNotifier(n ProgressNotifier) {
	s.notifier = n
}

type SendMessageInput struct {
	Content   string     `json:"content" validate:"required,min=1,max=5000"`
	ReplyToID *uuid.UUID `json:"reply_to_id,omitempty"`
}

type MessageListResponse struct {
	Messages []domain.Message `json:"messages"`
	Room     *domain.Room     `json:"room"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	HasMore  bool             `json:"has_more"`
}

// List returns one page of room messages in chronological order within the
// page: the page holds the N most recent messages, oldest first.
func (s *MessageService) List(ctx context.Context, userID, roomID uuid.UUID, page, limit int) (*MessageListResponse, error) {
	room, err := s.rooms.GetRoomForUser(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	page, limit, offset := normalizePage(page, limit)
	messages, total, err := s.messageRepo.ListByRoom(ctx, roomID, offset, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return &MessageListResponse{
		Messages: messages,
		Room:     room,
		Total:    total,
		Page:     page,
		Limit:    limit,
		HasMore:  page*limit < total,
	}, nil
}

// Send persists a text message and refreshes the room summary. A reply
// target from another room is silently dropped, not an error. After both
// writes succeed the progress notifier is told about the message; its
// failure never surfaces here.
func (s *MessageService) Send(ctx context.Context, userID, roomID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	if input.Content == "" {
		return nil, ErrEmptyContent
	}
	if len(input.Content) > maxContentLen {
		return nil, ErrContentTooLong
	}

	room, err := s.rooms.GetRoomForUser(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}

	replyTo, err := s.resolveReplyTarget(ctx, roomID, input.ReplyToID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  userID,
		Content:   input.Content,
		Type:      domain.MessageTypeText,
		ReplyToID: replyTo,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if err := s.roomRepo.RecordMessage(ctx, roomID, msg.Content, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("updating room summary: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ChatMessageSent(userID, room.TeamID)
	}

	return full, nil
}

// MarkRead flags a message as read.
func (s *MessageService) MarkRead(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkRead(ctx, msg.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// Edit replaces the content and stamps the edited flag. Only the sender may
// edit.
func (s *MessageService) Edit(ctx context.Context, userID, messageID uuid.UUID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxContentLen {
		return nil, ErrContentTooLong
	}

	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, ErrNotMessageOwner
	}

	if err := s.messageRepo.UpdateContent(ctx, msg.ID, content, time.Now()); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// TogglePin flips the pinned flag.
func (s *MessageService) TogglePin(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.SetPinned(ctx, msg.ID, !msg.IsPinned, time.Now()); err != nil {
		return nil, fmt.Errorf("toggling pin: %w", err)
	}
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// AdjustReactionCount applies a delta to the reaction counter, floored at 0.
func (s *MessageService) AdjustReactionCount(ctx context.Context, messageID uuid.UUID, delta int) (*domain.Message, error) {
	msg, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.AdjustReactionCount(ctx, msg.ID, delta); err != nil {
		return nil, fmt.Errorf("adjusting reaction count: %w", err)
	}
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// resolveReplyTarget keeps a reply link only when the target exists in the
// same room.
func (s *MessageService) resolveReplyTarget(ctx context.Context, roomID uuid.UUID, replyToID *uuid.UUID) (*uuid.UUID, error) {
	if replyToID == nil {
		return nil, nil
	}
	target, err := s.messageRepo.GetByID(ctx, *replyToID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.RoomID != roomID {
		return nil, nil
	}
	return replyToID, nil
}

func (s *MessageService) getMessage(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}
