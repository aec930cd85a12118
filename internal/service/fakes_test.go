package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
)

// In-memory fakes for the repository interfaces. They mirror the query
// semantics of the postgres implementations closely enough for the service
// contracts under test, including the DESC-then-reverse message ordering and
// the unique pair key on private rooms.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (f *fakeUserRepo) add(nickname string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.users[id] = domain.User{ID: id, Nickname: nickname, CreatedAt: time.Now()}
	return id
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserRepo) SearchByNickname(_ context.Context, query string, excludeID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []domain.User
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if containsFold(u.Nickname, query) {
			matches = append(matches, u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Nickname < matches[j].Nickname })
	total := len(matches)
	return pageSlice(matches, offset, limit), total, nil
}

type fakeTeamRepo struct {
	mu          sync.Mutex
	memberships map[uuid.UUID][]uuid.UUID // userID -> teamIDs
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{memberships: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeTeamRepo) join(userID, teamID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberships[userID] = append(f.memberships[userID], teamID)
}

func (f *fakeTeamRepo) IsMember(_ context.Context, userID, teamID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.memberships[userID] {
		if id == teamID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoomRepo struct {
	mu           sync.Mutex
	rooms        map[uuid.UUID]*domain.Room
	participants map[uuid.UUID][]uuid.UUID // roomID -> userIDs in join order
	users        *fakeUserRepo
	teams        *fakeTeamRepo

	// beforeCreate runs once before the next Create, outside the lock.
	// Tests use it to interleave a concurrent writer.
	beforeCreate func()
}

func newFakeRoomRepo(users *fakeUserRepo, teams *fakeTeamRepo) *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        make(map[uuid.UUID]*domain.Room),
		participants: make(map[uuid.UUID][]uuid.UUID),
		users:        users,
		teams:        teams,
	}
}

func (f *fakeRoomRepo) Create(_ context.Context, room *domain.Room) error {
	f.mu.Lock()
	if hook := f.beforeCreate; hook != nil {
		f.beforeCreate = nil
		f.mu.Unlock()
		hook()
		f.mu.Lock()
	}
	defer f.mu.Unlock()
	if room.Type == domain.RoomTypePrivate && room.PairKey != nil {
		for _, existing := range f.rooms {
			if existing.Type == domain.RoomTypePrivate && existing.PairKey != nil && *existing.PairKey == *room.PairKey {
				return &pgconn.PgError{Code: "23505", ConstraintName: "rooms_private_pair_idx"}
			}
		}
	}
	cp := *room
	f.rooms[room.ID] = &cp
	return nil
}

func (f *fakeRoomRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	return &cp, nil
}

func (f *fakeRoomRepo) ListAccessible(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []domain.Room
	for _, room := range f.rooms {
		if !room.IsActive || room.Type == domain.RoomTypePrivate {
			continue
		}
		if room.TeamID != nil {
			member, _ := f.teams.IsMember(ctx, userID, *room.TeamID)
			if !member {
				continue
			}
		}
		rooms = append(rooms, *room)
	}
	sortRoomsByActivity(rooms)
	return pageSlice(rooms, offset, limit), len(rooms), nil
}

func (f *fakeRoomRepo) ListPublic(_ context.Context, offset, limit int) ([]domain.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []domain.Room
	for _, room := range f.rooms {
		if room.IsActive && room.Type != domain.RoomTypePrivate && room.TeamID == nil {
			rooms = append(rooms, *room)
		}
	}
	sortRoomsByActivity(rooms)
	return pageSlice(rooms, offset, limit), len(rooms), nil
}

func (f *fakeRoomRepo) ListByTeam(_ context.Context, teamID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []domain.Room
	for _, room := range f.rooms {
		if room.IsActive && room.TeamID != nil && *room.TeamID == teamID {
			rooms = append(rooms, *room)
		}
	}
	sortRoomsByActivity(rooms)
	return pageSlice(rooms, offset, limit), len(rooms), nil
}

func (f *fakeRoomRepo) ListPrivateByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []domain.Room
	for id, room := range f.rooms {
		if !room.IsActive || room.Type != domain.RoomTypePrivate || room.TeamID != nil {
			continue
		}
		for _, p := range f.participants[id] {
			if p == userID {
				rooms = append(rooms, *room)
				break
			}
		}
	}
	sortRoomsByActivity(rooms)
	return pageSlice(rooms, offset, limit), len(rooms), nil
}

func (f *fakeRoomRepo) FindPrivatePair(_ context.Context, userA, userB uuid.UUID) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, room := range f.rooms {
		if room.Type != domain.RoomTypePrivate {
			continue
		}
		participants := f.participants[id]
		if len(participants) != 2 {
			continue
		}
		hasA, hasB := false, false
		for _, p := range participants {
			hasA = hasA || p == userA
			hasB = hasB || p == userB
		}
		if hasA && hasB {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRoomRepo) AddParticipant(_ context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil
	}
	for _, p := range f.participants[roomID] {
		if p == userID {
			return nil
		}
	}
	f.participants[roomID] = append(f.participants[roomID], userID)
	if room.CurrentParticipants < room.MaxParticipants {
		room.CurrentParticipants++
	}
	return nil
}

func (f *fakeRoomRepo) RemoveParticipant(_ context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil
	}
	participants := f.participants[roomID]
	for i, p := range participants {
		if p == userID {
			f.participants[roomID] = append(participants[:i], participants[i+1:]...)
			if room.CurrentParticipants > 0 {
				room.CurrentParticipants--
			}
			return nil
		}
	}
	return nil
}

func (f *fakeRoomRepo) IsParticipant(_ context.Context, roomID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants[roomID] {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) ListParticipants(_ context.Context, roomID uuid.UUID) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []domain.User
	for _, p := range f.participants[roomID] {
		if u, ok := f.users.users[p]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeRoomRepo) RecordMessage(_ context.Context, roomID uuid.UUID, content string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil
	}
	room.LastMessageContent = &content
	room.LastMessageAt = &at
	room.TotalMessages++
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*domain.Message
	users    *fakeUserRepo
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*domain.Message), users: users}
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.messages[msg.ID] = &cp
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	if u, ok := f.users.users[cp.SenderID]; ok {
		cp.SenderNickname = u.Nickname
	}
	return &cp, nil
}

func (f *fakeMessageRepo) ListByRoom(_ context.Context, roomID uuid.UUID, offset, limit int) ([]domain.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []domain.Message
	for _, msg := range f.messages {
		if msg.RoomID == roomID {
			messages = append(messages, *msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	total := len(messages)
	messages = pageSlice(messages, offset, limit)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		msg.IsRead = true
		msg.ReadAt = &at
	}
	return nil
}

func (f *fakeMessageRepo) UpdateContent(_ context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		msg.Content = content
		msg.EditedAt = &editedAt
	}
	return nil
}

func (f *fakeMessageRepo) SetPinned(_ context.Context, id uuid.UUID, pinned bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		msg.IsPinned = pinned
		if pinned {
			msg.PinnedAt = &at
		} else {
			msg.PinnedAt = nil
		}
	}
	return nil
}

func (f *fakeMessageRepo) AdjustReactionCount(_ context.Context, id uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		msg.ReactionCount += delta
		if msg.ReactionCount < 0 {
			msg.ReactionCount = 0
		}
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	userID uuid.UUID
	teamID *uuid.UUID
}

func (f *fakeNotifier) ChatMessageSent(userID uuid.UUID, teamID *uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifiedEvent{userID: userID, teamID: teamID})
}

func sortRoomsByActivity(rooms []domain.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		li, lj := rooms[i].LastMessageAt, rooms[j].LastMessageAt
		switch {
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.After(*lj)
		case li != nil && lj == nil:
			return true
		case li == nil && lj != nil:
			return false
		default:
			return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
		}
	})
}

func pageSlice[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[offset:end]...)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// fixture wires the full service stack over the fakes.
type fixture struct {
	users       *fakeUserRepo
	teams       *fakeTeamRepo
	roomRepo    *fakeRoomRepo
	messageRepo *fakeMessageRepo
	notifier    *fakeNotifier

	rooms    *RoomService
	messages *MessageService
	private  *PrivateChatService
	chat     *ChatService
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	teams := newFakeTeamRepo()
	roomRepo := newFakeRoomRepo(users, teams)
	messageRepo := newFakeMessageRepo(users)
	notifier := &fakeNotifier{}

	rooms := NewRoomService(roomRepo, teams)
	messages := NewMessageService(messageRepo, roomRepo, users, rooms)
	messages.SetNotifier(notifier)
	private := NewPrivateChatService(roomRepo, messageRepo, users)
	chat := NewChatService(rooms, messages, private, users)

	return &fixture{
		users:       users,
		teams:       teams,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
		rooms:       rooms,
		messages:    messages,
		private:     private,
		chat:        chat,
	}
}

// addRoom seeds a room directly into the repo, bypassing service validation.
func (f *fixture) addRoom(room *domain.Room) *domain.Room {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	if room.MaxParticipants == 0 {
		room.MaxParticipants = 100
	}
	if room.Type == "" {
		room.Type = domain.RoomTypeGroup
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	_ = f.roomRepo.Create(context.Background(), room)
	return room
}

// addMessage seeds a message directly into the repo.
func (f *fixture) addMessage(roomID, senderID uuid.UUID, content string, createdAt time.Time) *domain.Message {
	msg := &domain.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Type:      domain.MessageTypeText,
		CreatedAt: createdAt,
	}
	_ = f.messageRepo.Create(context.Background(), msg)
	return msg
}
