package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
)

const roomColumns = `r.id, r.name, r.description, r.type, r.is_active, r.max_participants,
	r.current_participants, r.team_id, r.password_hash, r.last_message_content,
	r.last_message_at, r.total_messages, r.pair_key, r.created_at`

type RoomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepo(pool *pgxpool.Pool) *RoomRepo {
	return &RoomRepo{pool: pool}
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, name, description, type, is_active, max_participants,
			current_participants, team_id, password_hash, last_message_content,
			last_message_at, total_messages, pair_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.pool.Exec(ctx, query,
		room.ID, room.Name, room.Description, room.Type, room.IsActive,
		room.MaxParticipants, room.CurrentParticipants, room.TeamID, room.PasswordHash,
		room.LastMessageContent, room.LastMessageAt, room.TotalMessages, room.PairKey,
		room.CreatedAt,
	)
	return err
}

func (r *RoomRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = $1`
	var room domain.Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Name, &room.Description, &room.Type, &room.IsActive,
		&room.MaxParticipants, &room.CurrentParticipants, &room.TeamID, &room.PasswordHash,
		&room.LastMessageContent, &room.LastMessageAt, &room.TotalMessages, &room.PairKey,
		&room.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &room, err
}

// ListAccessible returns active non-private rooms that are general or belong
// to one of the user's teams. Rooms with recent messages sort first.
func (r *RoomRepo) ListAccessible(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	where := `
		FROM rooms r
		WHERE r.is_active AND r.type <> 'private'
			AND (r.team_id IS NULL
				OR r.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1))`
	listQuery := `SELECT ` + roomColumns + where + `
		ORDER BY r.last_message_at DESC NULLS LAST, r.created_at DESC
		LIMIT $2 OFFSET $3`
	countQuery := `SELECT count(*)` + where

	return r.listRooms(ctx, listQuery, countQuery,
		[]any{userID, limit, offset}, []any{userID})
}

func (r *RoomRepo) ListPublic(ctx context.Context, offset, limit int) ([]domain.Room, int, error) {
	where := `
		FROM rooms r
		WHERE r.is_active AND r.type <> 'private' AND r.team_id IS NULL`
	listQuery := `SELECT ` + roomColumns + where + `
		ORDER BY r.last_message_at DESC NULLS LAST, r.created_at DESC
		LIMIT $1 OFFSET $2`
	countQuery := `SELECT count(*)` + where

	return r.listRooms(ctx, listQuery, countQuery, []any{limit, offset}, nil)
}

func (r *RoomRepo) ListByTeam(ctx context.Context, teamID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	where := `
		FROM rooms r
		WHERE r.is_active AND r.team_id = $1`
	listQuery := `SELECT ` + roomColumns + where + `
		ORDER BY r.last_message_at DESC NULLS LAST, r.created_at DESC
		LIMIT $2 OFFSET $3`
	countQuery := `SELECT count(*)` + where

	return r.listRooms(ctx, listQuery, countQuery,
		[]any{teamID, limit, offset}, []any{teamID})
}

func (r *RoomRepo) ListPrivateByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Room, int, error) {
	where := `
		FROM rooms r
		JOIN room_users ru ON ru.room_id = r.id
		WHERE r.is_active AND r.type = 'private' AND r.team_id IS NULL
			AND ru.user_id = $1`
	listQuery := `SELECT ` + roomColumns + where + `
		ORDER BY r.last_message_at DESC NULLS LAST, r.created_at DESC
		LIMIT $2 OFFSET $3`
	countQuery := `SELECT count(*)` + where

	return r.listRooms(ctx, listQuery, countQuery,
		[]any{userID, limit, offset}, []any{userID})
}

// FindPrivatePair returns the private room whose participant set is exactly
// the given pair, or nil when none exists.
func (r *RoomRepo) FindPrivatePair(ctx context.Context, userA, userB uuid.UUID) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + `
		FROM rooms r
		JOIN room_users ru ON ru.room_id = r.id
		WHERE r.type = 'private' AND ru.user_id IN ($1, $2)
		GROUP BY r.id
		HAVING count(DISTINCT ru.user_id) = 2
		LIMIT 1`
	var room domain.Room
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&room.ID, &room.Name, &room.Description, &room.Type, &room.IsActive,
		&room.MaxParticipants, &room.CurrentParticipants, &room.TeamID, &room.PasswordHash,
		&room.LastMessageContent, &room.LastMessageAt, &room.TotalMessages, &room.PairKey,
		&room.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &room, err
}

// AddParticipant inserts the join row and bumps the counter in one
// transaction. A replayed join leaves the counter untouched.
func (r *RoomRepo) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO room_users (room_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, userID, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE rooms
			SET current_participants = LEAST(current_participants + 1, max_participants)
			WHERE id = $1`, roomID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RoomRepo) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM room_users WHERE room_id = $1 AND user_id = $2`, roomID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE rooms
			SET current_participants = GREATEST(current_participants - 1, 0)
			WHERE id = $1`, roomID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_users WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *RoomRepo) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT u.id, u.nickname, u.avatar_url, u.created_at
		FROM room_users ru
		JOIN users u ON ru.user_id = u.id
		WHERE ru.room_id = $1
		ORDER BY ru.joined_at`

	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Nickname, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RecordMessage refreshes the denormalized room summary after a send.
func (r *RoomRepo) RecordMessage(ctx context.Context, roomID uuid.UUID, content string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE rooms
		SET last_message_content = $2, last_message_at = $3, total_messages = total_messages + 1
		WHERE id = $1`,
		roomID, content, at,
	)
	return err
}

func (r *RoomRepo) listRooms(ctx context.Context, listQuery, countQuery string, listArgs, countArgs []any) ([]domain.Room, int, error) {
	rows, err := r.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID, &room.Name, &room.Description, &room.Type, &room.IsActive,
			&room.MaxParticipants, &room.CurrentParticipants, &room.TeamID, &room.PasswordHash,
			&room.LastMessageContent, &room.LastMessageAt, &room.TotalMessages, &room.PairKey,
			&room.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}
