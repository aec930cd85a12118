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

const messageColumns = `m.id, m.room_id, m.sender_id, m.content, m.type, m.reply_to_id,
	m.is_read, m.read_at, m.edited_at, m.is_pinned, m.pinned_at, m.reaction_count,
	m.created_at, u.nickname, u.avatar_url`

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, room_id, sender_id, content, type, reply_to_id,
			is_read, is_pinned, reaction_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.RoomID, msg.SenderID, msg.Content, msg.Type, msg.ReplyToID,
		msg.IsRead, msg.IsPinned, msg.ReactionCount, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.Type, &msg.ReplyToID,
		&msg.IsRead, &msg.ReadAt, &msg.EditedAt, &msg.IsPinned, &msg.PinnedAt,
		&msg.ReactionCount, &msg.CreatedAt, &msg.SenderNickname, &msg.SenderAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListByRoom loads one page of the newest messages and returns it in
// chronological order. Callers rely on the reversal and must not re-sort.
func (r *MessageRepo) ListByRoom(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]domain.Message, int, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.room_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, roomID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.Type, &msg.ReplyToID,
			&msg.IsRead, &msg.ReadAt, &msg.EditedAt, &msg.IsPinned, &msg.PinnedAt,
			&msg.ReactionCount, &msg.CreatedAt, &msg.SenderNickname, &msg.SenderAvatarURL,
		); err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Reverse to chronological order (query returns DESC)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE room_id = $1`, roomID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET is_read = TRUE, read_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *MessageRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET content = $2, edited_at = $3 WHERE id = $1`, id, content, editedAt)
	return err
}

func (r *MessageRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET is_pinned = $2, pinned_at = CASE WHEN $2 THEN $3 ELSE NULL END
		WHERE id = $1`,
		id, pinned, at,
	)
	return err
}

func (r *MessageRepo) AdjustReactionCount(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET reaction_count = GREATEST(reaction_count + $2, 0) WHERE id = $1`,
		id, delta)
	return err
}
