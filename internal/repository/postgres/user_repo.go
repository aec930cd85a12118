package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsuRob/sportcomm-sub006/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, nickname, avatar_url, created_at FROM users WHERE id = $1`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Nickname, &u.AvatarURL, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) SearchByNickname(ctx context.Context, query string, excludeID uuid.UUID, offset, limit int) ([]domain.User, int, error) {
	pattern := "%" + query + "%"

	listQuery := `
		SELECT id, nickname, avatar_url, created_at
		FROM users
		WHERE nickname ILIKE $1 AND id <> $2
		ORDER BY nickname
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, listQuery, pattern, excludeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Nickname, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE nickname ILIKE $1 AND id <> $2`,
		pattern, excludeID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
