package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolkov/eventory/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id
	`, u.Name, u.Email).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, ids []int64, from, size int) ([]domain.User, error) {
	from, size = clampPage(from, size)

	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) > 0 {
		rows, err = s.pool.Query(ctx, `
			SELECT id, name, email FROM users
			WHERE id = ANY($1)
			ORDER BY id ASC OFFSET $2 LIMIT $3
		`, ids, from, size)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, name, email FROM users
			ORDER BY id ASC OFFSET $1 LIMIT $2
		`, from, size)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
