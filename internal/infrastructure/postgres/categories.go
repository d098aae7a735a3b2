package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolkov/eventory/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1) RETURNING id
	`, c.Name).Scan(&c.ID)
	if err != nil {
		return domain.Category{}, mapCategoryErr(err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return domain.Category{}, mapCategoryErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

// DeleteCategory refuses to orphan events. The foreign key enforces this
// too, but the check lets us return a domain error instead of a raw
// constraint violation.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	var inUse bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE category_id = $1)`, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return domain.ErrCategoryInUse
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, err
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, from, size int) ([]domain.Category, error) {
	from, size = clampPage(from, size)
	rows, err := s.pool.Query(ctx, `
		SELECT id, name FROM categories ORDER BY id ASC OFFSET $1 LIMIT $2
	`, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func mapCategoryErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrDuplicateCategory
	}
	return err
}
