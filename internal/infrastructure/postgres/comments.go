package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/avolkov/eventory/internal/domain"
)

// CreateComment allows commenting on published events only.
func (s *Store) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, c.AuthorID).Scan(&exists); err != nil {
		return domain.Comment{}, err
	}
	if !exists {
		return domain.Comment{}, domain.ErrUserNotFound
	}

	var rawState string
	err := s.pool.QueryRow(ctx, `SELECT state FROM events WHERE id = $1`, c.EventID).Scan(&rawState)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrEventNotFound
		}
		return domain.Comment{}, err
	}
	if domain.EventState(rawState) != domain.EventPublished {
		return domain.Comment{}, domain.ErrEventNotPublished
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO comments (event_id, author_id, text, created_on)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_on
	`, c.EventID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedOn)
	if err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, authorID, commentID int64, text string) (domain.Comment, error) {
	var c domain.Comment
	err := s.pool.QueryRow(ctx, `
		SELECT id, event_id, author_id, text, created_on, edited_on
		FROM comments WHERE id = $1
	`, commentID).Scan(&c.ID, &c.EventID, &c.AuthorID, &c.Text, &c.CreatedOn, &c.EditedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrCommentNotFound
		}
		return domain.Comment{}, err
	}
	if c.AuthorID != authorID {
		return domain.Comment{}, domain.ErrNotCommentAuthor
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE comments SET text = $2, edited_on = NOW()
		WHERE id = $1
		RETURNING text, edited_on
	`, commentID, text).Scan(&c.Text, &c.EditedOn)
	if err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, authorID, commentID int64) error {
	var ownerID int64
	err := s.pool.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1`, commentID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCommentNotFound
		}
		return err
	}
	if ownerID != authorID {
		return domain.ErrNotCommentAuthor
	}

	_, err = s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	return err
}

func (s *Store) DeleteCommentAdmin(ctx context.Context, commentID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (s *Store) ListCommentsByEvent(ctx context.Context, eventID int64, from, size int) ([]domain.Comment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}

	from, size = clampPage(from, size)
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, author_id, text, created_on, edited_on
		FROM comments
		WHERE event_id = $1
		ORDER BY created_on ASC, id ASC
		OFFSET $2 LIMIT $3
	`, eventID, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.EventID, &c.AuthorID, &c.Text, &c.CreatedOn, &c.EditedOn); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
