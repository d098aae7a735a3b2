package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/avolkov/eventory/internal/domain"
)

func (s *Store) CreateCompilation(ctx context.Context, title string, pinned bool, eventIDs []int64) (domain.Compilation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Compilation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id
	`, title, pinned).Scan(&id)
	if err != nil {
		return domain.Compilation{}, err
	}

	if err := replaceCompilationEventsTx(ctx, tx, id, eventIDs); err != nil {
		return domain.Compilation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Compilation{}, err
	}
	return s.GetCompilation(ctx, id)
}

func (s *Store) UpdateCompilation(ctx context.Context, id int64, p domain.CompilationPatch) (domain.Compilation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Compilation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM compilations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return domain.Compilation{}, err
	}
	if !exists {
		return domain.Compilation{}, domain.ErrCompNotFound
	}

	if p.Title != nil {
		if _, err := tx.Exec(ctx, `UPDATE compilations SET title = $2 WHERE id = $1`, id, *p.Title); err != nil {
			return domain.Compilation{}, err
		}
	}
	if p.Pinned != nil {
		if _, err := tx.Exec(ctx, `UPDATE compilations SET pinned = $2 WHERE id = $1`, id, *p.Pinned); err != nil {
			return domain.Compilation{}, err
		}
	}
	if p.EventIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, id); err != nil {
			return domain.Compilation{}, err
		}
		if err := replaceCompilationEventsTx(ctx, tx, id, p.EventIDs); err != nil {
			return domain.Compilation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Compilation{}, err
	}
	return s.GetCompilation(ctx, id)
}

func (s *Store) DeleteCompilation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompNotFound
	}
	return nil
}

func (s *Store) GetCompilation(ctx context.Context, id int64) (domain.Compilation, error) {
	var c domain.Compilation
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, pinned FROM compilations WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Compilation{}, domain.ErrCompNotFound
		}
		return domain.Compilation{}, err
	}

	c.Events, err = s.compilationEvents(ctx, id)
	if err != nil {
		return domain.Compilation{}, err
	}
	return c, nil
}

func (s *Store) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]domain.Compilation, error) {
	from, size = clampPage(from, size)

	var (
		rows pgx.Rows
		err  error
	)
	if pinned != nil {
		rows, err = s.pool.Query(ctx, `
			SELECT id, title, pinned FROM compilations
			WHERE pinned = $1
			ORDER BY id ASC OFFSET $2 LIMIT $3
		`, *pinned, from, size)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, title, pinned FROM compilations
			ORDER BY id ASC OFFSET $1 LIMIT $2
		`, from, size)
	}
	if err != nil {
		return nil, err
	}

	var out []domain.Compilation
	for rows.Next() {
		var c domain.Compilation
		if err := rows.Scan(&c.ID, &c.Title, &c.Pinned); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Events, err = s.compilationEvents(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) compilationEvents(ctx context.Context, compID int64) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+eventColumns+eventJoin+`
		JOIN compilation_events ce ON ce.event_id = e.id
		WHERE ce.compilation_id = $1
		ORDER BY e.id ASC
	`, compID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func replaceCompilationEventsTx(ctx context.Context, tx pgx.Tx, compID int64, eventIDs []int64) error {
	for _, eid := range dedupIDs(eventIDs) {
		tag, err := tx.Exec(ctx, `
			INSERT INTO compilation_events (compilation_id, event_id)
			SELECT $1, id FROM events WHERE id = $2
		`, compID, eid)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEventNotFound
		}
	}
	return nil
}
