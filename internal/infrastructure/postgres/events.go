package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avolkov/eventory/internal/domain"
)

const eventColumns = `
	e.id, e.title, e.annotation, e.description, e.category_id, e.initiator_id,
	e.lat, e.lon, e.paid, e.participant_limit, e.request_moderation,
	e.state, e.event_date, e.created_on, e.published_on,
	COALESCE(c.confirmed, 0)
`

const eventJoin = `
	FROM events e
	LEFT JOIN (
		SELECT event_id, COUNT(*) AS confirmed
		FROM requests
		WHERE status = 'CONFIRMED'
		GROUP BY event_id
	) c ON c.event_id = e.id
`

func (s *Store) CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, e.InitiatorID).Scan(&exists); err != nil {
		return domain.Event{}, err
	}
	if !exists {
		return domain.Event{}, domain.ErrUserNotFound
	}
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, e.CategoryID).Scan(&exists); err != nil {
		return domain.Event{}, err
	}
	if !exists {
		return domain.Event{}, domain.ErrCategoryNotFound
	}

	e.State = domain.EventPending
	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (title, annotation, description, category_id, initiator_id,
		                    lat, lon, paid, participant_limit, request_moderation,
		                    state, event_date, created_on)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW())
		RETURNING id, created_on
	`, e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.EventDate).Scan(&e.ID, &e.CreatedOn)
	if err != nil {
		return domain.Event{}, err
	}
	return e, nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+eventColumns+eventJoin+` WHERE e.id = $1`, id)
	return scanEventRow(row)
}

func (s *Store) GetPublishedEvent(ctx context.Context, id int64) (domain.Event, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+eventJoin+` WHERE e.id = $1 AND e.state = $2`,
		id, string(domain.EventPublished))
	return scanEventRow(row)
}

// UpdateEventByInitiator applies the initiator's patch. Published events are
// frozen for their owner; admin state changes go through SetEventState.
func (s *Store) UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, p domain.EventPatch) (domain.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		ownerID  int64
		rawState string
	)
	err = tx.QueryRow(ctx, `SELECT initiator_id, state FROM events WHERE id = $1 FOR UPDATE`, eventID).
		Scan(&ownerID, &rawState)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	if ownerID != initiatorID {
		return domain.Event{}, domain.ErrNotInitiator
	}
	if domain.EventState(rawState) == domain.EventPublished {
		return domain.Event{}, domain.ErrEventNotEditable
	}

	set, args := buildEventPatch(p)
	if len(set) > 0 {
		args = append(args, eventID)
		q := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return domain.Event{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, err
	}
	return s.GetEvent(ctx, eventID)
}

// SetEventState runs the admin publish/reject transition:
// PENDING -> PUBLISHED (stamps published_on) or {PENDING} -> CANCELED.
func (s *Store) SetEventState(ctx context.Context, eventID int64, state domain.EventState) (domain.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Event{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var rawState string
	err = tx.QueryRow(ctx, `SELECT state FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&rawState)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	current := domain.EventState(rawState)

	switch state {
	case domain.EventPublished:
		if current != domain.EventPending {
			return domain.Event{}, domain.ErrEventNotEditable
		}
		if _, err := tx.Exec(ctx,
			`UPDATE events SET state = $2, published_on = NOW() WHERE id = $1`,
			eventID, string(state)); err != nil {
			return domain.Event{}, err
		}
	case domain.EventCanceled:
		if current == domain.EventPublished {
			return domain.Event{}, domain.ErrEventNotEditable
		}
		if _, err := tx.Exec(ctx,
			`UPDATE events SET state = $2 WHERE id = $1`,
			eventID, string(state)); err != nil {
			return domain.Event{}, err
		}
	default:
		return domain.Event{}, fmt.Errorf("%w: unsupported target state %q", domain.ErrValidation, state)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, err
	}
	return s.GetEvent(ctx, eventID)
}

func (s *Store) SearchPublishedEvents(ctx context.Context, f domain.EventSearchFilter) ([]domain.Event, error) {
	from, size := clampPage(f.From, f.Size)

	where := []string{"e.state = 'PUBLISHED'"}
	args := []any{}
	argN := 1

	if t := strings.TrimSpace(f.Text); t != "" {
		where = append(where, fmt.Sprintf("(e.annotation ILIKE $%d OR e.description ILIKE $%d)", argN, argN))
		args = append(args, "%"+t+"%")
		argN++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("e.category_id = ANY($%d)", argN))
		args = append(args, f.Categories)
		argN++
	}
	if f.Paid != nil {
		where = append(where, fmt.Sprintf("e.paid = $%d", argN))
		args = append(args, *f.Paid)
		argN++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("e.event_date >= $%d", argN))
		args = append(args, *f.RangeStart)
		argN++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("e.event_date <= $%d", argN))
		args = append(args, *f.RangeEnd)
		argN++
	}
	if f.RangeStart == nil && f.RangeEnd == nil {
		// Default window: upcoming events only.
		where = append(where, "e.event_date >= NOW()")
	}
	if f.OnlyAvailable {
		where = append(where, "(e.participant_limit = 0 OR COALESCE(c.confirmed, 0) < e.participant_limit)")
	}

	order := "e.id ASC"
	if f.SortByDate {
		order = "e.event_date ASC"
	}

	q := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s OFFSET %d LIMIT %d`,
		eventColumns, eventJoin, strings.Join(where, " AND "), order, from, size)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]domain.Event, error) {
	from, size = clampPage(from, size)
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+eventJoin+` WHERE e.initiator_id = $1 ORDER BY e.id ASC OFFSET $2 LIMIT $3`,
		initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListEventsAdmin(ctx context.Context, f domain.AdminEventFilter) ([]domain.Event, error) {
	from, size := clampPage(f.From, f.Size)

	where := []string{"TRUE"}
	args := []any{}
	argN := 1

	if len(f.Users) > 0 {
		where = append(where, fmt.Sprintf("e.initiator_id = ANY($%d)", argN))
		args = append(args, f.Users)
		argN++
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		where = append(where, fmt.Sprintf("e.state = ANY($%d)", argN))
		args = append(args, states)
		argN++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("e.category_id = ANY($%d)", argN))
		args = append(args, f.Categories)
		argN++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("e.event_date >= $%d", argN))
		args = append(args, *f.RangeStart)
		argN++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("e.event_date <= $%d", argN))
		args = append(args, *f.RangeEnd)
		argN++
	}

	q := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY e.id ASC OFFSET %d LIMIT %d`,
		eventColumns, eventJoin, strings.Join(where, " AND "), from, size)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func buildEventPatch(p domain.EventPatch) ([]string, []any) {
	var set []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Annotation != nil {
		add("annotation", *p.Annotation)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.CategoryID != nil {
		add("category_id", *p.CategoryID)
	}
	if p.EventDate != nil {
		add("event_date", *p.EventDate)
	}
	if p.Location != nil {
		add("lat", p.Location.Lat)
		add("lon", p.Location.Lon)
	}
	if p.Paid != nil {
		add("paid", *p.Paid)
	}
	if p.ParticipantLimit != nil {
		add("participant_limit", *p.ParticipantLimit)
	}
	if p.RequestModeration != nil {
		add("request_moderation", *p.RequestModeration)
	}
	if p.NewState != nil {
		add("state", string(*p.NewState))
	}
	return set, args
}

func scanEventRow(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	var rawState string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&rawState, &e.EventDate, &e.CreatedOn, &e.PublishedOn,
		&e.ConfirmedCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	e.State = domain.EventState(rawState)
	return e, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var out []domain.Event
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
