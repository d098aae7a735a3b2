package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avolkov/eventory/internal/domain"
)

// CreateRequest admits a new participation request. The whole precondition
// chain and the status write happen in one transaction behind the event-row
// lock, so the confirmed count it checks against cannot move until commit.
func (s *Store) CreateRequest(ctx context.Context, traceID string, requesterID, eventID int64) (domain.Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, requesterID).Scan(&exists); err != nil {
		return domain.Request{}, err
	}
	if !exists {
		return domain.Request{}, domain.ErrUserNotFound
	}

	// 1) Lock the event row FIRST (capacity anchor for this event).
	ev, err := lockEventTx(ctx, tx, eventID)
	if err != nil {
		return domain.Request{}, err
	}

	// 2) Lock the prior request row for the pair, if any.
	var (
		existingID     int64
		existingStatus *domain.RequestStatus
	)
	var rawStatus string
	err = tx.QueryRow(ctx, `
		SELECT id, status
		FROM requests
		WHERE requester_id = $1 AND event_id = $2
		FOR UPDATE
	`, requesterID, eventID).Scan(&existingID, &rawStatus)
	if err == nil {
		st := domain.RequestStatus(rawStatus)
		existingStatus = &st
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Request{}, err
	}

	confirmed, err := confirmedCountTx(ctx, tx, eventID)
	if err != nil {
		return domain.Request{}, err
	}

	if err := domain.ValidateNewRequest(ev, requesterID, existingStatus, confirmed); err != nil {
		return domain.Request{}, err
	}

	req := domain.Request{
		RequesterID: requesterID,
		EventID:     eventID,
		Status:      domain.DecideNewStatus(ev),
	}

	if existingStatus != nil {
		// Terminal prior request: the pair is freed, reuse the row.
		err = tx.QueryRow(ctx, `
			UPDATE requests
			SET status = $2, created_at = NOW()
			WHERE id = $1
			RETURNING id, created_at
		`, existingID, string(req.Status)).Scan(&req.ID, &req.Created)
	} else {
		err = tx.QueryRow(ctx, `
			INSERT INTO requests (requester_id, event_id, status, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, created_at
		`, requesterID, eventID, string(req.Status)).Scan(&req.ID, &req.Created)
	}
	if err != nil {
		return domain.Request{}, err
	}

	if err := insertOutboxTx(ctx, tx, traceID, "request.created", requestEventPayload{
		RequestID:   req.ID,
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Status:      string(req.Status),
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		return domain.Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

// CancelRequest is the requester's self-service transition to CANCELED.
// Canceling a CONFIRMED request frees one slot for future Create calls;
// nothing PENDING is auto-promoted into it.
func (s *Store) CancelRequest(ctx context.Context, traceID string, requesterID, requestID int64) (domain.Request, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Unlocked peek to learn the event id, then lock in canonical order.
	var eventID int64
	err = tx.QueryRow(ctx, `SELECT event_id FROM requests WHERE id = $1`, requestID).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Request{}, domain.ErrRequestNotFound
		}
		return domain.Request{}, err
	}

	if _, err := lockEventTx(ctx, tx, eventID); err != nil {
		return domain.Request{}, err
	}

	var req domain.Request
	var rawStatus string
	err = tx.QueryRow(ctx, `
		SELECT id, requester_id, event_id, status, created_at
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(&req.ID, &req.RequesterID, &req.EventID, &rawStatus, &req.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Request{}, domain.ErrRequestNotFound
		}
		return domain.Request{}, err
	}
	req.Status = domain.RequestStatus(rawStatus)

	if err := domain.ValidateCancel(req, requesterID); err != nil {
		return domain.Request{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE requests SET status = $2 WHERE id = $1`,
		req.ID, string(domain.StatusCanceled)); err != nil {
		return domain.Request{}, err
	}
	req.Status = domain.StatusCanceled

	if err := insertOutboxTx(ctx, tx, traceID, "request.canceled", requestEventPayload{
		RequestID:   req.ID,
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Status:      string(req.Status),
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		return domain.Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

func (s *Store) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]domain.Request, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, requesterID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, requester_id, event_id, status, created_at
		FROM requests
		WHERE requester_id = $1
		ORDER BY created_at ASC, id ASC
	`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListRequestsForEvent is owner-only: the caller must be the event's
// initiator.
func (s *Store) ListRequestsForEvent(ctx context.Context, ownerID, eventID int64) ([]domain.Request, error) {
	var initiatorID int64
	err := s.pool.QueryRow(ctx, `SELECT initiator_id FROM events WHERE id = $1`, eventID).Scan(&initiatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if initiatorID != ownerID {
		return nil, domain.ErrNotInitiator
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, requester_id, event_id, status, created_at
		FROM requests
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]domain.Request, error) {
	var out []domain.Request
	for rows.Next() {
		var r domain.Request
		var rawStatus string
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.EventID, &rawStatus, &r.Created); err != nil {
			return nil, err
		}
		r.Status = domain.RequestStatus(rawStatus)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// lockEventTx takes the per-event serialization point. Every writer that
// can move the confirmed count goes through here first.
func lockEventTx(ctx context.Context, tx pgx.Tx, eventID int64) (domain.Event, error) {
	var (
		ev       domain.Event
		rawState string
	)
	err := tx.QueryRow(ctx, `
		SELECT id, initiator_id, state, participant_limit, request_moderation
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&ev.ID, &ev.InitiatorID, &rawState, &ev.ParticipantLimit, &ev.RequestModeration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	ev.State = domain.EventState(rawState)
	return ev, nil
}

func confirmedCountTx(ctx context.Context, tx pgx.Tx, eventID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2
	`, eventID, string(domain.StatusConfirmed)).Scan(&n)
	return n, err
}
