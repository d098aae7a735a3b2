package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avolkov/eventory/internal/domain"
)

// UpdateRequestStatuses executes one batch moderation call by the event's
// initiator. Legality (every request PENDING, every id resolvable) is
// all-or-nothing; capacity is partial: a CONFIRMED batch larger than the
// remaining room fills in caller-supplied order and demotes the overflow
// to REJECTED. Everything happens behind the event-row lock, so two
// batches racing for the last slot cannot both take it.
func (s *Store) UpdateRequestStatuses(ctx context.Context, traceID string, ownerID, eventID int64, requestIDs []int64, target domain.RequestStatus) (domain.ModerationResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ModerationResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ev, err := lockEventTx(ctx, tx, eventID)
	if err != nil {
		return domain.ModerationResult{}, err
	}
	if ev.InitiatorID != ownerID {
		return domain.ModerationResult{}, domain.ErrNotInitiator
	}

	// Resolve the batch; caller-supplied order decides the tie-break on
	// partial fill, so keep it. Duplicate ids collapse to their first
	// occurrence.
	ids := dedupIDs(requestIDs)

	rows, err := tx.Query(ctx, `
		SELECT id, requester_id, event_id, status, created_at
		FROM requests
		WHERE event_id = $1 AND id = ANY($2)
		FOR UPDATE
	`, eventID, ids)
	if err != nil {
		return domain.ModerationResult{}, err
	}
	loaded, err := scanRequests(rows)
	if err != nil {
		return domain.ModerationResult{}, err
	}

	byID := make(map[int64]domain.Request, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}

	batch := make([]domain.Request, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			// Strict policy: an id that does not resolve to a request of
			// this event aborts the batch before any mutation.
			return domain.ModerationResult{}, domain.ErrRequestNotFound
		}
		batch = append(batch, r)
	}

	confirmed, err := confirmedCountTx(ctx, tx, eventID)
	if err != nil {
		return domain.ModerationResult{}, err
	}

	res, err := domain.PlanModeration(batch, target, ev.ParticipantLimit, confirmed)
	if err != nil {
		return domain.ModerationResult{}, err
	}

	if err := s.applyDecisionsTx(ctx, tx, traceID, res); err != nil {
		return domain.ModerationResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ModerationResult{}, err
	}
	return res, nil
}

func (s *Store) applyDecisionsTx(ctx context.Context, tx pgx.Tx, traceID string, res domain.ModerationResult) error {
	now := time.Now().UTC()

	update := func(reqs []domain.Request, status domain.RequestStatus, routingKey string) error {
		if len(reqs) == 0 {
			return nil
		}
		ids := make([]int64, len(reqs))
		for i, r := range reqs {
			ids[i] = r.ID
		}
		if _, err := tx.Exec(ctx, `UPDATE requests SET status = $2 WHERE id = ANY($1)`,
			ids, string(status)); err != nil {
			return err
		}
		for _, r := range reqs {
			if err := insertOutboxTx(ctx, tx, traceID, routingKey, requestEventPayload{
				RequestID:   r.ID,
				EventID:     r.EventID,
				RequesterID: r.RequesterID,
				Status:      string(status),
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := update(res.Confirmed, domain.StatusConfirmed, "request.confirmed"); err != nil {
		return err
	}
	return update(res.Rejected, domain.StatusRejected, "request.rejected")
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
