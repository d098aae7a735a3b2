package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements every domain store interface against one pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// -------------------------
// Deadlock policy:
// Every write that touches a request locks rows in this order:
//   1) events row (FOR UPDATE), the capacity anchor for that event
//   2) requests row(s) (FOR UPDATE)
// The confirmed count is only ever read after step 1, so the
// count-then-write unit is serialized per event and the participant
// limit cannot be oversold by racing writers.
// -------------------------

func clampPage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return from, size
}

// insertOutboxTx queues one message inside the caller's transaction so the
// publish becomes visible if and only if the business change commits.
func insertOutboxTx(ctx context.Context, tx pgx.Tx, traceID, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (message_id, trace_id, routing_key, payload, occurred_at, status)
		VALUES ($1, $2, $3, $4, NOW(), 'pending')
	`, uuid.New(), traceID, routingKey, body)
	return err
}

type requestEventPayload struct {
	RequestID   int64     `json:"request_id"`
	EventID     int64     `json:"event_id"`
	RequesterID int64     `json:"requester_id"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}
