package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/avolkov/eventory/internal/domain"
	appCtx "github.com/avolkov/eventory/internal/pkg/context"
)

// Logger provides structured audit logging for business events
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// RequestCreated logs a new participation request and its admission outcome.
func (l *Logger) RequestCreated(ctx context.Context, r domain.Request) {
	l.log.Info().
		Str("action", "request_created").
		Int64("request_id", r.ID).
		Int64("event_id", r.EventID).
		Int64("requester_id", r.RequesterID).
		Str("status", string(r.Status)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Participation request created")
}

// RequestCanceled logs a self-service cancellation.
func (l *Logger) RequestCanceled(ctx context.Context, r domain.Request) {
	l.log.Info().
		Str("action", "request_canceled").
		Int64("request_id", r.ID).
		Int64("event_id", r.EventID).
		Int64("requester_id", r.RequesterID).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Participation request canceled")
}

// BatchModerated logs the split outcome of one owner moderation call.
func (l *Logger) BatchModerated(ctx context.Context, eventID, ownerID int64, target domain.RequestStatus, res domain.ModerationResult) {
	l.log.Info().
		Str("action", "batch_moderated").
		Int64("event_id", eventID).
		Int64("owner_id", ownerID).
		Str("target", string(target)).
		Int("confirmed", len(res.Confirmed)).
		Int("rejected", len(res.Rejected)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Requests moderated")
}

// EventStateChanged logs admin publish/reject decisions.
func (l *Logger) EventStateChanged(ctx context.Context, eventID int64, state domain.EventState) {
	l.log.Info().
		Str("action", "event_state_changed").
		Int64("event_id", eventID).
		Str("state", string(state)).
		Str("trace_id", appCtx.GetRequestID(ctx)).
		Msg("Event state changed")
}
