package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/eventory/internal/domain"
)

func publishedEvent(limit int, moderated bool) domain.Event {
	return domain.Event{
		ID:                1,
		InitiatorID:       100,
		State:             domain.EventPublished,
		ParticipantLimit:  limit,
		RequestModeration: moderated,
	}
}

func TestDecideNewStatus(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		moderate bool
		want     domain.RequestStatus
	}{
		{"moderated with limit", 10, true, domain.StatusPending},
		{"unmoderated", 10, false, domain.StatusConfirmed},
		{"unlimited", 0, true, domain.StatusConfirmed},
		{"unmoderated unlimited", 0, false, domain.StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DecideNewStatus(publishedEvent(tt.limit, tt.moderate))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNewRequest(t *testing.T) {
	pending := domain.StatusPending
	confirmed := domain.StatusConfirmed
	rejected := domain.StatusRejected
	canceled := domain.StatusCanceled

	tests := []struct {
		name      string
		event     domain.Event
		requester int64
		existing  *domain.RequestStatus
		confirmed int
		wantErr   error
	}{
		{
			name:      "ok",
			event:     publishedEvent(10, true),
			requester: 1,
		},
		{
			name:      "unpublished event",
			event:     domain.Event{ID: 1, InitiatorID: 100, State: domain.EventPending},
			requester: 1,
			wantErr:   domain.ErrEventNotPublished,
		},
		{
			name:      "canceled event",
			event:     domain.Event{ID: 1, InitiatorID: 100, State: domain.EventCanceled},
			requester: 1,
			wantErr:   domain.ErrEventNotPublished,
		},
		{
			name:      "initiator requests own event",
			event:     publishedEvent(10, true),
			requester: 100,
			wantErr:   domain.ErrOwnEventRequest,
		},
		{
			name:      "live pending request blocks",
			event:     publishedEvent(10, true),
			requester: 1,
			existing:  &pending,
			wantErr:   domain.ErrDuplicateRequest,
		},
		{
			name:      "live confirmed request blocks",
			event:     publishedEvent(10, true),
			requester: 1,
			existing:  &confirmed,
			wantErr:   domain.ErrDuplicateRequest,
		},
		{
			name:      "rejected prior frees the pair",
			event:     publishedEvent(10, true),
			requester: 1,
			existing:  &rejected,
		},
		{
			name:      "canceled prior frees the pair",
			event:     publishedEvent(10, true),
			requester: 1,
			existing:  &canceled,
		},
		{
			name:      "limit reached",
			event:     publishedEvent(2, true),
			requester: 1,
			confirmed: 2,
			wantErr:   domain.ErrLimitReached,
		},
		{
			name:      "one seat left",
			event:     publishedEvent(2, true),
			requester: 1,
			confirmed: 1,
		},
		{
			name:      "unlimited never fills",
			event:     publishedEvent(0, true),
			requester: 1,
			confirmed: 100000,
		},
		{
			name:      "publish check wins over duplicate",
			event:     domain.Event{ID: 1, InitiatorID: 100, State: domain.EventPending},
			requester: 1,
			existing:  &pending,
			wantErr:   domain.ErrEventNotPublished,
		},
		{
			name:      "own-event check wins over capacity",
			event:     publishedEvent(1, true),
			requester: 100,
			confirmed: 1,
			wantErr:   domain.ErrOwnEventRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateNewRequest(tt.event, tt.requester, tt.existing, tt.confirmed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCancel(t *testing.T) {
	tests := []struct {
		name      string
		status    domain.RequestStatus
		requester int64
		caller    int64
		wantErr   error
	}{
		{"cancel pending", domain.StatusPending, 1, 1, nil},
		{"cancel confirmed", domain.StatusConfirmed, 1, 1, nil},
		{"cancel canceled", domain.StatusCanceled, 1, 1, domain.ErrRequestTerminal},
		{"cancel rejected", domain.StatusRejected, 1, 1, domain.ErrRequestTerminal},
		{"someone else's request", domain.StatusPending, 1, 2, domain.ErrNotRequester},
		{"ownership check wins over terminal", domain.StatusCanceled, 1, 2, domain.ErrNotRequester},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.Request{ID: 5, RequesterID: tt.requester, EventID: 1, Status: tt.status}
			err := domain.ValidateCancel(req, tt.caller)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func pendingBatch(ids ...int64) []domain.Request {
	out := make([]domain.Request, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Request{ID: id, EventID: 1, Status: domain.StatusPending})
	}
	return out
}

func requestIDs(rs []domain.Request) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestPlanModerationRejectAll(t *testing.T) {
	res, err := domain.PlanModeration(pendingBatch(1, 2, 3), domain.StatusRejected, 10, 0)
	require.NoError(t, err)

	assert.Empty(t, res.Confirmed)
	assert.Equal(t, []int64{1, 2, 3}, requestIDs(res.Rejected))
	for _, r := range res.Rejected {
		assert.Equal(t, domain.StatusRejected, r.Status)
	}
}

func TestPlanModerationConfirmFits(t *testing.T) {
	res, err := domain.PlanModeration(pendingBatch(1, 2), domain.StatusConfirmed, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, requestIDs(res.Confirmed))
	assert.Empty(t, res.Rejected)
}

func TestPlanModerationPartialFill(t *testing.T) {
	// 2 seats left, batch of 4: first two confirmed, overflow rejected.
	res, err := domain.PlanModeration(pendingBatch(10, 11, 12, 13), domain.StatusConfirmed, 5, 3)
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 11}, requestIDs(res.Confirmed))
	assert.Equal(t, []int64{12, 13}, requestIDs(res.Rejected))
	for _, r := range res.Rejected {
		assert.Equal(t, domain.StatusRejected, r.Status)
	}
}

func TestPlanModerationNoRoomRejectsAll(t *testing.T) {
	res, err := domain.PlanModeration(pendingBatch(1, 2), domain.StatusConfirmed, 3, 3)
	require.NoError(t, err)

	assert.Empty(t, res.Confirmed)
	assert.Equal(t, []int64{1, 2}, requestIDs(res.Rejected))
}

func TestPlanModerationOversubscribedRejectsAll(t *testing.T) {
	// Confirmed count already past the limit (a racing batch won): the
	// negative room must read as zero seats, never as unlimited.
	res, err := domain.PlanModeration(pendingBatch(1, 2, 3), domain.StatusConfirmed, 1, 2)
	require.NoError(t, err)

	assert.Empty(t, res.Confirmed)
	assert.Equal(t, []int64{1, 2, 3}, requestIDs(res.Rejected))
	for _, r := range res.Rejected {
		assert.Equal(t, domain.StatusRejected, r.Status)
	}
}

func TestPlanModerationUnlimited(t *testing.T) {
	res, err := domain.PlanModeration(pendingBatch(1, 2, 3), domain.StatusConfirmed, 0, 999)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, requestIDs(res.Confirmed))
	assert.Empty(t, res.Rejected)
}

func TestPlanModerationNonPendingAborts(t *testing.T) {
	batch := pendingBatch(1, 2, 3)
	batch[1].Status = domain.StatusConfirmed

	_, err := domain.PlanModeration(batch, domain.StatusConfirmed, 10, 0)
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)

	batch[1].Status = domain.StatusCanceled
	_, err = domain.PlanModeration(batch, domain.StatusRejected, 10, 0)
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
}

func TestPlanModerationEmptyBatch(t *testing.T) {
	res, err := domain.PlanModeration(nil, domain.StatusConfirmed, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Confirmed)
	assert.Empty(t, res.Rejected)
}
