package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/eventory/internal/audit"
	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/metrics"
	"github.com/avolkov/eventory/internal/service"
)

type MockRequestStore struct{ mock.Mock }

func (m *MockRequestStore) CreateRequest(ctx context.Context, tid string, requesterID, eventID int64) (domain.Request, error) {
	args := m.Called(ctx, tid, requesterID, eventID)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestStore) CancelRequest(ctx context.Context, tid string, requesterID, requestID int64) (domain.Request, error) {
	args := m.Called(ctx, tid, requesterID, requestID)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestStore) UpdateRequestStatuses(ctx context.Context, tid string, ownerID, eventID int64, requestIDs []int64, target domain.RequestStatus) (domain.ModerationResult, error) {
	args := m.Called(ctx, tid, ownerID, eventID, requestIDs, target)
	return args.Get(0).(domain.ModerationResult), args.Error(1)
}

func (m *MockRequestStore) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]domain.Request, error) {
	args := m.Called(ctx, requesterID)
	var recs []domain.Request
	if v := args.Get(0); v != nil {
		recs = v.([]domain.Request)
	}
	return recs, args.Error(1)
}

func (m *MockRequestStore) ListRequestsForEvent(ctx context.Context, ownerID, eventID int64) ([]domain.Request, error) {
	args := m.Called(ctx, ownerID, eventID)
	var recs []domain.Request
	if v := args.Get(0); v != nil {
		recs = v.([]domain.Request)
	}
	return recs, args.Error(1)
}

func newRequestService(store *MockRequestStore) *service.RequestService {
	return service.NewRequestService(store, audit.New(zerolog.Nop()), metrics.New())
}

func TestRequestServiceCreate(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	want := domain.Request{ID: 7, RequesterID: 2, EventID: 3, Status: domain.StatusPending, Created: time.Now()}
	store.On("CreateRequest", mock.Anything, mock.Anything, int64(2), int64(3)).Return(want, nil)

	got, err := svc.Create(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestRequestServiceCreateInvalidIDs(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	_, err := svc.Create(context.Background(), 0, 3)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), 2, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	store.AssertNotCalled(t, "CreateRequest")
}

func TestRequestServiceCreatePropagatesConflict(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	store.On("CreateRequest", mock.Anything, mock.Anything, int64(2), int64(3)).
		Return(domain.Request{}, domain.ErrLimitReached)

	_, err := svc.Create(context.Background(), 2, 3)
	assert.ErrorIs(t, err, domain.ErrLimitReached)
}

func TestRequestServiceCancel(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	want := domain.Request{ID: 7, RequesterID: 2, EventID: 3, Status: domain.StatusCanceled}
	store.On("CancelRequest", mock.Anything, mock.Anything, int64(2), int64(7)).Return(want, nil)

	got, err := svc.Cancel(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, got.Status)
	store.AssertExpectations(t)
}

func TestRequestServiceModerate(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	res := domain.ModerationResult{
		Confirmed: []domain.Request{{ID: 1, Status: domain.StatusConfirmed}},
		Rejected:  []domain.Request{{ID: 2, Status: domain.StatusRejected}},
	}
	store.On("UpdateRequestStatuses", mock.Anything, mock.Anything, int64(10), int64(3), []int64{1, 2}, domain.StatusConfirmed).
		Return(res, nil)

	got, err := svc.Moderate(context.Background(), 10, 3, []int64{1, 2}, "CONFIRMED")
	require.NoError(t, err)
	assert.Len(t, got.Confirmed, 1)
	assert.Len(t, got.Rejected, 1)
	store.AssertExpectations(t)
}

func TestRequestServiceModerateValidation(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	_, err := svc.Moderate(context.Background(), 10, 3, nil, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrValidation, "empty id list")

	_, err = svc.Moderate(context.Background(), 10, 3, []int64{1, 0}, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrValidation, "non-positive id")

	_, err = svc.Moderate(context.Background(), 10, 3, []int64{1}, "APPROVED")
	assert.ErrorIs(t, err, domain.ErrValidation, "unknown status")

	// PENDING and CANCELED parse but are not legal moderation targets.
	_, err = svc.Moderate(context.Background(), 10, 3, []int64{1}, "PENDING")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Moderate(context.Background(), 10, 3, []int64{1}, "CANCELED")
	assert.ErrorIs(t, err, domain.ErrValidation)

	store.AssertNotCalled(t, "UpdateRequestStatuses")
}

func TestRequestServiceModeratePropagatesNotPending(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	store.On("UpdateRequestStatuses", mock.Anything, mock.Anything, int64(10), int64(3), []int64{1}, domain.StatusRejected).
		Return(domain.ModerationResult{}, domain.ErrRequestNotPending)

	_, err := svc.Moderate(context.Background(), 10, 3, []int64{1}, "rejected")
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
}

func TestRequestServiceLists(t *testing.T) {
	store := new(MockRequestStore)
	svc := newRequestService(store)

	store.On("ListRequestsByRequester", mock.Anything, int64(2)).
		Return([]domain.Request{{ID: 1}, {ID: 2}}, nil)
	store.On("ListRequestsForEvent", mock.Anything, int64(10), int64(3)).
		Return(nil, errors.New("boom"))

	mine, err := svc.ListMine(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.ListForEvent(context.Background(), 10, 3)
	assert.Error(t, err)
}
