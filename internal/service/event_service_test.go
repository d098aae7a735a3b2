package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/eventory/internal/audit"
	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/service"
	"github.com/avolkov/eventory/internal/stats"
)

type MockEventStore struct{ mock.Mock }

func (m *MockEventStore) CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventStore) GetEvent(ctx context.Context, id int64) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventStore) GetPublishedEvent(ctx context.Context, id int64) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventStore) UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, p domain.EventPatch) (domain.Event, error) {
	args := m.Called(ctx, initiatorID, eventID, p)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventStore) SetEventState(ctx context.Context, eventID int64, state domain.EventState) (domain.Event, error) {
	args := m.Called(ctx, eventID, state)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventStore) SearchPublishedEvents(ctx context.Context, f domain.EventSearchFilter) ([]domain.Event, error) {
	args := m.Called(ctx, f)
	var evs []domain.Event
	if v := args.Get(0); v != nil {
		evs = v.([]domain.Event)
	}
	return evs, args.Error(1)
}

func (m *MockEventStore) ListEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]domain.Event, error) {
	args := m.Called(ctx, initiatorID, from, size)
	var evs []domain.Event
	if v := args.Get(0); v != nil {
		evs = v.([]domain.Event)
	}
	return evs, args.Error(1)
}

func (m *MockEventStore) ListEventsAdmin(ctx context.Context, f domain.AdminEventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, f)
	var evs []domain.Event
	if v := args.Get(0); v != nil {
		evs = v.([]domain.Event)
	}
	return evs, args.Error(1)
}

// fakeViewCounter records hits and serves canned view counts.
type fakeViewCounter struct {
	hits  []string
	views map[string]int64
}

func (f *fakeViewCounter) RecordHit(_ context.Context, _, uri, _ string, _ time.Time) error {
	f.hits = append(f.hits, uri)
	return nil
}

func (f *fakeViewCounter) GetViews(_ context.Context, _, _ time.Time, uris []string, _ bool) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, u := range uris {
		out[u] = f.views[u]
	}
	return out, nil
}

type fakeViewsCache struct {
	store map[int64]int64
}

func (f *fakeViewsCache) GetEventViews(_ context.Context, eventID int64) (int64, error) {
	if v, ok := f.store[eventID]; ok {
		return v, nil
	}
	return 0, domain.ErrCacheMiss
}

func (f *fakeViewsCache) SetEventViews(_ context.Context, eventID int64, views int64) error {
	f.store[eventID] = views
	return nil
}

func newEventService(store *MockEventStore, views stats.ViewCounter, cache service.ViewsCache) *service.EventService {
	return service.NewEventService(store, views, cache, audit.New(zerolog.Nop()), "eventory-main")
}

func TestEventServiceCreateValidation(t *testing.T) {
	store := new(MockEventStore)
	svc := newEventService(store, stats.Nop{}, nil)

	base := domain.Event{
		Title:      "Meetup",
		Annotation: "An evening of talks",
		EventDate:  time.Now().Add(48 * time.Hour),
	}

	t.Run("missing title", func(t *testing.T) {
		e := base
		e.Title = ""
		_, err := svc.Create(context.Background(), e)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing annotation", func(t *testing.T) {
		e := base
		e.Annotation = ""
		_, err := svc.Create(context.Background(), e)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("negative limit", func(t *testing.T) {
		e := base
		e.ParticipantLimit = -1
		_, err := svc.Create(context.Background(), e)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("date too soon", func(t *testing.T) {
		e := base
		e.EventDate = time.Now().Add(30 * time.Minute)
		_, err := svc.Create(context.Background(), e)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	store.AssertNotCalled(t, "CreateEvent")

	t.Run("valid event is stored", func(t *testing.T) {
		want := base
		want.ID = 1
		store.On("CreateEvent", mock.Anything, base).Return(want, nil)

		got, err := svc.Create(context.Background(), base)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
	})
}

func TestEventServiceGetPublishedRecordsHitAndViews(t *testing.T) {
	store := new(MockEventStore)
	published := time.Now().Add(-time.Hour)
	counter := &fakeViewCounter{views: map[string]int64{"/events/5": 42}}
	cache := &fakeViewsCache{store: map[int64]int64{}}
	svc := newEventService(store, counter, cache)

	store.On("GetPublishedEvent", mock.Anything, int64(5)).Return(domain.Event{
		ID:          5,
		State:       domain.EventPublished,
		PublishedOn: &published,
	}, nil)

	ev, err := svc.GetPublished(context.Background(), 5, "10.0.0.1", "/events/5")
	require.NoError(t, err)

	assert.Equal(t, []string{"/events/5"}, counter.hits)
	assert.Equal(t, int64(42), ev.Views)
	assert.Equal(t, int64(42), cache.store[5], "views should be cached")

	// Second read hits the cache, not the counter.
	counter.views["/events/5"] = 1000
	ev, err = svc.GetPublished(context.Background(), 5, "10.0.0.1", "/events/5")
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.Views)
}

func TestEventServiceGetPublishedUnpublishedSkipsViews(t *testing.T) {
	store := new(MockEventStore)
	counter := &fakeViewCounter{views: map[string]int64{}}
	svc := newEventService(store, counter, nil)

	store.On("GetPublishedEvent", mock.Anything, int64(9)).
		Return(domain.Event{}, domain.ErrEventNotFound)

	_, err := svc.GetPublished(context.Background(), 9, "10.0.0.1", "/events/9")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.Empty(t, counter.hits, "no hit recorded for missing event")
}

func TestEventServiceSearchValidatesRange(t *testing.T) {
	store := new(MockEventStore)
	svc := newEventService(store, stats.Nop{}, nil)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.Search(context.Background(), domain.EventSearchFilter{
		RangeStart: &start,
		RangeEnd:   &end,
	}, "10.0.0.1", "/events")
	assert.ErrorIs(t, err, domain.ErrValidation)
	store.AssertNotCalled(t, "SearchPublishedEvents")
}

func TestEventServiceUpdateByInitiatorStateGuard(t *testing.T) {
	store := new(MockEventStore)
	svc := newEventService(store, stats.Nop{}, nil)

	published := domain.EventPublished
	_, err := svc.UpdateByInitiator(context.Background(), 1, 2, domain.EventPatch{NewState: &published})
	assert.ErrorIs(t, err, domain.ErrValidation, "initiator cannot publish")

	store.AssertNotCalled(t, "UpdateEventByInitiator")

	canceled := domain.EventCanceled
	store.On("UpdateEventByInitiator", mock.Anything, int64(1), int64(2), mock.Anything).
		Return(domain.Event{ID: 2, State: domain.EventCanceled}, nil)

	ev, err := svc.UpdateByInitiator(context.Background(), 1, 2, domain.EventPatch{NewState: &canceled})
	require.NoError(t, err)
	assert.Equal(t, domain.EventCanceled, ev.State)
}

func TestEventServiceGetByInitiatorOwnership(t *testing.T) {
	store := new(MockEventStore)
	svc := newEventService(store, stats.Nop{}, nil)

	store.On("GetEvent", mock.Anything, int64(2)).Return(domain.Event{ID: 2, InitiatorID: 77}, nil)

	_, err := svc.GetByInitiator(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrNotInitiator)

	ev, err := svc.GetByInitiator(context.Background(), 77, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ev.ID)
}
