package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/eventory/internal/audit"
	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/pkg/logger"
	"github.com/avolkov/eventory/internal/stats"
)

// ViewsCache keeps recent view counts close so the stats service is not
// hit on every public read.
type ViewsCache interface {
	GetEventViews(ctx context.Context, eventID int64) (int64, error)
	SetEventViews(ctx context.Context, eventID int64, views int64) error
}

type EventService struct {
	store   domain.EventStore
	views   stats.ViewCounter
	cache   ViewsCache
	auditor *audit.Logger
	appName string
}

func NewEventService(store domain.EventStore, views stats.ViewCounter, cache ViewsCache, auditor *audit.Logger, appName string) *EventService {
	return &EventService{store: store, views: views, cache: cache, auditor: auditor, appName: appName}
}

// minLeadTime keeps new and rescheduled events at least this far out.
const minLeadTime = 2 * time.Hour

func (s *EventService) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	if err := validateEventFields(e.Title, e.Annotation, e.ParticipantLimit); err != nil {
		return domain.Event{}, err
	}
	if time.Until(e.EventDate) < minLeadTime {
		return domain.Event{}, fmt.Errorf("%w: event date must be at least %s in the future", domain.ErrValidation, minLeadTime)
	}
	return s.store.CreateEvent(ctx, e)
}

func (s *EventService) UpdateByInitiator(ctx context.Context, initiatorID, eventID int64, p domain.EventPatch) (domain.Event, error) {
	if p.Title != nil && *p.Title == "" {
		return domain.Event{}, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if p.ParticipantLimit != nil && *p.ParticipantLimit < 0 {
		return domain.Event{}, fmt.Errorf("%w: participant limit cannot be negative", domain.ErrValidation)
	}
	if p.EventDate != nil && time.Until(*p.EventDate) < minLeadTime {
		return domain.Event{}, fmt.Errorf("%w: event date must be at least %s in the future", domain.ErrValidation, minLeadTime)
	}
	if p.NewState != nil && *p.NewState != domain.EventPending && *p.NewState != domain.EventCanceled {
		return domain.Event{}, fmt.Errorf("%w: initiator may only send to review or cancel", domain.ErrValidation)
	}
	return s.store.UpdateEventByInitiator(ctx, initiatorID, eventID, p)
}

// SetState is the admin publish/reject decision.
func (s *EventService) SetState(ctx context.Context, eventID int64, state domain.EventState) (domain.Event, error) {
	ev, err := s.store.SetEventState(ctx, eventID, state)
	if err != nil {
		return domain.Event{}, err
	}
	s.auditor.EventStateChanged(ctx, eventID, state)
	return ev, nil
}

func (s *EventService) GetByInitiator(ctx context.Context, initiatorID, eventID int64) (domain.Event, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if ev.InitiatorID != initiatorID {
		return domain.Event{}, domain.ErrNotInitiator
	}
	return s.decorateViews(ctx, ev), nil
}

// GetPublished serves the public event page: the hit is recorded first,
// then the view count is attached.
func (s *EventService) GetPublished(ctx context.Context, eventID int64, clientIP, uri string) (domain.Event, error) {
	ev, err := s.store.GetPublishedEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	if err := s.views.RecordHit(ctx, s.appName, uri, clientIP, time.Now()); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("hit recording failed")
	}

	return s.decorateViews(ctx, ev), nil
}

func (s *EventService) Search(ctx context.Context, f domain.EventSearchFilter, clientIP, uri string) ([]domain.Event, error) {
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeEnd.Before(*f.RangeStart) {
		return nil, fmt.Errorf("%w: rangeEnd before rangeStart", domain.ErrValidation)
	}

	events, err := s.store.SearchPublishedEvents(ctx, f)
	if err != nil {
		return nil, err
	}

	if err := s.views.RecordHit(ctx, s.appName, uri, clientIP, time.Now()); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("hit recording failed")
	}

	for i := range events {
		events[i] = s.decorateViews(ctx, events[i])
	}
	return events, nil
}

func (s *EventService) ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]domain.Event, error) {
	return s.store.ListEventsByInitiator(ctx, initiatorID, from, size)
}

func (s *EventService) ListAdmin(ctx context.Context, f domain.AdminEventFilter) ([]domain.Event, error) {
	return s.store.ListEventsAdmin(ctx, f)
}

// decorateViews fills Event.Views from the cache, falling back to the
// stats service. View counts are best-effort; failures read as zero.
func (s *EventService) decorateViews(ctx context.Context, ev domain.Event) domain.Event {
	if ev.PublishedOn == nil {
		return ev
	}

	if s.cache != nil {
		if v, err := s.cache.GetEventViews(ctx, ev.ID); err == nil {
			ev.Views = v
			return ev
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.WithCtx(ctx).Warn().Err(err).Msg("views cache read failed")
		}
	}

	uri := fmt.Sprintf("/events/%d", ev.ID)
	counts, err := s.views.GetViews(ctx, *ev.PublishedOn, time.Now(), []string{uri}, true)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("views lookup failed")
		return ev
	}
	ev.Views = counts[uri]

	if s.cache != nil {
		if err := s.cache.SetEventViews(ctx, ev.ID, ev.Views); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Msg("views cache write failed")
		}
	}
	return ev
}

func validateEventFields(title, annotation string, limit int) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if annotation == "" {
		return fmt.Errorf("%w: annotation is required", domain.ErrValidation)
	}
	if limit < 0 {
		return fmt.Errorf("%w: participant limit cannot be negative", domain.ErrValidation)
	}
	return nil
}
