package service

import (
	"context"
	"fmt"

	"github.com/avolkov/eventory/internal/audit"
	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/metrics"
	appCtx "github.com/avolkov/eventory/internal/pkg/context"
)

// RequestService fronts the participation request workflow: admission,
// self-service cancel and owner moderation. All capacity decisions live
// in the store's transactions; this layer validates input shape, counts
// and audits.
type RequestService struct {
	store   domain.RequestStore
	auditor *audit.Logger
	metrics *metrics.Metrics
}

func NewRequestService(store domain.RequestStore, auditor *audit.Logger, m *metrics.Metrics) *RequestService {
	return &RequestService{store: store, auditor: auditor, metrics: m}
}

func (s *RequestService) Create(ctx context.Context, requesterID, eventID int64) (domain.Request, error) {
	if requesterID <= 0 || eventID <= 0 {
		return domain.Request{}, fmt.Errorf("%w: ids must be positive", domain.ErrValidation)
	}

	req, err := s.store.CreateRequest(ctx, appCtx.GetRequestID(ctx), requesterID, eventID)
	if err != nil {
		return domain.Request{}, err
	}

	s.metrics.RequestsCreated.Inc()
	if req.Status == domain.StatusConfirmed {
		s.metrics.RequestsConfirmed.Inc()
	}
	s.auditor.RequestCreated(ctx, req)
	return req, nil
}

func (s *RequestService) Cancel(ctx context.Context, requesterID, requestID int64) (domain.Request, error) {
	if requesterID <= 0 || requestID <= 0 {
		return domain.Request{}, fmt.Errorf("%w: ids must be positive", domain.ErrValidation)
	}

	req, err := s.store.CancelRequest(ctx, appCtx.GetRequestID(ctx), requesterID, requestID)
	if err != nil {
		return domain.Request{}, err
	}

	s.metrics.RequestsCanceled.Inc()
	s.auditor.RequestCanceled(ctx, req)
	return req, nil
}

// Moderate applies one batch decision by the event owner. Only CONFIRMED
// and REJECTED are acceptable targets; the store enforces the rest.
func (s *RequestService) Moderate(ctx context.Context, ownerID, eventID int64, requestIDs []int64, rawStatus string) (domain.ModerationResult, error) {
	if ownerID <= 0 || eventID <= 0 {
		return domain.ModerationResult{}, fmt.Errorf("%w: ids must be positive", domain.ErrValidation)
	}
	if len(requestIDs) == 0 {
		return domain.ModerationResult{}, fmt.Errorf("%w: empty request id list", domain.ErrValidation)
	}
	for _, id := range requestIDs {
		if id <= 0 {
			return domain.ModerationResult{}, fmt.Errorf("%w: request ids must be positive", domain.ErrValidation)
		}
	}

	target, err := domain.ParseRequestStatus(rawStatus)
	if err != nil {
		return domain.ModerationResult{}, err
	}
	if target != domain.StatusConfirmed && target != domain.StatusRejected {
		return domain.ModerationResult{}, fmt.Errorf("%w: target status must be CONFIRMED or REJECTED", domain.ErrValidation)
	}

	res, err := s.store.UpdateRequestStatuses(ctx, appCtx.GetRequestID(ctx), ownerID, eventID, requestIDs, target)
	if err != nil {
		return domain.ModerationResult{}, err
	}

	s.metrics.ModerationBatches.Inc()
	s.metrics.RequestsConfirmed.Add(float64(len(res.Confirmed)))
	s.metrics.RequestsRejected.Add(float64(len(res.Rejected)))
	s.auditor.BatchModerated(ctx, eventID, ownerID, target, res)
	return res, nil
}

func (s *RequestService) ListMine(ctx context.Context, requesterID int64) ([]domain.Request, error) {
	if requesterID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", domain.ErrValidation)
	}
	return s.store.ListRequestsByRequester(ctx, requesterID)
}

func (s *RequestService) ListForEvent(ctx context.Context, ownerID, eventID int64) ([]domain.Request, error) {
	if ownerID <= 0 || eventID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", domain.ErrValidation)
	}
	return s.store.ListRequestsForEvent(ctx, ownerID, eventID)
}
