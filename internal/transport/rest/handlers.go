package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/eventory/internal/domain"
	appCtx "github.com/avolkov/eventory/internal/pkg/context"
	"github.com/avolkov/eventory/internal/service"
	"github.com/avolkov/eventory/internal/transport/rest/response"
)

type Handler struct {
	requests *service.RequestService
	events   *service.EventService
	admin    *service.AdminService
	comments *service.CommentService
}

func NewHandler(requests *service.RequestService, events *service.EventService, admin *service.AdminService, comments *service.CommentService) *Handler {
	return &Handler{requests: requests, events: events, admin: admin, comments: comments}
}

// pathID parses one int64 chi URL param; ok=false means a fail response
// was already written.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid "+name, map[string]string{
			name: "must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		fail(w, r, http.StatusBadRequest, "request.invalid", err.Error(), nil)

	case domain.NotFound(err):
		fail(w, r, http.StatusNotFound, "not_found", err.Error(), nil)

	// Wrong-actor violations are conflicts: the caller named an entity that
	// exists but belongs to someone else.
	case errors.Is(err, domain.ErrNotRequester):
		fail(w, r, http.StatusConflict, "request.not_requester", err.Error(), nil)
	case errors.Is(err, domain.ErrNotInitiator):
		fail(w, r, http.StatusConflict, "event.not_initiator", err.Error(), nil)
	case errors.Is(err, domain.ErrNotCommentAuthor):
		fail(w, r, http.StatusConflict, "comment.not_author", err.Error(), nil)

	case errors.Is(err, domain.ErrEventNotPublished):
		fail(w, r, http.StatusConflict, "event.not_published", err.Error(), nil)
	case errors.Is(err, domain.ErrOwnEventRequest):
		fail(w, r, http.StatusConflict, "request.own_event", err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateRequest):
		fail(w, r, http.StatusConflict, "request.duplicate", err.Error(), nil)
	case errors.Is(err, domain.ErrLimitReached):
		fail(w, r, http.StatusConflict, "event.limit_reached", err.Error(), nil)
	case errors.Is(err, domain.ErrRequestTerminal):
		fail(w, r, http.StatusConflict, "request.terminal", err.Error(), nil)
	case errors.Is(err, domain.ErrRequestNotPending):
		fail(w, r, http.StatusConflict, "request.not_pending", err.Error(), nil)
	case errors.Is(err, domain.ErrEventNotEditable):
		fail(w, r, http.StatusConflict, "event.not_editable", err.Error(), nil)
	case errors.Is(err, domain.ErrCategoryInUse):
		fail(w, r, http.StatusConflict, "category.in_use", err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateEmail):
		fail(w, r, http.StatusConflict, "user.duplicate_email", err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateCategory):
		fail(w, r, http.StatusConflict, "category.duplicate_name", err.Error(), nil)

	default:
		// Do not leak internal details.
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}
