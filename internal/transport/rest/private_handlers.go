package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/transport/rest/response"
)

// -------------------------
// Participation requests
// -------------------------

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("eventId")), 10, 64)
	if err != nil || eventID <= 0 {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventId", map[string]string{
			"eventId": "must be a positive integer",
		})
		return
	}

	req, err := h.requests.Create(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toRequestView(req))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	req, err := h.requests.Cancel(r.Context(), userID, requestID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toRequestView(req))
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	items, err := h.requests.ListMine(r.Context(), userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toRequestViews(items))
}

func (h *Handler) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	items, err := h.requests.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toRequestViews(items))
}

func (h *Handler) ModerateRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	var body struct {
		RequestIDs []int64 `json:"requestIds"`
		Status     string  `json:"status"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	res, err := h.requests.Moderate(r.Context(), userID, eventID, body.RequestIDs, body.Status)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toModerationView(res))
}

// -------------------------
// Initiator events
// -------------------------

type eventBody struct {
	Title             string        `json:"title"`
	Annotation        string        `json:"annotation"`
	Description       string        `json:"description"`
	CategoryID        int64         `json:"categoryId"`
	Location          *LocationView `json:"location"`
	Paid              *bool         `json:"paid"`
	ParticipantLimit  *int          `json:"participantLimit"`
	RequestModeration *bool         `json:"requestModeration"`
	EventDate         *wireTime     `json:"eventDate"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	var body eventBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}
	if body.EventDate == nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "eventDate is required", nil)
		return
	}

	ev := domain.Event{
		Title:             strings.TrimSpace(body.Title),
		Annotation:        strings.TrimSpace(body.Annotation),
		Description:       strings.TrimSpace(body.Description),
		CategoryID:        body.CategoryID,
		InitiatorID:       userID,
		EventDate:         time.Time(*body.EventDate),
		RequestModeration: true,
	}
	if body.Location != nil {
		ev.Location = domain.Location{Lat: body.Location.Lat, Lon: body.Location.Lon}
	}
	if body.Paid != nil {
		ev.Paid = *body.Paid
	}
	if body.ParticipantLimit != nil {
		ev.ParticipantLimit = *body.ParticipantLimit
	}
	if body.RequestModeration != nil {
		ev.RequestModeration = *body.RequestModeration
	}

	created, err := h.events.Create(r.Context(), ev)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toEventView(created))
}

func (h *Handler) GetMyEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	ev, err := h.events.GetByInitiator(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventView(ev))
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	from, size := parsePage(r.URL.Query())

	items, err := h.events.ListByInitiator(r.Context(), userID, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventViews(items))
}

func (h *Handler) UpdateMyEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	var body struct {
		eventBody
		StateAction string `json:"stateAction"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	patch := patchFromBody(body.eventBody)
	switch strings.ToUpper(strings.TrimSpace(body.StateAction)) {
	case "":
	case "SEND_TO_REVIEW":
		st := domain.EventPending
		patch.NewState = &st
	case "CANCEL_REVIEW":
		st := domain.EventCanceled
		patch.NewState = &st
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid stateAction", map[string]string{
			"stateAction": "must be SEND_TO_REVIEW or CANCEL_REVIEW",
		})
		return
	}

	ev, err := h.events.UpdateByInitiator(r.Context(), userID, eventID, patch)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventView(ev))
}

func patchFromBody(b eventBody) domain.EventPatch {
	var p domain.EventPatch
	if b.Title != "" {
		t := strings.TrimSpace(b.Title)
		p.Title = &t
	}
	if b.Annotation != "" {
		a := strings.TrimSpace(b.Annotation)
		p.Annotation = &a
	}
	if b.Description != "" {
		d := strings.TrimSpace(b.Description)
		p.Description = &d
	}
	if b.CategoryID > 0 {
		c := b.CategoryID
		p.CategoryID = &c
	}
	if b.EventDate != nil {
		t := time.Time(*b.EventDate)
		p.EventDate = &t
	}
	if b.Location != nil {
		p.Location = &domain.Location{Lat: b.Location.Lat, Lon: b.Location.Lon}
	}
	p.Paid = b.Paid
	p.ParticipantLimit = b.ParticipantLimit
	p.RequestModeration = b.RequestModeration
	return p
}

// -------------------------
// Comments
// -------------------------

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	eventID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("eventId")), 10, 64)
	if err != nil || eventID <= 0 {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventId", nil)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.comments.Create(r.Context(), userID, eventID, body.Text)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toCommentView(c))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.comments.Update(r.Context(), userID, commentID, body.Text)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCommentView(c))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), userID, commentID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}
