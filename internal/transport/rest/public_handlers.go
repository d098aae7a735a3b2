package rest

import (
	"net/http"
	"strings"

	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/transport/rest/response"
)

func (h *Handler) PublicSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	categories, ok := parseIDList(q.Get("categories"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid categories", nil)
		return
	}

	var paid *bool
	switch strings.ToLower(strings.TrimSpace(q.Get("paid"))) {
	case "":
	case "true":
		v := true
		paid = &v
	case "false":
		v := false
		paid = &v
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid paid", nil)
		return
	}

	rangeStart, ok := parseWireTime(q.Get("rangeStart"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid rangeStart", nil)
		return
	}
	rangeEnd, ok := parseWireTime(q.Get("rangeEnd"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid rangeEnd", nil)
		return
	}

	// View counts are attached after the query, so VIEWS sorts by event
	// date too, same as the default.
	sortByDate := true
	switch strings.ToUpper(strings.TrimSpace(q.Get("sort"))) {
	case "", "EVENT_DATE", "VIEWS":
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid sort", nil)
		return
	}

	from, size := parsePage(q)

	filter := domain.EventSearchFilter{
		Text:          strings.TrimSpace(q.Get("text")),
		Categories:    categories,
		Paid:          paid,
		RangeStart:    rangeStart,
		RangeEnd:      rangeEnd,
		OnlyAvailable: strings.EqualFold(strings.TrimSpace(q.Get("onlyAvailable")), "true"),
		SortByDate:    sortByDate,
		From:          from,
		Size:          size,
	}

	items, err := h.events.Search(r.Context(), filter, clientIP(r), r.URL.Path)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventViews(items))
}

func (h *Handler) PublicGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	ev, err := h.events.GetPublished(r.Context(), id, clientIP(r), r.URL.Path)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventView(ev))
}

func (h *Handler) PublicListCategories(w http.ResponseWriter, r *http.Request) {
	from, size := parsePage(r.URL.Query())

	cats, err := h.admin.ListCategories(r.Context(), from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryView(c))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) PublicGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	c, err := h.admin.GetCategory(r.Context(), id)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCategoryView(c))
}

func (h *Handler) PublicListCompilations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var pinned *bool
	switch strings.ToLower(strings.TrimSpace(q.Get("pinned"))) {
	case "":
	case "true":
		v := true
		pinned = &v
	case "false":
		v := false
		pinned = &v
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid pinned", nil)
		return
	}

	from, size := parsePage(q)

	comps, err := h.admin.ListCompilations(r.Context(), pinned, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]CompilationView, 0, len(comps))
	for _, c := range comps {
		out = append(out, toCompilationView(c))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) PublicGetCompilation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "compID")
	if !ok {
		return
	}

	c, err := h.admin.GetCompilation(r.Context(), id)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCompilationView(c))
}

func (h *Handler) PublicListComments(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	from, size := parsePage(r.URL.Query())

	items, err := h.comments.ListByEvent(r.Context(), eventID, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCommentViews(items))
}
