package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/transport/rest/response"
)

// -------------------------
// Users
// -------------------------

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	u, err := h.admin.CreateUser(r.Context(), body.Name, body.Email)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toUserView(u))
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	ids, ok := parseIDList(r.URL.Query().Get("ids"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid ids", nil)
		return
	}
	from, size := parsePage(r.URL.Query())

	users, err := h.admin.ListUsers(r.Context(), ids, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

// -------------------------
// Categories
// -------------------------

func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.admin.CreateCategory(r.Context(), body.Name)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toCategoryView(c))
}

func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.admin.UpdateCategory(r.Context(), id, body.Name)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCategoryView(c))
}

func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	if err := h.admin.DeleteCategory(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

// -------------------------
// Events
// -------------------------

func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, ok := parseIDList(q.Get("users"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid users", nil)
		return
	}
	categories, ok := parseIDList(q.Get("categories"))
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid categories", nil)
		return
	}

	var states []domain.EventState
	if raw := strings.TrimSpace(q.Get("states")); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			switch st := domain.EventState(strings.ToUpper(strings.TrimSpace(p))); st {
			case domain.EventPending, domain.EventPublished, domain.EventCanceled:
				states = append(states, st)
			default:
				fail(w, r, http.StatusBadRequest, "request.invalid", "invalid states", nil)
				return
			}
		}
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

	from, size := parsePage(q)

	items, err := h.events.ListAdmin(r.Context(), domain.AdminEventFilter{
		Users:      users,
		States:     states,
		Categories: categories,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		From:       from,
		Size:       size,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventViews(items))
}

func (h *Handler) AdminModerateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}

	var body struct {
		StateAction string `json:"stateAction"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	var state domain.EventState
	switch strings.ToUpper(strings.TrimSpace(body.StateAction)) {
	case "PUBLISH_EVENT":
		state = domain.EventPublished
	case "REJECT_EVENT":
		state = domain.EventCanceled
	default:
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid stateAction", map[string]string{
			"stateAction": "must be PUBLISH_EVENT or REJECT_EVENT",
		})
		return
	}

	ev, err := h.events.SetState(r.Context(), id, state)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventView(ev))
}

// -------------------------
// Compilations
// -------------------------

func (h *Handler) AdminCreateCompilation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title  string  `json:"title"`
		Pinned bool    `json:"pinned"`
		Events []int64 `json:"events"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.admin.CreateCompilation(r.Context(), body.Title, body.Pinned, body.Events)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toCompilationView(c))
}

func (h *Handler) AdminUpdateCompilation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "compID")
	if !ok {
		return
	}

	var body struct {
		Title  *string `json:"title"`
		Pinned *bool   `json:"pinned"`
		Events []int64 `json:"events"`
	}
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	c, err := h.admin.UpdateCompilation(r.Context(), id, domain.CompilationPatch{
		Title:    body.Title,
		Pinned:   body.Pinned,
		EventIDs: body.Events,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toCompilationView(c))
}

func (h *Handler) AdminDeleteCompilation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "compID")
	if !ok {
		return
	}
	if err := h.admin.DeleteCompilation(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

// -------------------------
// Comments
// -------------------------

func (h *Handler) AdminDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	if err := h.comments.DeleteAdmin(r.Context(), id); err != nil {
		handleErr(w, r, err)
		return
	}
	response.NoContent(w)
}

// parseWireTime parses an optional query timestamp; ok=false means the
// value was present but malformed.
func parseWireTime(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(wireTimeLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
