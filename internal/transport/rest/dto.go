package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/avolkov/eventory/internal/domain"
)

// wireTimeLayout is the timestamp format used on the wire for event and
// request dates.
const wireTimeLayout = "2006-01-02 15:04:05"

type wireTime time.Time

func (t wireTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(wireTimeLayout) + `"`), nil
}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = wireTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(wireTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: want %q", s, wireTimeLayout)
	}
	*t = wireTime(parsed)
	return nil
}

type RequestView struct {
	ID        int64    `json:"id"`
	Requester int64    `json:"requester"`
	Event     int64    `json:"event"`
	Status    string   `json:"status"`
	Created   wireTime `json:"created"`
}

func toRequestView(r domain.Request) RequestView {
	return RequestView{
		ID:        r.ID,
		Requester: r.RequesterID,
		Event:     r.EventID,
		Status:    string(r.Status),
		Created:   wireTime(r.Created),
	}
}

func toRequestViews(rs []domain.Request) []RequestView {
	out := make([]RequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestView(r))
	}
	return out
}

// ModerationView is the split outcome of one batch moderation call.
type ModerationView struct {
	ConfirmedRequests []RequestView `json:"confirmedRequests"`
	RejectedRequests  []RequestView `json:"rejectedRequests"`
}

func toModerationView(res domain.ModerationResult) ModerationView {
	return ModerationView{
		ConfirmedRequests: toRequestViews(res.Confirmed),
		RejectedRequests:  toRequestViews(res.Rejected),
	}
}

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCategoryView(c domain.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name}
}

type LocationView struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type EventView struct {
	ID                int64        `json:"id"`
	Title             string       `json:"title"`
	Annotation        string       `json:"annotation"`
	Description       string       `json:"description,omitempty"`
	CategoryID        int64        `json:"categoryId"`
	InitiatorID       int64        `json:"initiatorId"`
	Location          LocationView `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit"`
	RequestModeration bool         `json:"requestModeration"`
	State             string       `json:"state"`
	EventDate         wireTime     `json:"eventDate"`
	CreatedOn         wireTime     `json:"createdOn"`
	PublishedOn       *wireTime    `json:"publishedOn,omitempty"`
	ConfirmedRequests int          `json:"confirmedRequests"`
	Views             int64        `json:"views"`
}

func toEventView(e domain.Event) EventView {
	v := EventView{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		CategoryID:        e.CategoryID,
		InitiatorID:       e.InitiatorID,
		Location:          LocationView{Lat: e.Location.Lat, Lon: e.Location.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		EventDate:         wireTime(e.EventDate),
		CreatedOn:         wireTime(e.CreatedOn),
		ConfirmedRequests: e.ConfirmedCount,
		Views:             e.Views,
	}
	if e.PublishedOn != nil {
		wt := wireTime(*e.PublishedOn)
		v.PublishedOn = &wt
	}
	return v
}

func toEventViews(es []domain.Event) []EventView {
	out := make([]EventView, 0, len(es))
	for _, e := range es {
		out = append(out, toEventView(e))
	}
	return out
}

type CompilationView struct {
	ID     int64       `json:"id"`
	Title  string      `json:"title"`
	Pinned bool        `json:"pinned"`
	Events []EventView `json:"events"`
}

func toCompilationView(c domain.Compilation) CompilationView {
	return CompilationView{
		ID:     c.ID,
		Title:  c.Title,
		Pinned: c.Pinned,
		Events: toEventViews(c.Events),
	}
}

type CommentView struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	AuthorID  int64     `json:"authorId"`
	Text      string    `json:"text"`
	CreatedOn wireTime  `json:"createdOn"`
	EditedOn  *wireTime `json:"editedOn,omitempty"`
}

func toCommentView(c domain.Comment) CommentView {
	v := CommentView{
		ID:        c.ID,
		EventID:   c.EventID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedOn: wireTime(c.CreatedOn),
	}
	if c.EditedOn != nil {
		wt := wireTime(*c.EditedOn)
		v.EditedOn = &wt
	}
	return v
}

func toCommentViews(cs []domain.Comment) []CommentView {
	out := make([]CommentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCommentView(c))
	}
	return out
}
