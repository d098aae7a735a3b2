package domain

import (
	"context"
	"time"
)

// -------------------------
// Store boundaries. The Postgres implementation owns transactions and the
// FOR UPDATE lock discipline; callers only see domain values and sentinel
// errors.
// -------------------------

// RequestStore persists participation requests. The three write operations
// are atomic with respect to each other per event: each one serializes on
// the event row before reading the confirmed count.
type RequestStore interface {
	CreateRequest(ctx context.Context, traceID string, requesterID, eventID int64) (Request, error)
	CancelRequest(ctx context.Context, traceID string, requesterID, requestID int64) (Request, error)
	UpdateRequestStatuses(ctx context.Context, traceID string, ownerID, eventID int64, requestIDs []int64, target RequestStatus) (ModerationResult, error)

	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]Request, error)
	ListRequestsForEvent(ctx context.Context, ownerID, eventID int64) ([]Request, error)
}

// EventSearchFilter narrows the public event listing.
type EventSearchFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	SortByDate    bool
	From          int
	Size          int
}

// AdminEventFilter narrows the admin event listing.
type AdminEventFilter struct {
	Users      []int64
	States     []EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

// EventPatch carries the optional fields of an event update; nil means
// "leave unchanged".
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	EventDate         *time.Time
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool

	// NewState carries the outcome of a state action (send to review,
	// cancel review); nil leaves the state alone.
	NewState *EventState
}

type EventStore interface {
	CreateEvent(ctx context.Context, e Event) (Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	GetPublishedEvent(ctx context.Context, id int64) (Event, error)
	UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, p EventPatch) (Event, error)
	SetEventState(ctx context.Context, eventID int64, state EventState) (Event, error)
	SearchPublishedEvents(ctx context.Context, f EventSearchFilter) ([]Event, error)
	ListEventsByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]Event, error)
	ListEventsAdmin(ctx context.Context, f AdminEventFilter) ([]Event, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	ListUsers(ctx context.Context, ids []int64, from, size int) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context, from, size int) ([]Category, error)
}

// CompilationPatch mirrors EventPatch for compilations; a nil EventIDs
// leaves the membership untouched, an empty one clears it.
type CompilationPatch struct {
	Title    *string
	Pinned   *bool
	EventIDs []int64
}

type CompilationStore interface {
	CreateCompilation(ctx context.Context, title string, pinned bool, eventIDs []int64) (Compilation, error)
	UpdateCompilation(ctx context.Context, id int64, p CompilationPatch) (Compilation, error)
	DeleteCompilation(ctx context.Context, id int64) error
	GetCompilation(ctx context.Context, id int64) (Compilation, error)
	ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]Compilation, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c Comment) (Comment, error)
	UpdateComment(ctx context.Context, authorID, commentID int64, text string) (Comment, error)
	DeleteComment(ctx context.Context, authorID, commentID int64) error
	DeleteCommentAdmin(ctx context.Context, commentID int64) error
	ListCommentsByEvent(ctx context.Context, eventID int64, from, size int) ([]Comment, error)
}
