package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusConfirmed RequestStatus = "CONFIRMED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCanceled  RequestStatus = "CANCELED"
)

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusCanceled
}

// Live reports whether s occupies the (requester, event) pair: a live
// request blocks a second submission, a non-live one frees the pair.
func (s RequestStatus) Live() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ParseRequestStatus maps a wire string onto the closed status set. Unknown
// strings are rejected at the boundary instead of being stored verbatim.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCanceled:
		return StatusCanceled, nil
	default:
		return "", fmt.Errorf("%w: unknown request status %q", ErrValidation, raw)
	}
}

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCompNotFound     = errors.New("compilation not found")
	ErrCommentNotFound  = errors.New("comment not found")

	ErrEventNotPublished = errors.New("event not published")
	ErrOwnEventRequest   = errors.New("initiator cannot request own event")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrLimitReached      = errors.New("participant limit reached")
	ErrNotRequester      = errors.New("not the owner")
	ErrNotInitiator      = errors.New("not the initiator")
	ErrRequestTerminal   = errors.New("request already in a terminal state")
	ErrRequestNotPending = errors.New("request not in PENDING state")
	ErrEventNotEditable  = errors.New("event cannot be modified in its current state")
	ErrNotCommentAuthor  = errors.New("not the comment author")
	ErrCategoryInUse     = errors.New("category has linked events")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateCategory = errors.New("category name already taken")

	ErrValidation = errors.New("validation failed")

	ErrCacheMiss = errors.New("cache miss")
)

// NotFound reports whether err refers to a missing entity.
func NotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrCompNotFound) ||
		errors.Is(err, ErrCommentNotFound)
}

type User struct {
	ID    int64
	Name  string
	Email string
}

type Category struct {
	ID   int64
	Name string
}

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID          int64
	Title       string
	Annotation  string
	Description string
	CategoryID  int64
	InitiatorID int64
	Location    Location
	Paid        bool

	// ParticipantLimit caps concurrently CONFIRMED requests; 0 = unlimited.
	ParticipantLimit int
	// RequestModeration gates auto-confirmation of new requests.
	RequestModeration bool

	State       EventState
	EventDate   time.Time
	CreatedOn   time.Time
	PublishedOn *time.Time

	// Decorations filled by read paths, not stored on the events row.
	ConfirmedCount int
	Views          int64
}

type Request struct {
	ID          int64
	RequesterID int64
	EventID     int64
	Status      RequestStatus
	Created     time.Time
}

type Compilation struct {
	ID     int64
	Title  string
	Pinned bool
	Events []Event
}

type Comment struct {
	ID        int64
	EventID   int64
	AuthorID  int64
	Text      string
	CreatedOn time.Time
	EditedOn  *time.Time
}

// ModerationResult is the split outcome of one batch moderation call.
type ModerationResult struct {
	Confirmed []Request
	Rejected  []Request
}
