package domain

// Admission rules for participation requests.
//
// All functions here are pure: the store calls them inside its transaction
// after taking the event-row lock, so every decision is made against a
// confirmed count that cannot move underneath it.

// DecideNewStatus returns the status a freshly admitted request gets.
// Unmoderated and unlimited events auto-confirm.
func DecideNewStatus(e Event) RequestStatus {
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		return StatusConfirmed
	}
	return StatusPending
}

// ValidateNewRequest runs the precondition chain for a request from
// requesterID against e. existing is the status of a prior request for the
// same (requester, event) pair, nil if there is none; confirmedCount is the
// event's current CONFIRMED total. The first violated precondition wins.
//
// A prior CANCELED or REJECTED request does not block: the pair is freed
// for a fresh attempt and the old row is reused.
func ValidateNewRequest(e Event, requesterID int64, existing *RequestStatus, confirmedCount int) error {
	if e.State != EventPublished {
		return ErrEventNotPublished
	}
	if e.InitiatorID == requesterID {
		return ErrOwnEventRequest
	}
	if existing != nil && existing.Live() {
		return ErrDuplicateRequest
	}
	if e.ParticipantLimit > 0 && confirmedCount >= e.ParticipantLimit {
		return ErrLimitReached
	}
	return nil
}

// ValidateCancel enforces the self-service cancel rules: only the requester
// may cancel, and only from PENDING or CONFIRMED.
func ValidateCancel(r Request, requesterID int64) error {
	if r.RequesterID != requesterID {
		return ErrNotRequester
	}
	if r.Status == StatusCanceled || r.Status == StatusRejected {
		return ErrRequestTerminal
	}
	return nil
}

// PlanModeration decides the outcome of one batch moderation call.
//
// Legality is all-or-nothing: if any request is not PENDING the whole batch
// is refused. Capacity is intentionally partial: a CONFIRMED batch larger
// than the remaining room fills seats in caller-supplied order and demotes
// the overflow to REJECTED, so no request is ever left PENDING after a
// decision pass. participantLimit == 0 means unlimited.
func PlanModeration(batch []Request, target RequestStatus, participantLimit, confirmedCount int) (ModerationResult, error) {
	for _, r := range batch {
		if r.Status != StatusPending {
			return ModerationResult{}, ErrRequestNotPending
		}
	}

	res := ModerationResult{}

	if target == StatusRejected {
		for _, r := range batch {
			r.Status = StatusRejected
			res.Rejected = append(res.Rejected, r)
		}
		return res, nil
	}

	unlimited := participantLimit <= 0
	remaining := 0
	if !unlimited {
		// The confirmed count can already sit at or past the limit (a racing
		// batch got there first); that must read as zero room, not unlimited.
		remaining = participantLimit - confirmedCount
		if remaining < 0 {
			remaining = 0
		}
	}

	for _, r := range batch {
		if !unlimited && remaining == 0 {
			r.Status = StatusRejected
			res.Rejected = append(res.Rejected, r)
			continue
		}
		r.Status = StatusConfirmed
		res.Confirmed = append(res.Confirmed, r)
		if !unlimited {
			remaining--
		}
	}
	return res, nil
}
