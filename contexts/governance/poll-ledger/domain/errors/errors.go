package errors

import "errors"

var (
	ErrInvalidPollDuration  = errors.New("poll duration is invalid")
	ErrAlreadyVoted         = errors.New("voter has already voted")
	ErrOverflow             = errors.New("math operation overflowed")
	ErrDescriptionTooLong   = errors.New("poll description is too long")
	ErrCandidateNameTooLong = errors.New("candidate name is too long")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPollNotFound         = errors.New("poll not found")
	ErrPollAlreadyExists    = errors.New("poll already exists")
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrBallotNotFound       = errors.New("ballot not found")
	ErrPollNotStarted       = errors.New("poll has not started")
	ErrPollEnded            = errors.New("poll has ended")
	ErrConflict             = errors.New("ledger conflict")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidPollDuration, "invalid_poll_duration"},
	{ErrAlreadyVoted, "already_voted"},
	{ErrOverflow, "overflow"},
	{ErrDescriptionTooLong, "description_too_long"},
	{ErrCandidateNameTooLong, "candidate_name_too_long"},
	{ErrInvalidInput, "invalid_input"},
	{ErrPollNotFound, "poll_not_found"},
	{ErrPollAlreadyExists, "poll_already_exists"},
	{ErrCandidateNotFound, "candidate_not_found"},
	{ErrBallotNotFound, "ballot_not_found"},
	{ErrPollNotStarted, "poll_not_started"},
	{ErrPollEnded, "poll_ended"},
	{ErrConflict, "conflict"},
}

// Code maps err to a stable snake_case identifier. nil maps to "ok" and
// anything outside the taxonomy to "internal_error".
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, item := range codes {
		if errors.Is(err, item.err) {
			return item.code
		}
	}
	return "internal_error"
}
