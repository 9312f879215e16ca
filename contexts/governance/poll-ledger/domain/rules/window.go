package rules

import (
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
)

// WindowPolicy decides whether the poll window is enforced at vote and
// registration time. The zero value enforces nothing.
type WindowPolicy struct {
	EnforceVoting       bool
	EnforceRegistration bool
}

func StrictWindowPolicy() WindowPolicy {
	return WindowPolicy{EnforceVoting: true, EnforceRegistration: true}
}

// CheckVote accepts votes only inside [Start, End].
func (w WindowPolicy) CheckVote(poll entities.Poll, now uint64) error {
	if !w.EnforceVoting || poll.Contains(now) {
		return nil
	}
	if !poll.Started(now) {
		return domainerrors.ErrPollNotStarted
	}
	return domainerrors.ErrPollEnded
}

// CheckRegistration accepts candidates any time up to End.
func (w WindowPolicy) CheckRegistration(poll entities.Poll, now uint64) error {
	if !w.EnforceRegistration {
		return nil
	}
	if poll.Ended(now) {
		return domainerrors.ErrPollEnded
	}
	return nil
}
