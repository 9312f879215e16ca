// Package rules holds the ledger state transitions. Every function takes
// records by value and returns the next records, so a failed transition
// leaves the caller's copies untouched.
package rules

import (
	"strings"

	safemath "github.com/ava-labs/avalanchego/utils/math"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
)

// NewPoll validates the window and description and returns a poll with
// zeroed counters.
func NewPoll(limits Limits, pollID uint64, description string, start, end uint64) (entities.Poll, error) {
	if start >= end {
		return entities.Poll{}, domainerrors.ErrInvalidPollDuration
	}
	if err := limits.CheckDescription(description); err != nil {
		return entities.Poll{}, err
	}
	return entities.Poll{
		PollID:      pollID,
		Description: description,
		Start:       start,
		End:         end,
	}, nil
}

// RegisterCandidate assigns the next dense index under poll.
func RegisterCandidate(limits Limits, poll entities.Poll, name string) (entities.Poll, entities.Candidate, error) {
	if err := limits.CheckCandidateName(name); err != nil {
		return entities.Poll{}, entities.Candidate{}, err
	}
	next, err := increment(poll.CandidateAmount)
	if err != nil {
		return entities.Poll{}, entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		PollID: poll.PollID,
		Index:  poll.CandidateAmount,
		Name:   name,
	}
	poll.CandidateAmount = next
	return poll, candidate, nil
}

// Ballot is the input to CastVote. Existing/Found describe the voter record
// already stored at (poll, voter), if any.
type Ballot struct {
	VoterID        string
	CandidateIndex uint64
	Existing       entities.Voter
	Found          bool
}

// CastVote moves the (poll, voter) pair from NoRecord to HasVoted. The
// double-vote guard runs before either counter is touched, and both
// increments are computed before anything is returned.
func CastVote(
	poll entities.Poll,
	candidate entities.Candidate,
	ballot Ballot,
) (entities.Poll, entities.Candidate, entities.Voter, error) {
	if strings.TrimSpace(ballot.VoterID) == "" {
		return entities.Poll{}, entities.Candidate{}, entities.Voter{}, domainerrors.ErrInvalidInput
	}
	if candidate.PollID != poll.PollID || candidate.Index != ballot.CandidateIndex {
		return entities.Poll{}, entities.Candidate{}, entities.Voter{}, domainerrors.ErrCandidateNotFound
	}
	if ballot.Found && ballot.Existing.HasVoted {
		return entities.Poll{}, entities.Candidate{}, entities.Voter{}, domainerrors.ErrAlreadyVoted
	}

	voteCount, err := increment(candidate.VoteCount)
	if err != nil {
		return entities.Poll{}, entities.Candidate{}, entities.Voter{}, err
	}
	votesCast, err := increment(poll.VotesCast)
	if err != nil {
		return entities.Poll{}, entities.Candidate{}, entities.Voter{}, err
	}

	candidate.VoteCount = voteCount
	poll.VotesCast = votesCast
	voter := entities.Voter{
		PollID:         poll.PollID,
		VoterID:        ballot.VoterID,
		SelectedOption: ballot.CandidateIndex,
		HasVoted:       true,
	}
	return poll, candidate, voter, nil
}

func increment(counter uint64) (uint64, error) {
	next, err := safemath.Add64(counter, 1)
	if err != nil {
		return counter, domainerrors.ErrOverflow
	}
	return next, nil
}
