package rules

import (
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
)

func TestNewPollWindowProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("start < end creates a poll with zeroed counters", prop.ForAll(
		func(start, width uint64) bool {
			end := start + width
			poll, err := NewPoll(DefaultLimits(), 7, "window", start, end)
			return err == nil &&
				poll.PollID == 7 &&
				poll.CandidateAmount == 0 &&
				poll.VotesCast == 0
		},
		gen.UInt64Range(0, math.MaxUint64/2),
		gen.UInt64Range(1, math.MaxUint64/2),
	))

	properties.Property("start >= end is rejected", prop.ForAll(
		func(end, delta uint64) bool {
			start := end + delta
			if start < end {
				start = end
			}
			_, err := NewPoll(DefaultLimits(), 7, "window", start, end)
			return err == domainerrors.ErrInvalidPollDuration
		},
		gen.UInt64(),
		gen.UInt64Range(0, 1000),
	))

	properties.TestingRun(t)
}

func TestNewPollDescriptionBound(t *testing.T) {
	limits := DefaultLimits()

	_, err := NewPoll(limits, 1, strings.Repeat("é", DefaultMaxDescriptionLength), 1, 2)
	require.NoError(t, err)

	_, err = NewPoll(limits, 1, strings.Repeat("a", DefaultMaxDescriptionLength+1), 1, 2)
	require.ErrorIs(t, err, domainerrors.ErrDescriptionTooLong)

	_, err = NewPoll(limits, 1, string([]byte{0xff, 0xfe}), 1, 2)
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestNewPollDurationCheckedBeforeDescription(t *testing.T) {
	_, err := NewPoll(DefaultLimits(), 1, strings.Repeat("a", 1000), 5, 5)
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollDuration)
}

func TestRegisterCandidateAssignsDenseIndices(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("N registrations yield indices 0..N-1", prop.ForAll(
		func(n int) bool {
			poll := entities.Poll{PollID: 3, Start: 1, End: 2}
			for i := 0; i < n; i++ {
				next, candidate, err := RegisterCandidate(DefaultLimits(), poll, "candidate")
				if err != nil || candidate.Index != uint64(i) || candidate.PollID != 3 || candidate.VoteCount != 0 {
					return false
				}
				poll = next
			}
			return poll.CandidateAmount == uint64(n)
		},
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}

func TestRegisterCandidateOverflow(t *testing.T) {
	poll := entities.Poll{PollID: 1, CandidateAmount: math.MaxUint64}

	_, _, err := RegisterCandidate(DefaultLimits(), poll, "late")
	require.ErrorIs(t, err, domainerrors.ErrOverflow)
	require.Equal(t, uint64(math.MaxUint64), poll.CandidateAmount)
}

func TestRegisterCandidateNameBound(t *testing.T) {
	poll := entities.Poll{PollID: 1}

	_, _, err := RegisterCandidate(DefaultLimits(), poll, strings.Repeat("x", DefaultMaxCandidateNameLength+1))
	require.ErrorIs(t, err, domainerrors.ErrCandidateNameTooLong)

	_, _, err = RegisterCandidate(DefaultLimits(), poll, "   ")
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, _, err = RegisterCandidate(Limits{MaxCandidateNameLength: 3}, poll, "Rust")
	require.ErrorIs(t, err, domainerrors.ErrCandidateNameTooLong)
}

func TestCastVote(t *testing.T) {
	poll := entities.Poll{PollID: 1, Start: 100, End: 200, CandidateAmount: 2}
	rust := entities.Candidate{PollID: 1, Index: 0, Name: "Rust"}

	nextPoll, nextRust, voter, err := CastVote(poll, rust, Ballot{VoterID: "alice", CandidateIndex: 0})
	require.NoError(t, err)
	require.Equal(t, uint64(1), nextPoll.VotesCast)
	require.Equal(t, uint64(1), nextRust.VoteCount)
	require.Equal(t, entities.Voter{PollID: 1, VoterID: "alice", SelectedOption: 0, HasVoted: true}, voter)

	require.Zero(t, poll.VotesCast)
	require.Zero(t, rust.VoteCount)
}

func TestCastVoteRejectsSecondBallot(t *testing.T) {
	poll := entities.Poll{PollID: 1, CandidateAmount: 2, VotesCast: 1}
	goCandidate := entities.Candidate{PollID: 1, Index: 1, Name: "Go"}
	existing := entities.Voter{PollID: 1, VoterID: "alice", SelectedOption: 0, HasVoted: true}

	_, _, _, err := CastVote(poll, goCandidate, Ballot{
		VoterID:        "alice",
		CandidateIndex: 1,
		Existing:       existing,
		Found:          true,
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)
}

func TestCastVoteDoubleVoteCheckedBeforeOverflow(t *testing.T) {
	poll := entities.Poll{PollID: 1, VotesCast: math.MaxUint64}
	candidate := entities.Candidate{PollID: 1, VoteCount: math.MaxUint64}

	_, _, _, err := CastVote(poll, candidate, Ballot{
		VoterID:  "alice",
		Existing: entities.Voter{HasVoted: true},
		Found:    true,
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)
}

func TestCastVoteOverflow(t *testing.T) {
	tests := []struct {
		name      string
		poll      entities.Poll
		candidate entities.Candidate
	}{
		{
			name:      "candidate tally at max",
			poll:      entities.Poll{PollID: 1, VotesCast: 10},
			candidate: entities.Candidate{PollID: 1, VoteCount: math.MaxUint64},
		},
		{
			name:      "poll aggregate at max",
			poll:      entities.Poll{PollID: 1, VotesCast: math.MaxUint64},
			candidate: entities.Candidate{PollID: 1, VoteCount: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := CastVote(tt.poll, tt.candidate, Ballot{VoterID: "bob"})
			require.ErrorIs(t, err, domainerrors.ErrOverflow)
		})
	}
}

func TestCastVoteAddressing(t *testing.T) {
	poll := entities.Poll{PollID: 1}

	_, _, _, err := CastVote(poll, entities.Candidate{PollID: 2}, Ballot{VoterID: "bob"})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotFound)

	_, _, _, err = CastVote(poll, entities.Candidate{PollID: 1, Index: 4}, Ballot{VoterID: "bob", CandidateIndex: 3})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotFound)

	_, _, _, err = CastVote(poll, entities.Candidate{PollID: 1}, Ballot{VoterID: " "})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestWindowPolicy(t *testing.T) {
	poll := entities.Poll{Start: 100, End: 200}
	strict := StrictWindowPolicy()

	require.False(t, poll.Contains(99))
	require.True(t, poll.Contains(100))
	require.True(t, poll.Contains(200))
	require.False(t, poll.Contains(201))

	require.ErrorIs(t, strict.CheckVote(poll, 99), domainerrors.ErrPollNotStarted)
	require.NoError(t, strict.CheckVote(poll, 100))
	require.NoError(t, strict.CheckVote(poll, 200))
	require.ErrorIs(t, strict.CheckVote(poll, 201), domainerrors.ErrPollEnded)

	require.NoError(t, strict.CheckRegistration(poll, 0))
	require.ErrorIs(t, strict.CheckRegistration(poll, 201), domainerrors.ErrPollEnded)

	var open WindowPolicy
	require.NoError(t, open.CheckVote(poll, 1))
	require.NoError(t, open.CheckRegistration(poll, 1000))
}
