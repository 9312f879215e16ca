package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pollledger/contexts/governance/poll-ledger/adapters/memory"
	"pollledger/contexts/governance/poll-ledger/application/queries"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.SeedPoll(entities.Poll{PollID: 2, Description: "second", Start: 1, End: 9, CandidateAmount: 4, VotesCast: 9})
	store.SeedPoll(entities.Poll{PollID: 1, Description: "first", Start: 1, End: 9})
	store.SeedCandidate(entities.Candidate{PollID: 2, Index: 0, Name: "zero", VoteCount: 2})
	store.SeedCandidate(entities.Candidate{PollID: 2, Index: 1, Name: "one", VoteCount: 5})
	store.SeedCandidate(entities.Candidate{PollID: 2, Index: 2, Name: "two", VoteCount: 2})
	store.SeedCandidate(entities.Candidate{PollID: 2, Index: 3, Name: "three", VoteCount: 0})
	return store
}

func TestListPollsOrderedByID(t *testing.T) {
	uc := queries.PollQueries{Reader: seededStore()}
	polls, err := uc.ListPolls(context.Background())
	require.NoError(t, err)
	require.Len(t, polls, 2)
	require.Equal(t, uint64(1), polls[0].PollID)
	require.Equal(t, uint64(2), polls[1].PollID)
}

func TestResultsRanking(t *testing.T) {
	uc := queries.PollQueries{Reader: seededStore()}
	results, err := uc.Results(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, uint64(9), results.Poll.VotesCast)

	type row struct {
		index uint64
		rank  int
	}
	got := make([]row, 0, len(results.Candidates))
	for _, candidate := range results.Candidates {
		got = append(got, row{index: candidate.Index, rank: candidate.Rank})
	}
	require.Equal(t, []row{
		{index: 1, rank: 1},
		{index: 0, rank: 2},
		{index: 2, rank: 2},
		{index: 3, rank: 4},
	}, got)

	_, err = uc.Results(context.Background(), 77)
	require.ErrorIs(t, err, domainerrors.ErrPollNotFound)
}

func TestGetBallot(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	uc := queries.PollQueries{Reader: store}

	_, err := uc.GetBallot(ctx, 2, "erin")
	require.ErrorIs(t, err, domainerrors.ErrBallotNotFound)
	_, err = uc.GetBallot(ctx, 42, "erin")
	require.ErrorIs(t, err, domainerrors.ErrPollNotFound)
	_, err = uc.GetBallot(ctx, 2, " ")
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}
