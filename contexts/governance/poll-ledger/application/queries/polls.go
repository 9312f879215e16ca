package queries

import (
	"context"
	"sort"
	"strings"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"
)

type PollQueries struct {
	Reader ports.LedgerReader
}

func (uc PollQueries) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	return uc.Reader.GetPoll(ctx, pollID)
}

// ListPolls returns every poll ordered by id.
func (uc PollQueries) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	polls, err := uc.Reader.ListPolls(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(polls, func(i, j int) bool {
		return polls[i].PollID < polls[j].PollID
	})
	return polls, nil
}

// Results ranks candidates by vote count, breaking ties by index. Tied
// candidates share a rank.
func (uc PollQueries) Results(ctx context.Context, pollID uint64) (entities.PollResults, error) {
	poll, err := uc.Reader.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	candidates, err := uc.Reader.ListCandidates(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	return entities.PollResults{
		Poll:       poll,
		Candidates: rank(candidates),
	}, nil
}

func (uc PollQueries) GetBallot(ctx context.Context, pollID uint64, voterID string) (entities.Voter, error) {
	if strings.TrimSpace(voterID) == "" {
		return entities.Voter{}, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Reader.GetPoll(ctx, pollID); err != nil {
		return entities.Voter{}, err
	}
	voter, found, err := uc.Reader.GetVoter(ctx, pollID, voterID)
	if err != nil {
		return entities.Voter{}, err
	}
	if !found {
		return entities.Voter{}, domainerrors.ErrBallotNotFound
	}
	return voter, nil
}

func rank(candidates []entities.Candidate) []entities.RankedCandidate {
	sorted := append([]entities.Candidate(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].VoteCount == sorted[j].VoteCount {
			return sorted[i].Index < sorted[j].Index
		}
		return sorted[i].VoteCount > sorted[j].VoteCount
	})
	ranked := make([]entities.RankedCandidate, 0, len(sorted))
	for i, candidate := range sorted {
		position := i + 1
		if i > 0 && candidate.VoteCount == sorted[i-1].VoteCount {
			position = ranked[i-1].Rank
		}
		ranked = append(ranked, entities.RankedCandidate{Candidate: candidate, Rank: position})
	}
	return ranked
}
