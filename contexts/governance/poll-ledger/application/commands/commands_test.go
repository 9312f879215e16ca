package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"pollledger/contexts/governance/poll-ledger/adapters/memory"
	"pollledger/contexts/governance/poll-ledger/application/commands"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordedOperation struct {
	operation string
	outcome   string
}

type stubRecorder struct {
	mu   sync.Mutex
	seen []recordedOperation
}

func (r *stubRecorder) RecordOperation(operation string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedOperation{operation: operation, outcome: outcome})
}

type ledgerFixture struct {
	store      *memory.Store
	recorder   *stubRecorder
	polls      commands.PollRegistry
	candidates commands.CandidateRegistry
	votes      commands.VoteLedger
}

func newFixture(now uint64) ledgerFixture {
	store := memory.NewStore()
	recorder := &stubRecorder{}
	clock := fixedClock{now: time.Unix(int64(now), 0).UTC()}
	return ledgerFixture{
		store:    store,
		recorder: recorder,
		polls: commands.PollRegistry{
			Ledger:   store,
			Clock:    clock,
			IDGen:    store,
			Limits:   rules.DefaultLimits(),
			Recorder: recorder,
		},
		candidates: commands.CandidateRegistry{
			Ledger:   store,
			Clock:    clock,
			IDGen:    store,
			Limits:   rules.DefaultLimits(),
			Window:   rules.StrictWindowPolicy(),
			Recorder: recorder,
		},
		votes: commands.VoteLedger{
			Ledger:   store,
			Clock:    clock,
			IDGen:    store,
			Window:   rules.StrictWindowPolicy(),
			Recorder: recorder,
		},
	}
}

func pendingEventTypes(t *testing.T, store *memory.Store) []string {
	t.Helper()
	rows, err := store.ListPendingOutbox(context.Background(), 1000)
	require.NoError(t, err)
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}

func TestBestLanguageScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)

	poll, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{
		PollID:      1,
		Description: "Best language",
		Start:       100,
		End:         200,
	})
	require.NoError(t, err)
	require.Zero(t, poll.CandidateAmount)
	require.Zero(t, poll.VotesCast)

	rust, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "Rust"})
	require.NoError(t, err)
	require.Equal(t, uint64(0), rust.Index)
	goLang, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "Go"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), goLang.Index)

	stored, err := f.store.GetPoll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), stored.CandidateAmount)

	receipt, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Candidate.VoteCount)
	require.Equal(t, uint64(1), receipt.Poll.VotesCast)
	require.True(t, receipt.Ballot.HasVoted)
	require.Equal(t, uint64(0), receipt.Ballot.SelectedOption)

	_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 1})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)

	candidates, err := f.store.ListCandidates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, uint64(1), candidates[0].VoteCount)
	require.Equal(t, uint64(0), candidates[1].VoteCount)

	stored, err = f.store.GetPoll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stored.VotesCast)

	ballot, found, err := f.store.GetVoter(ctx, 1, "alice")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(0), ballot.SelectedOption)

	require.Equal(t, []string{
		commands.EventPollCreated,
		commands.EventCandidateRegistered,
		commands.EventCandidateRegistered,
		commands.EventVoteCast,
	}, pendingEventTypes(t, f.store))
}

func TestCastVoteOverflowLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	f.store.SeedPoll(entities.Poll{PollID: 9, Description: "saturated", Start: 100, End: 200, CandidateAmount: 1, VotesCast: 7})
	f.store.SeedCandidate(entities.Candidate{PollID: 9, Index: 0, Name: "max", VoteCount: math.MaxUint64})

	_, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 9, VoterID: "alice", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrOverflow)

	_, found, err := f.store.GetVoter(ctx, 9, "alice")
	require.NoError(t, err)
	require.False(t, found)

	poll, err := f.store.GetPoll(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, uint64(7), poll.VotesCast)
	require.Empty(t, pendingEventTypes(t, f.store))
}

func TestCastVoteVotesCastOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	f.store.SeedPoll(entities.Poll{PollID: 3, Start: 100, End: 200, CandidateAmount: 1, VotesCast: math.MaxUint64})
	f.store.SeedCandidate(entities.Candidate{PollID: 3, Index: 0, Name: "only"})

	_, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 3, VoterID: "bob", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrOverflow)

	candidates, err := f.store.ListCandidates(ctx, 3)
	require.NoError(t, err)
	require.Zero(t, candidates[0].VoteCount)
}

func TestRegisterCandidateOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	f.store.SeedPoll(entities.Poll{PollID: 4, Start: 100, End: 200, CandidateAmount: math.MaxUint64})

	_, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 4, CandidateName: "late"})
	require.ErrorIs(t, err, domainerrors.ErrOverflow)

	candidates, err := f.store.ListCandidates(ctx, 4)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestCreatePollRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)

	_, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Start: 200, End: 200})
	require.ErrorIs(t, err, domainerrors.ErrInvalidPollDuration)
	_, err = f.store.GetPoll(ctx, 1)
	require.ErrorIs(t, err, domainerrors.ErrPollNotFound)

	_, err = f.polls.CreatePoll(ctx, commands.CreatePollCommand{
		PollID:      1,
		Description: strings.Repeat("x", rules.DefaultMaxDescriptionLength+1),
		Start:       1,
		End:         2,
	})
	require.ErrorIs(t, err, domainerrors.ErrDescriptionTooLong)

	_, err = f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Description: "first", Start: 1, End: 2})
	require.NoError(t, err)
	_, err = f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Description: "second", Start: 1, End: 2})
	require.ErrorIs(t, err, domainerrors.ErrPollAlreadyExists)

	poll, err := f.store.GetPoll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "first", poll.Description)
}

func TestAddressingFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)

	_, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 5, CandidateName: "ghost"})
	require.ErrorIs(t, err, domainerrors.ErrPollNotFound)

	_, err = f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 5, Start: 100, End: 200})
	require.NoError(t, err)
	_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 5, VoterID: "alice", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotFound)

	_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 5, VoterID: "  ", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 5, CandidateName: "   "})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestWindowPolicy(t *testing.T) {
	ctx := context.Background()

	early := newFixture(50)
	_, err := early.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Start: 100, End: 200})
	require.NoError(t, err)
	_, err = early.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "early bird"})
	require.NoError(t, err)
	_, err = early.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrPollNotStarted)

	late := newFixture(201)
	late.store.SeedPoll(entities.Poll{PollID: 1, Start: 100, End: 200, CandidateAmount: 1})
	late.store.SeedCandidate(entities.Candidate{PollID: 1, Index: 0, Name: "closed"})
	_, err = late.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "too late"})
	require.ErrorIs(t, err, domainerrors.ErrPollEnded)
	_, err = late.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrPollEnded)

	late.votes.Window = rules.WindowPolicy{}
	_, err = late.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.NoError(t, err)
}

func TestSettledBallotReportedAfterWindowCloses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(201)
	f.store.SeedPoll(entities.Poll{PollID: 1, Start: 100, End: 200, CandidateAmount: 1})
	f.store.SeedCandidate(entities.Candidate{PollID: 1, Index: 0, Name: "closed"})

	f.votes.Window = rules.WindowPolicy{}
	_, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.NoError(t, err)

	f.votes.Window = rules.StrictWindowPolicy()
	_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)
	_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "bob", CandidateIndex: 0})
	require.ErrorIs(t, err, domainerrors.ErrPollEnded)
}

func TestVoterIdentityIsUsedVerbatim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	_, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Start: 100, End: 200})
	require.NoError(t, err)
	_, err = f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "Go"})
	require.NoError(t, err)

	for _, voterID := range []string{"alice", " alice", "alice\t"} {
		receipt, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: voterID, CandidateIndex: 0})
		require.NoError(t, err, "voter %q", voterID)
		require.Equal(t, voterID, receipt.Ballot.VoterID)

		stored, found, err := f.store.GetVoter(ctx, 1, voterID)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, voterID, stored.VoterID)
	}

	poll, err := f.store.GetPoll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(3), poll.VotesCast)
}

func TestConcurrentVotesForSameVoterCommitOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	_, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Start: 100, End: 200})
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: name})
		require.NoError(t, err)
	}

	const attempts = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "carol", CandidateIndex: uint64(i % 3)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domainerrors.ErrAlreadyVoted) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, rejected)
	poll, err := f.store.GetPoll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), poll.VotesCast)
}

func TestTalliesTrackDistinctVoters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	faker := gofakeit.New(42)
	_, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 2, Description: faker.Company(), Start: 100, End: 200})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := f.candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 2, CandidateName: faker.ProgrammingLanguage()})
		require.NoError(t, err)
	}

	expected := make([]uint64, 4)
	voters := make(map[string]struct{})
	for len(voters) < 40 {
		voter := faker.UUID()
		if _, seen := voters[voter]; seen {
			continue
		}
		voters[voter] = struct{}{}
		index := uint64(faker.IntRange(0, 3))
		before, err := f.store.ListCandidates(ctx, 2)
		require.NoError(t, err)

		_, err = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 2, VoterID: voter, CandidateIndex: index})
		require.NoError(t, err)
		expected[index]++

		after, err := f.store.ListCandidates(ctx, 2)
		require.NoError(t, err)
		for i := range after {
			delta := after[i].VoteCount - before[i].VoteCount
			if uint64(i) == index {
				require.Equal(t, uint64(1), delta)
			} else {
				require.Zero(t, delta)
			}
		}
	}

	candidates, err := f.store.ListCandidates(ctx, 2)
	require.NoError(t, err)
	for i, candidate := range candidates {
		require.Equal(t, expected[i], candidate.VoteCount)
	}
	poll, err := f.store.GetPoll(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(40), poll.VotesCast)
}

func TestOperationsAreRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	_, _ = f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Start: 100, End: 200})
	_, _ = f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 2, Start: 300, End: 200})
	_, _ = f.votes.CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "dave", CandidateIndex: 0})

	require.Equal(t, []recordedOperation{
		{operation: "create_poll", outcome: "ok"},
		{operation: "create_poll", outcome: "invalid_poll_duration"},
		{operation: "cast_vote", outcome: "candidate_not_found"},
	}, f.recorder.seen)
}

func TestOutboxEnvelopeCarriesRecordAddress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(150)
	_, err := f.polls.CreatePoll(ctx, commands.CreatePollCommand{PollID: 11, Description: "envelope", Start: 100, End: 200})
	require.NoError(t, err)

	rows, err := f.store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "poll.created:11", rows[0].OutboxID)
	require.Equal(t, "11", rows[0].PartitionKey)

	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, commands.EventPollCreated, envelope.EventType)
	require.Equal(t, "poll-ledger", envelope.SourceService)

	var data map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, "envelope", data["description"])
}
