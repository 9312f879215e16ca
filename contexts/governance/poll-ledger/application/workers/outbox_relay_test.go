package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"pollledger/contexts/governance/poll-ledger/adapters/memory"
	"pollledger/contexts/governance/poll-ledger/application/commands"
	"pollledger/contexts/governance/poll-ledger/application/workers"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
	"pollledger/contexts/governance/poll-ledger/ports/portsmock"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func seedEvents(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	clock := fixedClock{now: time.Unix(150, 0).UTC()}
	_, err := commands.PollRegistry{Ledger: store, Clock: clock, Limits: rules.DefaultLimits()}.
		CreatePoll(ctx, commands.CreatePollCommand{PollID: 1, Description: "relay", Start: 100, End: 200})
	require.NoError(t, err)
	_, err = commands.CandidateRegistry{Ledger: store, Clock: clock, Limits: rules.DefaultLimits()}.
		RegisterCandidate(ctx, commands.RegisterCandidateCommand{PollID: 1, CandidateName: "Go"})
	require.NoError(t, err)
	_, err = commands.VoteLedger{Ledger: store, Clock: clock}.
		CastVote(ctx, commands.CastVoteCommand{PollID: 1, VoterID: "alice", CandidateIndex: 0})
	require.NoError(t, err)
}

type eventTypeMatcher string

func (m eventTypeMatcher) Matches(x interface{}) bool {
	event, ok := x.(ports.EventEnvelope)
	return ok && event.EventType == string(m)
}

func (m eventTypeMatcher) String() string {
	return "event of type " + string(m)
}

func TestOutboxRelayPublishesInCommitOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	seedEvents(t, store)

	publisher := portsmock.NewMockEventPublisher(ctrl)
	gomock.InOrder(
		publisher.EXPECT().Publish(gomock.Any(), commands.EventPollCreated, eventTypeMatcher(commands.EventPollCreated)).Return(nil),
		publisher.EXPECT().Publish(gomock.Any(), commands.EventCandidateRegistered, eventTypeMatcher(commands.EventCandidateRegistered)).Return(nil),
		publisher.EXPECT().Publish(gomock.Any(), commands.EventVoteCast, eventTypeMatcher(commands.EventVoteCast)).Return(nil),
	)

	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, published)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, published)
}

func TestOutboxRelayStopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	seedEvents(t, store)

	brokerDown := errors.New("broker unavailable")
	publisher := portsmock.NewMockEventPublisher(ctrl)
	gomock.InOrder(
		publisher.EXPECT().Publish(gomock.Any(), commands.EventPollCreated, gomock.Any()).Return(nil),
		publisher.EXPECT().Publish(gomock.Any(), commands.EventCandidateRegistered, gomock.Any()).Return(brokerDown),
	)

	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher}
	published, err := relay.RunOnce(context.Background())
	require.ErrorIs(t, err, brokerDown)
	require.Equal(t, 1, published)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, commands.EventCandidateRegistered, pending[0].EventType)
}

func TestOutboxRelayRunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	publisher := portsmock.NewMockEventPublisher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- workers.OutboxRelay{Outbox: store, Publisher: publisher, PollInterval: 5 * time.Millisecond}.Run(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}
