package postgresadapter

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/ports"
)

func TestUniqueViolationMapping(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{constraint: constraintPollsPkey, want: domainerrors.ErrPollAlreadyExists},
		{constraint: constraintVotersPkey, want: domainerrors.ErrAlreadyVoted},
		{constraint: constraintCandidatesPkey, want: domainerrors.ErrConflict},
		{constraint: "poll_ledger_outbox_pkey", want: domainerrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			err := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})
			require.True(t, isUniqueViolation(err))
			require.ErrorIs(t, uniqueViolationError(err), tc.want)
		})
	}
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
}

func TestModelsPreserveFullCounterRange(t *testing.T) {
	poll := entities.Poll{PollID: math.MaxUint64, Description: "edge", Start: 1, End: math.MaxUint64, CandidateAmount: math.MaxUint64, VotesCast: math.MaxUint64}
	require.Equal(t, poll, pollModelFromEntity(poll).toEntity())

	candidate := entities.Candidate{PollID: 1, Index: math.MaxUint64, Name: "x", VoteCount: math.MaxUint64}
	require.Equal(t, candidate, candidateModelFromEntity(candidate).toEntity())

	voter := entities.Voter{PollID: 1, VoterID: " alice ", SelectedOption: 4, HasVoted: true}
	require.Equal(t, "alice", voterModelFromEntity(voter).toEntity().VoterID)
}

// Runs against a real database when POLL_LEDGER_TEST_POSTGRES_DSN is set.
func TestRepositoryAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("POLL_LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POLL_LEDGER_TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = Migrate(sqlDB, MigrateUp, 0)
	require.NoError(t, err)

	ctx := context.Background()
	repo := NewRepository(db, nil)
	pollID := uint64(time.Now().UnixNano())

	err = repo.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		if err := records.CreatePoll(ctx, entities.Poll{PollID: pollID, Description: "pg", Start: 1, End: 2}); err != nil {
			return err
		}
		if err := records.CreateCandidate(ctx, entities.Candidate{PollID: pollID, Index: 0, Name: "Go"}); err != nil {
			return err
		}
		return records.UpdatePoll(ctx, entities.Poll{PollID: pollID, CandidateAmount: 1})
	})
	require.NoError(t, err)

	err = repo.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		return records.CreatePoll(ctx, entities.Poll{PollID: pollID, Start: 1, End: 2})
	})
	require.ErrorIs(t, err, domainerrors.ErrPollAlreadyExists)

	err = repo.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		return records.PutVoter(ctx, entities.Voter{PollID: pollID, VoterID: "alice", HasVoted: true})
	})
	require.NoError(t, err)
	err = repo.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		return records.PutVoter(ctx, entities.Voter{PollID: pollID, VoterID: "alice", HasVoted: true})
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)

	poll, err := repo.GetPoll(ctx, pollID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), poll.CandidateAmount)
}
