package ports

import (
	"context"
	"time"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	contractsv1 "pollledger/contracts/gen/events/v1"
)

// Records is the view of the ledger inside one atomic unit. Reads observe
// the unit's own writes; nothing is visible to other units until the unit
// commits.
type Records interface {
	GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error)
	CreatePoll(ctx context.Context, poll entities.Poll) error
	UpdatePoll(ctx context.Context, poll entities.Poll) error

	GetCandidate(ctx context.Context, pollID uint64, index uint64) (entities.Candidate, error)
	CreateCandidate(ctx context.Context, candidate entities.Candidate) error
	UpdateCandidate(ctx context.Context, candidate entities.Candidate) error

	GetVoter(ctx context.Context, pollID uint64, voterID string) (entities.Voter, bool, error)
	PutVoter(ctx context.Context, voter entities.Voter) error

	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// Ledger runs fn as one all-or-nothing unit. If fn returns an error no
// write made through records is persisted. Implementations serialize units
// that touch the same records.
type Ledger interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, records Records) error) error
}

type LedgerReader interface {
	GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error)
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	ListCandidates(ctx context.Context, pollID uint64) ([]entities.Candidate, error)
	GetVoter(ctx context.Context, pollID uint64, voterID string) (entities.Voter, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OperationRecorder observes the outcome of each ledger operation.
type OperationRecorder interface {
	RecordOperation(operation string, outcome string)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
