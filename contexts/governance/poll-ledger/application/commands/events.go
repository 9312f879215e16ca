package commands

import (
	"context"
	"encoding/json"
	"time"

	"pollledger/contexts/governance/poll-ledger/ports"
	contractsv1 "pollledger/contracts/gen/events/v1"
)

const (
	EventPollCreated         = contractsv1.EventTypePollCreated
	EventCandidateRegistered = contractsv1.EventTypeCandidateRegistered
	EventVoteCast            = contractsv1.EventTypeVoteCast
)

// newLedgerEnvelope builds outbox envelopes. Every record is created exactly
// once, so event ids derived from the record address are unique.
func newLedgerEnvelope(
	ctx context.Context,
	idGen ports.IDGenerator,
	eventType string,
	eventKey string,
	pollID uint64,
	occurredAt time.Time,
	data any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	eventID := eventType + ":" + eventKey
	traceID := eventID
	if idGen != nil {
		generated, err := idGen.NewID(ctx)
		if err != nil {
			return ports.EventEnvelope{}, err
		}
		traceID = generated
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "poll-ledger",
		TraceID:          traceID,
		SchemaVersion:    contractsv1.PollLedgerSchemaVersion,
		PartitionKeyPath: "poll_id",
		PartitionKey:     formatUint(pollID),
		Data:             payload,
	}, nil
}
