package commands

import (
	"context"
	"errors"
	"log/slog"

	application "pollledger/contexts/governance/poll-ledger/application"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
	contractsv1 "pollledger/contracts/gen/events/v1"
)

// CreatePollCommand carries a caller-chosen poll id and its voting window.
type CreatePollCommand struct {
	PollID      uint64
	Description string
	Start       uint64
	End         uint64
}

// PollRegistry creates polls. A poll id is accepted once per ledger.
type PollRegistry struct {
	Ledger   ports.Ledger
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Limits   rules.Limits
	Recorder ports.OperationRecorder
	Logger   *slog.Logger
}

func (uc PollRegistry) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("poll create processing started",
		"event", "poll_ledger_poll_create_started",
		"module", moduleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"poll_start", cmd.Start,
		"poll_end", cmd.End,
	)

	poll, err := rules.NewPoll(uc.Limits, cmd.PollID, cmd.Description, cmd.Start, cmd.End)
	if err != nil {
		logRejected(ctx, logger, "poll create validation failed", "poll_ledger_poll_create_validation_failed", err,
			"poll_id", cmd.PollID,
		)
		record(uc.Recorder, operationCreatePoll, err)
		return entities.Poll{}, err
	}

	now := resolveNow(uc.Clock)
	err = uc.Ledger.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		if _, err := records.GetPoll(ctx, poll.PollID); err == nil {
			return domainerrors.ErrPollAlreadyExists
		} else if !errors.Is(err, domainerrors.ErrPollNotFound) {
			return err
		}
		if err := records.CreatePoll(ctx, poll); err != nil {
			return err
		}
		envelope, err := newLedgerEnvelope(ctx, uc.IDGen, EventPollCreated,
			formatUint(poll.PollID), poll.PollID, now, contractsv1.PollCreated{
				PollID:      poll.PollID,
				Description: poll.Description,
				PollStart:   poll.Start,
				PollEnd:     poll.End,
			})
		if err != nil {
			return err
		}
		return records.AppendOutbox(ctx, envelope)
	})
	record(uc.Recorder, operationCreatePoll, err)
	if err != nil {
		logRejected(ctx, logger, "poll create failed", "poll_ledger_poll_create_failed", err,
			"poll_id", cmd.PollID,
		)
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_ledger_poll_created",
		"module", moduleName,
		"layer", "application",
		"poll_id", poll.PollID,
	)
	return poll, nil
}
