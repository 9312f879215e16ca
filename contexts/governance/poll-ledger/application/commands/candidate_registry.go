package commands

import (
	"context"
	"log/slog"

	application "pollledger/contexts/governance/poll-ledger/application"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
	contractsv1 "pollledger/contracts/gen/events/v1"
)

type RegisterCandidateCommand struct {
	PollID        uint64
	CandidateName string
}

// CandidateRegistry appends candidates to a poll under dense indices.
type CandidateRegistry struct {
	Ledger   ports.Ledger
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Limits   rules.Limits
	Window   rules.WindowPolicy
	Recorder ports.OperationRecorder
	Logger   *slog.Logger
}

func (uc CandidateRegistry) RegisterCandidate(ctx context.Context, cmd RegisterCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("candidate registration started",
		"event", "poll_ledger_candidate_register_started",
		"module", moduleName,
		"layer", "application",
		"poll_id", cmd.PollID,
	)

	if err := uc.Limits.CheckCandidateName(cmd.CandidateName); err != nil {
		logRejected(ctx, logger, "candidate registration validation failed", "poll_ledger_candidate_register_validation_failed", err,
			"poll_id", cmd.PollID,
		)
		record(uc.Recorder, operationRegisterCandidate, err)
		return entities.Candidate{}, err
	}

	nowTime := resolveNow(uc.Clock)
	now := unixSeconds(nowTime)
	var created entities.Candidate
	err := uc.Ledger.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		poll, err := records.GetPoll(ctx, cmd.PollID)
		if err != nil {
			return err
		}
		if err := uc.Window.CheckRegistration(poll, now); err != nil {
			return err
		}
		nextPoll, candidate, err := rules.RegisterCandidate(uc.Limits, poll, cmd.CandidateName)
		if err != nil {
			return err
		}
		if err := records.CreateCandidate(ctx, candidate); err != nil {
			return err
		}
		if err := records.UpdatePoll(ctx, nextPoll); err != nil {
			return err
		}
		envelope, err := newLedgerEnvelope(ctx, uc.IDGen, EventCandidateRegistered,
			formatUint(candidate.PollID)+":"+formatUint(candidate.Index), candidate.PollID, nowTime, contractsv1.CandidateRegistered{
				PollID:         candidate.PollID,
				CandidateIndex: candidate.Index,
				CandidateName:  candidate.Name,
			})
		if err != nil {
			return err
		}
		if err := records.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
		created = candidate
		return nil
	})
	record(uc.Recorder, operationRegisterCandidate, err)
	if err != nil {
		logRejected(ctx, logger, "candidate registration failed", "poll_ledger_candidate_register_failed", err,
			"poll_id", cmd.PollID,
		)
		return entities.Candidate{}, err
	}

	logger.Info("candidate registered",
		"event", "poll_ledger_candidate_registered",
		"module", moduleName,
		"layer", "application",
		"poll_id", created.PollID,
		"candidate_index", created.Index,
	)
	return created, nil
}
