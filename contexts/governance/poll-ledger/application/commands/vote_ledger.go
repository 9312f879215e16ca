package commands

import (
	"context"
	"log/slog"
	"strings"

	application "pollledger/contexts/governance/poll-ledger/application"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
	contractsv1 "pollledger/contracts/gen/events/v1"
)

type CastVoteCommand struct {
	PollID         uint64
	VoterID        string
	CandidateIndex uint64
}

// VoteReceipt is the state committed by a successful vote.
type VoteReceipt struct {
	Ballot    entities.Voter
	Candidate entities.Candidate
	Poll      entities.Poll
}

// VoteLedger records at most one vote per (poll, voter).
type VoteLedger struct {
	Ledger   ports.Ledger
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Window   rules.WindowPolicy
	Recorder ports.OperationRecorder
	Logger   *slog.Logger
}

func (uc VoteLedger) CastVote(ctx context.Context, cmd CastVoteCommand) (VoteReceipt, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := cmd.VoterID
	logger.Info("vote cast processing started",
		"event", "poll_ledger_vote_cast_started",
		"module", moduleName,
		"layer", "application",
		"poll_id", cmd.PollID,
		"voter_id", voterID,
		"candidate_index", cmd.CandidateIndex,
	)
	if strings.TrimSpace(voterID) == "" {
		err := domainerrors.ErrInvalidInput
		logRejected(ctx, logger, "vote cast validation failed", "poll_ledger_vote_cast_validation_failed", err,
			"poll_id", cmd.PollID,
		)
		record(uc.Recorder, operationCastVote, err)
		return VoteReceipt{}, err
	}

	nowTime := resolveNow(uc.Clock)
	now := unixSeconds(nowTime)
	var receipt VoteReceipt
	err := uc.Ledger.Atomic(ctx, func(ctx context.Context, records ports.Records) error {
		poll, err := records.GetPoll(ctx, cmd.PollID)
		if err != nil {
			return err
		}
		// A settled ballot is reported as such even outside the window.
		existing, found, err := records.GetVoter(ctx, cmd.PollID, voterID)
		if err != nil {
			return err
		}
		if found && existing.HasVoted {
			return domainerrors.ErrAlreadyVoted
		}
		if err := uc.Window.CheckVote(poll, now); err != nil {
			return err
		}
		candidate, err := records.GetCandidate(ctx, cmd.PollID, cmd.CandidateIndex)
		if err != nil {
			return err
		}
		nextPoll, nextCandidate, voter, err := rules.CastVote(poll, candidate, rules.Ballot{
			VoterID:        voterID,
			CandidateIndex: cmd.CandidateIndex,
			Existing:       existing,
			Found:          found,
		})
		if err != nil {
			return err
		}
		if err := records.PutVoter(ctx, voter); err != nil {
			return err
		}
		if err := records.UpdateCandidate(ctx, nextCandidate); err != nil {
			return err
		}
		if err := records.UpdatePoll(ctx, nextPoll); err != nil {
			return err
		}
		envelope, err := newLedgerEnvelope(ctx, uc.IDGen, EventVoteCast,
			formatUint(voter.PollID)+":"+voter.VoterID, voter.PollID, nowTime, contractsv1.VoteCast{
				PollID:         voter.PollID,
				VoterID:        voter.VoterID,
				CandidateIndex: voter.SelectedOption,
			})
		if err != nil {
			return err
		}
		if err := records.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
		receipt = VoteReceipt{Ballot: voter, Candidate: nextCandidate, Poll: nextPoll}
		return nil
	})
	record(uc.Recorder, operationCastVote, err)
	if err != nil {
		logRejected(ctx, logger, "vote cast failed", "poll_ledger_vote_cast_failed", err,
			"poll_id", cmd.PollID,
			"voter_id", voterID,
			"candidate_index", cmd.CandidateIndex,
		)
		return VoteReceipt{}, err
	}

	logger.Info("vote cast",
		"event", "poll_ledger_vote_cast",
		"module", moduleName,
		"layer", "application",
		"poll_id", receipt.Ballot.PollID,
		"voter_id", receipt.Ballot.VoterID,
		"candidate_index", receipt.Ballot.SelectedOption,
		"vote_count", receipt.Candidate.VoteCount,
		"votes_cast", receipt.Poll.VotesCast,
	)
	return receipt, nil
}
