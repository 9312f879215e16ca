package httpadapter

import (
	"context"
	"log/slog"

	"pollledger/contexts/governance/poll-ledger/application/commands"
	"pollledger/contexts/governance/poll-ledger/application/queries"
	"pollledger/contexts/governance/poll-ledger/domain/entities"
	domainerrors "pollledger/contexts/governance/poll-ledger/domain/errors"
	httptransport "pollledger/contexts/governance/poll-ledger/transport/http"
)

type Handler struct {
	Polls      commands.PollRegistry
	Candidates commands.CandidateRegistry
	Votes      commands.VoteLedger
	Queries    queries.PollQueries
	Logger     *slog.Logger
}

// CreatePollHandler godoc
// @Summary Create poll
// @Description Creates a poll under a caller-chosen id with a [poll_start, poll_end] window in unix seconds.
// @Tags poll-ledger
// @Accept json
// @Produce json
// @Param request body httptransport.CreatePollRequest true "Poll"
// @Success 201 {object} httptransport.PollResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/polls [post]
func (h Handler) CreatePollHandler(ctx context.Context, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		PollID:      req.PollID,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

// GetPollHandler godoc
// @Summary Get poll
// @Tags poll-ledger
// @Produce json
// @Param poll_id path int true "Poll id"
// @Success 200 {object} httptransport.PollResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id} [get]
func (h Handler) GetPollHandler(ctx context.Context, pollID uint64) (httptransport.PollResponse, error) {
	poll, err := h.Queries.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

// ListPollsHandler godoc
// @Summary List polls
// @Tags poll-ledger
// @Produce json
// @Success 200 {object} httptransport.ListPollsResponse
// @Router /v1/polls [get]
func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.ListPollsResponse, error) {
	polls, err := h.Queries.ListPolls(ctx)
	if err != nil {
		return httptransport.ListPollsResponse{}, err
	}
	items := make([]httptransport.PollResponse, 0, len(polls))
	for _, poll := range polls {
		items = append(items, mapPoll(poll))
	}
	return httptransport.ListPollsResponse{Items: items}, nil
}

// RegisterCandidateHandler godoc
// @Summary Register candidate
// @Description Appends a candidate under the next index of the poll.
// @Tags poll-ledger
// @Accept json
// @Produce json
// @Param poll_id path int true "Poll id"
// @Param request body httptransport.RegisterCandidateRequest true "Candidate"
// @Success 201 {object} httptransport.CandidateResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/candidates [post]
func (h Handler) RegisterCandidateHandler(
	ctx context.Context,
	pollID uint64,
	req httptransport.RegisterCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.RegisterCandidate(ctx, commands.RegisterCandidateCommand{
		PollID:        pollID,
		CandidateName: req.CandidateName,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// CastVoteHandler godoc
// @Summary Cast vote
// @Description Records the caller's single ballot for the poll.
// @Tags poll-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Voter identity"
// @Param poll_id path int true "Poll id"
// @Param request body httptransport.CastVoteRequest true "Ballot"
// @Success 201 {object} httptransport.VoteResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	pollID uint64,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	if req.CandidateIndex == nil {
		return httptransport.VoteResponse{}, domainerrors.ErrInvalidInput
	}
	receipt, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		PollID:         pollID,
		VoterID:        voterID,
		CandidateIndex: *req.CandidateIndex,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		PollID:             receipt.Ballot.PollID,
		VoterID:            receipt.Ballot.VoterID,
		CandidateIndex:     receipt.Ballot.SelectedOption,
		HasVoted:           receipt.Ballot.HasVoted,
		CandidateVoteCount: receipt.Candidate.VoteCount,
		VotesCast:          receipt.Poll.VotesCast,
	}, nil
}

// ResultsHandler godoc
// @Summary Poll results
// @Description Candidates ranked by vote count, ties broken by index.
// @Tags poll-ledger
// @Produce json
// @Param poll_id path int true "Poll id"
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/results [get]
func (h Handler) ResultsHandler(ctx context.Context, pollID uint64) (httptransport.ResultsResponse, error) {
	results, err := h.Queries.Results(ctx, pollID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.ResultItem, 0, len(results.Candidates))
	for _, candidate := range results.Candidates {
		items = append(items, httptransport.ResultItem{
			CandidateIndex: candidate.Index,
			CandidateName:  candidate.Name,
			VoteCount:      candidate.VoteCount,
			Rank:           candidate.Rank,
		})
	}
	return httptransport.ResultsResponse{
		Poll:  mapPoll(results.Poll),
		Items: items,
	}, nil
}

// GetBallotHandler godoc
// @Summary Get ballot
// @Tags poll-ledger
// @Produce json
// @Param poll_id path int true "Poll id"
// @Param voter_id path string true "Voter identity"
// @Success 200 {object} httptransport.BallotResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/ballots/{voter_id} [get]
func (h Handler) GetBallotHandler(ctx context.Context, pollID uint64, voterID string) (httptransport.BallotResponse, error) {
	voter, err := h.Queries.GetBallot(ctx, pollID, voterID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{
		PollID:         voter.PollID,
		VoterID:        voter.VoterID,
		SelectedOption: voter.SelectedOption,
		HasVoted:       voter.HasVoted,
	}, nil
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:          poll.PollID,
		Description:     poll.Description,
		Start:           poll.Start,
		End:             poll.End,
		CandidateAmount: poll.CandidateAmount,
		VotesCast:       poll.VotesCast,
	}
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		PollID:         candidate.PollID,
		CandidateIndex: candidate.Index,
		CandidateName:  candidate.Name,
		VoteCount:      candidate.VoteCount,
	}
}
