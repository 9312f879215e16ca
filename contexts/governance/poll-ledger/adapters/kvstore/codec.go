package kvstore

import (
	"time"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
	"pollledger/contexts/governance/poll-ledger/ports"
)

const codecVersion = 0

type pollRecord struct {
	PollID          uint64 `serialize:"true"`
	Description     string `serialize:"true"`
	Start           uint64 `serialize:"true"`
	End             uint64 `serialize:"true"`
	CandidateAmount uint64 `serialize:"true"`
	VotesCast       uint64 `serialize:"true"`
}

type candidateRecord struct {
	PollID    uint64 `serialize:"true"`
	Index     uint64 `serialize:"true"`
	Name      string `serialize:"true"`
	VoteCount uint64 `serialize:"true"`
}

type voterRecord struct {
	PollID         uint64 `serialize:"true"`
	VoterID        string `serialize:"true"`
	SelectedOption uint64 `serialize:"true"`
	HasVoted       bool   `serialize:"true"`
}

type outboxRecord struct {
	OutboxID     string `serialize:"true"`
	EventType    string `serialize:"true"`
	PartitionKey string `serialize:"true"`
	Payload      []byte `serialize:"true"`
	CreatedAt    int64  `serialize:"true"`
	Published    bool   `serialize:"true"`
	PublishedAt  int64  `serialize:"true"`
}

func newCodec() (codec.Manager, error) {
	manager := codec.NewDefaultManager()
	if err := manager.RegisterCodec(codecVersion, linearcodec.NewDefault()); err != nil {
		return nil, err
	}
	return manager, nil
}

func fromPoll(poll entities.Poll) pollRecord {
	return pollRecord{
		PollID:          poll.PollID,
		Description:     poll.Description,
		Start:           poll.Start,
		End:             poll.End,
		CandidateAmount: poll.CandidateAmount,
		VotesCast:       poll.VotesCast,
	}
}

func (r pollRecord) entity() entities.Poll {
	return entities.Poll{
		PollID:          r.PollID,
		Description:     r.Description,
		Start:           r.Start,
		End:             r.End,
		CandidateAmount: r.CandidateAmount,
		VotesCast:       r.VotesCast,
	}
}

func fromCandidate(candidate entities.Candidate) candidateRecord {
	return candidateRecord{
		PollID:    candidate.PollID,
		Index:     candidate.Index,
		Name:      candidate.Name,
		VoteCount: candidate.VoteCount,
	}
}

func (r candidateRecord) entity() entities.Candidate {
	return entities.Candidate{
		PollID:    r.PollID,
		Index:     r.Index,
		Name:      r.Name,
		VoteCount: r.VoteCount,
	}
}

func fromVoter(voter entities.Voter) voterRecord {
	return voterRecord{
		PollID:         voter.PollID,
		VoterID:        voter.VoterID,
		SelectedOption: voter.SelectedOption,
		HasVoted:       voter.HasVoted,
	}
}

func (r voterRecord) entity() entities.Voter {
	return entities.Voter{
		PollID:         r.PollID,
		VoterID:        r.VoterID,
		SelectedOption: r.SelectedOption,
		HasVoted:       r.HasVoted,
	}
}

func (r outboxRecord) message() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     r.OutboxID,
		EventType:    r.EventType,
		PartitionKey: r.PartitionKey,
		Payload:      r.Payload,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
	}
}
