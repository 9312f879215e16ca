package postgresadapter

import (
	"time"

	"pollledger/contexts/governance/poll-ledger/domain/entities"
)

type pollModel struct {
	PollID          uint64    `gorm:"column:poll_id;primaryKey;autoIncrement:false"`
	Description     string    `gorm:"column:description"`
	Start           uint64    `gorm:"column:poll_start"`
	End             uint64    `gorm:"column:poll_end"`
	CandidateAmount uint64    `gorm:"column:candidate_amount"`
	VotesCast       uint64    `gorm:"column:votes_cast"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "poll_ledger_polls"
}

func pollModelFromEntity(poll entities.Poll) pollModel {
	return pollModel{
		PollID:          poll.PollID,
		Description:     poll.Description,
		Start:           poll.Start,
		End:             poll.End,
		CandidateAmount: poll.CandidateAmount,
		VotesCast:       poll.VotesCast,
	}
}

func (m pollModel) toEntity() entities.Poll {
	return entities.Poll{
		PollID:          m.PollID,
		Description:     m.Description,
		Start:           m.Start,
		End:             m.End,
		CandidateAmount: m.CandidateAmount,
		VotesCast:       m.VotesCast,
	}
}

type candidateModel struct {
	PollID    uint64    `gorm:"column:poll_id;primaryKey;autoIncrement:false"`
	Index     uint64    `gorm:"column:idx;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name"`
	VoteCount uint64    `gorm:"column:vote_count"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "poll_ledger_candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		PollID:    candidate.PollID,
		Index:     candidate.Index,
		Name:      candidate.Name,
		VoteCount: candidate.VoteCount,
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		PollID:    m.PollID,
		Index:     m.Index,
		Name:      m.Name,
		VoteCount: m.VoteCount,
	}
}

type voterModel struct {
	PollID         uint64    `gorm:"column:poll_id;primaryKey;autoIncrement:false"`
	VoterID        string    `gorm:"column:voter_id;primaryKey"`
	SelectedOption uint64    `gorm:"column:selected_option"`
	HasVoted       bool      `gorm:"column:has_voted"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (voterModel) TableName() string {
	return "poll_ledger_voters"
}

func voterModelFromEntity(voter entities.Voter) voterModel {
	return voterModel{
		PollID:         voter.PollID,
		VoterID:        voter.VoterID,
		SelectedOption: voter.SelectedOption,
		HasVoted:       voter.HasVoted,
	}
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		PollID:         m.PollID,
		VoterID:        m.VoterID,
		SelectedOption: m.SelectedOption,
		HasVoted:       m.HasVoted,
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "poll_ledger_outbox"
}
