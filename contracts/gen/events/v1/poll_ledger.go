package v1

const (
	EventTypePollCreated         = "poll.created"
	EventTypeCandidateRegistered = "candidate.registered"
	EventTypeVoteCast            = "vote.cast"

	PollLedgerSchemaVersion = 1
)

type PollCreated struct {
	PollID      uint64 `json:"poll_id"`
	Description string `json:"description"`
	PollStart   uint64 `json:"poll_start"`
	PollEnd     uint64 `json:"poll_end"`
}

type CandidateRegistered struct {
	PollID         uint64 `json:"poll_id"`
	CandidateIndex uint64 `json:"candidate_index"`
	CandidateName  string `json:"candidate_name"`
}

type VoteCast struct {
	PollID         uint64 `json:"poll_id"`
	VoterID        string `json:"voter_id"`
	CandidateIndex uint64 `json:"candidate_index"`
}
