package entities

// Candidate is addressed by (PollID, Index). Index is dense and 0-based
// within a poll.
type Candidate struct {
	PollID    uint64
	Index     uint64
	Name      string
	VoteCount uint64
}

type RankedCandidate struct {
	Candidate
	Rank int
}

type PollResults struct {
	Poll       Poll
	Candidates []RankedCandidate
}
