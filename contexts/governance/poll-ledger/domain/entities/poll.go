package entities

// Poll is the top-level votable event. Counters only move forward.
type Poll struct {
	PollID          uint64
	Description     string
	Start           uint64
	End             uint64
	CandidateAmount uint64
	VotesCast       uint64
}

// Contains reports whether ts falls inside the closed window [Start, End].
func (p Poll) Contains(ts uint64) bool {
	return ts >= p.Start && ts <= p.End
}

func (p Poll) Started(ts uint64) bool {
	return ts >= p.Start
}

func (p Poll) Ended(ts uint64) bool {
	return ts > p.End
}
