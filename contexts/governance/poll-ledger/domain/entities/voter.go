package entities

// Voter is the per-voter ballot for one poll. Once HasVoted is set the
// record never changes again.
type Voter struct {
	PollID         uint64
	VoterID        string
	SelectedOption uint64
	HasVoted       bool
}
