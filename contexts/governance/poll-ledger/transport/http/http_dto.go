package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	PollID      uint64 `json:"poll_id"`
	Description string `json:"description"`
	Start       uint64 `json:"poll_start"`
	End         uint64 `json:"poll_end"`
}

type PollResponse struct {
	PollID          uint64 `json:"poll_id"`
	Description     string `json:"description"`
	Start           uint64 `json:"poll_start"`
	End             uint64 `json:"poll_end"`
	CandidateAmount uint64 `json:"candidate_amount"`
	VotesCast       uint64 `json:"votes_cast"`
}

type ListPollsResponse struct {
	Items []PollResponse `json:"items"`
}

type RegisterCandidateRequest struct {
	CandidateName string `json:"candidate_name"`
}

type CandidateResponse struct {
	PollID         uint64 `json:"poll_id"`
	CandidateIndex uint64 `json:"candidate_index"`
	CandidateName  string `json:"candidate_name"`
	VoteCount      uint64 `json:"vote_count"`
}

type CastVoteRequest struct {
	CandidateIndex *uint64 `json:"candidate_index"`
}

type VoteResponse struct {
	PollID             uint64 `json:"poll_id"`
	VoterID            string `json:"voter_id"`
	CandidateIndex     uint64 `json:"candidate_index"`
	HasVoted           bool   `json:"has_voted"`
	CandidateVoteCount uint64 `json:"candidate_vote_count"`
	VotesCast          uint64 `json:"votes_cast"`
}

type BallotResponse struct {
	PollID         uint64 `json:"poll_id"`
	VoterID        string `json:"voter_id"`
	SelectedOption uint64 `json:"selected_option"`
	HasVoted       bool   `json:"has_voted"`
}

type ResultItem struct {
	CandidateIndex uint64 `json:"candidate_index"`
	CandidateName  string `json:"candidate_name"`
	VoteCount      uint64 `json:"vote_count"`
	Rank           int    `json:"rank"`
}

type ResultsResponse struct {
	Poll  PollResponse `json:"poll"`
	Items []ResultItem `json:"items"`
}
