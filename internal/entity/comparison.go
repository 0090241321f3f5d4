package entity

// controller models for the oracle-assisted comparison surface.

// FailedEvaluation records one proposal the oracle could not score during a
// batch run; the batch itself still succeeds.
type FailedEvaluation struct {
	ProposalId string `json:"proposal"`
	Reason     string `json:"reason"`
}

type BatchEvaluationOutput struct {
	MarketRequestId string               `json:"marketRequest"`
	Evaluated       []ProposalOutputModel `json:"evaluated"`
	Failed          []FailedEvaluation    `json:"failed"`
}

// RankedProposal is one comparison entry; Score is the value the ranking was
// computed from (oracle overall score, falling back to the manual
// percentage score).
type RankedProposal struct {
	Rank     int                 `json:"rank"`
	Score    float64             `json:"score"`
	Proposal ProposalOutputModel `json:"proposal"`
}

type ProposalComparisonOutput struct {
	MarketRequestId string           `json:"marketRequest"`
	Ranked          []RankedProposal `json:"ranked"`
	Summary         string           `json:"summary"`
}
