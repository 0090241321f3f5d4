package oracle

import (
	"context"
	"errors"
)

// ErrEvaluationFailed marks any oracle-side failure: transport errors,
// timeouts, API errors and unparseable responses. Callers must treat it as
// fail-closed and leave the proposal's scoring block untouched.
var ErrEvaluationFailed = errors.New("evaluation oracle failure")

// ProposalSnapshot is the proposal view sent to the oracle.
type ProposalSnapshot struct {
	ProposedItem string   `json:"proposedItem"`
	Quantity     int      `json:"quantity"`
	UnitPrice    string   `json:"unitPrice"`
	TotalPrice   string   `json:"totalPrice"`
	Currency     string   `json:"currency"`
	DeliveryDate string   `json:"deliveryDate"`
	Compliance   []string `json:"complianceDocuments"`
	VendorNotes  string   `json:"vendorNotes,omitempty"`
}

// MarketSnapshot is the market request view sent to the oracle.
type MarketSnapshot struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Quantity         int      `json:"quantity"`
	MaxBudget        string   `json:"maxBudget"`
	Currency         string   `json:"currency"`
	Deadline         string   `json:"deadline"`
	DeliveryLocation string   `json:"deliveryLocation"`
	Requirements     []string `json:"requirements"`
}

// VendorHistory is an optional record of the vendor's track history.
type VendorHistory struct {
	Rating        float64 `json:"rating"`
	CompletedJobs int     `json:"completedJobs"`
}

type EvaluationRequest struct {
	Proposal      ProposalSnapshot `json:"proposal"`
	MarketRequest MarketSnapshot   `json:"marketRequest"`
	VendorHistory *VendorHistory   `json:"vendorHistory,omitempty"`
}

// EvaluationResult carries the normalized scores; every score is in [0,100]
// and confidence in [0,1].
type EvaluationResult struct {
	CostScore       float64  `json:"costScore"`
	DeliveryScore   float64  `json:"deliveryScore"`
	ComplianceScore float64  `json:"complianceScore"`
	OverallScore    float64  `json:"overallScore"`
	Confidence      float64  `json:"confidence"`
	Insights        []string `json:"insights"`
}

// Client is the outbound port for the scoring oracle. Implementations must
// bound every call with a timeout and wrap failures in ErrEvaluationFailed.
type Client interface {
	EvaluateProposal(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}
