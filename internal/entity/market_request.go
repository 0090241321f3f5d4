package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type MarketRequest struct {
	Id                 uuid.UUID
	Title              string
	Description        string
	Category           string
	Specifications     string
	Status             string
	RFPRequestId       uuid.UUID
	CreatedById        uuid.UUID
	OrganizationId     uuid.UUID
	Quantity           int
	MaxBudget          decimal.Decimal
	Currency           string
	Deadline           time.Time
	DeliveryLocation   string
	Requirements       []string
	EvaluationCriteria []EvaluationCriterion
	ProposalsCount     int
	ViewsCount         int
	WinningProposalId  *uuid.UUID
	CancellationReason string
	ClosedAt           *time.Time
	AwardedAt          *time.Time
	CreatedAt          time.Time
}

// EvaluationCriterion is one weighted scoring dimension. Weights of a
// non-empty list must sum to exactly 100.
type EvaluationCriterion struct {
	Criterion string `json:"criterion"`
	Weight    int    `json:"weight"`
}

// VendorInterest is one row of the per-vendor interest tracking; at most one
// entry exists per (market request, vendor) pair.
type VendorInterest struct {
	VendorId     uuid.UUID `json:"vendor"`
	ViewedAt     time.Time `json:"viewedAt"`
	IsInterested bool      `json:"isInterested"`
}

// service + repo input model for converting an approved RFP request.
// Title/description/category default to the source request's values.
type ConvertToMarketInput struct {
	Title              string
	Description        string
	Specifications     string
	Quantity           int
	MaxBudget          decimal.Decimal
	Currency           string
	Deadline           time.Time
	DeliveryLocation   string
	Requirements       []string
	EvaluationCriteria []EvaluationCriterion
}

// Creator-driven edit while the listing is open; nil fields keep their
// current value. Only whitelisted fields appear here.
type UpdateMarketInput struct {
	Title              *string
	Description        *string
	Specifications     *string
	Quantity           *int
	MaxBudget          *decimal.Decimal
	Currency           *string
	Deadline           *time.Time
	DeliveryLocation   *string
	Requirements       []string
	EvaluationCriteria []EvaluationCriterion
}

// repo filter for the open-listing browse.
type MarketFilter struct {
	Category  string
	MaxBudget *decimal.Decimal
}

// controller model
type MarketOutputModel struct {
	Id                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Category           string                `json:"category"`
	Specifications     string                `json:"specifications,omitempty"`
	Status             string                `json:"status"`
	RFPRequestId       string                `json:"rfpRequest"`
	CreatedById        string                `json:"createdBy"`
	OrganizationId     string                `json:"organizationId"`
	Quantity           int                   `json:"quantity"`
	MaxBudget          string                `json:"maxBudget"`
	Currency           string                `json:"currency"`
	Deadline           string                `json:"deadline"`
	DeliveryLocation   string                `json:"deliveryLocation"`
	Requirements       []string              `json:"requirements"`
	EvaluationCriteria []EvaluationCriterion `json:"evaluationCriteria"`
	ProposalsCount     int                   `json:"proposalsCount"`
	ViewsCount         int                   `json:"viewsCount"`
	WinningProposalId  string                `json:"winningProposal,omitempty"`
	CancellationReason string                `json:"cancellationReason,omitempty"`
	ClosedAt           string                `json:"closedAt,omitempty"`
	AwardedAt          string                `json:"awardedAt,omitempty"`
	CreatedAt          string                `json:"createdAt"`
}
