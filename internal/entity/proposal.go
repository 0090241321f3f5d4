package entity

import (
	"time"

	"procurement-marketplace-api/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Proposal struct {
	Id              uuid.UUID
	MarketRequestId uuid.UUID
	VendorId        uuid.UUID
	ProposedItem    string
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Currency        string
	DeliveryDate    time.Time
	Status          string
	Evaluation      *Evaluation
	AIEvaluation    *AIEvaluation
	ComplianceDocs  []string
	VendorNotes     string
	ManagerNotes    string
	RejectionReason string
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	WithdrawnAt     *time.Time
	CreatedAt       time.Time
}

// IsEditable holds exactly while the proposal is a draft.
func (p *Proposal) IsEditable() bool {
	return p.Status == common.ProposalDraft
}

// CanBeWithdrawn holds while the proposal is submitted or under review.
func (p *Proposal) CanBeWithdrawn() bool {
	return p.Status == common.ProposalSubmitted || p.Status == common.ProposalUnderReview
}

// ComputeTotalPrice derives totalPrice from its inputs; it is recomputed on
// every mutation that touches unitPrice or quantity and never trusted from
// the caller.
func ComputeTotalPrice(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// CriterionScore is one manually scored dimension.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"maxScore"`
}

// Evaluation is the manual scoring block written by a reviewer. Stored as a
// jsonb document.
type Evaluation struct {
	Scores          []CriterionScore `json:"scores"`
	TotalScore      float64          `json:"totalScore"`
	MaxTotalScore   float64          `json:"maxTotalScore"`
	PercentageScore float64          `json:"percentageScore"`
	EvaluatedBy     uuid.UUID        `json:"evaluatedBy"`
	EvaluatedAt     time.Time        `json:"evaluatedAt"`
}

// ComputeEvaluation aggregates a score list into the evaluation block.
func ComputeEvaluation(scores []CriterionScore, evaluatedBy uuid.UUID, now time.Time) *Evaluation {
	ev := &Evaluation{Scores: scores, EvaluatedBy: evaluatedBy, EvaluatedAt: now}
	for _, s := range scores {
		ev.TotalScore += s.Score
		ev.MaxTotalScore += s.MaxScore
	}
	if ev.MaxTotalScore > 0 {
		ev.PercentageScore = 100 * ev.TotalScore / ev.MaxTotalScore
	}
	return ev
}

// AIEvaluation is the oracle-produced scoring block. It is independent of
// the manual evaluation, may coexist with it and may be overwritten by a
// later oracle run. Stored as a jsonb document.
type AIEvaluation struct {
	CostScore       float64   `json:"costScore"`
	DeliveryScore   float64   `json:"deliveryScore"`
	ComplianceScore float64   `json:"complianceScore"`
	OverallScore    float64   `json:"overallScore"`
	Confidence      float64   `json:"confidence"`
	Insights        []string  `json:"insights"`
	EvaluatedAt     time.Time `json:"evaluatedAt"`
}

// service + repo input model
type CreateProposalInput struct {
	MarketRequestId uuid.UUID
	VendorId        uuid.UUID
	ProposedItem    string
	Quantity        int
	UnitPrice       decimal.Decimal
	Currency        string
	DeliveryDate    time.Time
	ComplianceDocs  []string
	VendorNotes     string
}

// Owner-driven edit while the proposal is a draft; nil fields keep their
// current value.
type UpdateProposalInput struct {
	ProposedItem   *string
	Quantity       *int
	UnitPrice      *decimal.Decimal
	Currency       *string
	DeliveryDate   *time.Time
	ComplianceDocs []string
	VendorNotes    *string
}

// controller model
type ProposalOutputModel struct {
	Id              string        `json:"id"`
	MarketRequestId string        `json:"marketRequest"`
	VendorId        string        `json:"vendor"`
	ProposedItem    string        `json:"proposedItem"`
	Quantity        int           `json:"quantity"`
	UnitPrice       string        `json:"unitPrice"`
	TotalPrice      string        `json:"totalPrice"`
	Currency        string        `json:"currency"`
	DeliveryDate    string        `json:"deliveryDate"`
	Status          string        `json:"status"`
	IsEditable      bool          `json:"isEditable"`
	CanBeWithdrawn  bool          `json:"canBeWithdrawn"`
	Evaluation      *Evaluation   `json:"evaluation,omitempty"`
	AIEvaluation    *AIEvaluation `json:"aiEvaluation,omitempty"`
	ComplianceDocs  []string      `json:"complianceDocuments"`
	VendorNotes     string        `json:"vendorNotes,omitempty"`
	ManagerNotes    string        `json:"managerNotes,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	SubmittedAt     string        `json:"submittedAt,omitempty"`
	ReviewedAt      string        `json:"reviewedAt,omitempty"`
	AcceptedAt      string        `json:"acceptedAt,omitempty"`
	RejectedAt      string        `json:"rejectedAt,omitempty"`
	WithdrawnAt     string        `json:"withdrawnAt,omitempty"`
	CreatedAt       string        `json:"createdAt"`
}
