package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type RFPRequest struct {
	Id              uuid.UUID
	Title           string
	Description     string
	Category        string
	Urgency         string
	BudgetEstimate  decimal.Decimal
	Justification   string
	Status          string
	RequestedById   uuid.UUID
	OrganizationId  uuid.UUID
	ManagerId       uuid.UUID
	MarketRequestId *uuid.UUID
	ReviewNote      string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
}

// service + repo input model
type CreateRFPInput struct {
	Title          string
	Description    string
	Category       string
	Urgency        string
	BudgetEstimate decimal.Decimal
	Justification  string
	// resolved by the service from the requester
	RequestedById  uuid.UUID
	OrganizationId uuid.UUID
	ManagerId      uuid.UUID
}

// Requester-driven edit while the request is still pending; nil fields keep
// their current value.
type UpdateRFPInput struct {
	Title          *string
	Description    *string
	Category       *string
	Urgency        *string
	BudgetEstimate *decimal.Decimal
	Justification  *string
}

// controller model
type RFPOutputModel struct {
	Id              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Urgency         string `json:"urgency"`
	BudgetEstimate  string `json:"budgetEstimate"`
	Justification   string `json:"justification"`
	Status          string `json:"status"`
	RequestedById   string `json:"requestedBy"`
	OrganizationId  string `json:"organizationId"`
	ManagerId       string `json:"manager"`
	MarketRequestId string `json:"marketRequestId,omitempty"`
	ReviewNote      string `json:"reviewNote,omitempty"`
	ReviewedAt      string `json:"reviewedAt,omitempty"`
	CreatedAt       string `json:"createdAt"`
}
