package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Organization struct {
	Id         uuid.UUID
	Name       string
	Industry   string
	Address    string
	Contact    string
	AdminId    uuid.UUID
	IsActive   bool
	IsVerified bool
	Settings   OrganizationSettings
	CreatedAt  time.Time
}

// OrganizationSettings carries per-organization approval policy. Stored as a
// jsonb document.
type OrganizationSettings struct {
	ApprovalLimit       decimal.Decimal `json:"approvalLimit"`
	RequireDualApproval bool            `json:"requireDualApproval"`
}

// service + repo input model. The organization and its first admin user are
// written together; AdminId is back-patched inside the same transaction.
type RegisterOrganizationInput struct {
	Name          string
	Industry      string
	Address       string
	Contact       string
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// controller model
type OrganizationOutputModel struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	Industry   string `json:"industry"`
	Address    string `json:"address"`
	Contact    string `json:"contact"`
	AdminId    string `json:"adminId"`
	IsActive   bool   `json:"isActive"`
	IsVerified bool   `json:"isVerified"`
	CreatedAt  string `json:"createdAt"`
}
