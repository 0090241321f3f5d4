package common

// Principal kinds
const (
	KindUser   = "user"
	KindVendor = "vendor"
)

// Organization member roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// RFP request statuses
const (
	RFPPending            = "pending"
	RFPApproved           = "approved"
	RFPRejected           = "rejected"
	RFPNeedsClarification = "needs_clarification"
	RFPConvertedToMarket  = "converted_to_market"
)

// Review decisions on an RFP request
const (
	DecisionApproved           = "approved"
	DecisionRejected           = "rejected"
	DecisionNeedsClarification = "needs_clarification"
)

// Market request statuses
const (
	MarketOpen      = "open"
	MarketClosed    = "closed"
	MarketAwarded   = "awarded"
	MarketCancelled = "cancelled"
)

// Proposal statuses
const (
	ProposalDraft       = "draft"
	ProposalSubmitted   = "submitted"
	ProposalUnderReview = "under_review"
	ProposalAccepted    = "accepted"
	ProposalRejected    = "rejected"
	ProposalWithdrawn   = "withdrawn"
)

// IsManagerial reports whether the role may review requests and manage
// market requests on behalf of its organization.
func IsManagerial(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
