package repo

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/repo/pgdb"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Diagnostics interface {
	Ping() error
}

type Organization interface {
	// CreateOrganizationWithAdmin writes the organization, its first admin
	// user and the adminId back-patch in one transaction.
	CreateOrganizationWithAdmin(ctx context.Context, org *entity.Organization, admin *entity.User) (uuid.UUID, uuid.UUID, error)
	GetOrganizationById(ctx context.Context, id uuid.UUID) (*entity.Organization, error)
}

type User interface {
	CreateUser(ctx context.Context, input *entity.CreateUserInput, passwordHash string) (uuid.UUID, error)
	GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input *entity.UpdateUserInput) error
	RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Vendor interface {
	CreateVendor(ctx context.Context, input *entity.RegisterVendorInput, passwordHash string) (uuid.UUID, error)
	GetVendorById(ctx context.Context, id uuid.UUID) (*entity.Vendor, error)
	GetVendorByEmail(ctx context.Context, email string) (*entity.Vendor, error)
	RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type RFPRequest interface {
	CreateRFPRequest(ctx context.Context, input *entity.CreateRFPInput) (uuid.UUID, error)
	GetRFPRequestById(ctx context.Context, id uuid.UUID) (*entity.RFPRequest, error)
	GetRFPRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, status string, pg *entity.PaginationInput) ([]entity.RFPRequest, error)
	// UpdatePendingRFPRequest applies the edit only while status is pending.
	UpdatePendingRFPRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateRFPInput) error
	DeletePendingRFPRequest(ctx context.Context, id uuid.UUID) error
	// ReviewRFPRequest flips pending/needs_clarification to the decision and
	// stamps reviewedAt on the first transition only.
	ReviewRFPRequest(ctx context.Context, id uuid.UUID, decision string, note string, now time.Time) error
	// MarkConverted claims the request for a market request; guarded on
	// status=approved and no existing back-reference.
	MarkConverted(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID) error
}

type MarketRequest interface {
	CreateMarketRequest(ctx context.Context, m *entity.MarketRequest) (uuid.UUID, error)
	// DeleteMarketRequest is the compensation path of convertToMarket; it is
	// never exposed as an operation of its own.
	DeleteMarketRequest(ctx context.Context, id uuid.UUID) error
	GetMarketRequestById(ctx context.Context, id uuid.UUID) (*entity.MarketRequest, error)
	GetOpenMarketRequests(ctx context.Context, filter *entity.MarketFilter, pg *entity.PaginationInput) ([]entity.MarketRequest, error)
	GetMarketRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, pg *entity.PaginationInput) ([]entity.MarketRequest, error)
	// UpdateOpenMarketRequest applies the whitelisted edit only while open.
	UpdateOpenMarketRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateMarketInput) error
	CloseMarketRequest(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	// RecordVendorView inserts the vendor's first-view entry and increments
	// viewsCount; reports whether a new entry was written.
	RecordVendorView(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error)
	UpsertVendorInterest(ctx context.Context, marketRequestId, vendorId uuid.UUID, isInterested bool, now time.Time) error
	GetVendorInterest(ctx context.Context, marketRequestId uuid.UUID) ([]entity.VendorInterest, error)
}

type Proposal interface {
	// CreateProposal inserts the proposal and increments the market
	// request's proposalsCount in the same transaction, guarded on the
	// market request still being open and unexpired.
	CreateProposal(ctx context.Context, input *entity.CreateProposalInput, totalPrice decimal.Decimal, now time.Time) (uuid.UUID, error)
	GetProposalById(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	GetProposalsByMarketRequest(ctx context.Context, marketRequestId uuid.UUID, statuses []string, pg *entity.PaginationInput) ([]entity.Proposal, error)
	GetProposalsByVendor(ctx context.Context, vendorId uuid.UUID, pg *entity.PaginationInput) ([]entity.Proposal, error)
	UpdateDraftProposal(ctx context.Context, id uuid.UUID, input *entity.UpdateProposalInput, totalPrice *decimal.Decimal) error
	DeleteDraftProposal(ctx context.Context, id uuid.UUID) error
	// SubmitProposal flips draft to submitted only while the market request
	// is still open and before its deadline.
	SubmitProposal(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID, now time.Time) error
	WithdrawProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	// EvaluateProposal writes the manual evaluation block and advances
	// submitted to under_review in one guarded update.
	EvaluateProposal(ctx context.Context, id uuid.UUID, evaluation *entity.Evaluation, now time.Time) error
	RejectProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	// AcceptAndAward accepts the proposal and awards its market request in
	// one transaction. The market request row is flipped first; it is the
	// authoritative single-winner guard.
	AcceptAndAward(ctx context.Context, marketRequestId, proposalId uuid.UUID, allowedStatuses []string, now time.Time) error
	SetAIEvaluation(ctx context.Context, id uuid.UUID, evaluation *entity.AIEvaluation) error
	// GetProposalsPendingAIEvaluation lists submitted/under_review proposals
	// of a market request that have no oracle scoring block yet.
	GetProposalsPendingAIEvaluation(ctx context.Context, marketRequestId uuid.UUID) ([]entity.Proposal, error)
}

type Repositories struct {
	Diagnostics
	Organization
	User
	Vendor
	RFPRequest
	MarketRequest
	Proposal
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics:   pgdb.NewDiagnosticsRepo(p),
		Organization:  pgdb.NewOrganizationRepo(p),
		User:          pgdb.NewUserRepo(p),
		Vendor:        pgdb.NewVendorRepo(p),
		RFPRequest:    pgdb.NewRFPRequestRepo(p),
		MarketRequest: pgdb.NewMarketRequestRepo(p),
		Proposal:      pgdb.NewProposalRepo(p),
	}
}
