package service

import (
	"context"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/oracle"
	"procurement-marketplace-api/internal/repo"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

// TokenSigner issues the bearer token carried by every authenticated call.
type TokenSigner interface {
	Sign(p entity.Principal) (string, error)
}

type Identity interface {
	RegisterOrganization(ctx context.Context, input *entity.RegisterOrganizationInput) (*entity.OrganizationOutputModel, error)
	RegisterVendor(ctx context.Context, input *entity.RegisterVendorInput) (*entity.VendorOutputModel, error)
	Login(ctx context.Context, email, password, kind string) (string, error)

	GetOrganizationById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.OrganizationOutputModel, error)
	CreateUser(ctx context.Context, p entity.Principal, input *entity.CreateUserInput) (*entity.UserOutputModel, error)
	UpdateUser(ctx context.Context, p entity.Principal, userId uuid.UUID, input *entity.UpdateUserInput) (*entity.UserOutputModel, error)
	GetVendorById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.VendorOutputModel, error)
}

type RFPRequest interface {
	CreateRFPRequest(ctx context.Context, p entity.Principal, input *entity.CreateRFPInput) (*entity.RFPOutputModel, error)
	GetRFPRequestById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.RFPOutputModel, error)
	GetOrganizationRFPRequests(ctx context.Context, p entity.Principal, status string, pg *entity.PaginationInput) ([]entity.RFPOutputModel, error)
	UpdateRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateRFPInput) (*entity.RFPOutputModel, error)
	DeleteRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID) error
	ReviewRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID, decision, note string) (*entity.RFPOutputModel, error)
	ConvertToMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.ConvertToMarketInput) (*entity.MarketOutputModel, error)
}

type MarketRequest interface {
	GetMarketRequestById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.MarketOutputModel, error)
	BrowseOpenMarketRequests(ctx context.Context, p entity.Principal, filter *entity.MarketFilter, pg *entity.PaginationInput) ([]entity.MarketOutputModel, error)
	GetOrganizationMarketRequests(ctx context.Context, p entity.Principal, pg *entity.PaginationInput) ([]entity.MarketOutputModel, error)
	UpdateMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateMarketInput) (*entity.MarketOutputModel, error)
	CloseMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.MarketOutputModel, error)
	AwardMarketRequest(ctx context.Context, p entity.Principal, id, proposalId uuid.UUID) (*entity.MarketOutputModel, error)
	MarkInterest(ctx context.Context, p entity.Principal, id uuid.UUID, isInterested bool) error
	GetVendorInterest(ctx context.Context, p entity.Principal, id uuid.UUID) ([]entity.VendorInterest, error)
}

type Proposal interface {
	CreateProposal(ctx context.Context, p entity.Principal, input *entity.CreateProposalInput) (*entity.ProposalOutputModel, error)
	GetProposalById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error)
	GetProposalsForMarketRequest(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID, pg *entity.PaginationInput) ([]entity.ProposalOutputModel, error)
	GetVendorProposals(ctx context.Context, p entity.Principal, pg *entity.PaginationInput) ([]entity.ProposalOutputModel, error)
	UpdateProposal(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateProposalInput) (*entity.ProposalOutputModel, error)
	DeleteProposal(ctx context.Context, p entity.Principal, id uuid.UUID) error
	SubmitProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error)
	WithdrawProposal(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.ProposalOutputModel, error)
	EvaluateProposal(ctx context.Context, p entity.Principal, id uuid.UUID, scores []entity.CriterionScore) (*entity.ProposalOutputModel, error)
	AcceptProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error)
	RejectProposal(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.ProposalOutputModel, error)
}

type Evaluation interface {
	EvaluateProposalWithAI(ctx context.Context, p entity.Principal, proposalId uuid.UUID) (*entity.ProposalOutputModel, error)
	EvaluateMarketRequestProposals(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID) (*entity.BatchEvaluationOutput, error)
	CompareProposals(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID) (*entity.ProposalComparisonOutput, error)
}

type Services struct {
	Diagnostics   Diagnostics
	Identity      Identity
	RFPRequest    RFPRequest
	MarketRequest MarketRequest
	Proposal      Proposal
	Evaluation    Evaluation
}

type ServicesDependencies struct {
	Repos  *repo.Repositories
	Signer TokenSigner
	Oracle oracle.Client
}

func NewServices(deps *ServicesDependencies) *Services {
	return &Services{
		Diagnostics:   NewDiagnosticsService(deps.Repos),
		Identity:      NewIdentityService(deps.Repos, deps.Signer),
		RFPRequest:    NewRFPRequestService(deps.Repos),
		MarketRequest: NewMarketRequestService(deps.Repos),
		Proposal:      NewProposalService(deps.Repos),
		Evaluation:    NewEvaluationService(deps.Repos, deps.Oracle),
	}
}
