package service

import (
	"context"
	"errors"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/repo"
	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// decidableStatuses are the proposal statuses an accept or reject decision
// may depart from. A proposal does not need a manual evaluation first.
var decidableStatuses = []string{common.ProposalSubmitted, common.ProposalUnderReview}

type ProposalService struct {
	proposalRepo repo.Proposal
	marketRepo   repo.MarketRequest
	now          func() time.Time
}

func NewProposalService(repos *repo.Repositories) *ProposalService {
	return &ProposalService{
		proposalRepo: repos.Proposal,
		marketRepo:   repos.MarketRequest,
		now:          time.Now,
	}
}

// CreateProposal drafts a vendor's proposal on an open listing. The insert
// and the proposalsCount increment share one transaction, so the count never
// drifts from the rows and a listing that closes mid-flight rejects the
// draft.
func (s *ProposalService) CreateProposal(ctx context.Context, p entity.Principal, input *entity.CreateProposalInput) (*entity.ProposalOutputModel, error) {
	if !p.IsVendor() {
		return nil, ErrVendorsOnly
	}

	m, err := s.getMarketRequest(ctx, input.MarketRequestId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if m.Status != common.MarketOpen {
		return nil, ErrMarketNotOpen
	}
	// The deadline instant itself is still acceptable.
	if m.Deadline.Before(now) {
		return nil, ErrMarketDeadlinePassed
	}

	if err := entity.ValidateProposalPricing(input.UnitPrice.Sign() < 0, input.Quantity); err != nil {
		return nil, validationError(err)
	}
	if err := entity.ValidateDeliveryDate(input.DeliveryDate, now); err != nil {
		return nil, validationError(err)
	}

	input.VendorId = p.Id
	totalPrice := entity.ComputeTotalPrice(input.UnitPrice, input.Quantity)

	id, err := s.proposalRepo.CreateProposal(ctx, input, totalPrice, now)
	if err != nil {
		if errors.Is(err, repo_errors.ErrUniqueViolation) {
			return nil, ErrDuplicateProposal
		}
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrMarketNotOpen
		}

		return nil, err
	}

	proposal, err := s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

// GetProposalById is visible to the owning vendor and to members of the
// market request's organization.
func (s *ProposalService) GetProposalById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if proposal.VendorId != p.Id {
		m, err := s.getMarketRequest(ctx, proposal.MarketRequestId)
		if err != nil {
			return nil, err
		}
		if !p.IsMemberOf(m.OrganizationId) {
			return nil, ErrNotProposalOwner
		}
	}

	return mapProposal(proposal), nil
}

// GetProposalsForMarketRequest lists the submitted and later proposals of a
// listing for its organization; vendor drafts stay private.
func (s *ProposalService) GetProposalsForMarketRequest(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID, pg *entity.PaginationInput) ([]entity.ProposalOutputModel, error) {
	m, err := s.getMarketRequest(ctx, marketRequestId)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(m.OrganizationId) {
		return nil, ErrNotOrganizationMember
	}

	statuses := []string{
		common.ProposalSubmitted, common.ProposalUnderReview,
		common.ProposalAccepted, common.ProposalRejected, common.ProposalWithdrawn,
	}
	proposals, err := s.proposalRepo.GetProposalsByMarketRequest(ctx, marketRequestId, statuses, pg)
	if err != nil {
		return nil, err
	}

	return mapProposals(proposals), nil
}

func (s *ProposalService) GetVendorProposals(ctx context.Context, p entity.Principal, pg *entity.PaginationInput) ([]entity.ProposalOutputModel, error) {
	if !p.IsVendor() {
		return nil, ErrVendorsOnly
	}

	proposals, err := s.proposalRepo.GetProposalsByVendor(ctx, p.Id, pg)
	if err != nil {
		return nil, err
	}

	return mapProposals(proposals), nil
}

// UpdateProposal edits a draft. totalPrice is recomputed whenever the edit
// touches unitPrice or quantity; the stored value is never trusted from the
// caller.
func (s *ProposalService) UpdateProposal(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateProposalInput) (*entity.ProposalOutputModel, error) {
	proposal, err := s.getOwnProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !proposal.IsEditable() {
		return nil, ErrProposalNotDraft
	}

	unitPrice := proposal.UnitPrice
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}
	quantity := proposal.Quantity
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	if err := entity.ValidateProposalPricing(unitPrice.Sign() < 0, quantity); err != nil {
		return nil, validationError(err)
	}
	if input.DeliveryDate != nil {
		if err := entity.ValidateDeliveryDate(*input.DeliveryDate, s.now()); err != nil {
			return nil, validationError(err)
		}
	}

	var totalPrice *decimal.Decimal
	if input.UnitPrice != nil || input.Quantity != nil {
		recomputed := entity.ComputeTotalPrice(unitPrice, quantity)
		totalPrice = &recomputed
	}

	if err := s.proposalRepo.UpdateDraftProposal(ctx, id, input, totalPrice); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrProposalNotDraft
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

func (s *ProposalService) DeleteProposal(ctx context.Context, p entity.Principal, id uuid.UUID) error {
	proposal, err := s.getOwnProposal(ctx, p, id)
	if err != nil {
		return err
	}
	if !proposal.IsEditable() {
		return ErrProposalNotDraft
	}

	if err := s.proposalRepo.DeleteDraftProposal(ctx, id); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return ErrProposalNotDraft
		}

		return err
	}

	return nil
}

// SubmitProposal flips a draft to submitted. The write itself re-checks that
// the listing is still open and unexpired; on a stale result the state is
// re-read to report which guard failed.
func (s *ProposalService) SubmitProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error) {
	proposal, err := s.getOwnProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !proposal.IsEditable() {
		return nil, ErrProposalNotDraft
	}

	if err := s.proposalRepo.SubmitProposal(ctx, id, proposal.MarketRequestId, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, s.explainSubmitFailure(ctx, id, proposal.MarketRequestId)
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

func (s *ProposalService) explainSubmitFailure(ctx context.Context, id, marketRequestId uuid.UUID) error {
	proposal, err := s.proposalRepo.GetProposalById(ctx, id)
	if err == nil && !proposal.IsEditable() {
		return ErrProposalNotDraft
	}

	m, err := s.marketRepo.GetMarketRequestById(ctx, marketRequestId)
	if err == nil {
		if m.Status != common.MarketOpen {
			return ErrMarketNotOpen
		}
		if m.Deadline.Before(s.now()) {
			return ErrMarketDeadlinePassed
		}
	}

	return ErrMarketNotOpen
}

// WithdrawProposal takes a submitted or under-review proposal out of the
// running. proposalsCount deliberately keeps counting withdrawn proposals;
// it records how many were ever made.
func (s *ProposalService) WithdrawProposal(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.ProposalOutputModel, error) {
	proposal, err := s.getOwnProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !proposal.CanBeWithdrawn() {
		return nil, ErrProposalNotWithdrawable
	}

	if err := s.proposalRepo.WithdrawProposal(ctx, id, reason, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrProposalNotWithdrawable
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

// EvaluateProposal records a manager's manual scoring and moves the proposal
// under review. Scores are aggregated here; percentageScore is derived and
// never stored from input.
func (s *ProposalService) EvaluateProposal(ctx context.Context, p entity.Principal, id uuid.UUID, scores []entity.CriterionScore) (*entity.ProposalOutputModel, error) {
	proposal, _, err := s.getManagedProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if proposal.Status != common.ProposalSubmitted {
		return nil, ErrProposalNotSubmitted
	}
	if err := entity.ValidateScores(scores); err != nil {
		return nil, validationError(err)
	}

	now := s.now()
	evaluation := entity.ComputeEvaluation(scores, p.Id, now)

	if err := s.proposalRepo.EvaluateProposal(ctx, id, evaluation, now); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrProposalNotSubmitted
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

// AcceptProposal awards the market request to this proposal. The award is
// serialized on the market request row; of two concurrent accepts exactly
// one wins and the loser observes the award already made.
func (s *ProposalService) AcceptProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.ProposalOutputModel, error) {
	proposal, m, err := s.getManagedProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if !statusIn(proposal.Status, decidableStatuses) {
		return nil, ErrProposalNotDecidable
	}
	if m.Status != common.MarketOpen {
		if m.Status == common.MarketAwarded {
			return nil, ErrMarketAlreadyAwarded
		}

		return nil, ErrMarketNotOpen
	}

	if err := s.proposalRepo.AcceptAndAward(ctx, proposal.MarketRequestId, id, decidableStatuses, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, s.explainAcceptFailure(ctx, proposal.MarketRequestId)
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

func (s *ProposalService) explainAcceptFailure(ctx context.Context, marketRequestId uuid.UUID) error {
	m, err := s.marketRepo.GetMarketRequestById(ctx, marketRequestId)
	if err == nil && m.Status == common.MarketAwarded {
		return ErrMarketAlreadyAwarded
	}
	if err == nil && m.Status != common.MarketOpen {
		return ErrMarketNotOpen
	}

	return ErrProposalNotDecidable
}

func (s *ProposalService) RejectProposal(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.ProposalOutputModel, error) {
	if reason == "" {
		return nil, validationErrorf("a rejection requires a reason")
	}

	proposal, _, err := s.getManagedProposal(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !statusIn(proposal.Status, decidableStatuses) {
		return nil, ErrProposalNotDecidable
	}

	if err := s.proposalRepo.RejectProposal(ctx, id, reason, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrProposalNotDecidable
		}

		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

func (s *ProposalService) getProposal(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	proposal, err := s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrProposalNotFound
		}

		return nil, err
	}

	return proposal, nil
}

func (s *ProposalService) getOwnProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.Proposal, error) {
	if !p.IsVendor() {
		return nil, ErrVendorsOnly
	}

	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.VendorId != p.Id {
		return nil, ErrNotProposalOwner
	}

	return proposal, nil
}

// getManagedProposal resolves a proposal together with its market request
// and requires the caller to be a manager of the owning organization.
func (s *ProposalService) getManagedProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.Proposal, *entity.MarketRequest, error) {
	proposal, err := s.getProposal(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	m, err := s.getMarketRequest(ctx, proposal.MarketRequestId)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsManagerOf(m.OrganizationId) {
		return nil, nil, ErrNotManager
	}

	return proposal, m, nil
}

func (s *ProposalService) getMarketRequest(ctx context.Context, id uuid.UUID) (*entity.MarketRequest, error) {
	m, err := s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrMarketRequestNotFound
		}

		return nil, err
	}

	return m, nil
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}

	return false
}
