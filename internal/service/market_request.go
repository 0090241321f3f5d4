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
)

type MarketRequestService struct {
	marketRepo   repo.MarketRequest
	proposalRepo repo.Proposal
	now          func() time.Time
}

func NewMarketRequestService(repos *repo.Repositories) *MarketRequestService {
	return &MarketRequestService{
		marketRepo:   repos.MarketRequest,
		proposalRepo: repos.Proposal,
		now:          time.Now,
	}
}

// GetMarketRequestById serves both sides of the marketplace. A vendor's
// first read of an open listing is recorded as a view and counted once.
func (s *MarketRequestService) GetMarketRequestById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.MarketOutputModel, error) {
	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.IsVendor() && m.Status == common.MarketOpen {
		inserted, err := s.marketRepo.RecordVendorView(ctx, m.Id, p.Id, s.now())
		if err != nil {
			return nil, err
		}
		if inserted {
			m.ViewsCount++
		}
	}

	return mapMarketRequest(m), nil
}

func (s *MarketRequestService) BrowseOpenMarketRequests(ctx context.Context, p entity.Principal, filter *entity.MarketFilter, pg *entity.PaginationInput) ([]entity.MarketOutputModel, error) {
	requests, err := s.marketRepo.GetOpenMarketRequests(ctx, filter, pg)
	if err != nil {
		return nil, err
	}

	return mapMarketRequests(requests), nil
}

func (s *MarketRequestService) GetOrganizationMarketRequests(ctx context.Context, p entity.Principal, pg *entity.PaginationInput) ([]entity.MarketOutputModel, error) {
	if !p.IsUser() {
		return nil, ErrUsersOnly
	}

	requests, err := s.marketRepo.GetMarketRequestsByOrganization(ctx, p.OrganizationId, pg)
	if err != nil {
		return nil, err
	}

	return mapMarketRequests(requests), nil
}

func (s *MarketRequestService) UpdateMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateMarketInput) (*entity.MarketOutputModel, error) {
	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(m.OrganizationId) || p.Id != m.CreatedById {
		return nil, ErrNotRequestOwner
	}
	if m.Status != common.MarketOpen {
		return nil, ErrMarketNotOpen
	}

	if input.Deadline != nil {
		if err := entity.ValidateDeadline(*input.Deadline, s.now()); err != nil {
			return nil, validationError(err)
		}
	}
	if input.EvaluationCriteria != nil {
		if err := entity.ValidateCriteriaWeights(input.EvaluationCriteria); err != nil {
			return nil, validationError(err)
		}
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, validationErrorf("quantity must be positive")
	}
	if input.MaxBudget != nil && input.MaxBudget.Sign() <= 0 {
		return nil, validationErrorf("max budget must be positive")
	}

	if err := s.marketRepo.UpdateOpenMarketRequest(ctx, id, input); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrMarketNotOpen
		}

		return nil, err
	}

	m, err = s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapMarketRequest(m), nil
}

func (s *MarketRequestService) CloseMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, reason string) (*entity.MarketOutputModel, error) {
	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(m.OrganizationId) || p.Id != m.CreatedById {
		return nil, ErrNotRequestOwner
	}
	if m.Status != common.MarketOpen {
		return nil, ErrMarketNotOpen
	}

	if err := s.marketRepo.CloseMarketRequest(ctx, id, reason, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrMarketNotOpen
		}

		return nil, err
	}

	m, err = s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapMarketRequest(m), nil
}

// AwardMarketRequest closes the listing in favor of one submitted proposal,
// directly from the listing side. Unlike an accept after review, the target
// must still be in submitted. The award is serialized on the market request
// row, so a concurrent accept on another proposal cannot also win.
func (s *MarketRequestService) AwardMarketRequest(ctx context.Context, p entity.Principal, id, proposalId uuid.UUID) (*entity.MarketOutputModel, error) {
	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(m.OrganizationId) || p.Id != m.CreatedById {
		return nil, ErrNotRequestOwner
	}
	if m.Status != common.MarketOpen {
		if m.Status == common.MarketAwarded {
			return nil, ErrMarketAlreadyAwarded
		}

		return nil, ErrMarketNotOpen
	}

	proposal, err := s.proposalRepo.GetProposalById(ctx, proposalId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrProposalNotFound
		}

		return nil, err
	}
	if proposal.MarketRequestId != m.Id {
		return nil, validationErrorf("proposal does not belong to this market request")
	}
	if proposal.Status != common.ProposalSubmitted {
		return nil, ErrProposalNotSubmitted
	}

	awardableStatuses := []string{common.ProposalSubmitted}
	if err := s.proposalRepo.AcceptAndAward(ctx, id, proposalId, awardableStatuses, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, s.explainAwardFailure(ctx, id)
		}

		return nil, err
	}

	m, err = s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapMarketRequest(m), nil
}

func (s *MarketRequestService) explainAwardFailure(ctx context.Context, id uuid.UUID) error {
	m, err := s.marketRepo.GetMarketRequestById(ctx, id)
	if err == nil && m.Status == common.MarketAwarded {
		return ErrMarketAlreadyAwarded
	}
	if err == nil && m.Status != common.MarketOpen {
		return ErrMarketNotOpen
	}

	return ErrProposalNotSubmitted
}

func (s *MarketRequestService) MarkInterest(ctx context.Context, p entity.Principal, id uuid.UUID, isInterested bool) error {
	if !p.IsVendor() {
		return ErrVendorsOnly
	}

	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return err
	}
	if m.Status != common.MarketOpen {
		return ErrMarketNotOpen
	}

	return s.marketRepo.UpsertVendorInterest(ctx, id, p.Id, isInterested, s.now())
}

func (s *MarketRequestService) GetVendorInterest(ctx context.Context, p entity.Principal, id uuid.UUID) ([]entity.VendorInterest, error) {
	m, err := s.getMarketRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(m.OrganizationId) {
		return nil, ErrNotOrganizationMember
	}

	return s.marketRepo.GetVendorInterest(ctx, id)
}

func (s *MarketRequestService) getMarketRequest(ctx context.Context, id uuid.UUID) (*entity.MarketRequest, error) {
	m, err := s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrMarketRequestNotFound
		}

		return nil, err
	}

	return m, nil
}
