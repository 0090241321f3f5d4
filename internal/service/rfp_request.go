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

type RFPRequestService struct {
	rfpRepo    repo.RFPRequest
	marketRepo repo.MarketRequest
	userRepo   repo.User
	now        func() time.Time
}

func NewRFPRequestService(repos *repo.Repositories) *RFPRequestService {
	return &RFPRequestService{
		rfpRepo:    repos.RFPRequest,
		marketRepo: repos.MarketRequest,
		userRepo:   repos.User,
		now:        time.Now,
	}
}

func (s *RFPRequestService) CreateRFPRequest(ctx context.Context, p entity.Principal, input *entity.CreateRFPInput) (*entity.RFPOutputModel, error) {
	if !p.IsUser() {
		return nil, ErrUsersOnly
	}

	if input.BudgetEstimate.Sign() <= 0 {
		return nil, validationErrorf("budget estimate must be positive")
	}

	requester, err := s.userRepo.GetUserById(ctx, p.Id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	// The request's manager defaults to the requester's own manager; a
	// manager or admin filing without one is assigned to themselves.
	if input.ManagerId == uuid.Nil {
		switch {
		case requester.ManagerId != nil:
			input.ManagerId = *requester.ManagerId
		case common.IsManagerial(requester.Role):
			input.ManagerId = p.Id
		default:
			return nil, validationErrorf("a reviewing manager is required")
		}
	}

	manager, err := s.userRepo.GetUserById(ctx, input.ManagerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}
	if manager.OrganizationId != p.OrganizationId {
		return nil, ErrNotOrganizationMember
	}
	if !common.IsManagerial(manager.Role) {
		return nil, validationErrorf("assigned manager must hold a managerial role")
	}

	input.RequestedById = p.Id
	input.OrganizationId = p.OrganizationId

	id, err := s.rfpRepo.CreateRFPRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	req, err := s.rfpRepo.GetRFPRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapRFPRequest(req), nil
}

func (s *RFPRequestService) GetRFPRequestById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.RFPOutputModel, error) {
	req, err := s.getVisibleRequest(ctx, p, id)
	if err != nil {
		return nil, err
	}

	return mapRFPRequest(req), nil
}

func (s *RFPRequestService) GetOrganizationRFPRequests(ctx context.Context, p entity.Principal, status string, pg *entity.PaginationInput) ([]entity.RFPOutputModel, error) {
	if !p.IsUser() {
		return nil, ErrUsersOnly
	}

	requests, err := s.rfpRepo.GetRFPRequestsByOrganization(ctx, p.OrganizationId, status, pg)
	if err != nil {
		return nil, err
	}

	return mapRFPRequests(requests), nil
}

// UpdateRFPRequest lets the requester amend their own request while it is
// still pending. The pending guard is re-checked by the write itself.
func (s *RFPRequestService) UpdateRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.UpdateRFPInput) (*entity.RFPOutputModel, error) {
	req, err := s.getVisibleRequest(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.RequestedById != p.Id {
		return nil, ErrNotRequestOwner
	}
	if req.Status != common.RFPPending {
		return nil, ErrRFPNotPending
	}
	if input.BudgetEstimate != nil && input.BudgetEstimate.Sign() <= 0 {
		return nil, validationErrorf("budget estimate must be positive")
	}

	if err := s.rfpRepo.UpdatePendingRFPRequest(ctx, id, input); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrRFPNotPending
		}

		return nil, err
	}

	req, err = s.rfpRepo.GetRFPRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapRFPRequest(req), nil
}

func (s *RFPRequestService) DeleteRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID) error {
	req, err := s.getVisibleRequest(ctx, p, id)
	if err != nil {
		return err
	}

	if req.RequestedById != p.Id {
		return ErrNotRequestOwner
	}
	if req.Status != common.RFPPending {
		return ErrRFPNotPending
	}

	if err := s.rfpRepo.DeletePendingRFPRequest(ctx, id); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return ErrRFPNotPending
		}

		return err
	}

	return nil
}

// ReviewRFPRequest records the decision of the assigned manager or of an
// admin of the owning organization. Pending and needs_clarification requests
// are reviewable; approved and rejected are final. reviewedAt keeps its
// first value across repeated reviews.
func (s *RFPRequestService) ReviewRFPRequest(ctx context.Context, p entity.Principal, id uuid.UUID, decision, note string) (*entity.RFPOutputModel, error) {
	switch decision {
	case common.DecisionApproved, common.DecisionRejected, common.DecisionNeedsClarification:
	default:
		return nil, validationErrorf("unknown review decision %q", decision)
	}
	if decision == common.DecisionRejected && note == "" {
		return nil, validationErrorf("a rejection requires a review note")
	}

	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	isOrgAdmin := p.IsMemberOf(req.OrganizationId) && p.Role == common.RoleAdmin
	if p.Id != req.ManagerId && !isOrgAdmin {
		return nil, ErrNotAssignedReviewer
	}
	if req.Status != common.RFPPending && req.Status != common.RFPNeedsClarification {
		return nil, ErrRFPNotReviewable
	}

	if err := s.rfpRepo.ReviewRFPRequest(ctx, id, decision, note, s.now()); err != nil {
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrRFPNotReviewable
		}

		return nil, err
	}

	req, err = s.rfpRepo.GetRFPRequestById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapRFPRequest(req), nil
}

// ConvertToMarketRequest publishes an approved request as an open market
// request. The market request row is written first and the approved request
// then claims it; when that claim loses a concurrent conversion the fresh
// market request is deleted again as compensation.
func (s *RFPRequestService) ConvertToMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID, input *entity.ConvertToMarketInput) (*entity.MarketOutputModel, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsManagerOf(req.OrganizationId) {
		return nil, ErrNotManager
	}
	if req.Status == common.RFPConvertedToMarket || req.MarketRequestId != nil {
		return nil, ErrRFPAlreadyConverted
	}
	if req.Status != common.RFPApproved {
		return nil, ErrRFPNotApproved
	}

	now := s.now()
	if err := entity.ValidateDeadline(input.Deadline, now); err != nil {
		return nil, validationError(err)
	}
	if err := entity.ValidateCriteriaWeights(input.EvaluationCriteria); err != nil {
		return nil, validationError(err)
	}
	if input.Quantity <= 0 {
		return nil, validationErrorf("quantity must be positive")
	}
	if input.MaxBudget.Sign() <= 0 {
		return nil, validationErrorf("max budget must be positive")
	}

	market := &entity.MarketRequest{
		Title:              input.Title,
		Description:        input.Description,
		Category:           req.Category,
		Specifications:     input.Specifications,
		RFPRequestId:       req.Id,
		CreatedById:        p.Id,
		OrganizationId:     req.OrganizationId,
		Quantity:           input.Quantity,
		MaxBudget:          input.MaxBudget,
		Currency:           input.Currency,
		Deadline:           input.Deadline,
		DeliveryLocation:   input.DeliveryLocation,
		Requirements:       input.Requirements,
		EvaluationCriteria: input.EvaluationCriteria,
	}
	if market.Title == "" {
		market.Title = req.Title
	}
	if market.Description == "" {
		market.Description = req.Description
	}

	marketId, err := s.marketRepo.CreateMarketRequest(ctx, market)
	if err != nil {
		return nil, err
	}

	if err := s.rfpRepo.MarkConverted(ctx, id, marketId); err != nil {
		if delErr := s.marketRepo.DeleteMarketRequest(ctx, marketId); delErr != nil {
			return nil, delErr
		}
		if errors.Is(err, repo_errors.ErrStaleState) {
			return nil, ErrRFPAlreadyConverted
		}

		return nil, err
	}

	created, err := s.marketRepo.GetMarketRequestById(ctx, marketId)
	if err != nil {
		return nil, err
	}

	return mapMarketRequest(created), nil
}

func (s *RFPRequestService) getRequest(ctx context.Context, id uuid.UUID) (*entity.RFPRequest, error) {
	req, err := s.rfpRepo.GetRFPRequestById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRFPRequestNotFound
		}

		return nil, err
	}

	return req, nil
}

// getVisibleRequest restricts reads to members of the owning organization.
func (s *RFPRequestService) getVisibleRequest(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.RFPRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsMemberOf(req.OrganizationId) {
		return nil, ErrNotOrganizationMember
	}

	return req, nil
}
