package service

import (
	"context"
	"testing"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMarketService(market *marketRepoMock) *MarketRequestService {
	return &MarketRequestService{marketRepo: market, now: fixedNow}
}

func openMarketRequest(orgId, createdBy uuid.UUID) *entity.MarketRequest {
	return &entity.MarketRequest{
		Id:             uuid.New(),
		Title:          "Office laptops",
		Description:    "20 developer laptops",
		Category:       "it-equipment",
		Status:         common.MarketOpen,
		RFPRequestId:   uuid.New(),
		CreatedById:    createdBy,
		OrganizationId: orgId,
		Quantity:       20,
		MaxBudget:      decimal.NewFromInt(45000),
		Currency:       "USD",
		Deadline:       testNow.Add(14 * 24 * time.Hour),
		CreatedAt:      testNow,
	}
}

func TestGetMarketRequestById_VendorFirstViewCounts(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	m.ViewsCount = 3
	market := newMarketRepoMock(m)
	market.RecordViewFunc = func(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error) {
		return true, nil
	}
	s := newMarketService(market)
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	out, err := s.GetMarketRequestById(context.Background(), vendor, m.Id)

	require.NoError(t, err)
	require.Equal(t, 4, out.ViewsCount)
}

func TestGetMarketRequestById_RepeatViewNotCounted(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	m.ViewsCount = 3
	s := newMarketService(newMarketRepoMock(m))
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	out, err := s.GetMarketRequestById(context.Background(), vendor, m.Id)

	require.NoError(t, err)
	require.Equal(t, 3, out.ViewsCount)
}

func TestGetMarketRequestById_UserViewNotCounted(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	market := newMarketRepoMock(m)
	market.RecordViewFunc = func(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error) {
		t.Fatal("user reads must not record vendor views")
		return false, nil
	}
	s := newMarketService(market)
	user := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleUser, OrganizationId: orgId}

	out, err := s.GetMarketRequestById(context.Background(), user, m.Id)

	require.NoError(t, err)
	require.Equal(t, 0, out.ViewsCount)
}

func TestGetOrganizationMarketRequests_VendorForbidden(t *testing.T) {
	s := newMarketService(newMarketRepoMock())
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	_, err := s.GetOrganizationMarketRequests(context.Background(), vendor, entity.NewPaginationInput(20, 0))

	require.ErrorIs(t, err, ErrUsersOnly)
}

func TestUpdateMarketRequest_CreatorMayEdit(t *testing.T) {
	orgId := uuid.New()
	creatorId := uuid.New()
	m := openMarketRequest(orgId, creatorId)
	s := newMarketService(newMarketRepoMock(m))
	creator := entity.Principal{Id: creatorId, Kind: common.KindUser, Role: common.RoleUser, OrganizationId: orgId}

	title := "Office laptops, revised"
	out, err := s.UpdateMarketRequest(context.Background(), creator, m.Id, &entity.UpdateMarketInput{Title: &title})

	require.NoError(t, err)
	require.Equal(t, title, out.Title)
}

func TestUpdateMarketRequest_NonCreatorManagerDenied(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	s := newMarketService(newMarketRepoMock(m))
	manager := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}

	title := "renamed"
	_, err := s.UpdateMarketRequest(context.Background(), manager, m.Id, &entity.UpdateMarketInput{Title: &title})

	require.ErrorIs(t, err, ErrNotRequestOwner)
}

func TestUpdateMarketRequest_ClosedListing(t *testing.T) {
	orgId := uuid.New()
	creatorId := uuid.New()
	m := openMarketRequest(orgId, creatorId)
	m.Status = common.MarketClosed
	s := newMarketService(newMarketRepoMock(m))
	creator := entity.Principal{Id: creatorId, Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}

	title := "renamed"
	_, err := s.UpdateMarketRequest(context.Background(), creator, m.Id, &entity.UpdateMarketInput{Title: &title})

	require.ErrorIs(t, err, ErrMarketNotOpen)
}

func TestUpdateMarketRequest_PastDeadlineRejected(t *testing.T) {
	orgId := uuid.New()
	creatorId := uuid.New()
	m := openMarketRequest(orgId, creatorId)
	s := newMarketService(newMarketRepoMock(m))
	creator := entity.Principal{Id: creatorId, Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}

	past := testNow.Add(-time.Hour)
	_, err := s.UpdateMarketRequest(context.Background(), creator, m.Id, &entity.UpdateMarketInput{Deadline: &past})

	require.ErrorIs(t, err, ErrValidation)
}

func TestCloseMarketRequest_Success(t *testing.T) {
	orgId := uuid.New()
	creatorId := uuid.New()
	m := openMarketRequest(orgId, creatorId)
	s := newMarketService(newMarketRepoMock(m))
	creator := entity.Principal{Id: creatorId, Kind: common.KindUser, Role: common.RoleAdmin, OrganizationId: orgId}

	out, err := s.CloseMarketRequest(context.Background(), creator, m.Id, "budget withdrawn")

	require.NoError(t, err)
	require.Equal(t, common.MarketClosed, out.Status)
	require.Equal(t, "budget withdrawn", out.CancellationReason)
	require.NotEmpty(t, out.ClosedAt)
}

func TestCloseMarketRequest_NonCreatorAdminDenied(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	s := newMarketService(newMarketRepoMock(m))
	admin := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleAdmin, OrganizationId: orgId}

	_, err := s.CloseMarketRequest(context.Background(), admin, m.Id, "")

	require.ErrorIs(t, err, ErrNotRequestOwner)
}

func TestCloseMarketRequest_LostRaceReportsNotOpen(t *testing.T) {
	orgId := uuid.New()
	creatorId := uuid.New()
	m := openMarketRequest(orgId, creatorId)
	market := newMarketRepoMock(m)
	market.CloseFunc = func(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
		return repo_errors.ErrStaleState
	}
	s := newMarketService(market)
	creator := entity.Principal{Id: creatorId, Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}

	_, err := s.CloseMarketRequest(context.Background(), creator, m.Id, "")

	require.ErrorIs(t, err, ErrMarketNotOpen)
}

func TestMarkInterest_UserForbidden(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	s := newMarketService(newMarketRepoMock(m))
	user := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleUser, OrganizationId: uuid.New()}

	err := s.MarkInterest(context.Background(), user, m.Id, true)

	require.ErrorIs(t, err, ErrVendorsOnly)
}

func TestMarkInterest_ClosedListing(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	m.Status = common.MarketAwarded
	s := newMarketService(newMarketRepoMock(m))
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	err := s.MarkInterest(context.Background(), vendor, m.Id, true)

	require.ErrorIs(t, err, ErrMarketNotOpen)
}

func TestMarkInterest_UpsertsFlag(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	market := newMarketRepoMock(m)
	s := newMarketService(market)
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	require.NoError(t, s.MarkInterest(context.Background(), vendor, m.Id, true))
	require.NoError(t, s.MarkInterest(context.Background(), vendor, m.Id, false))

	require.Equal(t, 2, market.upsertCalls)
	require.Equal(t, []bool{true, false}, market.upsertInterests)
}

func TestGetVendorInterest_OutsiderDenied(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	s := newMarketService(newMarketRepoMock(m))
	vendor := entity.Principal{Id: uuid.New(), Kind: common.KindVendor}

	_, err := s.GetVendorInterest(context.Background(), vendor, m.Id)

	require.ErrorIs(t, err, ErrNotOrganizationMember)
}

func TestGetMarketRequestById_NotFound(t *testing.T) {
	s := newMarketService(newMarketRepoMock())
	user := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleUser, OrganizationId: uuid.New()}

	_, err := s.GetMarketRequestById(context.Background(), user, uuid.New())

	require.ErrorIs(t, err, ErrMarketRequestNotFound)
}

func newAwardService(market *marketRepoMock, proposals *proposalRepoMock) *MarketRequestService {
	return &MarketRequestService{marketRepo: market, proposalRepo: proposals, now: fixedNow}
}

func TestAwardMarketRequest_CreatorAwardsSubmittedProposal(t *testing.T) {
	orgId := uuid.New()
	creator := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}
	m := openMarketRequest(orgId, creator.Id)
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	proposals := newProposalRepoMock(proposal)
	s := newAwardService(newMarketRepoMock(m), proposals)

	out, err := s.AwardMarketRequest(context.Background(), creator, m.Id, proposal.Id)

	require.NoError(t, err)
	require.Equal(t, m.Id.String(), out.Id)
	require.Equal(t, []string{common.ProposalSubmitted}, proposals.lastAllowed)
	require.Equal(t, common.ProposalAccepted, proposal.Status)
}

func TestAwardMarketRequest_OnlyCreatorMayAward(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	s := newAwardService(newMarketRepoMock(m), newProposalRepoMock(proposal))
	admin := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleAdmin, OrganizationId: orgId}

	_, err := s.AwardMarketRequest(context.Background(), admin, m.Id, proposal.Id)

	require.ErrorIs(t, err, ErrNotRequestOwner)
}

func TestAwardMarketRequest_UnderReviewNotAwardable(t *testing.T) {
	orgId := uuid.New()
	creator := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}
	m := openMarketRequest(orgId, creator.Id)
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalUnderReview
	s := newAwardService(newMarketRepoMock(m), newProposalRepoMock(proposal))

	_, err := s.AwardMarketRequest(context.Background(), creator, m.Id, proposal.Id)

	require.ErrorIs(t, err, ErrProposalNotSubmitted)
}

func TestAwardMarketRequest_ProposalOfAnotherListing(t *testing.T) {
	orgId := uuid.New()
	creator := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}
	m := openMarketRequest(orgId, creator.Id)
	proposal := draftProposal(uuid.New(), uuid.New())
	proposal.Status = common.ProposalSubmitted
	s := newAwardService(newMarketRepoMock(m), newProposalRepoMock(proposal))

	_, err := s.AwardMarketRequest(context.Background(), creator, m.Id, proposal.Id)

	require.ErrorIs(t, err, ErrValidation)
}

func TestAwardMarketRequest_AlreadyAwarded(t *testing.T) {
	orgId := uuid.New()
	creator := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}
	m := openMarketRequest(orgId, creator.Id)
	m.Status = common.MarketAwarded
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	s := newAwardService(newMarketRepoMock(m), newProposalRepoMock(proposal))

	_, err := s.AwardMarketRequest(context.Background(), creator, m.Id, proposal.Id)

	require.ErrorIs(t, err, ErrMarketAlreadyAwarded)
}

func TestAwardMarketRequest_LostRaceReportsAward(t *testing.T) {
	orgId := uuid.New()
	creator := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleManager, OrganizationId: orgId}
	m := openMarketRequest(orgId, creator.Id)
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	proposals := newProposalRepoMock(proposal)
	proposals.AcceptAndAwardFunc = func(ctx context.Context, marketRequestId, proposalId uuid.UUID, allowedStatuses []string, now time.Time) error {
		m.Status = common.MarketAwarded
		return repo_errors.ErrStaleState
	}
	s := newAwardService(newMarketRepoMock(m), proposals)

	_, err := s.AwardMarketRequest(context.Background(), creator, m.Id, proposal.Id)

	require.ErrorIs(t, err, ErrMarketAlreadyAwarded)
}
