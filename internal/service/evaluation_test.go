package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/oracle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newEvaluationService(proposals *proposalRepoMock, market *marketRepoMock, vendors *vendorRepoMock, client oracle.Client) *EvaluationService {
	return &EvaluationService{
		proposalRepo: proposals,
		marketRepo:   market,
		vendorRepo:   vendors,
		oracle:       client,
		now:          fixedNow,
	}
}

func TestEvaluateProposalWithAI_PersistsScores(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	proposals := newProposalRepoMock(proposal)
	client := &oracleMock{
		EvaluateFunc: func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
			require.Equal(t, "ThinkPad T14", req.Proposal.ProposedItem)
			require.Equal(t, m.Title, req.MarketRequest.Title)
			return &oracle.EvaluationResult{
				CostScore: 85, DeliveryScore: 70, ComplianceScore: 90, OverallScore: 82,
				Confidence: 0.87, Insights: []string{"within budget"},
			}, nil
		},
	}
	s := newEvaluationService(proposals, newMarketRepoMock(m), newVendorRepoMock(), client)

	out, err := s.EvaluateProposalWithAI(context.Background(), managerPrincipal(orgId), proposal.Id)

	require.NoError(t, err)
	require.NotNil(t, out.AIEvaluation)
	require.Equal(t, float64(82), out.AIEvaluation.OverallScore)
	require.Equal(t, testNow, out.AIEvaluation.EvaluatedAt)
	require.Equal(t, []string{"within budget"}, out.AIEvaluation.Insights)
}

func TestEvaluateProposalWithAI_IncludesVendorHistory(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	vendor := &entity.Vendor{Id: uuid.New(), Email: "sales@supplies.test", Rating: 4.6, CompletedJobs: 12, IsActive: true}
	proposal := draftProposal(m.Id, vendor.Id)
	proposal.Status = common.ProposalSubmitted
	var seen *oracle.VendorHistory
	client := &oracleMock{
		EvaluateFunc: func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
			seen = req.VendorHistory
			return &oracle.EvaluationResult{OverallScore: 50, Confidence: 0.5}, nil
		},
	}
	s := newEvaluationService(newProposalRepoMock(proposal), newMarketRepoMock(m), newVendorRepoMock(vendor), client)

	_, err := s.EvaluateProposalWithAI(context.Background(), managerPrincipal(orgId), proposal.Id)

	require.NoError(t, err)
	require.NotNil(t, seen)
	require.Equal(t, 4.6, seen.Rating)
	require.Equal(t, 12, seen.CompletedJobs)
}

func TestEvaluateProposalWithAI_OracleFailureWritesNothing(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	proposals := newProposalRepoMock(proposal)
	proposals.SetAIFunc = func(ctx context.Context, id uuid.UUID, evaluation *entity.AIEvaluation) error {
		t.Fatal("no scoring block may be written on an oracle failure")
		return nil
	}
	client := &oracleMock{
		EvaluateFunc: func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
			return nil, oracle.ErrEvaluationFailed
		},
	}
	s := newEvaluationService(proposals, newMarketRepoMock(m), newVendorRepoMock(), client)

	_, err := s.EvaluateProposalWithAI(context.Background(), managerPrincipal(orgId), proposal.Id)

	require.ErrorIs(t, err, ErrEvaluation)
}

func TestEvaluateProposalWithAI_AnyStatusAndAnyMember(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	proposal := draftProposal(m.Id, uuid.New())
	s := newEvaluationService(newProposalRepoMock(proposal), newMarketRepoMock(m), newVendorRepoMock(), &oracleMock{})
	member := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleUser, OrganizationId: orgId}

	// Scoring is an annotation, not a transition: a plain member may score a
	// draft and the status stays untouched.
	out, err := s.EvaluateProposalWithAI(context.Background(), member, proposal.Id)

	require.NoError(t, err)
	require.Equal(t, common.ProposalDraft, out.Status)
	require.NotNil(t, out.AIEvaluation)
}

func TestEvaluateProposalWithAI_RerunOverwrites(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	proposal := draftProposal(m.Id, uuid.New())
	proposal.Status = common.ProposalSubmitted
	proposal.AIEvaluation = &entity.AIEvaluation{OverallScore: 40, EvaluatedAt: testNow.Add(-time.Hour)}
	client := &oracleMock{
		EvaluateFunc: func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
			return &oracle.EvaluationResult{OverallScore: 71, Confidence: 0.6}, nil
		},
	}
	s := newEvaluationService(newProposalRepoMock(proposal), newMarketRepoMock(m), newVendorRepoMock(), client)

	out, err := s.EvaluateProposalWithAI(context.Background(), managerPrincipal(orgId), proposal.Id)

	require.NoError(t, err)
	require.Equal(t, float64(71), out.AIEvaluation.OverallScore)
}

func TestEvaluateMarketRequestProposals_PartialFailure(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	good := draftProposal(m.Id, uuid.New())
	good.Status = common.ProposalSubmitted
	bad := draftProposal(m.Id, uuid.New())
	bad.Status = common.ProposalUnderReview
	proposals := newProposalRepoMock(good, bad)
	client := &oracleMock{
		EvaluateFunc: func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
			if req.Proposal.VendorNotes == "flaky" {
				return nil, errors.New("oracle timeout")
			}
			return &oracle.EvaluationResult{OverallScore: 77, Confidence: 0.8}, nil
		},
	}
	bad.VendorNotes = "flaky"
	s := newEvaluationService(proposals, newMarketRepoMock(m), newVendorRepoMock(), client)

	out, err := s.EvaluateMarketRequestProposals(context.Background(), managerPrincipal(orgId), m.Id)

	require.NoError(t, err)
	require.Len(t, out.Evaluated, 1)
	require.Len(t, out.Failed, 1)
	require.Equal(t, bad.Id.String(), out.Failed[0].ProposalId)
	require.Equal(t, good.Id.String(), out.Evaluated[0].Id)
	require.NotNil(t, out.Evaluated[0].AIEvaluation)
}

func TestEvaluateMarketRequestProposals_SkipsAlreadyScored(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	scored := draftProposal(m.Id, uuid.New())
	scored.Status = common.ProposalSubmitted
	scored.AIEvaluation = &entity.AIEvaluation{OverallScore: 64, EvaluatedAt: testNow}
	client := &oracleMock{}
	s := newEvaluationService(newProposalRepoMock(scored), newMarketRepoMock(m), newVendorRepoMock(), client)

	out, err := s.EvaluateMarketRequestProposals(context.Background(), managerPrincipal(orgId), m.Id)

	require.NoError(t, err)
	require.Empty(t, out.Evaluated)
	require.Empty(t, out.Failed)
	require.Zero(t, client.calls)
}

func TestEvaluateMarketRequestProposals_OutsiderDenied(t *testing.T) {
	m := openMarketRequest(uuid.New(), uuid.New())
	s := newEvaluationService(newProposalRepoMock(), newMarketRepoMock(m), newVendorRepoMock(), &oracleMock{})
	outsider := entity.Principal{Id: uuid.New(), Kind: common.KindUser, Role: common.RoleAdmin, OrganizationId: uuid.New()}

	_, err := s.EvaluateMarketRequestProposals(context.Background(), outsider, m.Id)

	require.ErrorIs(t, err, ErrNotOrganizationMember)
}

func TestCompareProposals_RanksByScore(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())

	best := draftProposal(m.Id, uuid.New())
	best.Status = common.ProposalSubmitted
	best.AIEvaluation = &entity.AIEvaluation{OverallScore: 91, EvaluatedAt: testNow}

	manual := draftProposal(m.Id, uuid.New())
	manual.Status = common.ProposalUnderReview
	manual.Evaluation = &entity.Evaluation{PercentageScore: 74, EvaluatedAt: testNow}

	unscored := draftProposal(m.Id, uuid.New())
	unscored.Status = common.ProposalSubmitted

	s := newEvaluationService(newProposalRepoMock(best, manual, unscored), newMarketRepoMock(m), newVendorRepoMock(), &oracleMock{})

	out, err := s.CompareProposals(context.Background(), managerPrincipal(orgId), m.Id)

	require.NoError(t, err)
	require.Len(t, out.Ranked, 3)
	require.Equal(t, best.Id.String(), out.Ranked[0].Proposal.Id)
	require.Equal(t, float64(91), out.Ranked[0].Score)
	require.Equal(t, 1, out.Ranked[0].Rank)
	require.Equal(t, manual.Id.String(), out.Ranked[1].Proposal.Id)
	require.Equal(t, float64(74), out.Ranked[1].Score)
	require.Equal(t, unscored.Id.String(), out.Ranked[2].Proposal.Id)
	require.Equal(t, float64(0), out.Ranked[2].Score)
	require.NotEmpty(t, out.Summary)
}

func TestCompareProposals_TieBreaksOnPrice(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())

	cheap := draftProposal(m.Id, uuid.New())
	cheap.Status = common.ProposalSubmitted
	cheap.TotalPrice = decimal.NewFromInt(30000)
	cheap.AIEvaluation = &entity.AIEvaluation{OverallScore: 80, EvaluatedAt: testNow}

	pricey := draftProposal(m.Id, uuid.New())
	pricey.Status = common.ProposalSubmitted
	pricey.TotalPrice = decimal.NewFromInt(38000)
	pricey.AIEvaluation = &entity.AIEvaluation{OverallScore: 80, EvaluatedAt: testNow}

	s := newEvaluationService(newProposalRepoMock(cheap, pricey), newMarketRepoMock(m), newVendorRepoMock(), &oracleMock{})

	out, err := s.CompareProposals(context.Background(), managerPrincipal(orgId), m.Id)

	require.NoError(t, err)
	require.Len(t, out.Ranked, 2)
	require.Equal(t, cheap.Id.String(), out.Ranked[0].Proposal.Id)
	require.Equal(t, pricey.Id.String(), out.Ranked[1].Proposal.Id)
}

func TestCompareProposals_EmptyListing(t *testing.T) {
	orgId := uuid.New()
	m := openMarketRequest(orgId, uuid.New())
	s := newEvaluationService(newProposalRepoMock(), newMarketRepoMock(m), newVendorRepoMock(), &oracleMock{})

	out, err := s.CompareProposals(context.Background(), managerPrincipal(orgId), m.Id)

	require.NoError(t, err)
	require.Empty(t, out.Ranked)
	require.NotEmpty(t, out.Summary)
}
