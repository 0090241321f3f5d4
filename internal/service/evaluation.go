package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/oracle"
	"procurement-marketplace-api/internal/repo"
	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

type EvaluationService struct {
	proposalRepo repo.Proposal
	marketRepo   repo.MarketRequest
	vendorRepo   repo.Vendor
	oracle       oracle.Client
	now          func() time.Time
}

func NewEvaluationService(repos *repo.Repositories, client oracle.Client) *EvaluationService {
	return &EvaluationService{
		proposalRepo: repos.Proposal,
		marketRepo:   repos.MarketRequest,
		vendorRepo:   repos.Vendor,
		oracle:       client,
		now:          time.Now,
	}
}

// EvaluateProposalWithAI scores a single proposal through the oracle. The
// scoring block is an annotation independent of the lifecycle: any member of
// the owning organization may trigger it on any status, it never advances
// the proposal and a repeated run overwrites the previous block. A failed
// call leaves the proposal untouched and surfaces as an evaluation error.
func (s *EvaluationService) EvaluateProposalWithAI(ctx context.Context, p entity.Principal, proposalId uuid.UUID) (*entity.ProposalOutputModel, error) {
	proposal, m, err := s.getOrganizationProposal(ctx, p, proposalId)
	if err != nil {
		return nil, err
	}

	if err := s.scoreProposal(ctx, proposal, m); err != nil {
		return nil, err
	}

	proposal, err = s.proposalRepo.GetProposalById(ctx, proposalId)
	if err != nil {
		return nil, err
	}

	return mapProposal(proposal), nil
}

// EvaluateMarketRequestProposals runs the oracle over every proposal of the
// listing that has no scoring block yet. One failing proposal does not stop
// the batch; failures are reported next to the successes.
func (s *EvaluationService) EvaluateMarketRequestProposals(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID) (*entity.BatchEvaluationOutput, error) {
	m, err := s.getOrganizationMarketRequest(ctx, p, marketRequestId)
	if err != nil {
		return nil, err
	}

	pending, err := s.proposalRepo.GetProposalsPendingAIEvaluation(ctx, marketRequestId)
	if err != nil {
		return nil, err
	}

	out := &entity.BatchEvaluationOutput{
		MarketRequestId: marketRequestId.String(),
		Evaluated:       make([]entity.ProposalOutputModel, 0),
		Failed:          make([]entity.FailedEvaluation, 0),
	}

	for i := range pending {
		proposal := &pending[i]
		if err := s.scoreProposal(ctx, proposal, m); err != nil {
			out.Failed = append(out.Failed, entity.FailedEvaluation{
				ProposalId: proposal.Id.String(),
				Reason:     err.Error(),
			})
			continue
		}

		scored, err := s.proposalRepo.GetProposalById(ctx, proposal.Id)
		if err != nil {
			return nil, err
		}
		out.Evaluated = append(out.Evaluated, *mapProposal(scored))
	}

	return out, nil
}

// CompareProposals ranks the listing's active proposals by their oracle
// overall score, falling back to the manual percentage score for proposals
// the oracle never saw. Ties break toward the cheaper offer.
func (s *EvaluationService) CompareProposals(ctx context.Context, p entity.Principal, marketRequestId uuid.UUID) (*entity.ProposalComparisonOutput, error) {
	m, err := s.getOrganizationMarketRequest(ctx, p, marketRequestId)
	if err != nil {
		return nil, err
	}

	statuses := []string{common.ProposalSubmitted, common.ProposalUnderReview, common.ProposalAccepted}
	proposals, err := s.proposalRepo.GetProposalsByMarketRequest(ctx, marketRequestId, statuses, entity.NewPaginationInput(50, 0))
	if err != nil {
		return nil, err
	}

	type entry struct {
		score    float64
		proposal *entity.Proposal
	}
	entries := make([]entry, 0, len(proposals))
	for i := range proposals {
		entries = append(entries, entry{
			score:    comparisonScore(&proposals[i]),
			proposal: &proposals[i],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].proposal.TotalPrice.LessThan(entries[j].proposal.TotalPrice)
	})

	ranked := make([]entity.RankedProposal, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, entity.RankedProposal{
			Rank:     i + 1,
			Score:    e.score,
			Proposal: *mapProposal(e.proposal),
		})
	}

	return &entity.ProposalComparisonOutput{
		MarketRequestId: marketRequestId.String(),
		Ranked:          ranked,
		Summary:         comparisonSummary(m, ranked),
	}, nil
}

// scoreProposal calls the oracle and persists the resulting block. The
// failure is wrapped into the evaluation kind; nothing is written on it.
func (s *EvaluationService) scoreProposal(ctx context.Context, proposal *entity.Proposal, m *entity.MarketRequest) error {
	req := &oracle.EvaluationRequest{
		Proposal: oracle.ProposalSnapshot{
			ProposedItem: proposal.ProposedItem,
			Quantity:     proposal.Quantity,
			UnitPrice:    proposal.UnitPrice.String(),
			TotalPrice:   proposal.TotalPrice.String(),
			Currency:     proposal.Currency,
			DeliveryDate: fmtTime(proposal.DeliveryDate),
			Compliance:   proposal.ComplianceDocs,
			VendorNotes:  proposal.VendorNotes,
		},
		MarketRequest: oracle.MarketSnapshot{
			Title:            m.Title,
			Description:      m.Description,
			Category:         m.Category,
			Quantity:         m.Quantity,
			MaxBudget:        m.MaxBudget.String(),
			Currency:         m.Currency,
			Deadline:         fmtTime(m.Deadline),
			DeliveryLocation: m.DeliveryLocation,
			Requirements:     m.Requirements,
		},
	}

	if vendor, err := s.vendorRepo.GetVendorById(ctx, proposal.VendorId); err == nil {
		req.VendorHistory = &oracle.VendorHistory{
			Rating:        vendor.Rating,
			CompletedJobs: vendor.CompletedJobs,
		}
	}

	result, err := s.oracle.EvaluateProposal(ctx, req)
	if err != nil {
		return evaluationError(err)
	}

	evaluation := &entity.AIEvaluation{
		CostScore:       result.CostScore,
		DeliveryScore:   result.DeliveryScore,
		ComplianceScore: result.ComplianceScore,
		OverallScore:    result.OverallScore,
		Confidence:      result.Confidence,
		Insights:        result.Insights,
		EvaluatedAt:     s.now(),
	}

	return s.proposalRepo.SetAIEvaluation(ctx, proposal.Id, evaluation)
}

func comparisonScore(p *entity.Proposal) float64 {
	if p.AIEvaluation != nil {
		return p.AIEvaluation.OverallScore
	}
	if p.Evaluation != nil {
		return p.Evaluation.PercentageScore
	}

	return 0
}

func comparisonSummary(m *entity.MarketRequest, ranked []entity.RankedProposal) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("No active proposals on %q yet.", m.Title)
	}

	top := ranked[0]
	return fmt.Sprintf(
		"%d active proposal(s) on %q. Leading offer %s at %s %s (score %.1f).",
		len(ranked), m.Title, top.Proposal.Id, top.Proposal.TotalPrice, top.Proposal.Currency, top.Score,
	)
}

func (s *EvaluationService) getOrganizationMarketRequest(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.MarketRequest, error) {
	m, err := s.marketRepo.GetMarketRequestById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrMarketRequestNotFound
		}

		return nil, err
	}
	if !p.IsMemberOf(m.OrganizationId) {
		return nil, ErrNotOrganizationMember
	}

	return m, nil
}

func (s *EvaluationService) getOrganizationProposal(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.Proposal, *entity.MarketRequest, error) {
	proposal, err := s.proposalRepo.GetProposalById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, nil, ErrProposalNotFound
		}

		return nil, nil, err
	}

	m, err := s.getOrganizationMarketRequest(ctx, p, proposal.MarketRequestId)
	if err != nil {
		return nil, nil, err
	}

	return proposal, m, nil
}
