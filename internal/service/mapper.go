package service

import (
	"time"

	"procurement-marketplace-api/internal/entity"

	"github.com/google/uuid"
)

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtTime(*t)
}

func fmtUUIDPtr(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func mapOrganization(o *entity.Organization) *entity.OrganizationOutputModel {
	return &entity.OrganizationOutputModel{
		Id:         o.Id.String(),
		Name:       o.Name,
		Industry:   o.Industry,
		Address:    o.Address,
		Contact:    o.Contact,
		AdminId:    o.AdminId.String(),
		IsActive:   o.IsActive,
		IsVerified: o.IsVerified,
		CreatedAt:  fmtTime(o.CreatedAt),
	}
}

func mapUser(u *entity.User) *entity.UserOutputModel {
	return &entity.UserOutputModel{
		Id:             u.Id.String(),
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		OrganizationId: u.OrganizationId.String(),
		ManagerId:      fmtUUIDPtr(u.ManagerId),
		Permissions:    u.Permissions,
		IsActive:       u.IsActive,
		CreatedAt:      fmtTime(u.CreatedAt),
	}
}

func mapVendor(v *entity.Vendor) *entity.VendorOutputModel {
	return &entity.VendorOutputModel{
		Id:             v.Id.String(),
		Email:          v.Email,
		Name:           v.Name,
		Specialization: v.Specialization,
		Location:       v.Location,
		Rating:         v.Rating,
		CompletedJobs:  v.CompletedJobs,
		IsActive:       v.IsActive,
		CreatedAt:      fmtTime(v.CreatedAt),
	}
}

func mapRFPRequest(r *entity.RFPRequest) *entity.RFPOutputModel {
	return &entity.RFPOutputModel{
		Id:              r.Id.String(),
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Urgency:         r.Urgency,
		BudgetEstimate:  r.BudgetEstimate.String(),
		Justification:   r.Justification,
		Status:          r.Status,
		RequestedById:   r.RequestedById.String(),
		OrganizationId:  r.OrganizationId.String(),
		ManagerId:       r.ManagerId.String(),
		MarketRequestId: fmtUUIDPtr(r.MarketRequestId),
		ReviewNote:      r.ReviewNote,
		ReviewedAt:      fmtTimePtr(r.ReviewedAt),
		CreatedAt:       fmtTime(r.CreatedAt),
	}
}

func mapRFPRequests(requests []entity.RFPRequest) []entity.RFPOutputModel {
	s := make([]entity.RFPOutputModel, 0)
	for _, r := range requests {
		s = append(s, *mapRFPRequest(&r))
	}

	return s
}

func mapMarketRequest(m *entity.MarketRequest) *entity.MarketOutputModel {
	return &entity.MarketOutputModel{
		Id:                 m.Id.String(),
		Title:              m.Title,
		Description:        m.Description,
		Category:           m.Category,
		Specifications:     m.Specifications,
		Status:             m.Status,
		RFPRequestId:       m.RFPRequestId.String(),
		CreatedById:        m.CreatedById.String(),
		OrganizationId:     m.OrganizationId.String(),
		Quantity:           m.Quantity,
		MaxBudget:          m.MaxBudget.String(),
		Currency:           m.Currency,
		Deadline:           fmtTime(m.Deadline),
		DeliveryLocation:   m.DeliveryLocation,
		Requirements:       m.Requirements,
		EvaluationCriteria: m.EvaluationCriteria,
		ProposalsCount:     m.ProposalsCount,
		ViewsCount:         m.ViewsCount,
		WinningProposalId:  fmtUUIDPtr(m.WinningProposalId),
		CancellationReason: m.CancellationReason,
		ClosedAt:           fmtTimePtr(m.ClosedAt),
		AwardedAt:          fmtTimePtr(m.AwardedAt),
		CreatedAt:          fmtTime(m.CreatedAt),
	}
}

func mapMarketRequests(requests []entity.MarketRequest) []entity.MarketOutputModel {
	s := make([]entity.MarketOutputModel, 0)
	for _, m := range requests {
		s = append(s, *mapMarketRequest(&m))
	}

	return s
}

func mapProposal(p *entity.Proposal) *entity.ProposalOutputModel {
	return &entity.ProposalOutputModel{
		Id:              p.Id.String(),
		MarketRequestId: p.MarketRequestId.String(),
		VendorId:        p.VendorId.String(),
		ProposedItem:    p.ProposedItem,
		Quantity:        p.Quantity,
		UnitPrice:       p.UnitPrice.String(),
		TotalPrice:      p.TotalPrice.String(),
		Currency:        p.Currency,
		DeliveryDate:    fmtTime(p.DeliveryDate),
		Status:          p.Status,
		IsEditable:      p.IsEditable(),
		CanBeWithdrawn:  p.CanBeWithdrawn(),
		Evaluation:      p.Evaluation,
		AIEvaluation:    p.AIEvaluation,
		ComplianceDocs:  p.ComplianceDocs,
		VendorNotes:     p.VendorNotes,
		ManagerNotes:    p.ManagerNotes,
		RejectionReason: p.RejectionReason,
		SubmittedAt:     fmtTimePtr(p.SubmittedAt),
		ReviewedAt:      fmtTimePtr(p.ReviewedAt),
		AcceptedAt:      fmtTimePtr(p.AcceptedAt),
		RejectedAt:      fmtTimePtr(p.RejectedAt),
		WithdrawnAt:     fmtTimePtr(p.WithdrawnAt),
		CreatedAt:       fmtTime(p.CreatedAt),
	}
}

func mapProposals(proposals []entity.Proposal) []entity.ProposalOutputModel {
	s := make([]entity.ProposalOutputModel, 0)
	for _, p := range proposals {
		s = append(s, *mapProposal(&p))
	}

	return s
}
