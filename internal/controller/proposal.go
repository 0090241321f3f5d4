package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

type proposalRoutesHandler struct {
	proposalService service.Proposal
	validate        *validator.Validate
}

func newProposalRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *proposalRoutesHandler {
	h := &proposalRoutesHandler{proposalService: services.Proposal, validate: v}

	outer.POST("/proposals", h.PostProposal)
	outer.GET("/proposals/my", h.GetVendorProposals)
	outer.GET("/proposals/:proposalId", h.GetProposal)
	outer.PATCH("/proposals/:proposalId", h.PatchProposal)
	outer.DELETE("/proposals/:proposalId", h.DeleteProposal)
	outer.POST("/proposals/:proposalId/submit", h.SubmitProposal)
	outer.POST("/proposals/:proposalId/withdraw", h.WithdrawProposal)
	outer.POST("/proposals/:proposalId/evaluate", h.EvaluateProposal)
	outer.POST("/proposals/:proposalId/accept", h.AcceptProposal)
	outer.POST("/proposals/:proposalId/reject", h.RejectProposal)
	outer.GET("/market-requests/:marketRequestId/proposals", h.GetMarketRequestProposals)

	return h
}

type postProposalInput struct {
	MarketRequestId string   `json:"marketRequestId" validate:"required,uuid"`
	ProposedItem    string   `json:"proposedItem" validate:"required,max=500"`
	Quantity        int      `json:"quantity" validate:"required,gte=1"`
	UnitPrice       string   `json:"unitPrice" validate:"required"`
	Currency        string   `json:"currency" validate:"required,len=3"`
	DeliveryDate    string   `json:"deliveryDate" validate:"required"`
	ComplianceDocs  []string `json:"complianceDocuments" validate:"dive,max=300"`
	VendorNotes     string   `json:"vendorNotes" validate:"max=2000"`
}

// /proposals
func (h *proposalRoutesHandler) PostProposal(c echo.Context) error {
	var input postProposalInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	marketRequestId, err := uuid.Parse(input.MarketRequestId)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"'marketRequestId' is not a valid id"})
	}
	unitPrice, err := parseDecimal(input.UnitPrice, "unitPrice")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	}
	deliveryDate, err := parseTime(input.DeliveryDate, "deliveryDate")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	}

	model := &entity.CreateProposalInput{
		MarketRequestId: marketRequestId,
		ProposedItem:    input.ProposedItem,
		Quantity:        input.Quantity,
		UnitPrice:       unitPrice,
		Currency:        input.Currency,
		DeliveryDate:    deliveryDate,
		ComplianceDocs:  input.ComplianceDocs,
		VendorNotes:     input.VendorNotes,
	}

	proposal, err := h.proposalService.CreateProposal(c.Request().Context(), principalFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, proposal)
}

// /proposals/my
func (h *proposalRoutesHandler) GetVendorProposals(c echo.Context) error {
	input := listInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	proposals, err := h.proposalService.GetVendorProposals(c.Request().Context(), principalFrom(c), pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposals)
}

// /market-requests/:marketRequestId/proposals
func (h *proposalRoutesHandler) GetMarketRequestProposals(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	input := listInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	proposals, err := h.proposalService.GetProposalsForMarketRequest(c.Request().Context(), principalFrom(c), id, pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposals)
}

// /proposals/:proposalId
func (h *proposalRoutesHandler) GetProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	proposal, err := h.proposalService.GetProposalById(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

type patchProposalInput struct {
	ProposedItem   *string  `json:"proposedItem" validate:"omitempty,max=500"`
	Quantity       *int     `json:"quantity" validate:"omitempty,gte=1"`
	UnitPrice      *string  `json:"unitPrice"`
	Currency       *string  `json:"currency" validate:"omitempty,len=3"`
	DeliveryDate   *string  `json:"deliveryDate"`
	ComplianceDocs []string `json:"complianceDocuments" validate:"dive,max=300"`
	VendorNotes    *string  `json:"vendorNotes" validate:"omitempty,max=2000"`
}

// /proposals/:proposalId
func (h *proposalRoutesHandler) PatchProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	var input patchProposalInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.UpdateProposalInput{
		ProposedItem: input.ProposedItem, Quantity: input.Quantity, Currency: input.Currency,
		ComplianceDocs: input.ComplianceDocs, VendorNotes: input.VendorNotes,
	}
	if input.UnitPrice != nil {
		unitPrice, err := parseDecimal(*input.UnitPrice, "unitPrice")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		model.UnitPrice = &unitPrice
	}
	if input.DeliveryDate != nil {
		deliveryDate, err := parseTime(*input.DeliveryDate, "deliveryDate")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		model.DeliveryDate = &deliveryDate
	}

	proposal, err := h.proposalService.UpdateProposal(c.Request().Context(), principalFrom(c), id, model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

// /proposals/:proposalId
func (h *proposalRoutesHandler) DeleteProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	if err := h.proposalService.DeleteProposal(c.Request().Context(), principalFrom(c), id); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// /proposals/:proposalId/submit
func (h *proposalRoutesHandler) SubmitProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	proposal, err := h.proposalService.SubmitProposal(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

type withdrawProposalInput struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// /proposals/:proposalId/withdraw
func (h *proposalRoutesHandler) WithdrawProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	var input withdrawProposalInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	proposal, err := h.proposalService.WithdrawProposal(c.Request().Context(), principalFrom(c), id, input.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

type evaluateProposalInput struct {
	Scores []criterionScoreInput `json:"scores" validate:"required,min=1,dive"`
}

type criterionScoreInput struct {
	Criterion string  `json:"criterion" validate:"required,max=100"`
	Score     float64 `json:"score" validate:"gte=0"`
	MaxScore  float64 `json:"maxScore" validate:"required,gt=0"`
}

// /proposals/:proposalId/evaluate
func (h *proposalRoutesHandler) EvaluateProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	var input evaluateProposalInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	scores := make([]entity.CriterionScore, 0, len(input.Scores))
	for _, s := range input.Scores {
		scores = append(scores, entity.CriterionScore{Criterion: s.Criterion, Score: s.Score, MaxScore: s.MaxScore})
	}

	proposal, err := h.proposalService.EvaluateProposal(c.Request().Context(), principalFrom(c), id, scores)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

// /proposals/:proposalId/accept
func (h *proposalRoutesHandler) AcceptProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	proposal, err := h.proposalService.AcceptProposal(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

type rejectProposalInput struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// /proposals/:proposalId/reject
func (h *proposalRoutesHandler) RejectProposal(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	var input rejectProposalInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	proposal, err := h.proposalService.RejectProposal(c.Request().Context(), principalFrom(c), id, input.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}
