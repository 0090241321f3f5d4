package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

type marketRequestRoutesHandler struct {
	marketService service.MarketRequest
	validate      *validator.Validate
}

func newMarketRequestRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *marketRequestRoutesHandler {
	h := &marketRequestRoutesHandler{marketService: services.MarketRequest, validate: v}

	outer.GET("/market-requests", h.GetMarketRequests)
	outer.GET("/market-requests/my", h.GetOrganizationMarketRequests)
	outer.GET("/market-requests/:marketRequestId", h.GetMarketRequest)
	outer.PATCH("/market-requests/:marketRequestId", h.PatchMarketRequest)
	outer.POST("/market-requests/:marketRequestId/close", h.CloseMarketRequest)
	outer.POST("/market-requests/:marketRequestId/award", h.AwardMarketRequest)
	outer.POST("/market-requests/:marketRequestId/interest", h.PostInterest)
	outer.GET("/market-requests/:marketRequestId/interest", h.GetInterest)

	return h
}

type getMarketRequestsInput struct {
	Limit     int32  `query:"limit" validate:"gte=0,lte=50"`
	Offset    int32  `query:"offset" validate:"gte=0"`
	Category  string `query:"category" validate:"omitempty,max=100"`
	MaxBudget string `query:"max_budget"`
}

// /market-requests
func (h *marketRequestRoutesHandler) GetMarketRequests(c echo.Context) error {
	input := getMarketRequestsInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	filter := &entity.MarketFilter{Category: input.Category}
	if input.MaxBudget != "" {
		maxBudget, err := parseDecimal(input.MaxBudget, "max_budget")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		filter.MaxBudget = &maxBudget
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	requests, err := h.marketService.BrowseOpenMarketRequests(c.Request().Context(), principalFrom(c), filter, pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, requests)
}

type listInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=50"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

// /market-requests/my
func (h *marketRequestRoutesHandler) GetOrganizationMarketRequests(c echo.Context) error {
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
	requests, err := h.marketService.GetOrganizationMarketRequests(c.Request().Context(), principalFrom(c), pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, requests)
}

// /market-requests/:marketRequestId
func (h *marketRequestRoutesHandler) GetMarketRequest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	m, err := h.marketService.GetMarketRequestById(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, m)
}

type patchMarketInput struct {
	Title              *string                    `json:"title" validate:"omitempty,max=200"`
	Description        *string                    `json:"description" validate:"omitempty,max=2000"`
	Specifications     *string                    `json:"specifications" validate:"omitempty,max=5000"`
	Quantity           *int                       `json:"quantity" validate:"omitempty,gte=1"`
	MaxBudget          *string                    `json:"maxBudget"`
	Currency           *string                    `json:"currency" validate:"omitempty,len=3"`
	Deadline           *string                    `json:"deadline"`
	DeliveryLocation   *string                    `json:"deliveryLocation" validate:"omitempty,max=300"`
	Requirements       []string                   `json:"requirements" validate:"dive,max=500"`
	EvaluationCriteria []evaluationCriterionInput `json:"evaluationCriteria" validate:"dive"`
}

// /market-requests/:marketRequestId
func (h *marketRequestRoutesHandler) PatchMarketRequest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	var input patchMarketInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.UpdateMarketInput{
		Title: input.Title, Description: input.Description, Specifications: input.Specifications,
		Quantity: input.Quantity, Currency: input.Currency, DeliveryLocation: input.DeliveryLocation,
		Requirements: input.Requirements,
	}
	if input.MaxBudget != nil {
		maxBudget, err := parseDecimal(*input.MaxBudget, "maxBudget")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		model.MaxBudget = &maxBudget
	}
	if input.Deadline != nil {
		deadline, err := parseTime(*input.Deadline, "deadline")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		model.Deadline = &deadline
	}
	if input.EvaluationCriteria != nil {
		criteria := make([]entity.EvaluationCriterion, 0, len(input.EvaluationCriteria))
		for _, crit := range input.EvaluationCriteria {
			criteria = append(criteria, entity.EvaluationCriterion{Criterion: crit.Criterion, Weight: crit.Weight})
		}
		model.EvaluationCriteria = criteria
	}

	m, err := h.marketService.UpdateMarketRequest(c.Request().Context(), principalFrom(c), id, model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, m)
}

type closeMarketInput struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// /market-requests/:marketRequestId/close
func (h *marketRequestRoutesHandler) CloseMarketRequest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	var input closeMarketInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	m, err := h.marketService.CloseMarketRequest(c.Request().Context(), principalFrom(c), id, input.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, m)
}

type awardMarketInput struct {
	ProposalId string `json:"proposalId" validate:"required,uuid"`
}

// /market-requests/:marketRequestId/award
func (h *marketRequestRoutesHandler) AwardMarketRequest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	var input awardMarketInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	proposalId, err := uuid.Parse(input.ProposalId)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"'proposalId' is not a valid id"})
	}

	m, err := h.marketService.AwardMarketRequest(c.Request().Context(), principalFrom(c), id, proposalId)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, m)
}

type postInterestInput struct {
	IsInterested bool `json:"isInterested"`
}

// /market-requests/:marketRequestId/interest
func (h *marketRequestRoutesHandler) PostInterest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	var input postInterestInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.marketService.MarkInterest(c.Request().Context(), principalFrom(c), id, input.IsInterested); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// /market-requests/:marketRequestId/interest
func (h *marketRequestRoutesHandler) GetInterest(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	interest, err := h.marketService.GetVendorInterest(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, interest)
}
