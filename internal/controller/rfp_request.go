package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

type rfpRequestRoutesHandler struct {
	rfpService service.RFPRequest
	validate   *validator.Validate
}

func newRFPRequestRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *rfpRequestRoutesHandler {
	h := &rfpRequestRoutesHandler{rfpService: services.RFPRequest, validate: v}

	outer.POST("/rfp-requests", h.PostRFPRequest)
	outer.GET("/rfp-requests", h.GetRFPRequests)
	outer.GET("/rfp-requests/:requestId", h.GetRFPRequest)
	outer.PATCH("/rfp-requests/:requestId", h.PatchRFPRequest)
	outer.DELETE("/rfp-requests/:requestId", h.DeleteRFPRequest)
	outer.POST("/rfp-requests/:requestId/review", h.ReviewRFPRequest)
	outer.POST("/rfp-requests/:requestId/convert", h.ConvertRFPRequest)

	return h
}

type postRFPInput struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"required,max=2000"`
	Category       string `json:"category" validate:"required,max=100"`
	Urgency        string `json:"urgency" validate:"required,oneof=low medium high critical"`
	BudgetEstimate string `json:"budgetEstimate" validate:"required"`
	Justification  string `json:"justification" validate:"max=2000"`
	ManagerId      string `json:"managerId" validate:"omitempty,uuid"`
}

// /rfp-requests
func (h *rfpRequestRoutesHandler) PostRFPRequest(c echo.Context) error {
	var input postRFPInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	budget, err := parseDecimal(input.BudgetEstimate, "budgetEstimate")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	}

	model := &entity.CreateRFPInput{
		Title: input.Title, Description: input.Description, Category: input.Category,
		Urgency: input.Urgency, BudgetEstimate: budget, Justification: input.Justification,
	}
	if input.ManagerId != "" {
		managerId, err := uuid.Parse(input.ManagerId)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{"'managerId' is not a valid id"})
		}
		model.ManagerId = managerId
	}

	req, err := h.rfpService.CreateRFPRequest(c.Request().Context(), principalFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, req)
}

type getRFPRequestsInput struct {
	Limit  int32  `query:"limit" validate:"gte=0,lte=50"`
	Offset int32  `query:"offset" validate:"gte=0"`
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected needs_clarification converted_to_market"`
}

// /rfp-requests
func (h *rfpRequestRoutesHandler) GetRFPRequests(c echo.Context) error {
	input := getRFPRequestsInput{Limit: defaultLimit, Offset: defaultOffset}
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
	requests, err := h.rfpService.GetOrganizationRFPRequests(c.Request().Context(), principalFrom(c), input.Status, pg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, requests)
}

// /rfp-requests/:requestId
func (h *rfpRequestRoutesHandler) GetRFPRequest(c echo.Context) error {
	id, err := parseIdParam(c, "requestId")
	if err != nil {
		return err
	}

	req, err := h.rfpService.GetRFPRequestById(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, req)
}

type patchRFPInput struct {
	Title          *string `json:"title" validate:"omitempty,max=200"`
	Description    *string `json:"description" validate:"omitempty,max=2000"`
	Category       *string `json:"category" validate:"omitempty,max=100"`
	Urgency        *string `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
	BudgetEstimate *string `json:"budgetEstimate"`
	Justification  *string `json:"justification" validate:"omitempty,max=2000"`
}

// /rfp-requests/:requestId
func (h *rfpRequestRoutesHandler) PatchRFPRequest(c echo.Context) error {
	id, err := parseIdParam(c, "requestId")
	if err != nil {
		return err
	}

	var input patchRFPInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.UpdateRFPInput{
		Title: input.Title, Description: input.Description, Category: input.Category,
		Urgency: input.Urgency, Justification: input.Justification,
	}
	if input.BudgetEstimate != nil {
		budget, err := parseDecimal(*input.BudgetEstimate, "budgetEstimate")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		}
		model.BudgetEstimate = &budget
	}

	req, err := h.rfpService.UpdateRFPRequest(c.Request().Context(), principalFrom(c), id, model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, req)
}

// /rfp-requests/:requestId
func (h *rfpRequestRoutesHandler) DeleteRFPRequest(c echo.Context) error {
	id, err := parseIdParam(c, "requestId")
	if err != nil {
		return err
	}

	if err := h.rfpService.DeleteRFPRequest(c.Request().Context(), principalFrom(c), id); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type reviewRFPInput struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected needs_clarification"`
	Note     string `json:"note" validate:"max=2000"`
}

// /rfp-requests/:requestId/review
func (h *rfpRequestRoutesHandler) ReviewRFPRequest(c echo.Context) error {
	id, err := parseIdParam(c, "requestId")
	if err != nil {
		return err
	}

	var input reviewRFPInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	req, err := h.rfpService.ReviewRFPRequest(c.Request().Context(), principalFrom(c), id, input.Decision, input.Note)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, req)
}

type convertRFPInput struct {
	Title              string                       `json:"title" validate:"omitempty,max=200"`
	Description        string                       `json:"description" validate:"omitempty,max=2000"`
	Specifications     string                       `json:"specifications" validate:"max=5000"`
	Quantity           int                          `json:"quantity" validate:"required,gte=1"`
	MaxBudget          string                       `json:"maxBudget" validate:"required"`
	Currency           string                       `json:"currency" validate:"required,len=3"`
	Deadline           string                       `json:"deadline" validate:"required"`
	DeliveryLocation   string                       `json:"deliveryLocation" validate:"max=300"`
	Requirements       []string                     `json:"requirements" validate:"dive,max=500"`
	EvaluationCriteria []evaluationCriterionInput   `json:"evaluationCriteria" validate:"dive"`
}

type evaluationCriterionInput struct {
	Criterion string `json:"criterion" validate:"required,max=100"`
	Weight    int    `json:"weight" validate:"required,gte=1,lte=100"`
}

// /rfp-requests/:requestId/convert
func (h *rfpRequestRoutesHandler) ConvertRFPRequest(c echo.Context) error {
	id, err := parseIdParam(c, "requestId")
	if err != nil {
		return err
	}

	var input convertRFPInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	maxBudget, err := parseDecimal(input.MaxBudget, "maxBudget")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	}
	deadline, err := parseTime(input.Deadline, "deadline")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
	}

	criteria := make([]entity.EvaluationCriterion, 0, len(input.EvaluationCriteria))
	for _, crit := range input.EvaluationCriteria {
		criteria = append(criteria, entity.EvaluationCriterion{Criterion: crit.Criterion, Weight: crit.Weight})
	}

	model := &entity.ConvertToMarketInput{
		Title: input.Title, Description: input.Description, Specifications: input.Specifications,
		Quantity: input.Quantity, MaxBudget: maxBudget, Currency: input.Currency,
		Deadline: deadline, DeliveryLocation: input.DeliveryLocation,
		Requirements: input.Requirements, EvaluationCriteria: criteria,
	}

	market, err := h.rfpService.ConvertToMarketRequest(c.Request().Context(), principalFrom(c), id, model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, market)
}
