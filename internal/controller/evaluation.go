package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/service"

	"github.com/labstack/echo"
)

type evaluationRoutesHandler struct {
	evaluationService service.Evaluation
}

func newEvaluationRoutesHandler(outer *echo.Group, services *service.Services) *evaluationRoutesHandler {
	h := &evaluationRoutesHandler{evaluationService: services.Evaluation}

	outer.POST("/proposals/:proposalId/evaluate-ai", h.EvaluateProposalWithAI)
	outer.POST("/market-requests/:marketRequestId/evaluate-ai", h.EvaluateMarketRequestProposals)
	outer.GET("/market-requests/:marketRequestId/comparison", h.CompareProposals)

	return h
}

// /proposals/:proposalId/evaluate-ai
func (h *evaluationRoutesHandler) EvaluateProposalWithAI(c echo.Context) error {
	id, err := parseIdParam(c, "proposalId")
	if err != nil {
		return err
	}

	proposal, err := h.evaluationService.EvaluateProposalWithAI(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, proposal)
}

// /market-requests/:marketRequestId/evaluate-ai
func (h *evaluationRoutesHandler) EvaluateMarketRequestProposals(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	result, err := h.evaluationService.EvaluateMarketRequestProposals(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// /market-requests/:marketRequestId/comparison
func (h *evaluationRoutesHandler) CompareProposals(c echo.Context) error {
	id, err := parseIdParam(c, "marketRequestId")
	if err != nil {
		return err
	}

	result, err := h.evaluationService.CompareProposals(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
