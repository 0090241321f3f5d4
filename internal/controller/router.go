package controller

import (
	"procurement-marketplace-api/internal/service"
	"procurement-marketplace-api/pkg/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, tokens *jwt.Manager) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newAuthRoutesHandler(api, services, validate)

	protected := api.Group("", authMiddleware(tokens))
	newIdentityRoutesHandler(protected, services, validate)
	newRFPRequestRoutesHandler(protected, services, validate)
	newMarketRequestRoutesHandler(protected, services, validate)
	newProposalRoutesHandler(protected, services, validate)
	newEvaluationRoutesHandler(protected, services)
}
