package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type authRoutesHandler struct {
	identityService service.Identity
	validate        *validator.Validate
}

func newAuthRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *authRoutesHandler {
	h := &authRoutesHandler{identityService: services.Identity, validate: v}

	outer.POST("/auth/organizations", h.RegisterOrganization)
	outer.POST("/auth/vendors", h.RegisterVendor)
	outer.POST("/auth/login", h.Login)

	return h
}

type registerOrganizationInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	Industry      string `json:"industry" validate:"max=100"`
	Address       string `json:"address" validate:"max=300"`
	Contact       string `json:"contact" validate:"max=200"`
	AdminEmail    string `json:"adminEmail" validate:"required,email"`
	AdminPassword string `json:"adminPassword" validate:"required,min=8,max=72"`
	AdminName     string `json:"adminName" validate:"required,max=100"`
}

// /auth/organizations
func (h *authRoutesHandler) RegisterOrganization(c echo.Context) error {
	var input registerOrganizationInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.RegisterOrganizationInput{
		Name: input.Name, Industry: input.Industry, Address: input.Address, Contact: input.Contact,
		AdminEmail: input.AdminEmail, AdminPassword: input.AdminPassword, AdminName: input.AdminName,
	}

	org, err := h.identityService.RegisterOrganization(c.Request().Context(), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, org)
}

type registerVendorInput struct {
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8,max=72"`
	Name           string   `json:"name" validate:"required,max=200"`
	Specialization []string `json:"specialization" validate:"dive,max=100"`
	Location       string   `json:"location" validate:"max=200"`
}

// /auth/vendors
func (h *authRoutesHandler) RegisterVendor(c echo.Context) error {
	var input registerVendorInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.RegisterVendorInput{
		Email: input.Email, Password: input.Password, Name: input.Name,
		Specialization: input.Specialization, Location: input.Location,
	}

	vendor, err := h.identityService.RegisterVendor(c.Request().Context(), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, vendor)
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=user vendor"`
}

type loginOutput struct {
	Token string `json:"token"`
}

// /auth/login
func (h *authRoutesHandler) Login(c echo.Context) error {
	var input = loginInput{Kind: common.KindUser}
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	token, err := h.identityService.Login(c.Request().Context(), input.Email, input.Password, input.Kind)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, loginOutput{Token: token})
}
