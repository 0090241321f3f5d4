package controller

import (
	"net/http"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

type identityRoutesHandler struct {
	identityService service.Identity
	validate        *validator.Validate
}

func newIdentityRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *identityRoutesHandler {
	h := &identityRoutesHandler{identityService: services.Identity, validate: v}

	outer.GET("/organizations/:organizationId", h.GetOrganization)
	outer.POST("/users", h.PostUser)
	outer.PATCH("/users/:userId", h.PatchUser)
	outer.GET("/vendors/:vendorId", h.GetVendor)

	return h
}

// /organizations/:organizationId
func (h *identityRoutesHandler) GetOrganization(c echo.Context) error {
	id, err := parseIdParam(c, "organizationId")
	if err != nil {
		return err
	}

	org, err := h.identityService.GetOrganizationById(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, org)
}

type postUserInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Name      string `json:"name" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,oneof=admin manager user"`
	ManagerId string `json:"managerId" validate:"omitempty,uuid"`
}

// /users
func (h *identityRoutesHandler) PostUser(c echo.Context) error {
	var input postUserInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.CreateUserInput{
		Email: input.Email, Password: input.Password, Name: input.Name, Role: input.Role,
	}
	if input.ManagerId != "" {
		managerId, err := uuid.Parse(input.ManagerId)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{"'managerId' is not a valid id"})
		}
		model.ManagerId = &managerId
	}

	user, err := h.identityService.CreateUser(c.Request().Context(), principalFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

type patchUserInput struct {
	Role      *string `json:"role" validate:"omitempty,oneof=admin manager user"`
	ManagerId *string `json:"managerId" validate:"omitempty,uuid"`
	IsActive  *bool   `json:"isActive"`
}

// /users/:userId
func (h *identityRoutesHandler) PatchUser(c echo.Context) error {
	userId, err := parseIdParam(c, "userId")
	if err != nil {
		return err
	}

	var input patchUserInput
	if err := c.Bind(&input); err != nil {
		if e := respondBindError(c); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)})
	}

	model := &entity.UpdateUserInput{Role: input.Role, IsActive: input.IsActive}
	if input.ManagerId != nil {
		managerId, err := uuid.Parse(*input.ManagerId)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{"'managerId' is not a valid id"})
		}
		model.ManagerId = &managerId
	}

	user, err := h.identityService.UpdateUser(c.Request().Context(), principalFrom(c), userId, model)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// /vendors/:vendorId
func (h *identityRoutesHandler) GetVendor(c echo.Context) error {
	id, err := parseIdParam(c, "vendorId")
	if err != nil {
		return err
	}

	vendor, err := h.identityService.GetVendorById(c.Request().Context(), principalFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, vendor)
}
