package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"procurement-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit  = 20
	defaultOffset = 0
)

type errorResponse struct {
	Reason string `json:"reason"`
}

// respondError translates a service error into a transport status through
// its kind. Specific sentinels that need a distinct status are matched
// before their kind.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountLocked):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrState), errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrEvaluation):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		if e := c.JSON(status, errorResponse{"Internal error"}); e != nil {
			return e
		}

		return err
	}

	return c.JSON(status, errorResponse{err.Error()})
}

func respondBindError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"})
}

func parseIdParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		if jsonErr := c.JSON(http.StatusBadRequest, errorResponse{fmt.Sprintf("'%s' is not a valid id", name)}); jsonErr != nil {
			return uuid.Nil, jsonErr
		}

		return uuid.Nil, err
	}

	return id, nil
}

func parseDecimal(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("'%s' is not a valid decimal number", field)
	}

	return d, nil
}

func parseTime(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s' must be an RFC3339 timestamp", field)
	}

	return t, nil
}

func getAllErrorMessages(err error) string {
	var builder strings.Builder
	for _, fe := range err.(validator.ValidationErrors) {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	if fe.Type() == reflect.TypeOf("") {
		return getMessageForString(fe)
	}

	if fe.Type().Kind() == reflect.Int || fe.Type().Kind() == reflect.Int32 {
		return getMessageForInt(fe)
	}

	return "incorrect value passed"
}

func getMessageForInt(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "email":
		return "should be a valid email address"
	}

	return "incorrect value passed"
}
