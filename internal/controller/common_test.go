package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"procurement-marketplace-api/internal/service"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestRespondError_StatusByKind(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked account", service.ErrAccountLocked, http.StatusUnauthorized},
		{"authorization", service.ErrNotManager, http.StatusForbidden},
		{"not found", service.ErrProposalNotFound, http.StatusNotFound},
		{"state", service.ErrMarketNotOpen, http.StatusConflict},
		{"award race", service.ErrMarketAlreadyAwarded, http.StatusConflict},
		{"conflict", service.ErrDuplicateProposal, http.StatusConflict},
		{"validation", service.ErrValidation, http.StatusBadRequest},
		{"evaluation", service.ErrEvaluation, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)

			require.NoError(t, respondError(c, tc.err))
			require.Equal(t, tc.status, rec.Code)
			require.Contains(t, rec.Body.String(), "reason")
		})
	}
}

func TestRespondError_UnknownErrorIsOpaque(t *testing.T) {
	c, rec := newTestContext(t)

	err := respondError(c, echo.ErrInternalServerError)

	// The original error is propagated for logging, never serialized.
	require.Error(t, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal error")
	require.NotContains(t, rec.Body.String(), echo.ErrInternalServerError.Error())
}

func TestParseIdParam(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetParamNames("requestId")
	c.SetParamValues("0d9f7a44-9a30-4de9-88a2-16b33b2506cd")

	id, err := parseIdParam(c, "requestId")
	require.NoError(t, err)
	require.Equal(t, "0d9f7a44-9a30-4de9-88a2-16b33b2506cd", id.String())
}

func TestParseIdParam_Invalid(t *testing.T) {
	c, rec := newTestContext(t)
	c.SetParamNames("requestId")
	c.SetParamValues("not-a-uuid")

	_, err := parseIdParam(c, "requestId")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("1799.99", "maxBudget")
	require.NoError(t, err)
	require.Equal(t, "1799.99", d.String())

	_, err = parseDecimal("lots", "maxBudget")
	require.Error(t, err)
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2025-06-29T00:00:00Z", "deadline")
	require.NoError(t, err)
	require.Equal(t, 2025, ts.Year())

	_, err = parseTime("tomorrow", "deadline")
	require.Error(t, err)
}
