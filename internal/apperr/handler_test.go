package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error, dev bool) (*httptest.ResponseRecorder, errorEnvelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req_test")

	NewHTTPErrorHandler(zerolog.Nop(), dev)(err, c)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandlerRendersTaxonomyError(t *testing.T) {
	rec, env := render(t, NotFound("category not found"), false)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "error", env.Status)
	require.Equal(t, CodeNotFound, env.Error.Code)
	require.Equal(t, "category not found", env.Error.Message)
	require.Equal(t, "req_test", env.RequestID)
}

func TestHandlerMapsEchoHTTPError(t *testing.T) {
	rec, env := render(t, echo.NewHTTPError(http.StatusNotFound, "no such route"), false)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, CodeNotFound, env.Error.Code)
	require.Equal(t, "no such route", env.Error.Message)
}

func TestHandlerHidesInternalDetailInProd(t *testing.T) {
	rec, env := render(t, errors.New("pq: connection refused"), false)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, CodeInternal, env.Error.Code)
	require.Equal(t, "internal server error", env.Error.Message)
	require.Empty(t, env.Error.Details)
}

func TestHandlerExposesInternalDetailInDev(t *testing.T) {
	_, env := render(t, errors.New("pq: connection refused"), true)
	require.Equal(t, []string{"pq: connection refused"}, env.Error.Details)
}

func TestValidationCarriesDetails(t *testing.T) {
	rec, env := render(t, Validation("", "name is required", "phone is required"), false)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeValidation, env.Error.Code)
	require.Equal(t, []string{"name is required", "phone is required"}, env.Error.Details)
}
