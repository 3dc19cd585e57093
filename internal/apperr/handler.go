package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorEnvelope is the wire shape of every error response.
type errorEnvelope struct {
	Status    string `json:"status"`
	Error     *Error `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// NewHTTPErrorHandler returns an echo error handler rendering the taxonomy.
// Unhandled errors collapse to an opaque internal-error code; the underlying
// message is exposed only in dev so production responses never leak internals.
func NewHTTPErrorHandler(log zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := normalize(err, dev)
		if appErr.Status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		payload := errorEnvelope{Status: "error", Error: appErr, RequestID: requestID(c)}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.Status)
			return
		}
		_ = c.JSON(appErr.Status, payload)
	}
}

func normalize(err error, dev bool) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok && s != "" {
			msg = s
		}
		return &Error{Status: httpErr.Code, Code: codeForStatus(httpErr.Code), Message: msg}
	}

	out := Internal("")
	if dev {
		out.Details = []string{err.Error()}
	}
	return out
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return c.Request().Header.Get("X-Request-ID")
}
