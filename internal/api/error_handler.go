package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/api/handler"
	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Error  string               `json:"error"`
	Errors []handler.FieldError `json:"errors"`
}

// rateLimitedMsg is the wording the web client shows verbatim.
const rateLimitedMsg = "You can only request a password reset once per day. Please try again tomorrow."

// errorStatuses maps domain errors to status codes. Order matters only for
// errors that wrap more than one sentinel.
var errorStatuses = []struct {
	err  error
	code int
}{
	{domain.ErrMailDelivery, http.StatusInternalServerError},
	{domain.ErrLocationUnconfigured, http.StatusInternalServerError},
	{domain.ErrLocationUnavailable, http.StatusBadGateway},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrRateLimited, http.StatusBadRequest},
	{domain.ErrPasswordChangeRequired, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrCVNotFound, http.StatusNotFound},
	{domain.ErrUnsupportedFileType, http.StatusBadRequest},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures with their per-field messages.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, validationErrorResponse{Error: "validation failed", Errors: ve.Fields})
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range errorStatuses {
		if !errors.Is(err, m.err) {
			continue
		}
		switch {
		case m.code >= http.StatusInternalServerError:
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
			return m.code, m.err.Error()
		case errors.Is(m.err, domain.ErrRateLimited):
			return m.code, rateLimitedMsg
		case errors.Is(m.err, domain.ErrInvalidInput):
			// Carries the field detail added by the service.
			return m.code, err.Error()
		default:
			return m.code, m.err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
