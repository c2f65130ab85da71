package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobboard-api/internal/api/handler"
	"github.com/jobportal/jobboard-api/internal/core/domain"
)

func renderError(t *testing.T, method string, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if rec.Body.Len() == 0 {
		return rec, nil
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "not authenticated"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{domain.ErrRateLimited, http.StatusBadRequest, rateLimitedMsg},
		{fmt.Errorf("%w: smtp: 421", domain.ErrMailDelivery), http.StatusInternalServerError, "error sending email"},
		{domain.ErrPasswordChangeRequired, http.StatusForbidden, "password change required"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{domain.ErrCVNotFound, http.StatusNotFound, "no CV found for this user"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "only PDF, DOC, and DOCX allowed"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file too large"},
		{domain.ErrLocationUnconfigured, http.StatusInternalServerError, "location lookup is not configured"},
		{fmt.Errorf("%w: status 503", domain.ErrLocationUnavailable), http.StatusBadGateway, "location provider unavailable"},
		{fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input: no file uploaded"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec, body := renderError(t, http.MethodPost, tc.err)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestHTTPErrorHandler_ValidationError(t *testing.T) {
	err := &handler.ValidationError{Fields: []handler.FieldError{
		{Field: "email", Message: "please include a valid email"},
	}}

	rec, body := renderError(t, http.MethodPost, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", body["error"])

	fields, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].(map[string]any)["field"])
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec, body := renderError(t, http.MethodGet, echo.NewHTTPError(http.StatusUnauthorized, "token expired"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired", body["error"])
}

func TestHTTPErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	rec, body := renderError(t, http.MethodGet, errors.New("mongo: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	rec, body := renderError(t, http.MethodHead, domain.ErrCVNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, body)
}
