package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/api/middleware"
	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// ctxUserID returns the authenticated user id set by middleware.Auth.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.UserIDKey).(string)
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// ctxToken returns the raw bearer token; services re-verify it themselves.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.TokenKey).(string)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}
