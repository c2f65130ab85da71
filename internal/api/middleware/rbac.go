package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// RequireRotatedPassword refuses sessions that still run on a temporary
// password. Must be mounted after Auth.
func RequireRotatedPassword() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			temporary, ok := c.Get(TemporaryPasswordKey).(bool)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if temporary {
				return domain.ErrPasswordChangeRequired
			}
			return next(c)
		}
	}
}
