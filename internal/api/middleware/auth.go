package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// Context keys set by Auth.
const (
	UserIDKey            = "user_id"
	TemporaryPasswordKey = "temporary_password"
	TokenKey             = "token"
)

// TokenVerifier checks a bearer token and returns its session.
type TokenVerifier interface {
	Verify(token string) (*domain.Session, error)
}

// Auth validates the bearer token and injects the session into context.
func Auth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			token := strings.TrimSpace(parts[1])

			session, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(UserIDKey, session.UserID)
			c.Set(TemporaryPasswordKey, session.TemporaryPassword)
			c.Set(TokenKey, token)

			return next(c)
		}
	}
}
