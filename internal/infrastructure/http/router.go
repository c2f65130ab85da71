package http

import (
	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/infrastructure/http/handlers"
)

// RegisterHealth mounts the liveness and readiness checks on e. They sit
// outside /api and need no authentication.
func RegisterHealth(e *echo.Echo, checks map[string]handlers.Check) {
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(checks).Readiness)
}
