package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/jobportal/jobboard-api/docs"
	"github.com/jobportal/jobboard-api/internal/api/handler"
	"github.com/jobportal/jobboard-api/internal/api/middleware"
	"github.com/jobportal/jobboard-api/internal/core/ports"
	infrahttp "github.com/jobportal/jobboard-api/internal/infrastructure/http"
	"github.com/jobportal/jobboard-api/internal/infrastructure/http/handlers"
)

// cvBodyLimit leaves room for multipart framing around a 5 MiB file.
const cvBodyLimit = "6M"

// Services are the use-cases the router exposes.
type Services struct {
	Auth     ports.AuthService
	CV       ports.CVService
	Location ports.LocationService
	Tokens   middleware.TokenVerifier
}

// Options tune the HTTP surface. A nil Registerer disables request metrics
// and /metrics.
type Options struct {
	CORSOrigins  []string
	HealthChecks map[string]handlers.Check
	Registerer   prometheus.Registerer
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if opts.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "jobboard",
			Registerer: opts.Registerer,
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health checks and docs (no auth required) ---
	infrahttp.RegisterHealth(e, opts.HealthChecks)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	authenticated := middleware.Auth(svc.Tokens)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.GET("/me", authHandler.Me, authenticated)
	auth.POST("/change-password", authHandler.ChangePassword, authenticated)

	// --- CV routes: a temporary password must be rotated first ---
	cvHandler := handler.NewCVHandler(svc.CV)
	cv := api.Group("/cv", authenticated, middleware.RequireRotatedPassword())
	cv.POST("", cvHandler.Upload, echomiddleware.BodyLimit(cvBodyLimit))
	cv.GET("/:userId", cvHandler.Info)
	cv.DELETE("/:userId", cvHandler.Delete)

	// --- Location ---
	locationHandler := handler.NewLocationHandler(svc.Location)
	api.GET("/location/track", locationHandler.Track)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func corsOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
