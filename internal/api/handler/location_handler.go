package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/api/metrics"
	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

type LocationHandler struct {
	service ports.LocationService
}

func NewLocationHandler(service ports.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// Track reverse-geocodes a coordinate and reports the current weather there.
//
// @Summary      Track location
// @Tags         location
// @Produce      json
// @Param        lat  query  number  true  "Latitude"
// @Param        lng  query  number  true  "Longitude"
// @Success      200  {object}  domain.LocationReport
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /location/track [get]
func (h *LocationHandler) Track(c echo.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.LocationLookupDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
	}()

	var lat, lng float64
	if err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &lat).
		MustFloat64("lng", &lng).
		BindError(); err != nil {
		return fmt.Errorf("%w: latitude and longitude are required", domain.ErrInvalidInput)
	}

	report, err := h.service.Track(c.Request().Context(), lat, lng)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
