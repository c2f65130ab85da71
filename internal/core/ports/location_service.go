package ports

import (
	"context"
	"time"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// WeatherProvider is the upstream geocoding and weather API.
type WeatherProvider interface {
	ReversePlace(ctx context.Context, lat, lng float64) (*domain.Place, error)
	// CurrentWeather returns nil without error when the provider has no data.
	CurrentWeather(ctx context.Context, lat, lng float64) (*domain.Weather, error)
}

// Cache stores opaque values with a TTL. Get returns ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// LocationService reverse-geocodes a coordinate and reports its weather.
type LocationService interface {
	Track(ctx context.Context, lat, lng float64) (*domain.LocationReport, error)
}
