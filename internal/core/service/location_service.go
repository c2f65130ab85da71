package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const defaultLocationCacheTTL = 10 * time.Minute

// LocationService resolves coordinates through a WeatherProvider, caching
// reports by coordinate rounded to three decimals (about 100m).
type LocationService struct {
	provider ports.WeatherProvider
	cache    ports.Cache
	ttl      time.Duration
	log      zerolog.Logger
}

func NewLocationService(provider ports.WeatherProvider, cache ports.Cache, ttl time.Duration, log zerolog.Logger) *LocationService {
	if ttl <= 0 {
		ttl = defaultLocationCacheTTL
	}
	return &LocationService{provider: provider, cache: cache, ttl: ttl, log: log}
}

func (s *LocationService) Track(ctx context.Context, lat, lng float64) (*domain.LocationReport, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: latitude and longitude out of range", domain.ErrInvalidInput)
	}

	key := cacheKey(lat, lng)
	if report, ok := s.cached(ctx, key); ok {
		return report, nil
	}

	place, err := s.provider.ReversePlace(ctx, lat, lng)
	if err != nil {
		return nil, upstreamError(err)
	}
	weather, err := s.provider.CurrentWeather(ctx, lat, lng)
	if err != nil {
		return nil, upstreamError(err)
	}

	report := &domain.LocationReport{Location: fillPlace(place), Weather: weather}
	s.store(ctx, key, report)
	return report, nil
}

func (s *LocationService) cached(ctx context.Context, key string) (*domain.LocationReport, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("location cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var report domain.LocationReport
	if err := json.Unmarshal(raw, &report); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding corrupt location cache entry")
		return nil, false
	}
	return &report, true
}

func (s *LocationService) store(ctx context.Context, key string, report *domain.LocationReport) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("location cache write failed")
	}
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("location:%.3f:%.3f", lat, lng)
}

func upstreamError(err error) error {
	if errors.Is(err, domain.ErrLocationUnconfigured) || errors.Is(err, domain.ErrLocationUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
}

func fillPlace(p *domain.Place) domain.Place {
	out := domain.Place{City: domain.NotAvailable, State: domain.NotAvailable, Country: domain.NotAvailable}
	if p == nil {
		return out
	}
	if p.City != "" {
		out.City = p.City
	}
	if p.State != "" {
		out.State = p.State
	}
	if p.Country != "" {
		out.Country = p.Country
	}
	return out
}
