package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"
	iconURLFormat  = "http://openweathermap.org/img/wn/%s@2x.png"
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client implements ports.WeatherProvider against the OpenWeatherMap geo and
// current-weather APIs.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type geoResult struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type weatherResult struct {
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// ReversePlace returns the first reverse-geocoding match, or nil when there is
// none.
func (c *Client) ReversePlace(ctx context.Context, lat, lng float64) (*domain.Place, error) {
	q := c.query(lat, lng)
	q.Set("limit", "1")

	var results []geoResult
	if err := c.get(ctx, "/geo/1.0/reverse", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	r := results[0]
	return &domain.Place{City: r.Name, State: r.State, Country: r.Country}, nil
}

// CurrentWeather returns metric conditions, or nil when the response lacks the
// temperature or a weather entry.
func (c *Client) CurrentWeather(ctx context.Context, lat, lng float64) (*domain.Weather, error) {
	q := c.query(lat, lng)
	q.Set("units", "metric")

	var res weatherResult
	if err := c.get(ctx, "/data/2.5/weather", q, &res); err != nil {
		return nil, err
	}
	if res.Main == nil || len(res.Weather) == 0 {
		return nil, nil
	}
	return &domain.Weather{
		Temperature: res.Main.Temp,
		Description: res.Weather[0].Description,
		Icon:        fmt.Sprintf(iconURLFormat, res.Weather[0].Icon),
	}, nil
}

func (c *Client) query(lat, lng float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.apiKey == "" {
		return domain.ErrLocationUnconfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("openweather: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openweather %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("openweather %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("openweather %s: decode: %w", path, err)
	}
	return nil
}
