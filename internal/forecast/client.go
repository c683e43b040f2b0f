// Package forecast fetches hourly weather series from the Open-Meteo forecast API
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/resilience"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	userAgent      = "BiteTerminal/1.0 (github.com/ngmaloney/bite-terminal)"

	hourlyFields = "temperature_2m,surface_pressure,rain,wind_speed_10m,wind_direction_10m,cloud_cover"

	// past days give the water estimate and pressure trend their history
	pastDays     = 3
	forecastDays = 2
)

var (
	ErrUnavailable = errors.New("weather service unavailable")
	ErrMalformed   = errors.New("malformed weather response")
)

// Provider returns the hourly series for a coordinate
type Provider interface {
	Hourly(ctx context.Context, lat, lon float64) (*models.HourlySeries, error)
}

// Client implements Provider using the Open-Meteo forecast API
type Client struct {
	baseURL string
	http    resilience.Config
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a forecast client. An empty baseURL uses the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    resilience.DefaultConfig(30 * time.Second),
		breaker: resilience.NewBreaker("forecast"),
	}
}

// forecastResponse mirrors the subset of the API response we read. Fields
// are pointers so a missing key can be told apart from an empty array.
type forecastResponse struct {
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Timezone         string `json:"timezone"`
	Hourly           *struct {
		Time             *[]string   `json:"time"`
		Temperature2m    *[]*float64 `json:"temperature_2m"`
		SurfacePressure  *[]*float64 `json:"surface_pressure"`
		Rain             *[]*float64 `json:"rain"`
		WindSpeed10m     *[]*float64 `json:"wind_speed_10m"`
		WindDirection10m *[]*float64 `json:"wind_direction_10m"`
		CloudCover       *[]*float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// Hourly fetches past and forecast hours for lat, lon
func (c *Client) Hourly(ctx context.Context, lat, lon float64) (*models.HourlySeries, error) {
	params := url.Values{}
	params.Add("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("hourly", hourlyFields)
	params.Add("past_days", strconv.Itoa(pastDays))
	params.Add("forecast_days", strconv.Itoa(forecastDays))
	params.Add("timezone", "auto")
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	resp, err := resilience.Do(ctx, c.http, c.breaker, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return fr.series()
}

func (fr *forecastResponse) series() (*models.HourlySeries, error) {
	h := fr.Hourly
	if h == nil {
		return nil, fmt.Errorf("%w: missing hourly object", ErrMalformed)
	}
	if h.Time == nil {
		return nil, fmt.Errorf("%w: missing hourly.time", ErrMalformed)
	}

	s := &models.HourlySeries{
		Time:             *h.Time,
		UTCOffsetSeconds: fr.UTCOffsetSeconds,
		Timezone:         fr.Timezone,
	}

	fields := []struct {
		name string
		src  *[]*float64
		dst  *[]float64
	}{
		{"temperature_2m", h.Temperature2m, &s.Temperature2m},
		{"surface_pressure", h.SurfacePressure, &s.SurfacePressure},
		{"rain", h.Rain, &s.Rain},
		{"wind_speed_10m", h.WindSpeed10m, &s.WindSpeed10m},
		{"wind_direction_10m", h.WindDirection10m, &s.WindDirection10m},
		{"cloud_cover", h.CloudCover, &s.CloudCover},
	}
	for _, f := range fields {
		if f.src == nil {
			return nil, fmt.Errorf("%w: missing hourly.%s", ErrMalformed, f.name)
		}
		values := make([]float64, len(*f.src))
		for i, v := range *f.src {
			if v == nil {
				return nil, fmt.Errorf("%w: null in hourly.%s at %d", ErrMalformed, f.name, i)
			}
			values[i] = *v
		}
		*f.dst = values
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}
