// Package geocoding resolves place names to coordinates
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/resilience"
)

const (
	defaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"
	userAgent      = "BiteTerminal/1.0 (github.com/ngmaloney/bite-terminal)"
)

var (
	ErrEmptyQuery  = errors.New("query cannot be empty")
	ErrNotFound    = errors.New("location not found")
	ErrUnavailable = errors.New("geocoding service unavailable")
	ErrMalformed   = errors.New("malformed geocoding response")
)

// Resolver converts a place name to a location
type Resolver interface {
	Resolve(ctx context.Context, name string) (*models.Location, error)
}

// Client resolves names with the Open-Meteo geocoding API
type Client struct {
	baseURL  string
	language string
	http     resilience.Config
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
}

// NewClient creates a geocoding client. An empty baseURL uses the public API.
func NewClient(baseURL, language string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if language == "" {
		language = "en"
	}
	return &Client{
		baseURL:  baseURL,
		language: language,
		http:     resilience.DefaultConfig(10 * time.Second),
		breaker:  resilience.NewBreaker("geocoding"),
		// keep well under the free tier limits when searches are retyped quickly
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

// geocodingResponse represents the Open-Meteo geocoding API response
type geocodingResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Country   string   `json:"country"`
		Admin1    string   `json:"admin1"`
		Timezone  string   `json:"timezone"`
	} `json:"results"`
}

// Resolve returns the first match for name
func (c *Client) Resolve(ctx context.Context, name string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyQuery
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	params := url.Values{}
	params.Add("name", name)
	params.Add("count", "1")
	params.Add("language", c.language)
	params.Add("format", "json")
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

	var result geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	first := result.Results[0]
	if first.Latitude == nil || first.Longitude == nil {
		return nil, fmt.Errorf("%w: result without coordinates", ErrMalformed)
	}

	return &models.Location{
		Name:      first.Name,
		Latitude:  *first.Latitude,
		Longitude: *first.Longitude,
		Country:   first.Country,
		Timezone:  first.Timezone,
	}, nil
}
